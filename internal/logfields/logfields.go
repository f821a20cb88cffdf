package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyURL        = "url"
	KeyLang       = "lang"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyComponent  = "component"
	KeySection    = "section"
	KeyEpoch      = "epoch"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyAddr       = "addr"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRequestID  = "request_id"
	KeyBuildID    = "build_id"
	KeyEvent      = "event"
	KeyTarget     = "target"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Lang(code string) slog.Attr      { return slog.String(KeyLang, code) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Epoch(e int64) slog.Attr         { return slog.Int64(KeyEpoch, e) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func RequestID(id string) slog.Attr   { return slog.String(KeyRequestID, id) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Event(op string) slog.Attr       { return slog.String(KeyEvent, op) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
