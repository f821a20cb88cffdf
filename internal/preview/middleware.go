package preview

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// requestLogger logs every request at a level picked from its status:
// errors for 5xx, warnings for 4xx, debug for long-polls, info otherwise.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			case strings.HasPrefix(r.URL.Path, liveReloadPrefix):
				level = slog.LevelDebug
			}
			logger.LogAttrs(r.Context(), level, "HTTP request",
				logfields.Method(r.Method),
				logfields.Path(r.URL.Path),
				logfields.Status(status),
				logfields.Duration(time.Since(start)),
				logfields.RequestID(middleware.GetReqID(r.Context())))
		})
	}
}
