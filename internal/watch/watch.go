// Package watch reports file changes under a set of folders, either by
// polling (radovskyb/watcher) or through native fsnotify notifications.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	pollwatch "github.com/radovskyb/watcher"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Mode selects how changes are detected.
type Mode string

const (
	ModePoll   Mode = "poll"
	ModeNative Mode = "native"
)

// DefaultInterval is the polling period.
const DefaultInterval = time.Second

// MinInterval is the shortest polling period the poller accepts.
const MinInterval = time.Millisecond

// Handler receives file events on the watcher goroutine.
type Handler func(fsnotify.Event)

// Options configures a Watcher.
type Options struct {
	Mode     Mode
	Interval time.Duration
	Logger   *slog.Logger
}

// Watcher watches files under its roots. Directory events, hidden files
// and editor temp files are never reported.
type Watcher struct {
	roots   []string
	handler Handler
	opts    Options
	logger  *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

// New creates a stopped Watcher.
func New(roots []string, handler Handler, opts Options) *Watcher {
	if opts.Mode == "" {
		opts.Mode = ModePoll
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	opts.Interval = max(opts.Interval, MinInterval)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{roots: roots, handler: handler, opts: opts, logger: logger}
}

// Start launches the watcher goroutine. It returns once the initial
// file list (or the native watches) are in place, so changes made after
// Start returns are reported.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != nil {
		return errors.InternalError("watcher already started").Build()
	}

	ctx, cancel := context.WithCancel(ctx)
	var loop func(context.Context)
	switch w.opts.Mode {
	case ModeNative:
		nw, err := w.native()
		if err != nil {
			cancel()
			return err
		}
		loop = func(ctx context.Context) { w.runNative(ctx, nw) }
	case ModePoll:
		pw := w.poller()
		started := make(chan error, 1)
		go func() { started <- pw.Start(w.opts.Interval) }()
		pw.Wait()
		loop = func(ctx context.Context) { w.runPoll(ctx, pw, started) }
	default:
		cancel()
		return errors.ConfigError("unknown watch mode").
			WithContext("mode", string(w.opts.Mode)).
			UserAction().
			Build()
	}

	w.cancel = cancel
	w.done = make(chan struct{})
	go func() {
		defer close(w.done)
		loop(ctx)
	}()
	w.logger.Debug("Watching files", slog.String("mode", string(w.opts.Mode)), logfields.Count(len(w.roots)))
	return nil
}

// Stop ends the watcher goroutine and waits for it. It is idempotent and
// safe to call on a watcher that never started.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped || w.done == nil {
		w.stopped = true
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.cancel()
	done := w.done
	w.mu.Unlock()
	<-done
}

func (w *Watcher) poller() *pollwatch.Watcher {
	pw := pollwatch.New()
	pw.IgnoreHiddenFiles(true)
	pw.FilterOps(pollwatch.Create, pollwatch.Write, pollwatch.Remove, pollwatch.Rename, pollwatch.Move)
	for _, root := range w.roots {
		if err := pw.AddRecursive(root); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(root), logfields.Error(err))
		}
	}
	return pw
}

// runPoll drives the polling watcher until ctx ends. The poller sends on
// unbuffered channels, so they are drained until it has closed.
func (w *Watcher) runPoll(ctx context.Context, pw *pollwatch.Watcher, started <-chan error) {
	for {
		select {
		case <-ctx.Done():
			go pw.Close()
			for {
				select {
				case <-pw.Event:
				case <-pw.Error:
				case <-pw.Closed:
					<-started
					return
				}
			}
		case ev := <-pw.Event:
			for _, fev := range pollEvents(ev) {
				w.deliver(fev)
			}
		case err := <-pw.Error:
			w.logger.Warn("Watcher error", logfields.Error(err))
		case err := <-started:
			if err != nil {
				w.logger.Error("Watcher stopped", logfields.Error(err))
			}
			return
		}
	}
}

// pollEvents converts a poller event. Renames and moves become a removal
// of the old path and a creation of the new one; directories are dropped.
func pollEvents(ev pollwatch.Event) []fsnotify.Event {
	if ev.FileInfo != nil && ev.IsDir() {
		return nil
	}
	switch ev.Op {
	case pollwatch.Create:
		return []fsnotify.Event{{Name: ev.Path, Op: fsnotify.Create}}
	case pollwatch.Write:
		return []fsnotify.Event{{Name: ev.Path, Op: fsnotify.Write}}
	case pollwatch.Remove:
		return []fsnotify.Event{{Name: ev.Path, Op: fsnotify.Remove}}
	case pollwatch.Rename, pollwatch.Move:
		return []fsnotify.Event{
			{Name: ev.OldPath, Op: fsnotify.Remove},
			{Name: ev.Path, Op: fsnotify.Create},
		}
	default:
		return nil
	}
}

func (w *Watcher) native() (*fsnotify.Watcher, error) {
	nw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	for _, root := range w.roots {
		w.addDirsRecursive(nw, root)
	}
	return nw, nil
}

func (w *Watcher) runNative(ctx context.Context, nw *fsnotify.Watcher) {
	defer func() {
		_ = nw.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-nw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					w.addDirsRecursive(nw, ev.Name)
					continue
				}
			}
			w.deliver(ev)
		case err, ok := <-nw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) addDirsRecursive(nw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := nw.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

func (w *Watcher) deliver(ev fsnotify.Event) {
	if ShouldIgnore(ev.Name) {
		return
	}
	if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
		return
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), logfields.Event(ev.Op.String()))
	w.handler(ev)
}

// ShouldIgnore returns true for hidden files, editor temp and swap files
// and OS metadata files.
func ShouldIgnore(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
