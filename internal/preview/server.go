// Package preview is the development server: it renders pages on demand,
// serves static files, watches the site folders and makes open browsers
// reload through a long-polled epoch whenever something changes.
package preview

import (
	"context"
	_ "embed"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/watch"
)

//go:embed livereload.js
var liveReloadJS string

const (
	DefaultHost          = "0.0.0.0"
	DefaultPort          = 8080
	DefaultPollTimeout   = 60 * time.Second
	DefaultShutdownDelay = time.Second
)

// Config configures a Server.
type Config struct {
	Host string
	Port int
	// PollTimeout bounds how long a live reload poll is held open.
	PollTimeout time.Duration
	// ShutdownDelay is how often the refresh loop checks for shutdown.
	ShutdownDelay time.Duration
	Static        StaticFiles
	WatchRoots    []string
	Watch         watch.Options
}

// Deps are the collaborators of a Server.
type Deps struct {
	// Render returns the HTML of the page at url, "" when there is none.
	Render func(ctx context.Context, url string) (string, error)
	// Refresh is called with the path of every changed file.
	Refresh func(ctx context.Context, path string) error
	// Metrics serves /metrics when set.
	Metrics  http.Handler
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Server is the live reload development server.
type Server struct {
	cfg      Config
	deps     Deps
	logger   *slog.Logger
	recorder metrics.Recorder
	errs     *errors.HTTPErrorAdapter
	router   chi.Router
	watcher  *watch.Watcher

	// epochCond guards epoch and closing.
	epochCond *timedCond
	epoch     int64
	closing   bool

	// refreshCond guards mustRefresh and running.
	refreshCond *timedCond
	mustRefresh bool
	running     bool

	waiting atomic.Int64

	mu        sync.Mutex
	http      *http.Server
	addr      net.Addr
	ready     chan struct{}
	serveDone chan struct{}
	serveErr  error
}

// New creates a stopped Server.
func New(cfg Config, deps Deps) *Server {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	if cfg.ShutdownDelay <= 0 {
		cfg.ShutdownDelay = DefaultShutdownDelay
	}
	if cfg.Static.URL == "" {
		cfg.Static.URL = "/static"
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := deps.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	s := &Server{
		cfg:         cfg,
		deps:        deps,
		logger:      logger,
		recorder:    recorder,
		errs:        errors.NewHTTPErrorAdapter(logger),
		epochCond:   newTimedCond(),
		epoch:       time.Now().UnixMilli(),
		refreshCond: newTimedCond(),
		ready:       make(chan struct{}),
	}
	watchOpts := cfg.Watch
	if watchOpts.Logger == nil {
		watchOpts.Logger = logger
	}
	s.watcher = watch.New(cfg.WatchRoots, s.onChange, watchOpts)
	s.router = s.routes()
	return s
}

// Handler returns the router of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// StaticFiles returns the static file resolver.
func (s *Server) StaticFiles() StaticFiles {
	return s.cfg.Static
}

// Epoch returns the current version of the site.
func (s *Server) Epoch() int64 {
	var epoch int64
	s.epochCond.Read(func() { epoch = s.epoch })
	return epoch
}

// Ready is closed once the server is listening.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the listening address, nil before Ready.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Serve listens, starts the watcher and the HTTP server goroutines and
// runs the refresh loop until ctx ends or Shutdown is called. Listen
// errors are returned as Abort errors. A normal shutdown returns nil.
func (s *Server) Serve(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return errors.Abort(err)
	}

	s.refreshCond.Update(func() { s.running = true })
	if err := s.watcher.Start(ctx); err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.http = srv
	s.addr = ln.Addr()
	s.serveDone = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.serveDone)
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.mu.Lock()
			s.serveErr = err
			s.mu.Unlock()
			s.refreshCond.Update(func() { s.running = false })
		}
	}()
	close(s.ready)
	s.logger.Info("Preview server listening", logfields.Addr("http://"+ln.Addr().String()))

	s.refreshLoop(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.serveErr != nil {
		return errors.Abort(s.serveErr)
	}
	return nil
}

// refreshLoop bumps the epoch after every detected change.
func (s *Server) refreshLoop(ctx context.Context) {
	for {
		var running, must bool
		for {
			s.refreshCond.WaitFor(ctx, func() bool { return s.mustRefresh || !s.running }, s.cfg.ShutdownDelay)
			s.refreshCond.Read(func() { running, must = s.running, s.mustRefresh })
			if !running || must || ctx.Err() != nil {
				break
			}
		}
		if !running || ctx.Err() != nil {
			return
		}

		s.logger.Info("Detected file changes")
		s.refreshCond.Update(func() { s.mustRefresh = false })
		s.epochCond.Update(func() {
			s.epoch = max(time.Now().UnixMilli(), s.epoch+1)
		})
		s.recorder.IncEpochBump()
		s.logger.Info("Reloading page", logfields.Epoch(s.Epoch()))
	}
}

// onChange runs on the watcher goroutine for every change.
func (s *Server) onChange(ev fsnotify.Event) {
	s.refreshCond.Update(func() { s.mustRefresh = true })
	if s.deps.Refresh == nil {
		return
	}
	if err := s.deps.Refresh(context.Background(), ev.Name); err != nil {
		s.logger.Error("Refresh failed", logfields.Path(ev.Name), logfields.Error(err))
	}
}

// Shutdown stops the watcher, ends the refresh loop, wakes pending polls
// and shuts the HTTP server down. It is idempotent.
func (s *Server) Shutdown(ctx context.Context) error {
	s.watcher.Stop()
	s.refreshCond.Update(func() { s.running = false })
	s.epochCond.Update(func() { s.closing = true })

	s.mu.Lock()
	srv, done := s.http, s.serveDone
	s.http = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.logger.Info("Shutting down")
	err := srv.Shutdown(ctx)
	<-done
	if err != nil {
		return fmt.Errorf("preview server shutdown: %w", err)
	}
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.HandleFunc(liveReloadPrefix+"*", s.handleLiveReload)
	for _, name := range rootStaticFiles {
		r.HandleFunc(name, s.redirectStatic)
	}
	r.Handle(s.cfg.Static.URL+"/*", s.cfg.Static)
	if s.deps.Metrics != nil {
		r.Handle("/metrics", s.deps.Metrics)
	}
	r.HandleFunc("/*", s.handlePage)
	return r
}
