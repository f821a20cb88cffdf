package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/nav"
	"git.home.luguber.info/inful/docsite/internal/render"
	"git.home.luguber.info/inful/docsite/internal/search"
)

// PageRenderer renders one page to a full HTML document.
type PageRenderer interface {
	RenderPage(ctx context.Context, page *nav.Page) (string, error)
}

// Options configures a Builder.
type Options struct {
	// BuildDir receives the site; static files go to BuildDir/static.
	BuildDir string
	// StaticDir is copied into the build static folder. Optional.
	StaticDir string
	// StaticURL is the URL prefix of static files, "/static" by default.
	StaticURL string
	// RelativizeStatic makes static URLs relative like page links.
	RelativizeStatic bool
	// Search writes search-{lang}.json into the build static folder.
	Search bool
	// KeepRaw keeps the plain text of search docs.
	KeepRaw bool
	// WriteReport stores the build report as build-report.json.
	WriteReport bool
}

// Builder writes the static site.
type Builder struct {
	opts      Options
	nav       *nav.Nav
	renderer  PageRenderer
	staticOut string

	resolver FileResolver
	indexer  search.Indexer
	recorder metrics.Recorder
	logger   *slog.Logger
}

// New creates a Builder for the pages of n rendered by r.
func New(n *nav.Nav, r PageRenderer, opts Options) *Builder {
	if opts.StaticURL == "" {
		opts.StaticURL = "/static"
	}
	return &Builder{
		opts:      opts,
		nav:       n,
		renderer:  r,
		staticOut: filepath.Join(opts.BuildDir, "static"),
		indexer:   search.NewIndexer(),
		recorder:  metrics.NoopRecorder{},
		logger:    slog.Default(),
	}
}

// WithResolver sets where missing static files are copied from.
func (b *Builder) WithResolver(resolver FileResolver) *Builder {
	b.resolver = resolver
	return b
}

// WithIndexer replaces the default search indexer.
func (b *Builder) WithIndexer(indexer search.Indexer) *Builder {
	if indexer != nil {
		b.indexer = indexer
	}
	return b
}

// WithRecorder sets the metrics recorder.
func (b *Builder) WithRecorder(recorder metrics.Recorder) *Builder {
	if recorder != nil {
		b.recorder = recorder
	}
	return b
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Build writes every page in navigation order. A render error aborts the
// build. The returned report is never nil.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	rep := &Report{
		BuildID:   uuid.NewString(),
		StartTime: time.Now(),
	}
	logger := b.logger.With(logfields.BuildID(rep.BuildID))

	err := b.run(ctx, rep, logger)
	switch {
	case err == nil:
		rep.finish(StatusSuccess, nil)
	case ctx.Err() != nil:
		rep.finish(StatusCancelled, err)
	default:
		rep.finish(StatusFailed, err)
	}
	b.recorder.ObserveBuildDuration(rep.Duration)
	b.recorder.AddPagesBuilt(len(rep.Pages))

	logger.Info("Build finished",
		slog.String("status", string(rep.Status)),
		logfields.Count(len(rep.Pages)),
		logfields.Duration(rep.Duration))

	if b.opts.WriteReport && rep.Status != StatusCancelled {
		if path, werr := rep.Write(b.opts.BuildDir); werr != nil {
			logger.Error("Failed to write build report", logfields.Error(werr))
		} else {
			logger.Debug("Wrote build report", logfields.Path(path))
		}
	}
	return rep, err
}

func (b *Builder) run(ctx context.Context, rep *Report, logger *slog.Logger) error {
	if err := os.MkdirAll(b.staticOut, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create build folder").
			WithContext("path", b.staticOut).
			Build()
	}

	if b.opts.StaticDir != "" {
		logger.Info("Copying static folder", logfields.Path(b.opts.StaticDir))
		n, err := copyDir(b.opts.StaticDir, b.staticOut)
		rep.StaticFiles = n
		if os.IsNotExist(err) {
			logger.Warn("Static folder not found", logfields.Path(b.opts.StaticDir))
		} else if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to copy static folder").
				WithContext("path", b.opts.StaticDir).
				Build()
		}
	}

	logger.Info("Rendering pages")
	var rendered []search.PageHTML
	for _, page := range b.nav.Pages() {
		if err := ctx.Err(); err != nil {
			return err
		}
		html, err := b.writePage(ctx, page, rep, logger)
		if err != nil {
			return err
		}
		if b.opts.Search {
			rendered = append(rendered, search.PageHTML{Page: page, HTML: html})
		}
	}

	if !b.opts.Search {
		return nil
	}
	logger.Info("Indexing content")
	indexes, err := search.IndexPages(rendered, b.indexer, b.opts.KeepRaw, logger)
	if err != nil {
		return err
	}
	paths, err := search.Write(b.staticOut, indexes)
	if err != nil {
		return err
	}
	rep.Search = paths
	return nil
}

func (b *Builder) writePage(ctx context.Context, page *nav.Page, rep *Report, logger *slog.Logger) (string, error) {
	filename := render.OutputName(page.URL)
	path := filepath.Join(b.opts.BuildDir, filepath.FromSlash(filename))

	html, err := b.renderer.RenderPage(ctx, page)
	if err != nil {
		return "", err
	}
	html = b.fixURLs(html, filename, rep)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to create page folder").
			WithContext("path", path).
			Build()
	}
	logger.Info("Writing page", logfields.File(filename))
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil { //nolint:gosec // public HTML output, non-sensitive
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to write page").
			WithContext("path", path).
			Build()
	}
	rep.Pages = append(rep.Pages, PageReport{
		URL:         page.URL,
		File:        filename,
		Fingerprint: mdfp.CalculateFingerprintFromParts("", html),
	})
	return html, nil
}
