// Package site wires the configuration into a working site: navigation,
// renderer, render cache, builder, search indexer and preview server.
package site

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/components"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/gitinfo"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/nav"
	"git.home.luguber.info/inful/docsite/internal/preview"
	"git.home.luguber.info/inful/docsite/internal/render"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/thumbnail"
	"git.home.luguber.info/inful/docsite/internal/watch"
	"git.home.luguber.info/inful/docsite/internal/workspace"
)

// Site is a loaded documentation site.
type Site struct {
	cfg    *config.Config
	logger *slog.Logger

	temp     *workspace.Manager
	renderer *render.Renderer
	cache    *render.Cache
	static   preview.StaticFiles
	indexer  search.Indexer

	registry *prom.Registry
	recorder metrics.Recorder

	// navMu serializes page tree reloads.
	navMu sync.Mutex
}

// New loads the page tree and prepares the renderer. Close releases the
// temporary folder.
func New(cfg *config.Config, logger *slog.Logger) (*Site, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Site{
		cfg:      cfg,
		logger:   logger,
		temp:     workspace.NewManager("").WithLogger(logger),
		indexer:  search.NewIndexer(),
		recorder: metrics.NoopRecorder{},
	}
	if cfg.Metrics.Enabled {
		s.registry = prom.NewRegistry()
		s.recorder = metrics.NewPrometheusRecorder(s.registry)
	}

	n, err := s.loadNav()
	if err != nil {
		return nil, err
	}

	if err := s.temp.Create(); err != nil {
		return nil, err
	}
	thumbDir, err := s.temp.Subdir("thumbnails")
	if err != nil {
		_ = s.temp.Cleanup()
		return nil, err
	}
	s.static = preview.StaticFiles{URL: "/static", Dir: cfg.Paths.Static, ThumbnailDir: thumbDir}

	s.renderer = render.New(render.Options{
		Nav:              n,
		ContentDir:       cfg.Paths.Content,
		Sources:          s.sources(),
		DefaultComponent: cfg.Site.DefaultComponent,
		SocialComponent:  cfg.Site.SocialComponent,
		Thumbnails:       thumbnail.New(cfg.Paths.Static, thumbDir),
		LastMod:          s.lastMod(),
		Recorder:         s.recorder,
		Logger:           logger,
	})
	s.cache = render.NewCache(s.renderer, cfg.Cache.Dir, cfg.CacheEnabled())
	return s, nil
}

// Close removes the temporary folder.
func (s *Site) Close() error {
	return s.temp.Cleanup()
}

// Nav returns the current navigation.
func (s *Site) Nav() *nav.Nav {
	return s.renderer.Nav()
}

func (s *Site) sources() []components.Source {
	sources := []components.Source{
		components.DirSource("", s.cfg.Paths.Components),
		components.DirSource("", s.cfg.Paths.Content),
	}
	if s.cfg.Paths.Theme != "" {
		sources = append(sources, components.DirSource("theme", s.cfg.Paths.Theme))
	}
	return append(sources, components.ThemeSource())
}

func (s *Site) lastMod() render.LastModFunc {
	if !s.cfg.Site.GitLastmod {
		return nil
	}
	repo, err := gitinfo.Open(s.cfg.Paths.Content)
	if err != nil {
		s.logger.Warn("Git history unavailable, lastmod disabled", logfields.Error(err))
		return nil
	}
	return repo.LastModified
}

// loadNav builds the navigation from the configured page tree, listing
// the content folder when pages are "auto".
func (s *Site) loadNav() (*nav.Nav, error) {
	cfg := s.cfg
	content := cfg.Paths.Content
	tree := nav.Tree{}
	var err error

	switch {
	case cfg.Pages.MultiLanguage():
		tree.ByLang = make(map[string][]any, len(cfg.Pages.ByLang))
		for lang, lp := range cfg.Pages.ByLang {
			items := lp.Items
			if lp.Auto {
				if items, err = nav.PagesInFolder(filepath.Join(content, lang)); err != nil {
					return nil, err
				}
			}
			tree.ByLang[lang] = items
		}
	case cfg.Pages.Auto:
		if tree.Items, err = nav.PagesInFolder(content); err != nil {
			return nil, err
		}
	default:
		tree.Items = cfg.Pages.Items
	}

	langs := make([]nav.Language, 0, len(cfg.Site.Languages))
	for _, l := range cfg.Site.Languages {
		langs = append(langs, nav.Language{Code: l.Code, Name: l.Name})
	}
	return nav.Build(content, tree, nav.Options{
		SiteURL:   cfg.Site.URL,
		Languages: langs,
		Default:   cfg.Site.DefaultLanguage,
		Logger:    s.logger,
	})
}

// refresh handles a changed file while serving. Content changes reload
// the page tree first so new pages and titles show up.
func (s *Site) refresh(ctx context.Context, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".md") {
		s.navMu.Lock()
		n, err := s.loadNav()
		if err == nil {
			s.renderer.SetNav(n)
		}
		s.navMu.Unlock()
		if err != nil {
			return err
		}
	}
	return s.cache.Refresh(ctx, path)
}

// Serve indexes the site when search is enabled, then runs the preview
// server until ctx ends.
func (s *Site) Serve(ctx context.Context) error {
	if s.cfg.SearchEnabled() {
		if _, err := s.Index(ctx); err != nil {
			return err
		}
	}
	if err := s.cache.CachePages(ctx); err != nil {
		return err
	}

	cfg := s.cfg
	roots := []string{cfg.Paths.Content, cfg.Paths.Static, cfg.Paths.Components}
	if cfg.Paths.Theme != "" {
		roots = append(roots, cfg.Paths.Theme)
	}
	deps := preview.Deps{
		Render:   s.cache.GetCachedPage,
		Refresh:  s.refresh,
		Recorder: s.recorder,
		Logger:   s.logger,
	}
	if s.registry != nil {
		deps.Metrics = metrics.HTTPHandler(s.registry)
	}
	srv := preview.New(preview.Config{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		PollTimeout:   cfg.Server.PollTimeout,
		ShutdownDelay: cfg.Server.ShutdownDelay,
		Static:        s.static,
		WatchRoots:    roots,
		Watch: watch.Options{
			Mode:     watch.Mode(cfg.Watch.Mode),
			Interval: cfg.Watch.PollInterval,
			Logger:   s.logger,
		},
	}, deps)
	return srv.Serve(ctx)
}

// Build writes the static site into the build folder.
func (s *Site) Build(ctx context.Context) (*build.Report, error) {
	cfg := s.cfg
	b := build.New(s.Nav(), s.renderer, build.Options{
		BuildDir:         cfg.Paths.Build,
		StaticDir:        cfg.Paths.Static,
		StaticURL:        s.static.URL,
		RelativizeStatic: cfg.Build.RelativizeStatic,
		Search:           cfg.SearchEnabled(),
		KeepRaw:          cfg.Search.KeepRaw,
		WriteReport:      cfg.Build.Report,
	}).
		WithResolver(s.static).
		WithIndexer(s.indexer).
		WithRecorder(s.recorder).
		WithLogger(s.logger)
	return b.Build(ctx)
}

// Index renders every page and writes the search artifacts into the
// source static folder. It returns the written paths.
func (s *Site) Index(ctx context.Context) ([]string, error) {
	n := s.Nav()
	pages := make([]search.PageHTML, 0, len(n.Pages()))
	for _, page := range n.Pages() {
		html, err := s.renderer.RenderPage(ctx, page)
		if err != nil {
			return nil, err
		}
		pages = append(pages, search.PageHTML{Page: page, HTML: html})
	}
	indexes, err := search.IndexPages(pages, s.indexer, s.cfg.Search.KeepRaw, s.logger)
	if err != nil {
		return nil, err
	}
	paths, err := search.Write(s.cfg.Paths.Static, indexes)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		s.logger.Info("Wrote search index", logfields.Path(p))
	}
	return paths, nil
}
