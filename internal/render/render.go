// Package render turns content pages into full HTML documents: front
// matter, Markdown, a template pass over the content, heading outline and
// the wrapping page component. Cache stores the results on disk for the
// preview server.
package render

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/docsite/internal/components"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/nav"
	"git.home.luguber.info/inful/docsite/internal/outline"
)

const (
	// DefaultComponent wraps pages without a component in their metadata.
	DefaultComponent = "theme.Page"
	// DefaultSocialComponent renders social cards.
	DefaultSocialComponent = "theme.SocialCard"
)

// LastModFunc returns the last modification time of a content file.
type LastModFunc func(path string) (time.Time, error)

// Options configure a Renderer.
type Options struct {
	Nav        *nav.Nav
	ContentDir string
	// Sources are the component sources in lookup order.
	Sources          []components.Source
	Markdown         markdown.Converter
	Highlight        markdown.Options
	DefaultComponent string
	SocialComponent  string
	Thumbnails       Thumbnailer
	// LastMod fills meta.lastmod when set.
	LastMod  LastModFunc
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Renderer renders pages. It is safe for concurrent use; pages are never
// mutated.
type Renderer struct {
	nav              atomic.Pointer[nav.Nav]
	contentDir       string
	md               markdown.Converter
	highlight        markdown.Options
	catalog          *components.Catalog
	defaultComponent string
	socialComponent  string
	thumbs           Thumbnailer
	lastMod          LastModFunc
	recorder         metrics.Recorder
	logger           *slog.Logger
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	r := &Renderer{
		contentDir:       opts.ContentDir,
		md:               opts.Markdown,
		highlight:        opts.Highlight,
		defaultComponent: opts.DefaultComponent,
		socialComponent:  opts.SocialComponent,
		thumbs:           opts.Thumbnails,
		lastMod:          opts.LastMod,
		recorder:         opts.Recorder,
		logger:           opts.Logger,
	}
	r.nav.Store(opts.Nav)
	if r.contentDir == "" && opts.Nav != nil {
		r.contentDir = opts.Nav.ContentRoot()
	}
	if r.md == nil {
		r.md = markdown.New(markdown.DefaultOptions)
	}
	if r.highlight == (markdown.Options{}) {
		r.highlight = markdown.DefaultOptions
	}
	if r.defaultComponent == "" {
		r.defaultComponent = DefaultComponent
	}
	if r.socialComponent == "" {
		r.socialComponent = DefaultSocialComponent
	}
	if r.recorder == nil {
		r.recorder = metrics.NoopRecorder{}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	sources := opts.Sources
	if len(sources) == 0 {
		sources = []components.Source{components.ThemeSource()}
	}
	r.catalog = components.NewCatalog(r.funcMap(), r.logger, sources...)
	return r
}

// Nav returns the navigation the renderer resolves pages with.
func (r *Renderer) Nav() *nav.Nav {
	return r.nav.Load()
}

// SetNav swaps the navigation, for page tree changes while serving.
func (r *Renderer) SetNav(n *nav.Nav) {
	r.nav.Store(n)
}

// Reset drops parsed component templates so template edits are picked up.
func (r *Renderer) Reset() {
	r.catalog.Reset()
}

// Render renders the page at url, "" when no page has that URL.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	page := r.Nav().GetPage(url)
	if page == nil {
		return "", nil
	}
	return r.RenderPage(ctx, page)
}

// RenderPage renders one page into a full HTML document.
func (r *Renderer) RenderPage(ctx context.Context, page *nav.Page) (html string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()
	defer func() {
		r.recorder.ObserveRenderDuration("page", time.Since(start), metrics.ResultFor(err))
	}()

	path := filepath.Join(r.contentDir, filepath.FromSlash(page.Filename))
	r.logger.Debug("Rendering page", logfields.URL(page.URL), logfields.File(path))

	source, meta, err := frontmatter.Load(path)
	if err != nil {
		return "", err
	}
	content, err := r.RenderMarkdown(source)
	if err != nil {
		return "", withPage(err, page)
	}
	content = markdown.StripParagraph(content)

	if _, ok := meta["title"]; !ok {
		meta["title"] = page.Title
	}
	r.setLastMod(path, meta)

	pn := r.Nav().GetPageNav(page)
	utils := r.utils()
	content, err = r.catalog.RenderSource(page.Filename, content, map[string]any{
		"nav":   pn,
		"meta":  meta,
		"utils": utils,
		"page":  page,
	})
	if err != nil {
		return "", withPage(err, page)
	}

	content, headings, err := outline.Outline(content)
	if err != nil {
		return "", withPage(errors.WrapError(err, errors.CategoryRender, "failed to outline page").Build(), page)
	}
	pn.PageTOC = nav.GetPageTOC(headings)

	component := r.defaultComponent
	if name, ok := meta["component"].(string); ok && name != "" {
		component = name
	}
	html, err = r.catalog.Render(component, map[string]any{
		"content": content,
		"nav":     pn,
		"meta":    meta,
		"utils":   utils,
	})
	if err != nil {
		return "", withPage(err, page)
	}
	return html, nil
}

// RenderSocialCard renders the social card component of page.
func (r *Renderer) RenderSocialCard(ctx context.Context, page *nav.Page) (html string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()
	defer func() {
		r.recorder.ObserveRenderDuration("social", time.Since(start), metrics.ResultFor(err))
	}()

	component := r.socialComponent
	if name, ok := page.Meta["social_card"].(string); ok && name != "" {
		component = name
	}
	html, err = r.catalog.Render(component, map[string]any{"page": page})
	if err != nil {
		return "", withPage(err, page)
	}
	return html, nil
}

// RenderMarkdown converts a Markdown snippet the same way page content is
// converted. It is exposed to templates as the markdown function.
func (r *Renderer) RenderMarkdown(src string) (string, error) {
	html, err := markdown.Render(r.md, src)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to convert markdown").Build()
	}
	return html, nil
}

func (r *Renderer) setLastMod(path string, meta map[string]any) {
	if r.lastMod == nil {
		return
	}
	if _, ok := meta["lastmod"]; ok {
		return
	}
	t, err := r.lastMod(path)
	if err != nil {
		r.logger.Debug("No lastmod for page", logfields.File(path), logfields.Error(err))
		return
	}
	meta["lastmod"] = t
}

func withPage(err error, page *nav.Page) error {
	if ce, ok := errors.AsClassified(err); ok {
		return ce.WithContext("url", page.URL).WithContext("file", page.Filename)
	}
	return errors.WrapError(err, errors.CategoryRender, "failed to render page").
		WithContext("url", page.URL).
		WithContext("file", page.Filename).
		Build()
}
