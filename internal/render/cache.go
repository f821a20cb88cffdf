package render

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/nav"
)

// SocialSuffix addresses the social card of a page: "/guide/og-card.html".
const SocialSuffix = "/og-card.html"

// RefreshExtensions are the file extensions that invalidate the cache.
var RefreshExtensions = []string{".md", ".tmpl", ".html"}

// Cache keeps rendered pages on disk at {dir}/{url}/index.html.
type Cache struct {
	r       *Renderer
	dir     string
	enabled bool

	// refreshMu serializes full cache rebuilds.
	refreshMu sync.Mutex
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// NewCache creates a cache in dir. A disabled cache renders on every lookup.
func NewCache(r *Renderer, dir string, enabled bool) *Cache {
	return &Cache{
		r:        r,
		dir:      dir,
		enabled:  enabled && dir != "",
		recorder: r.recorder,
		logger:   r.logger,
	}
}

// Dir returns the cache folder.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns where page is cached.
func (c *Cache) Path(page *nav.Page) string {
	return filepath.Join(c.dir, filepath.FromSlash(OutputName(page.URL)))
}

// OutputName maps a page URL to its index file: "/" -> "index.html",
// "/guide/" and "/guide" -> "guide/index.html".
func OutputName(url string) string {
	name := strings.Trim(url, "/")
	return strings.TrimPrefix(name+"/index.html", "/")
}

// CachePages empties the cache and renders every page in navigation
// order. Pages that fail are logged and skipped.
func (c *Cache) CachePages(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if err := os.RemoveAll(c.dir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to clear cache").
			WithContext("path", c.dir).
			Build()
	}
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create cache").
			WithContext("path", c.dir).
			Build()
	}

	failed := 0
	pages := c.r.Nav().Pages()
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := c.CachePage(ctx, page); err != nil {
			failed++
			c.logger.Error("Failed to cache page", logfields.URL(page.URL), logfields.Error(err))
		}
	}
	c.logger.Info("Pages cached", logfields.Count(len(pages)-failed), slog.Int("failed", failed))
	return nil
}

// CachePage renders page and stores the result.
func (c *Cache) CachePage(ctx context.Context, page *nav.Page) (string, error) {
	html, err := c.r.RenderPage(ctx, page)
	if err != nil {
		return "", err
	}
	if c.enabled {
		if err := writeFileAtomic(c.Path(page), []byte(html)); err != nil {
			c.logger.Warn("Failed to write cache entry", logfields.URL(page.URL), logfields.Error(err))
		}
	}
	return html, nil
}

// GetCachedPage returns the HTML of the page at url, rendering and storing
// it on a miss. URLs ending in SocialSuffix render the social card of the
// page instead. Unknown URLs return "".
func (c *Cache) GetCachedPage(ctx context.Context, url string) (string, error) {
	if base, ok := strings.CutSuffix(url, SocialSuffix); ok {
		page := c.r.Nav().GetPage(base)
		if page == nil {
			return "", nil
		}
		return c.r.RenderSocialCard(ctx, page)
	}

	page := c.r.Nav().GetPage(url)
	if page == nil {
		return "", nil
	}
	if c.enabled {
		data, err := os.ReadFile(c.Path(page))
		if err == nil {
			c.recorder.IncCacheLookup(true)
			return string(data), nil
		}
		if !stderrors.Is(err, os.ErrNotExist) {
			c.logger.Warn("Failed to read cache entry", logfields.URL(page.URL), logfields.Error(err))
		}
		c.recorder.IncCacheLookup(false)
	}
	return c.CachePage(ctx, page)
}

// Refresh reacts to a changed file: content and template changes drop the
// parsed components and rebuild the cache. Other files are ignored.
func (c *Cache) Refresh(ctx context.Context, path string) error {
	if !IsRefreshPath(path) {
		return nil
	}
	c.logger.Info("Refreshing pages", logfields.Path(path))
	c.r.Reset()
	return c.CachePages(ctx)
}

// IsRefreshPath reports whether a change to path invalidates rendered pages.
func IsRefreshPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range RefreshExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// writeFileAtomic writes through a temporary file and a rename so readers
// never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}
