package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCacheFixture(t *testing.T) (*fixture, *Cache) {
	t.Helper()
	f := newFixture(t, map[string]string{
		"Bare.tmpl":      `<body>{{ .content }}</body>`,
		"index.md":       "---\ncomponent: Bare\n---\nHome",
		"guide/index.md": "---\ncomponent: Bare\ntitle: The Guide\n---\nGuide",
		"a.md":           "---\ncomponent: Bare\n---\nA",
	}, []any{"index.md", "guide/index.md", "a.md"}, nil)
	return f, NewCache(f.renderer, filepath.Join(t.TempDir(), "cache"), true)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "index.html", OutputName("/"))
	assert.Equal(t, "guide/index.html", OutputName("/guide/"))
	assert.Equal(t, "a/b/index.html", OutputName("/a/b"))
}

func TestCache_GetCachedPage_WritesOnMiss(t *testing.T) {
	f, c := newCacheFixture(t)

	html, err := c.GetCachedPage(t.Context(), "/guide")
	require.NoError(t, err)
	assert.Equal(t, "<body>Guide</body>", html)

	stored, err := os.ReadFile(c.Path(f.nav.GetPage("/guide/")))
	require.NoError(t, err)
	assert.Equal(t, html, string(stored))
}

func TestCache_CachePage_ReturnsHTML(t *testing.T) {
	f, c := newCacheFixture(t)
	page := f.nav.GetPage("/a")

	html, err := c.CachePage(t.Context(), page)
	require.NoError(t, err)
	assert.Equal(t, "<body>A</body>", html)

	stored, err := os.ReadFile(c.Path(page))
	require.NoError(t, err)
	assert.Equal(t, html, string(stored))
}

func TestCache_GetCachedPage_ServesStoredCopy(t *testing.T) {
	f, c := newCacheFixture(t)
	_, err := c.GetCachedPage(t.Context(), "/a")
	require.NoError(t, err)

	write(t, filepath.Join(f.content, "a.md"), "---\ncomponent: Bare\n---\nChanged")
	html, err := c.GetCachedPage(t.Context(), "/a")
	require.NoError(t, err)
	assert.Equal(t, "<body>A</body>", html)
}

func TestCache_Refresh_RebuildsOnContentChange(t *testing.T) {
	f, c := newCacheFixture(t)
	require.NoError(t, c.CachePages(t.Context()))
	for _, p := range f.nav.Pages() {
		assert.FileExists(t, c.Path(p))
	}

	write(t, filepath.Join(f.content, "a.md"), "---\ncomponent: Bare\n---\nChanged")
	require.NoError(t, c.Refresh(t.Context(), filepath.Join(f.content, "style.css")))
	html, err := c.GetCachedPage(t.Context(), "/a")
	require.NoError(t, err)
	assert.Equal(t, "<body>A</body>", html)

	require.NoError(t, c.Refresh(t.Context(), filepath.Join(f.content, "a.md")))
	html, err = c.GetCachedPage(t.Context(), "/a")
	require.NoError(t, err)
	assert.Equal(t, "<body>Changed</body>", html)
}

func TestCache_Refresh_ReloadsTemplates(t *testing.T) {
	f, c := newCacheFixture(t)
	require.NoError(t, c.CachePages(t.Context()))

	write(t, filepath.Join(f.components, "Bare.tmpl"), `<body class="v2">{{ .content }}</body>`)
	require.NoError(t, c.Refresh(t.Context(), filepath.Join(f.components, "Bare.tmpl")))

	html, err := c.GetCachedPage(t.Context(), "/")
	require.NoError(t, err)
	assert.Equal(t, `<body class="v2">Home</body>`, html)
}

func TestCache_CachePages_SkipsFailingPages(t *testing.T) {
	f, c := newCacheFixture(t)
	write(t, filepath.Join(f.content, "a.md"), "---\ncomponent: Missing\n---\nA")

	require.NoError(t, c.CachePages(t.Context()))
	assert.FileExists(t, c.Path(f.nav.GetPage("/")))
	assert.NoFileExists(t, c.Path(f.nav.GetPage("/a")))
}

func TestCache_Disabled_RendersEveryTime(t *testing.T) {
	f, _ := newCacheFixture(t)
	c := NewCache(f.renderer, filepath.Join(t.TempDir(), "cache"), false)

	_, err := c.GetCachedPage(t.Context(), "/a")
	require.NoError(t, err)
	assert.NoDirExists(t, c.Dir())

	write(t, filepath.Join(f.content, "a.md"), "---\ncomponent: Bare\n---\nChanged")
	html, err := c.GetCachedPage(t.Context(), "/a")
	require.NoError(t, err)
	assert.Equal(t, "<body>Changed</body>", html)
}

func TestCache_GetCachedPage_UnknownAndSocial(t *testing.T) {
	_, c := newCacheFixture(t)

	html, err := c.GetCachedPage(t.Context(), "/nope")
	require.NoError(t, err)
	assert.Empty(t, html)

	html, err = c.GetCachedPage(t.Context(), "/guide/og-card.html")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>The Guide</h1>")

	html, err = c.GetCachedPage(t.Context(), "/og-card.html")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>index.md</h1>")
}

func TestIsRefreshPath(t *testing.T) {
	assert.True(t, IsRefreshPath("content/a.md"))
	assert.True(t, IsRefreshPath("components/Page.TMPL"))
	assert.True(t, IsRefreshPath("theme/x.html"))
	assert.False(t, IsRefreshPath("static/site.css"))
}
