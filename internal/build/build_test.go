package build

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/nav"
)

type fakeRenderer struct {
	fail string
}

func (f fakeRenderer) RenderPage(_ context.Context, p *nav.Page) (string, error) {
	if p.URL == f.fail {
		return "", errors.RenderError("boom").WithContext("url", p.URL).Build()
	}
	return fmt.Sprintf(`<html><body><!--startpage--><p>Text about %s</p><a href="/">home</a><!--endpage--></body></html>`, p.Title), nil
}

type mapResolver map[string]string

func (m mapResolver) ResolveFile(url string) (string, bool) {
	path, ok := m[url]
	return path, ok
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func testNav(t *testing.T) *nav.Nav {
	t.Helper()
	root := t.TempDir()
	write(t, filepath.Join(root, "index.md"), "# Home")
	write(t, filepath.Join(root, "guide", "index.md"), "# Guide")
	write(t, filepath.Join(root, "guide", "install.md"), "# Install")
	n, err := nav.Build(root, nav.Tree{Items: []any{"index.md", "guide/index.md", "guide/install.md"}}, nav.Options{})
	require.NoError(t, err)
	return n
}

func TestRelativeURL(t *testing.T) {
	tests := []struct {
		url, filename, want string
	}{
		{"/a", "index.html", "./a"},
		{"/", "index.html", "./"},
		{"/a", "guide/index.html", "../a"},
		{"/", "guide/install/index.html", "../../"},
		{"/static/x.css", "guide/index.html", "../static/x.css"},
	}
	for _, tt := range tests {
		t.Run(tt.url+" from "+tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, relativeURL(tt.url, tt.filename))
		})
	}
}

func TestFixURLs_RewritesAttributesOnly(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(t.TempDir(), "img.png")
	write(t, img, "png")

	b := New(nil, nil, Options{BuildDir: dir}).WithResolver(mapResolver{"/static/img.png": img})
	rep := &Report{}
	src := `<a href="/a">A</a><img src="/static/img.png?v=2"><script>var u = " href='/x'";</script>` +
		`<link rel="stylesheet" href="/static/missing.css"/><a href="https://x.org/">ext</a><div data-url="/guide/">`

	got := b.fixURLs(src, "guide/index.html", rep)

	assert.Equal(t, `<a href="../a/">A</a><img src="/static/img.png"><script>var u = " href='/x'";</script>`+
		`<link rel="stylesheet" href="/static/missing.css"/><a href="https://x.org/">ext</a><div data-url="../guide/">`, got)
	assert.Equal(t, []string{"/static/img.png"}, rep.Materialized)
	assert.Equal(t, []string{"/static/missing.css"}, rep.Missing)
	assert.FileExists(t, filepath.Join(dir, "static", "img.png"))

	assert.Equal(t, got, b.fixURLs(got, "guide/index.html", &Report{}))
}

func TestFixURLs_KeepsFragmentAndQuery(t *testing.T) {
	b := New(nil, nil, Options{BuildDir: t.TempDir()})
	src := `<a href="/guide/#intro">a</a><a href="/guide#intro">b</a><a href="/search?q=x">c</a>`

	got := b.fixURLs(src, "faq/index.html", &Report{})

	assert.Equal(t, `<a href="../guide/#intro">a</a><a href="../guide/#intro">b</a>`+
		`<a href="../search/?q=x">c</a>`, got)
	assert.Equal(t, got, b.fixURLs(got, "faq/index.html", &Report{}))
}

func TestFixURLs_RelativizeStatic(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "static", "site.css"), "body{}")

	b := New(nil, nil, Options{BuildDir: dir, RelativizeStatic: true})
	got := b.fixURLs(`<link href="/static/site.css?v=1">`, "index.html", &Report{})

	assert.Equal(t, `<link href="./static/site.css">`, got)
	assert.Equal(t, got, b.fixURLs(got, "index.html", &Report{}))
}

func TestBuild_WritesSite(t *testing.T) {
	out := filepath.Join(t.TempDir(), "build")
	static := t.TempDir()
	write(t, filepath.Join(static, "css", "site.css"), "body{}")

	rep, err := New(testNav(t), fakeRenderer{}, Options{
		BuildDir:    out,
		StaticDir:   static,
		Search:      true,
		WriteReport: true,
	}).Build(t.Context())
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, rep.Status)
	_, err = uuid.Parse(rep.BuildID)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.StaticFiles)
	assert.FileExists(t, filepath.Join(out, "static", "css", "site.css"))

	require.Len(t, rep.Pages, 3)
	assert.Equal(t, []string{"index.html", "guide/index.html", "guide/install/index.html"},
		[]string{rep.Pages[0].File, rep.Pages[1].File, rep.Pages[2].File})
	for _, p := range rep.Pages {
		assert.NotEmpty(t, p.Fingerprint)
	}

	html, err := os.ReadFile(filepath.Join(out, "guide", "install", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), `<a href="../../">home</a>`)

	data, err := os.ReadFile(filepath.Join(out, "static", "search-en.json"))
	require.NoError(t, err)
	var idx struct {
		Docs map[string]json.RawMessage `json:"docs"`
	}
	require.NoError(t, json.Unmarshal(data, &idx))
	assert.Len(t, idx.Docs, 3)
	assert.Equal(t, []string{filepath.Join(out, "static", "search-en.json")}, rep.Search)

	assert.FileExists(t, filepath.Join(out, ReportFile))
}

func TestBuild_MissingStaticFolderIsNotFatal(t *testing.T) {
	out := t.TempDir()
	rep, err := New(testNav(t), fakeRenderer{}, Options{
		BuildDir:  out,
		StaticDir: filepath.Join(out, "nope"),
	}).Build(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, rep.StaticFiles)
	assert.NoFileExists(t, filepath.Join(out, "static", "search-en.json"))
	assert.NoFileExists(t, filepath.Join(out, ReportFile))
}

func TestBuild_RenderErrorAborts(t *testing.T) {
	out := t.TempDir()
	rep, err := New(testNav(t), fakeRenderer{fail: "/guide/"}, Options{BuildDir: out}).Build(t.Context())

	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryRender))
	assert.Equal(t, StatusFailed, rep.Status)
	assert.Len(t, rep.Pages, 1)
	assert.NoFileExists(t, filepath.Join(out, "guide", "install", "index.html"))
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	rep, err := New(testNav(t), fakeRenderer{}, Options{BuildDir: t.TempDir()}).Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusCancelled, rep.Status)
	assert.Empty(t, rep.Pages)
}
