package build

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// FileResolver finds the file served for a static URL. The dev server
// static handler implements it, so assets that only exist there (like
// generated thumbnails) can be copied into the build.
type FileResolver interface {
	ResolveFile(url string) (path string, ok bool)
}

var rxAbsURL = regexp.MustCompile(`(?i)(\s)(src|href|data-[a-z0-9_-]+)\s*=\s*['"](/(?:[a-z0-9_-][^'"]*)?)['"]`)

// fixURLs rewrites root-relative URLs in the attributes of every start
// tag so the page works from filename inside the build folder. Every other
// byte is copied untouched. Rewritten URLs are relative and never match
// again, so running it twice is a no-op.
func (b *Builder) fixURLs(src, filename string, rep *Report) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var out strings.Builder
	out.Grow(len(src))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return out.String()
		}
		raw := z.Raw()
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(raw)
			continue
		}
		out.WriteString(rxAbsURL.ReplaceAllStringFunc(string(raw), func(m string) string {
			sub := rxAbsURL.FindStringSubmatch(m)
			url := b.fixURL(sub[3], filename, rep)
			b.logger.Debug("Rewrote URL", logfields.URL(sub[3]), logfields.Target(url))
			return sub[1] + sub[2] + `="` + url + `"`
		}))
	}
}

func (b *Builder) fixURL(url, filename string, rep *Report) string {
	if b.isStatic(url) {
		url = b.materialize(url, rep)
		if b.opts.RelativizeStatic {
			url = relativeURL(url, filename)
		}
		return url
	}
	path, suffix := url, ""
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		path, suffix = url[:i], url[i:]
	}
	path = relativeURL(path, filename)
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path + suffix
}

func (b *Builder) isStatic(url string) bool {
	return url == b.opts.StaticURL || strings.HasPrefix(url, b.opts.StaticURL+"/")
}

// materialize drops the query of a static URL and makes sure the file is
// in the build static folder, copying it from the resolver when missing.
func (b *Builder) materialize(url string, rep *Report) string {
	url, _, _ = strings.Cut(url, "?")
	rel := strings.TrimPrefix(strings.TrimPrefix(url, b.opts.StaticURL), "/")
	if rel == "" {
		return url
	}
	target := filepath.Join(b.staticOut, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, b.staticOut+string(filepath.Separator)) {
		return url
	}
	if _, err := os.Stat(target); err == nil {
		return url
	}

	var src string
	ok := false
	if b.resolver != nil {
		src, ok = b.resolver.ResolveFile(url)
	}
	if !ok {
		b.logger.Error("Static file not found", logfields.URL(url))
		rep.Missing = append(rep.Missing, url)
		return url
	}
	if err := copyFile(src, target); err != nil {
		b.logger.Error("Failed to copy static file", logfields.URL(url), logfields.Error(err))
		rep.Missing = append(rep.Missing, url)
		return url
	}
	b.logger.Debug("Materialized static file", logfields.URL(url), logfields.Path(target))
	rep.Materialized = append(rep.Materialized, url)
	return url
}

// relativeURL makes a root-relative url relative to the folder of
// filename: "/a" from "guide/index.html" is "../a".
func relativeURL(url, filename string) string {
	depth := strings.Count(strings.TrimSuffix(filename, "index.html"), "/")
	out := strings.Repeat("../", depth) + strings.TrimPrefix(url, "/")
	if !strings.HasPrefix(out, ".") {
		out = "./" + out
	}
	return out
}
