package preview

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/thumbnail"
)

// StaticFiles serves the static folder under URL. Thumbnails are looked up
// in the thumbnail folder first. It also resolves static URLs to files for
// the builder.
type StaticFiles struct {
	URL          string
	Dir          string
	ThumbnailDir string
}

// ResolveFile returns the file served for url.
func (s StaticFiles) ResolveFile(url string) (string, bool) {
	url, _, _ = strings.Cut(url, "?")
	rel, ok := strings.CutPrefix(url, s.URL+"/")
	if !ok || rel == "" {
		return "", false
	}
	if thumb, ok := strings.CutPrefix(url, thumbnail.URLPrefix); ok && s.ThumbnailDir != "" {
		if path, ok := fileIn(s.ThumbnailDir, thumb); ok {
			return path, true
		}
	}
	if s.Dir == "" {
		return "", false
	}
	return fileIn(s.Dir, rel)
}

func fileIn(dir, rel string) (string, bool) {
	clean := filepath.Clean("/" + rel)
	path := filepath.Join(dir, filepath.FromSlash(clean))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// ServeHTTP implements http.Handler.
func (s StaticFiles) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, ok := s.ResolveFile(r.URL.Path)
	if !ok {
		notFound(w, r.URL.Path)
		return
	}
	http.ServeFile(w, r, path)
}

func notFound(w http.ResponseWriter, path string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(path + " not found"))
}
