package components

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path"
	"strings"
)

// Extension is the file extension of component templates.
const Extension = ".tmpl"

// Source provides component templates. Lookup returns fs.ErrNotExist when
// the source has no template for name.
type Source interface {
	Lookup(name string) (src []byte, origin string, err error)
}

// FSSource serves the components under Prefix from a file system. A blank
// Prefix matches every name; "theme" only matches "theme.*" names.
type FSSource struct {
	Prefix string
	FS     fs.FS
	// Label identifies the source in errors and logs.
	Label string
}

// DirSource is an FSSource rooted at a folder on disk. A blank dir yields a
// source that never matches.
func DirSource(prefix, dir string) *FSSource {
	if dir == "" {
		return &FSSource{Prefix: prefix, Label: "(none)"}
	}
	return &FSSource{Prefix: prefix, FS: os.DirFS(dir), Label: dir}
}

// Lookup implements Source.
func (s *FSSource) Lookup(name string) ([]byte, string, error) {
	if s.FS == nil {
		return nil, "", fs.ErrNotExist
	}
	rel, ok := s.relPath(name)
	if !ok {
		return nil, "", fs.ErrNotExist
	}
	data, err := fs.ReadFile(s.FS, rel)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, "", fs.ErrNotExist
		}
		return nil, "", err
	}
	return data, path.Join(s.Label, rel), nil
}

// relPath maps "ui.Button" to "ui/Button.tmpl" after removing the prefix.
func (s *FSSource) relPath(name string) (string, bool) {
	if s.Prefix != "" {
		rest, found := strings.CutPrefix(name, s.Prefix+".")
		if !found {
			return "", false
		}
		name = rest
	}
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return "", false
	}
	return strings.ReplaceAll(name, ".", "/") + Extension, true
}
