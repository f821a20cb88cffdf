// Package thumbnail resizes images from the static folder on demand.
package thumbnail

import (
	"crypto/sha1" //nolint:gosec // file naming, not security
	"encoding/hex"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// URLPrefix is where generated thumbnails are served from.
const URLPrefix = "/static/thumbnails/"

// Options select the thumbnail geometry. A zero Width or Height keeps the
// aspect ratio. Crop fills the exact box instead of fitting inside it.
type Options struct {
	Width  int
	Height int
	Crop   bool
}

// Generator writes thumbnails of files under StaticDir into OutDir.
type Generator struct {
	StaticDir string
	OutDir    string

	mu sync.Mutex
}

// New creates a Generator.
func New(staticDir, outDir string) *Generator {
	return &Generator{StaticDir: staticDir, OutDir: outDir}
}

// Thumb returns the URL of a thumbnail of src, generating it when missing.
// src is a static URL ("/static/img/a.png") or a path relative to the
// static folder.
func (g *Generator) Thumb(src string, opts Options) (string, error) {
	if opts.Width < 0 || opts.Height < 0 || (opts.Width == 0 && opts.Height == 0) {
		return "", errors.ValidationError(fmt.Sprintf("invalid thumbnail size %dx%d", opts.Width, opts.Height)).
			WithContext("file", src).
			Build()
	}
	rel := strings.Trim(strings.TrimPrefix(strings.Trim(src, " /"), "static/"), "/")
	if rel == "" || strings.Contains(rel, "..") {
		return "", errors.ValidationError("invalid thumbnail source: " + src).Build()
	}

	name := FileName(rel, opts)
	dest := filepath.Join(g.OutDir, name)
	url := URLPrefix + name
	if _, err := os.Stat(dest); err == nil {
		return url, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, err := os.Stat(dest); err == nil {
		return url, nil
	}
	if err := g.generate(filepath.Join(g.StaticDir, filepath.FromSlash(rel)), dest, opts); err != nil {
		return "", err
	}
	return url, nil
}

func (g *Generator) generate(srcPath, dest string, opts Options) error {
	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to open image").
			WithContext("file", srcPath).
			Build()
	}
	format, err := imaging.FormatFromFilename(dest)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "unsupported image format").
			WithContext("file", srcPath).
			Build()
	}

	var out image.Image
	switch {
	case opts.Crop && opts.Width > 0 && opts.Height > 0:
		out = imaging.Fill(img, opts.Width, opts.Height, imaging.Center, imaging.Lanczos)
	case opts.Width > 0 && opts.Height > 0:
		out = imaging.Fit(img, opts.Width, opts.Height, imaging.Lanczos)
	default:
		out = imaging.Resize(img, opts.Width, opts.Height, imaging.Lanczos)
	}

	if err := os.MkdirAll(g.OutDir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create thumbnails folder").Build()
	}
	tmp, err := os.CreateTemp(g.OutDir, ".thumb-*")
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create thumbnail").Build()
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := imaging.Encode(tmp, out, format); err != nil {
		_ = tmp.Close()
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to encode thumbnail").
			WithContext("file", srcPath).
			Build()
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write thumbnail").Build()
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to store thumbnail").Build()
	}
	return nil
}

// FileName is "{hash}-{w}x{h}[c].{ext}" where hash identifies the source.
func FileName(rel string, opts Options) string {
	sum := sha1.Sum([]byte(rel)) //nolint:gosec // file naming, not security
	crop := ""
	if opts.Crop {
		crop = "c"
	}
	ext := strings.ToLower(path.Ext(rel))
	return fmt.Sprintf("%s-%dx%d%s%s", hex.EncodeToString(sum[:8]), opts.Width, opts.Height, crop, ext)
}
