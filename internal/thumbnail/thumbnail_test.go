package thumbnail

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, imaging.Save(imaging.New(w, h, color.NRGBA{R: 200, A: 255}), path))
}

func TestGenerator_Thumb(t *testing.T) {
	static := t.TempDir()
	out := t.TempDir()
	writeImage(t, filepath.Join(static, "img", "photo.png"), 400, 200)
	g := New(static, out)

	tests := []struct {
		name  string
		opts  Options
		wantW int
		wantH int
	}{
		{"width only", Options{Width: 100}, 100, 50},
		{"height only", Options{Height: 50}, 100, 50},
		{"fit box", Options{Width: 100, Height: 100}, 100, 50},
		{"crop box", Options{Width: 100, Height: 100, Crop: true}, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, err := g.Thumb("/static/img/photo.png", tt.opts)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(url, URLPrefix))

			f, err := os.Open(filepath.Join(out, strings.TrimPrefix(url, URLPrefix)))
			require.NoError(t, err)
			defer f.Close()
			cfg, _, err := image.DecodeConfig(f)
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, cfg.Width)
			assert.Equal(t, tt.wantH, cfg.Height)
		})
	}
}

func TestGenerator_Thumb_SameURLForStaticAndRelativeSource(t *testing.T) {
	static := t.TempDir()
	writeImage(t, filepath.Join(static, "a.png"), 10, 10)
	g := New(static, t.TempDir())

	u1, err := g.Thumb("/static/a.png", Options{Width: 5})
	require.NoError(t, err)
	u2, err := g.Thumb("a.png", Options{Width: 5})
	require.NoError(t, err)
	assert.Equal(t, u1, u2)
}

func TestGenerator_Thumb_Errors(t *testing.T) {
	g := New(t.TempDir(), t.TempDir())

	_, err := g.Thumb("/static/missing.png", Options{Width: 5})
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))

	_, err = g.Thumb("/static/a.png", Options{})
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = g.Thumb("/static/../secret.png", Options{Width: 5})
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}
