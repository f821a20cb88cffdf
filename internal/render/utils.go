package render

import (
	"text/template"
	"time"

	"git.home.luguber.info/inful/docsite/internal/inflect"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/thumbnail"
)

// Thumbnailer creates resized copies of static images.
type Thumbnailer interface {
	Thumb(src string, opts thumbnail.Options) (string, error)
}

func parameterize(s string, sep ...string) string {
	if len(sep) > 0 {
		return inflect.Parameterize(s, sep[0])
	}
	return inflect.Parameterize(s, "-")
}

// utilFuncs are the string helpers, available both as template functions
// ({{ slugify .meta.title }}) and through the utils variable.
func (r *Renderer) utilFuncs() map[string]any {
	return map[string]any{
		"camelize":     inflect.Camelize,
		"humanize":     inflect.Humanize,
		"ordinal":      inflect.Ordinal,
		"ordinalize":   inflect.Ordinalize,
		"parameterize": parameterize,
		"pluralize":    inflect.Pluralize,
		"slugify":      inflect.Slugify,
		"singularize":  inflect.Singularize,
		"titleize":     inflect.Titleize,
		"underscore":   inflect.Underscore,
		"widont":       inflect.Widont,
		"thumb":        r.thumb,
		"thumb_crop":   r.thumbCrop,
	}
}

func (r *Renderer) funcMap() template.FuncMap {
	funcs := template.FuncMap{
		"markdown": r.RenderMarkdown,
		"code":     r.code,
	}
	for name, fn := range r.utilFuncs() {
		funcs[name] = fn
	}
	return funcs
}

// utils is the per render utils variable. timestamp is fixed for the
// whole render so every asset URL of a page gets the same cache buster.
func (r *Renderer) utils() map[string]any {
	u := r.utilFuncs()
	u["timestamp"] = time.Now().UnixMilli()
	return u
}

func (r *Renderer) code(src string, lang ...string) (string, error) {
	l := ""
	if len(lang) > 0 {
		l = lang[0]
	}
	return markdown.Highlight(src, l, r.highlight)
}

// thumb accepts an optional width and height: {{ thumb "/static/a.png" 200 }}.
func (r *Renderer) thumb(src string, size ...int) (string, error) {
	return r.thumbnail(src, false, size)
}

func (r *Renderer) thumbCrop(src string, size ...int) (string, error) {
	return r.thumbnail(src, true, size)
}

func (r *Renderer) thumbnail(src string, crop bool, size []int) (string, error) {
	if r.thumbs == nil {
		return src, nil
	}
	opts := thumbnail.Options{Crop: crop}
	if len(size) > 0 {
		opts.Width = size[0]
	}
	if len(size) > 1 {
		opts.Height = size[1]
	}
	return r.thumbs.Thumb(src, opts)
}
