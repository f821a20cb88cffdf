// Package components finds, parses and renders the text/template
// components that wrap page content. Components are looked up by name in
// an ordered list of sources; the first source that has the template wins.
package components

import (
	"bytes"
	"embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"sync"
	"text/template"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

//go:embed theme
var themeFS embed.FS

// ThemeSource returns the built-in theme, served under the "theme" prefix.
func ThemeSource() Source {
	sub, err := fs.Sub(themeFS, "theme")
	if err != nil {
		panic(err)
	}
	return &FSSource{Prefix: "theme", FS: sub, Label: "builtin:theme"}
}

// Renderer renders a named component with the given variables.
type Renderer interface {
	Render(name string, vars map[string]any) (string, error)
}

// Catalog is the default Renderer. Parsed templates are cached until Reset.
// It is safe for concurrent use.
type Catalog struct {
	sources []Source
	funcs   template.FuncMap
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string]*template.Template
}

// NewCatalog creates a catalog over sources, in lookup order. funcs are
// added to every template next to the built-in dict, json and component.
func NewCatalog(funcs template.FuncMap, logger *slog.Logger, sources ...Source) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		sources: sources,
		logger:  logger,
		cache:   make(map[string]*template.Template),
	}
	c.funcs = template.FuncMap{
		"dict":      Dict,
		"json":      toJSON,
		"component": c.component,
	}
	maps.Copy(c.funcs, funcs)
	return c
}

// Render implements Renderer.
func (c *Catalog) Render(name string, vars map[string]any) (string, error) {
	tpl, err := c.lookup(name)
	if err != nil {
		return "", err
	}
	return execute(tpl, name, vars)
}

// RenderSource parses src as an anonymous template and executes it. Used
// for the content pass; the result is not cached.
func (c *Catalog) RenderSource(name, src string, vars map[string]any) (string, error) {
	tpl, err := template.New(name).Funcs(c.funcs).Parse(src)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to parse content").
			WithContext("file", name).
			Build()
	}
	return execute(tpl, name, vars)
}

// Has reports whether any source provides name.
func (c *Catalog) Has(name string) bool {
	_, err := c.lookup(name)
	return err == nil
}

// Reset drops every parsed template so edits on disk are picked up.
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.cache)
	c.logger.Debug("Component cache cleared")
}

func (c *Catalog) lookup(name string) (*template.Template, error) {
	c.mu.RLock()
	tpl, ok := c.cache[name]
	c.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	for _, src := range c.sources {
		data, origin, err := src.Lookup(name)
		if stderrors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read component").
				WithContext("component", name).
				Build()
		}
		tpl, err = template.New(name).Funcs(c.funcs).Parse(string(data))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryRender, "failed to parse component").
				WithContext("component", name).
				WithContext("file", origin).
				Build()
		}
		c.logger.Debug("Component loaded", logfields.Component(name), logfields.File(origin))

		c.mu.Lock()
		c.cache[name] = tpl
		c.mu.Unlock()
		return tpl, nil
	}
	return nil, errors.RenderError("component not found: " + name).
		UserAction().
		WithContext("component", name).
		Build()
}

func (c *Catalog) component(name string, args ...any) (string, error) {
	vars, err := argsToVars(args)
	if err != nil {
		return "", fmt.Errorf("component %s: %w", name, err)
	}
	return c.Render(name, vars)
}

func execute(tpl *template.Template, name string, vars map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, vars); err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to render "+name).
			WithContext("component", name).
			Build()
	}
	return buf.String(), nil
}

// argsToVars accepts either one map or alternating key/value pairs.
func argsToVars(args []any) (map[string]any, error) {
	if len(args) == 1 {
		if m, ok := args[0].(map[string]any); ok {
			return m, nil
		}
	}
	return Dict(args...)
}

// Dict builds a map from alternating string keys and values.
func Dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, stderrors.New("dict expects an even number of arguments")
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}

func toJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
