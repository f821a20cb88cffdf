// Package nav builds the navigation of a documentation site from its page
// tree: the per-language flat page index used for prev/next links, the
// table of contents and the URL of every page.
package nav

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
	"git.home.luguber.info/inful/docsite/internal/inflect"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// DefaultLang is the language code used by single-language sites.
const DefaultLang = "en"

var (
	rxMarkdownH1 = regexp.MustCompile(`(^|\n)#\s+(?P<h1>[^\n]+)(\n|$)`)
	rxHTMLH1     = regexp.MustCompile(`(?i)<h1>(?P<h1>.+)</h1>`)
)

// Page is one content document.
type Page struct {
	Lang string `json:"lang"`
	// URL is the canonical absolute path, unique per language.
	URL string `json:"url"`
	// Filename is relative to the content root.
	Filename string `json:"filename"`
	Title    string `json:"title"`
	// Index is the position of the page in its language's flat page list.
	Index   int            `json:"index"`
	Section string         `json:"section"`
	Meta    map[string]any `json:"meta"`
}

// Exists reports whether p is a real page and not the empty sentinel.
func (p *Page) Exists() bool {
	return p != nil && p.URL != ""
}

// Language is one site language.
type Language struct {
	Code string `json:"code"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Section is a named group of page tree items.
type Section struct {
	Title string
	Items []any
}

// Tree is the page tree supplied by the author: either Items for a
// single-language site, or ByLang keyed by language code.
//
// An item is a filename string, a Section, a two element []any
// {title, []any{...}} or a single-key map[string]any{title: []any{...}}.
type Tree struct {
	Items  []any
	ByLang map[string][]any
}

// Options configure Build.
type Options struct {
	SiteURL string
	// Languages are the site languages in display order. Required when the
	// tree is keyed by language.
	Languages []Language
	Default   string
	Logger    *slog.Logger
}

// Nav is the navigation of a site. It is immutable once built and safe for
// concurrent use.
type Nav struct {
	contentRoot string
	siteURL     string
	defaultLang string
	langOrder   []string

	pages     map[string]*Page
	languages map[string]Language
	toc       map[string][]TOCEntry
	urls      map[string][]string
	maxIndex  map[string]int
	logger    *slog.Logger
}

// Build walks the page tree once, depth first and left to right, and
// indexes every page. Titles are read from the content files.
func Build(contentRoot string, tree Tree, opts Options) (*Nav, error) {
	if opts.Default == "" {
		opts.Default = DefaultLang
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	n := &Nav{
		contentRoot: contentRoot,
		siteURL:     normalizeSiteURL(opts.SiteURL),
		defaultLang: opts.Default,
		pages:       make(map[string]*Page),
		languages:   make(map[string]Language),
		toc:         make(map[string][]TOCEntry),
		urls:        make(map[string][]string),
		maxIndex:    make(map[string]int),
		logger:      opts.Logger,
	}

	var err error
	if tree.ByLang != nil {
		err = n.initMultiLanguage(tree.ByLang, opts.Languages)
	} else {
		err = n.initSingleLanguage(tree.Items)
	}
	if err != nil {
		return nil, err
	}

	n.logInitialStatus()
	return n, nil
}

func normalizeSiteURL(siteURL string) string {
	siteURL = strings.TrimSpace(siteURL)
	if siteURL == "" || siteURL == "/" {
		return "/"
	}
	return "/" + strings.Trim(siteURL, "/") + "/"
}

func (n *Nav) initMultiLanguage(byLang map[string][]any, languages []Language) error {
	if len(languages) == 0 {
		return errors.ConfigError("pages are keyed by language but no languages are configured").Build()
	}
	for _, lang := range languages {
		items, ok := byLang[lang.Code]
		if !ok {
			return errors.ConfigError(fmt.Sprintf("no pages configured for language %q", lang.Code)).
				WithContext("lang", lang.Code).
				Build()
		}
		lang.URL = n.languageURL(lang.Code)
		n.languages[lang.Code] = lang
		n.langOrder = append(n.langOrder, lang.Code)

		var toc []TOCEntry
		n.urls[lang.Code] = []string{}
		if err := n.indexPages(items, walk{lang: lang.Code, baseURL: lang.URL, root: lang.Code}, &toc); err != nil {
			return err
		}
		n.toc[lang.Code] = toc
		n.maxIndex[lang.Code] = len(n.urls[lang.Code]) - 1
	}
	return nil
}

func (n *Nav) initSingleLanguage(items []any) error {
	lang := n.defaultLang
	n.langOrder = []string{lang}
	n.urls[lang] = []string{}

	var toc []TOCEntry
	if err := n.indexPages(items, walk{lang: lang, baseURL: n.siteURL}, &toc); err != nil {
		return err
	}
	n.toc[lang] = toc
	n.maxIndex[lang] = len(n.urls[lang]) - 1
	return nil
}

func (n *Nav) languageURL(code string) string {
	if code == n.defaultLang {
		return n.siteURL
	}
	return n.siteURL + code + "/"
}

// walk is the state shared by one level of the recursive page tree walk.
type walk struct {
	lang         string
	baseURL      string
	root         string
	sectionTitle string
}

func (n *Nav) indexPages(items []any, w walk, toc *[]TOCEntry) error {
	for _, item := range items {
		switch it := item.(type) {
		case string:
			if err := n.indexPage(it, w, toc); err != nil {
				return err
			}
		default:
			section, ok := asSection(item)
			if !ok {
				return errors.InvalidNav(item)
			}
			if err := n.indexSection(section, w, toc); err != nil {
				return err
			}
		}
	}
	return nil
}

// asSection recognises the section shapes an author can write.
func asSection(item any) (Section, bool) {
	switch it := item.(type) {
	case Section:
		return it, true
	case []any:
		if len(it) != 2 {
			return Section{}, false
		}
		title, ok := it[0].(string)
		if !ok {
			return Section{}, false
		}
		children, ok := asItems(it[1])
		if !ok {
			return Section{}, false
		}
		return Section{Title: title, Items: children}, true
	case map[string]any:
		if len(it) != 1 {
			return Section{}, false
		}
		for title, value := range it {
			children, ok := asItems(value)
			if !ok {
				return Section{}, false
			}
			return Section{Title: title, Items: children}, true
		}
	}
	return Section{}, false
}

func asItems(v any) ([]any, bool) {
	switch vv := v.(type) {
	case []any:
		return vv, true
	case []string:
		items := make([]any, len(vv))
		for i, s := range vv {
			items[i] = s
		}
		return items, true
	case string:
		// A single filename is a one page section.
		return []any{vv}, true
	default:
		return nil, false
	}
}

func (n *Nav) indexPage(item string, w walk, toc *[]TOCEntry) error {
	filename := strings.Trim(path.Join(w.root, item), "/")
	source, meta, err := frontmatter.Load(filepath.Join(n.contentRoot, filepath.FromSlash(filename)))
	if err != nil {
		return err
	}

	title := stringMeta(meta, "title")
	delete(meta, "title")
	if title == "" {
		title = extractPageTitle(source)
	}
	if title == "" {
		title = path.Base(item)
	}

	slug := stringMeta(meta, "slug")
	if slug == "" {
		slug = item
	}
	url := w.baseURL + getURL(slug)

	if existing, dup := n.pages[url]; dup {
		return errors.NewError(errors.CategoryNav, "duplicate page URL "+url).
			Fatal().
			UserAction().
			WithContext("url", url).
			WithContext("file", filename).
			WithContext("other", existing.Filename).
			Build()
	}

	n.pages[url] = &Page{
		Lang:     w.lang,
		URL:      url,
		Filename: filename,
		Title:    title,
		Index:    len(n.urls[w.lang]),
		Section:  w.sectionTitle,
		Meta:     meta,
	}
	n.urls[w.lang] = append(n.urls[w.lang], url)
	*toc = append(*toc, TOCEntry{URL: url, Title: title})
	return nil
}

func (n *Nav) indexSection(section Section, w walk, toc *[]TOCEntry) error {
	title := strings.TrimSpace(section.Title)
	if title == "" {
		return errors.InvalidNav(section)
	}
	children := []TOCEntry{}
	w.sectionTitle = title
	if err := n.indexPages(section.Items, w, &children); err != nil {
		return err
	}
	*toc = append(*toc, TOCEntry{Title: title, Children: children})
	return nil
}

func stringMeta(meta map[string]any, key string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}

func extractPageTitle(source string) string {
	if m := rxMarkdownH1.FindStringSubmatch(source); m != nil {
		return m[rxMarkdownH1.SubexpIndex("h1")]
	}
	if m := rxHTMLH1.FindStringSubmatch(source); m != nil {
		return m[rxHTMLH1.SubexpIndex("h1")]
	}
	return ""
}

// getURL turns a filename (or slug) into a site relative URL:
// "guide/index.md" -> "guide/", "Getting Started.md" -> "getting-started".
func getURL(filename string) string {
	url := strings.Trim(filename, " /")
	url = strings.TrimSuffix(url, ".md")
	url = strings.TrimSuffix(url, "index")
	parts := strings.Split(url, "/")
	for i, part := range parts {
		parts[i] = inflect.Slugify(part)
	}
	return strings.Join(parts, "/")
}

// GetPage looks url up, then url + "/" so "/guide" finds "/guide/".
func (n *Nav) GetPage(url string) *Page {
	if p, ok := n.pages[url]; ok {
		return p
	}
	if p, ok := n.pages[url+"/"]; ok {
		return p
	}
	return nil
}

// GetPrev returns the page before p in its language, or the empty sentinel.
func (n *Nav) GetPrev(p *Page) *Page {
	if !p.Exists() || p.Index <= 0 {
		return &Page{}
	}
	urls := n.urls[n.langOf(p)]
	if p.Index > len(urls) {
		return &Page{}
	}
	return n.pages[urls[p.Index-1]]
}

// GetNext returns the page after p in its language, or the empty sentinel.
func (n *Nav) GetNext(p *Page) *Page {
	if !p.Exists() {
		return &Page{}
	}
	lang := n.langOf(p)
	if p.Index >= n.maxIndex[lang] {
		return &Page{}
	}
	return n.pages[n.urls[lang][p.Index+1]]
}

func (n *Nav) langOf(p *Page) string {
	if p.Lang != "" {
		return p.Lang
	}
	return n.defaultLang
}

// GetPageNav composes the render time view of p.
func (n *Nav) GetPageNav(p *Page) *PageNav {
	pn := &PageNav{
		Page:     p,
		PrevPage: n.GetPrev(p),
		NextPage: n.GetNext(p),
		TOC:      n.toc[n.langOf(p)],
		PageTOC:  []TOCEntry{},
		BaseURL:  n.siteURL,
	}
	if len(n.languages) > 0 {
		pn.BaseURL = n.languages[p.Lang].URL
		pn.Languages = n.Languages()
	}
	return pn
}

// Pages returns every page, languages in configuration order and pages in
// index order.
func (n *Nav) Pages() []*Page {
	out := make([]*Page, 0, len(n.pages))
	for _, lang := range n.langOrder {
		for _, url := range n.urls[lang] {
			out = append(out, n.pages[url])
		}
	}
	return out
}

// URLs returns the ordered page URLs of lang.
func (n *Nav) URLs(lang string) []string {
	return append([]string(nil), n.urls[lang]...)
}

// TOC returns the table of contents of lang.
func (n *Nav) TOC(lang string) []TOCEntry {
	return n.toc[lang]
}

// MaxIndex returns the last index of lang, -1 when it has no pages.
func (n *Nav) MaxIndex(lang string) int {
	if m, ok := n.maxIndex[lang]; ok {
		return m
	}
	return -1
}

// Languages returns the site languages in configuration order. It is empty
// for single-language sites.
func (n *Nav) Languages() []Language {
	if len(n.languages) == 0 {
		return nil
	}
	out := make([]Language, 0, len(n.langOrder))
	for _, code := range n.langOrder {
		out = append(out, n.languages[code])
	}
	return out
}

// LangCodes returns every indexed language code in order.
func (n *Nav) LangCodes() []string {
	return append([]string(nil), n.langOrder...)
}

// SiteURL returns the normalized site root, e.g. "/" or "/docs/".
func (n *Nav) SiteURL() string {
	return n.siteURL
}

// ContentRoot returns the folder page filenames are relative to.
func (n *Nav) ContentRoot() string {
	return n.contentRoot
}

func (n *Nav) logInitialStatus() {
	n.logger.Info("Navigation built",
		logfields.Count(len(n.pages)),
		slog.Any("languages", n.langOrder))
	if !n.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for name, v := range map[string]any{"pages": n.Pages(), "toc": n.toc, "languages": n.Languages()} {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			continue
		}
		n.logger.Debug("nav."+name, slog.String("data", string(data)))
	}
}
