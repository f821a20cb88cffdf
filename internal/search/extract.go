// Package search extracts searchable sections from rendered pages and
// builds per-language inverted indexes for the client side search.
package search

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
)

const (
	startPage = "startpage"
	endPage   = "endpage"
)

// Doc is one searchable section of a page.
type Doc struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Raw    string `json:"raw,omitempty"`
	Parent string `json:"parent"`
	Loc    string `json:"loc"`
}

func set(tags ...string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return m
}

var (
	// Tags dropped from the body; their contents are kept.
	ignoreTags = set("a", "address", "article", "aside", "div", "fieldset", "figcaption",
		"footer", "header", "hgroup", "hr", "main", "section", "span", "srcset", "summary",
		"tbody", "thead")
	// Tags dropped together with their contents.
	ignoreContents = set("button", "dialog", "form", "iframe", "input", "nav", "script",
		"select", "style", "svg", "template", "textarea", "video")
	headerTags = set("h1", "h2", "h3", "h4", "h5", "h6")
	// Block tags that close the current section text.
	cutOn = set("address", "article", "aside", "blockquote", "div", "dl", "figure", "footer",
		"header", "h1", "h2", "h3", "h4", "h5", "h6", "ol", "p", "pre", "section", "table", "ul")

	rxSpaces  = regexp.MustCompile(`\s+`)
	rxNonText = regexp.MustCompile(`[^\p{L}\p{N}_./\-]|\s[._-]+|[._-]+\s|[._-]+$|^[._-]+|\s/\s`)

	bodyPolicy = newBodyPolicy()
)

// newBodyPolicy keeps the tags the extractor emits and nothing else.
func newBodyPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "pre", "code", "blockquote", "ul", "ol", "li", "dl", "dt", "dd",
		"table", "caption", "tr", "th", "td", "tfoot", "figure", "div", "em", "strong",
		"b", "i", "u", "s", "del", "ins", "mark", "sub", "sup", "kbd", "samp", "var",
		"small", "abbr", "cite", "q", "br")
	return p
}

type extractor struct {
	docs      []Doc
	pageTitle string
	baseLoc   string

	inPage   bool
	skip     int
	inPre    bool
	inCode   bool
	inHeader string

	sectionID string
	loc       string
	title     strings.Builder
	body      strings.Builder
	raw       strings.Builder
	next      int
}

// ExtractSections splits the part of a rendered page between the
// <!--startpage--> and <!--endpage--> markers into one Doc per heading
// delimited section. loc is the page URL and title the page title.
func ExtractSections(src, loc, title string) []Doc {
	e := &extractor{pageTitle: title, baseLoc: loc, next: 1}
	z := xhtml.NewTokenizer(strings.NewReader(src))
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			e.save()
			return e.docs
		case xhtml.CommentToken:
			switch strings.TrimSpace(string(z.Text())) {
			case startPage:
				e.inPage = true
			case endPage:
				e.save()
				e.inPage = false
			}
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			tok := z.Token()
			e.start(tok)
			if tt == xhtml.SelfClosingTagToken {
				e.end(tok.Data)
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			e.end(string(name))
		case xhtml.TextToken:
			e.text(string(z.Text()))
		}
	}
}

func (e *extractor) start(tok xhtml.Token) {
	if !e.inPage {
		return
	}
	tag := tok.Data
	if ignoreContents[tag] {
		e.skip++
		return
	}
	if e.skip > 0 || e.inHeader != "" {
		return
	}
	if tag == "section" {
		e.sectionID = attr(tok, "id")
	}
	if cutOn[tag] {
		e.save()
	}
	if ignoreTags[tag] {
		return
	}
	if headerTags[tag] {
		e.title.Reset()
		e.inHeader = tag
		e.loc = attr(tok, "id")
		if e.loc == "" {
			e.loc = e.sectionID
		}
		return
	}
	switch tag {
	case "pre":
		e.inPre = true
	case "code":
		e.inCode = true
	case "details":
		tag = "div"
	}
	e.body.WriteString("<" + tag + ">")
}

func (e *extractor) end(tag string) {
	if !e.inPage {
		return
	}
	if ignoreContents[tag] {
		if e.skip > 0 {
			e.skip--
		}
		return
	}
	if e.skip > 0 {
		return
	}
	if e.inHeader != "" {
		if tag == e.inHeader {
			e.inHeader = ""
		}
		return
	}
	if ignoreTags[tag] || headerTags[tag] {
		return
	}
	switch tag {
	case "pre":
		e.inPre = false
	case "code":
		e.inCode = false
	case "details":
		tag = "div"
	}
	e.body.WriteString("</" + tag + ">")
}

func (e *extractor) text(data string) {
	if !e.inPage || e.skip > 0 {
		return
	}
	escaped := html.EscapeString(data)
	if e.inHeader != "" {
		e.title.WriteString(escaped)
		return
	}
	if !e.inPre {
		escaped = rxSpaces.ReplaceAllString(escaped, " ")
	}
	if !e.inCode {
		data = rxNonText.ReplaceAllString(data, " ")
	}
	e.raw.WriteString(data)
	e.body.WriteString(escaped)
}

func (e *extractor) save() {
	raw := rxSpaces.ReplaceAllString(strings.TrimSpace(e.raw.String()), " ")
	body := strings.TrimSpace(e.body.String())
	e.raw.Reset()
	e.body.Reset()
	if raw == "" {
		return
	}

	title := rxSpaces.ReplaceAllString(strings.TrimSpace(e.title.String()), " ")
	parent := e.pageTitle
	if title == "" || title == e.pageTitle {
		title = e.pageTitle
		parent = ""
	}
	if title == body {
		return
	}

	loc := e.baseLoc
	if e.loc != "" {
		loc += "#" + e.loc
	}
	e.docs = append(e.docs, Doc{
		ID:     strconv.Itoa(e.next),
		Title:  title,
		Body:   bodyPolicy.Sanitize(body),
		Raw:    raw,
		Parent: parent,
		Loc:    loc,
	})
	e.next++
}

func attr(tok xhtml.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
