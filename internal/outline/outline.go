// Package outline wraps the logical sections of an HTML fragment, as implied
// by its h1-h6 headings, and collects the page table of contents.
//
//	<h1>1</h1><p>a</p><h2>1.1</h2><p>b</p>
//
// becomes
//
//	<section class="section1" id="s-1"><h1>1</h1><p>a</p><section class="section2" id="s-11"><h2>1.1</h2><p>b</p></section></section>
package outline

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docsite/internal/inflect"
)

// Heading is one entry of the page table of contents.
type Heading struct {
	Level    int       `json:"level"`
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Children []Heading `json:"children"`
}

// Options control the generated section markup.
type Options struct {
	IDPrefix string
	// ClassFormat receives the heading level, e.g. "section%d".
	ClassFormat string
}

// DefaultOptions produce `<section class="sectionN" id="s-slug">`.
var DefaultOptions = Options{IDPrefix: "s", ClassFormat: "section%d"}

// Outline wraps src with DefaultOptions.
func Outline(src string) (string, []Heading, error) {
	return OutlineWith(src, DefaultOptions)
}

// OutlineWith parses src as a body fragment, nests a section around every
// top-level heading and what follows it until a heading of the same or a
// higher level, and returns the new markup with the nested heading tokens.
// Headings that are not direct children of the fragment still appear in
// the table of contents but are not wrapped.
func OutlineWith(src string, opts Options) (string, []Heading, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return "", nil, fmt.Errorf("outline: %w", err)
	}

	var flat []Heading
	for _, n := range nodes {
		collectHeadings(n, opts, &flat)
	}

	type frame struct {
		section *html.Node
		level   int
	}
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	var stack []frame
	appendTo := func(n *html.Node) {
		if len(stack) > 0 {
			stack[len(stack)-1].section.AppendChild(n)
			return
		}
		root.AppendChild(n)
	}

	for _, n := range nodes {
		level := headingLevel(n)
		if level == 0 {
			appendTo(n)
			continue
		}
		section := &html.Node{
			Type:     html.ElementNode,
			Data:     "section",
			DataAtom: atom.Section,
			Attr: []html.Attribute{
				{Key: "class", Val: fmt.Sprintf(opts.ClassFormat, level)},
				{Key: "id", Val: headingID(n, opts)},
			},
		}
		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		appendTo(section)
		section.AppendChild(n)
		stack = append(stack, frame{section: section, level: level})
	}

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", nil, fmt.Errorf("outline: %w", err)
		}
	}
	return strings.TrimSpace(buf.String()), Nest(flat), nil
}

// Nest turns a flat, document-ordered heading list into a tree: every
// heading becomes a child of the closest previous heading with a lower level.
func Nest(flat []Heading) []Heading {
	var nest func(i, parentLevel int) ([]Heading, int)
	nest = func(i, parentLevel int) ([]Heading, int) {
		out := []Heading{}
		for i < len(flat) && flat[i].Level > parentLevel {
			h := flat[i]
			h.Children, i = nest(i+1, h.Level)
			out = append(out, h)
		}
		return out, i
	}
	out, _ := nest(0, 0)
	return out
}

func collectHeadings(n *html.Node, opts Options, out *[]Heading) {
	if level := headingLevel(n); level > 0 {
		*out = append(*out, Heading{Level: level, ID: headingID(n, opts), Name: headingText(n)})
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHeadings(c, opts, out)
	}
}

func headingLevel(n *html.Node) int {
	if n.Type != html.ElementNode {
		return 0
	}
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	default:
		return 0
	}
}

func headingID(n *html.Node, opts Options) string {
	return opts.IDPrefix + "-" + inflect.SlugifyUnicode(headingText(n), "-")
}

func headingText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
