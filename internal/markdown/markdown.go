// Package markdown converts Markdown content to HTML with goldmark and
// highlights code with chroma.
package markdown

import (
	"bytes"
	stdhtml "html"
	"regexp"
	"strconv"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Converter turns a Markdown document into an HTML fragment.
type Converter interface {
	Convert(src string) (string, error)
}

// Options controls the goldmark pipeline.
type Options struct {
	// Style is the chroma style used for inline styles. Ignored when
	// Classes is set.
	Style string
	// Classes emits CSS classes instead of inline styles.
	Classes     bool
	LineNumbers bool
	// TabWidth used by the code highlighter.
	TabWidth int
}

// DefaultOptions highlight with CSS classes, two space tabs and no line numbers.
var DefaultOptions = Options{Style: "github", Classes: true, TabWidth: 2}

// Goldmark is the default Converter: GFM (tables, strikethrough, task
// lists, autolinks), definition lists, footnotes, heading attributes and
// fenced code highlighting. Raw HTML passes through.
type Goldmark struct {
	md goldmark.Markdown
}

// New builds a goldmark converter.
func New(opts Options) *Goldmark {
	if opts.TabWidth <= 0 {
		opts.TabWidth = DefaultOptions.TabWidth
	}
	return &Goldmark{md: goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.DefinitionList,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle(opts.Style),
				highlighting.WithFormatOptions(formatOptions(opts)...),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)}
}

func formatOptions(opts Options) []chromahtml.Option {
	out := []chromahtml.Option{
		chromahtml.WithClasses(opts.Classes),
		chromahtml.TabWidth(opts.TabWidth),
	}
	if opts.LineNumbers {
		out = append(out, chromahtml.WithLineNumbers(true), chromahtml.LineNumbersInTable(false))
	}
	return out
}

// Convert implements Converter.
func (g *Goldmark) Convert(src string) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var (
	rxCode        = regexp.MustCompile(`(?s)<code[^>]*>.*?</code>`)
	rxAction      = regexp.MustCompile(`(?s)\{\{.*?\}\}`)
	rxPlaceholder = regexp.MustCompile(`DOCSITEACTION([0-9]+)X`)

	antiEscaper = strings.NewReplacer(
		"&amp;", "&",
		"&gt;", ">",
		"&lt;", "<",
		"&#39;", "'",
		"&#34;", `"`,
	)
	braceEscaper = strings.NewReplacer("{", "&#123;", "}", "&#125;")
)

// Render runs the full content pipeline on src: entities written by
// editors are unescaped, the block is dedented and trimmed, and converted.
// Template actions are swapped for placeholders during conversion so
// markdown never sees their quotes. Inside <code> they come back HTML
// escaped with their braces escaped, so the content template pass leaves
// code untouched.
func Render(c Converter, src string) (string, error) {
	src = antiEscaper.Replace(src)
	src = strings.TrimSpace(Dedent(strings.Trim(src, "\n")))
	src, actions := protectActions(src)
	out, err := c.Convert(src)
	if err != nil {
		return "", err
	}
	out = strings.TrimRight(out, "\n")
	out = strings.ReplaceAll(out, "<pre><span></span>", "<pre>")
	out = rxCode.ReplaceAllStringFunc(out, func(code string) string {
		return restoreActions(code, actions, stdhtml.EscapeString)
	})
	out = EscapeCodeBraces(out)
	return restoreActions(out, actions, nil), nil
}

func protectActions(src string) (string, []string) {
	var actions []string
	src = rxAction.ReplaceAllStringFunc(src, func(action string) string {
		actions = append(actions, action)
		return "DOCSITEACTION" + strconv.Itoa(len(actions)-1) + "X"
	})
	return src, actions
}

// restoreActions puts actions back, passed through escape when set.
func restoreActions(s string, actions []string, escape func(string) string) string {
	if len(actions) == 0 {
		return s
	}
	return rxPlaceholder.ReplaceAllStringFunc(s, func(ph string) string {
		i, err := strconv.Atoi(rxPlaceholder.FindStringSubmatch(ph)[1])
		if err != nil || i >= len(actions) {
			return ph
		}
		if escape != nil {
			return escape(actions[i])
		}
		return actions[i]
	})
}

// EscapeCodeBraces replaces "{" and "}" inside every <code> element with
// their numeric character references.
func EscapeCodeBraces(src string) string {
	return rxCode.ReplaceAllStringFunc(src, braceEscaper.Replace)
}

// StripParagraph removes one wrapping <p>...</p> pair. Each side is
// stripped independently when present.
func StripParagraph(src string) string {
	src = strings.TrimPrefix(src, "<p>")
	return strings.TrimSuffix(src, "</p>")
}
