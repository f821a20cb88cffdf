package markdown

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlight renders code as a highlighted <pre> block. Unknown languages
// fall back to plain text. The output has its template delimiters escaped
// like any other code block.
func Highlight(code, lang string, opts Options) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(opts.Style)
	if style == nil {
		style = styles.Fallback
	}
	if opts.TabWidth <= 0 {
		opts.TabWidth = DefaultOptions.TabWidth
	}

	iterator, err := lexer.Tokenise(nil, Dedent(strings.Trim(code, "\n")))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := chromahtml.New(formatOptions(opts)...).Format(&b, style, iterator); err != nil {
		return "", err
	}
	return EscapeCodeBraces(b.String()), nil
}
