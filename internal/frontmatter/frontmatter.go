package frontmatter

import (
	"bytes"
	stderrors "errors"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Format identifies the front matter dialect of a document.
type Format int

const (
	FormatNone Format = iota
	FormatYAML
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "none"
	}
}

func (f Format) delimiter() string {
	if f == FormatTOML {
		return "+++"
	}
	return "---"
}

// Split separates front matter from the Markdown body. YAML front matter is
// delimited by `---` lines and TOML front matter by `+++` lines. Leading
// whitespace before the opening delimiter is ignored.
//
// If the document does not start with a delimiter, format is FormatNone and
// body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, format Format, err error) {
	trimmed := bytes.TrimLeft(content, " \t\r\n")
	nl := detectNewline(trimmed)

	switch {
	case bytes.HasPrefix(trimmed, []byte("---"+nl)):
		format = FormatYAML
	case bytes.HasPrefix(trimmed, []byte("+++"+nl)):
		format = FormatTOML
	default:
		return nil, content, FormatNone, nil
	}

	delim := format.delimiter()
	start := len(delim) + len(nl)
	rest := trimmed[start:]
	if bytes.HasPrefix(rest, []byte(delim+nl)) {
		return []byte{}, rest[len(delim)+len(nl):], format, nil
	}

	closeSeq := []byte(nl + delim)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return nil, nil, FormatNone, ErrMissingClosingDelimiter
	}
	frontmatter = rest[:idx+len(nl)]
	body = rest[idx+len(closeSeq):]
	body = bytes.TrimPrefix(body, []byte(nl))
	return frontmatter, body, format, nil
}

// Parse parses raw front matter (without delimiters) in the given format.
func Parse(frontmatter []byte, format Format) (map[string]any, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(frontmatter)
	case FormatTOML:
		return ParseTOML(frontmatter)
	default:
		return map[string]any{}, nil
	}
}

// ParseYAML parses raw YAML front matter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// ParseTOML parses raw TOML front matter (without +++ delimiters) into a map.
func ParseTOML(frontmatter []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return fields, nil
	}
	if err := toml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Load reads a Markdown file and returns its body and metadata. A malformed
// header is reported as an InvalidFrontMatter error naming the file.
func Load(path string) (string, map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read content file").
			WithContext("file", path).
			Build()
	}
	return Decode(path, content)
}

// Decode splits and parses content read from name.
func Decode(name string, content []byte) (string, map[string]any, error) {
	fm, body, format, err := Split(content)
	if err != nil {
		return "", nil, errors.InvalidFrontMatter(name, err)
	}
	meta, err := Parse(fm, format)
	if err != nil {
		return "", nil, errors.InvalidFrontMatter(name, err)
	}
	return string(body), meta, nil
}

// ErrMissingClosingDelimiter indicates the document started with a front
// matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = stderrors.New("frontmatter start delimiter found but closing delimiter is missing")

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
