package frontmatter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, format, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, FormatNone, format)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\nkey: value\n---\n# Title\n")

	fm, body, format, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_TOMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("+++\ntitle = \"Hi\"\n+++\nBody\n")

	fm, body, format, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, FormatTOML, format)
	require.Equal(t, []byte("title = \"Hi\"\n"), fm)
	require.Equal(t, []byte("Body\n"), body)
}

func TestSplit_LeadingBlankLines_Ignored(t *testing.T) {
	fm, body, format, err := Split([]byte("\n\n---\na: 1\n---\nx"))
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)
	require.Equal(t, []byte("a: 1\n"), fm)
	require.Equal(t, []byte("x"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, format, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.Error(t, err)
	require.Equal(t, FormatNone, format)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, _, err := Split([]byte("---\r\nkey: value\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.Equal(t, []byte("key: value\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyFrontmatterBlock_SplitsWithEmptyFrontmatter(t *testing.T) {
	fm, body, format, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestParseYAML_ValidYAML_ReturnsMap(t *testing.T) {
	fields, err := ParseYAML([]byte("slug: abc\ntags:\n  - one\n"))
	require.NoError(t, err)
	require.Equal(t, "abc", fields["slug"])
	require.Equal(t, []any{"one"}, fields["tags"])
}

func TestParseYAML_Empty_ReturnsEmptyMap(t *testing.T) {
	fields, err := ParseYAML(nil)
	require.NoError(t, err)
	require.Empty(t, fields)
}

func TestParseTOML_ValidTOML_ReturnsMap(t *testing.T) {
	fields, err := ParseTOML([]byte("title = \"Guide\"\nsearchable = false\n"))
	require.NoError(t, err)
	require.Equal(t, "Guide", fields["title"])
	require.Equal(t, false, fields["searchable"])
}

func TestDecode_InvalidYAML_InvalidFrontMatterError(t *testing.T) {
	_, _, err := Decode("broken.md", []byte("---\n: not yaml\n---\nbody"))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryFrontMatter))
	require.Contains(t, err.Error(), "broken.md")
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.md")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: Page\n---\n# Heading\n"), 0o600))

	body, meta, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "# Heading\n", body)
	require.Equal(t, map[string]any{"title": "Page"}, meta)
}
