package search

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/nav"
)

const guideHTML = `<html><body><nav>menu</nav><!--startpage-->
<section class="section1" id="s-guide"><h1>Guide</h1>
<p>Hello <b>world</b>.</p>
<section class="section2" id="s-install"><h2>Install</h2>
<p>Run it</p><script>track()</script>
</section></section>
<!--endpage--><footer>foot</footer></body></html>`

func TestExtractSections_SplitsOnHeadings(t *testing.T) {
	docs := ExtractSections(guideHTML, "/guide", "Guide")

	require.Len(t, docs, 2)
	assert.Equal(t, Doc{
		ID:     "1",
		Title:  "Guide",
		Body:   "<p>Hello <b>world</b>.</p>",
		Raw:    "Hello world",
		Parent: "",
		Loc:    "/guide#s-guide",
	}, docs[0])
	assert.Equal(t, Doc{
		ID:     "2",
		Title:  "Install",
		Body:   "<p>Run it</p>",
		Raw:    "Run it",
		Parent: "Guide",
		Loc:    "/guide#s-install",
	}, docs[1])
}

func TestExtractSections_OutsideMarkersIgnored(t *testing.T) {
	docs := ExtractSections(`<p>before</p><!--startpage--><p>inside</p><!--endpage--><p>after</p>`, "/x", "X")

	require.Len(t, docs, 1)
	assert.Equal(t, "inside", docs[0].Raw)
	assert.Equal(t, "X", docs[0].Title)
	assert.Equal(t, "/x", docs[0].Loc)
}

func TestExtractSections_HeadingIDWins(t *testing.T) {
	docs := ExtractSections(`<!--startpage--><section id="s-a"><h2 id="custom">A</h2><p>text</p></section><!--endpage-->`, "/p", "Page")

	require.Len(t, docs, 1)
	assert.Equal(t, "/p#custom", docs[0].Loc)
	assert.Equal(t, "Page", docs[0].Parent)
}

func TestExtractSections_DropsIgnoredContents(t *testing.T) {
	docs := ExtractSections(`<!--startpage--><p>keep<button>Click</button><svg><text>icon</text></svg></p><form><input/>secret</form><!--endpage-->`, "/p", "Page")

	require.Len(t, docs, 1)
	assert.Equal(t, "keep", docs[0].Raw)
	assert.Equal(t, "<p>keep</p>", docs[0].Body)
}

func TestExtractSections_SkipsTitleOnlySections(t *testing.T) {
	docs := ExtractSections(`<!--startpage--><h1>Guide</h1>Guide<!--endpage-->`, "/g", "Guide")
	assert.Empty(t, docs)

	assert.Empty(t, ExtractSections(`<!--startpage--><h1>Empty</h1><!--endpage-->`, "/e", "E"))
}

func TestTokenize_LowercasesAndFolds(t *testing.T) {
	assert.Equal(t, []string{"arbol", "de", "navidad", "v1", "2"}, Tokenize("Árbol de Navidad, v1.2"))
}

func page(lang, url, title string, index int, meta map[string]any) *nav.Page {
	if meta == nil {
		meta = map[string]any{}
	}
	return &nav.Page{Lang: lang, URL: url, Title: title, Index: index, Meta: meta}
}

func TestIndexPages_KeysDocsPerPage(t *testing.T) {
	pages := []PageHTML{
		{Page: page("en", "/a", "A", 0, nil), HTML: `<!--startpage--><p>The first page</p><!--endpage-->`},
		{Page: page("en", "/b", "B", 1, map[string]any{"tags": []any{"go", "docs"}}), HTML: `<!--startpage--><p>Second page</p><!--endpage-->`},
		{Page: page("en", "/c", "C", 2, map[string]any{"searchable": false}), HTML: `<!--startpage--><p>hidden</p><!--endpage-->`},
		{Page: page("es", "/es/a", "A", 0, nil), HTML: `<!--startpage--><p>La primera página</p><!--endpage-->`},
	}

	out, err := IndexPages(pages, NewIndexer(), false, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)

	en := out["en"]
	require.NotNil(t, en)
	assert.Len(t, en.Docs, 3)
	assert.Contains(t, en.Docs, "0-1")
	assert.Contains(t, en.Docs, "1-1")
	require.Contains(t, en.Docs, "1-0")
	assert.Equal(t, "/b", en.Docs["1-0"].Loc)
	for _, doc := range en.Docs {
		assert.Empty(t, doc.Raw)
	}

	assert.Equal(t, map[string]int{"0-1": 1, "1-1": 1}, en.Index.Terms["page"][FieldBody])
	assert.Equal(t, map[string]int{"1-0": 1}, en.Index.Terms["go"][FieldBody])
	assert.NotContains(t, en.Index.Terms, "the")
	assert.NotContains(t, en.Index.Terms, "hidden")

	es := out["es"]
	require.NotNil(t, es)
	assert.Contains(t, es.Index.Terms, "pagina")
	assert.NotContains(t, es.Index.Terms, "la")
}

func TestIndexPages_KeepRaw(t *testing.T) {
	pages := []PageHTML{{Page: page("en", "/a", "A", 0, nil), HTML: `<!--startpage--><p>text</p><!--endpage-->`}}

	out, err := IndexPages(pages, NewIndexer(), true, nil)
	require.NoError(t, err)
	assert.Equal(t, "text", out["en"].Docs["0-1"].Raw)
}

func TestWrite_OneFilePerLanguage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "static")
	pages := []PageHTML{
		{Page: page("en", "/a", "A", 0, nil), HTML: `<!--startpage--><p>text</p><!--endpage-->`},
		{Page: page("es", "/es/a", "A", 0, nil), HTML: `<!--startpage--><p>texto</p><!--endpage-->`},
	}
	out, err := IndexPages(pages, NewIndexer(), false, nil)
	require.NoError(t, err)

	paths, err := Write(dir, out)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "search-en.json"), filepath.Join(dir, "search-es.json")}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "docs")
	assert.Contains(t, decoded, "index")
}
