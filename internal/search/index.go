package search

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/inflect"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/nav"
)

// Indexed fields.
const (
	FieldTitle = "title"
	FieldBody  = "body"
)

// Index is an inverted index: term -> field -> doc ref -> term frequency.
type Index struct {
	Fields []string                             `json:"fields"`
	Docs   int                                  `json:"docs"`
	Terms  map[string]map[string]map[string]int `json:"terms"`
}

// Indexer builds the index of one language from its docs.
type Indexer interface {
	Index(lang string, docs map[string]Doc) (*Index, error)
}

// LangIndex is the search artifact of one language.
type LangIndex struct {
	Docs  map[string]Doc `json:"docs"`
	Index *Index         `json:"index"`
}

// PageHTML pairs a page with its rendered HTML.
type PageHTML struct {
	Page *nav.Page
	HTML string
}

// InvertedIndexer is the default Indexer. Terms are lowercased, folded and
// filtered through the language stop words. The body field indexes the
// plain text of a doc, not its HTML.
type InvertedIndexer struct{}

// NewIndexer returns the default Indexer.
func NewIndexer() *InvertedIndexer {
	return &InvertedIndexer{}
}

// Index implements Indexer.
func (InvertedIndexer) Index(lang string, docs map[string]Doc) (*Index, error) {
	stop := StopWords(lang)
	idx := &Index{
		Fields: []string{FieldTitle, FieldBody},
		Docs:   len(docs),
		Terms:  map[string]map[string]map[string]int{},
	}
	for ref, doc := range docs {
		idx.add(FieldTitle, ref, doc.Title, stop)
		idx.add(FieldBody, ref, doc.Raw, stop)
	}
	return idx, nil
}

func (idx *Index) add(field, ref, text string, stop map[string]bool) {
	for _, term := range Tokenize(text) {
		if stop[term] {
			continue
		}
		fields, ok := idx.Terms[term]
		if !ok {
			fields = map[string]map[string]int{}
			idx.Terms[term] = fields
		}
		refs, ok := fields[field]
		if !ok {
			refs = map[string]int{}
			fields[field] = refs
		}
		refs[ref]++
	}
}

// Tokenize splits text into lowercased, folded terms.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, inflect.Fold(strings.ToLower(w)))
	}
	return terms
}

// IndexPages extracts the docs of every searchable page, groups them by
// language and indexes each language. A page with meta "searchable: false"
// is skipped. Doc keys are "{page index}-{doc id}" and the "0" doc of a
// page holds its tags. The raw text of docs is dropped unless keepRaw.
func IndexPages(pages []PageHTML, indexer Indexer, keepRaw bool, logger *slog.Logger) (map[string]*LangIndex, error) {
	if logger == nil {
		logger = slog.Default()
	}
	grouped := map[string]map[string]Doc{}
	var langs []string
	for _, ph := range pages {
		p := ph.Page
		if searchable, ok := p.Meta["searchable"].(bool); ok && !searchable {
			continue
		}
		docs, ok := grouped[p.Lang]
		if !ok {
			docs = map[string]Doc{}
			grouped[p.Lang] = docs
			langs = append(langs, p.Lang)
		}
		prefix := strconv.Itoa(p.Index) + "-"
		for _, doc := range pageDocs(p, ph.HTML) {
			docs[prefix+doc.ID] = doc
		}
	}

	out := make(map[string]*LangIndex, len(grouped))
	for _, lang := range langs {
		docs := grouped[lang]
		logger.Info("Indexing pages", logfields.Lang(lang), logfields.Count(len(docs)))
		idx, err := indexer.Index(lang, docs)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryBuild, "failed to index pages").
				WithContext("lang", lang).
				Build()
		}
		if !keepRaw {
			for ref, doc := range docs {
				doc.Raw = ""
				docs[ref] = doc
			}
		}
		out[lang] = &LangIndex{Docs: docs, Index: idx}
	}
	return out, nil
}

func pageDocs(p *nav.Page, src string) []Doc {
	docs := ExtractSections(src, p.URL, p.Title)
	tags := pageTags(p.Meta["tags"])
	if len(tags) == 0 {
		return docs
	}
	raw := make([]string, len(tags))
	for i, tag := range tags {
		raw[i] = "#" + tag
	}
	return append(docs, Doc{
		ID:    "0",
		Title: p.Title,
		Raw:   strings.Join(raw, " "),
		Loc:   p.URL,
	})
}

func pageTags(v any) []string {
	switch tags := v.(type) {
	case string:
		return strings.Fields(tags)
	case []string:
		return tags
	case []any:
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			out = append(out, fmt.Sprint(t))
		}
		return out
	}
	return nil
}

// FileName is the name of the search artifact of lang.
func FileName(lang string) string {
	return "search-" + lang + ".json"
}

// Write stores every index as dir/search-{lang}.json and returns the
// written paths sorted.
func Write(dir string, indexes map[string]*LangIndex) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create search folder").
			WithContext("path", dir).
			Build()
	}
	paths := make([]string, 0, len(indexes))
	for lang, idx := range indexes {
		data, err := json.Marshal(idx)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryInternal, "failed to encode search index").
				WithContext("lang", lang).
				Build()
		}
		path := filepath.Join(dir, FileName(lang))
		if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // public search artifact
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to write search index").
				WithContext("path", path).
				Build()
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}
