package nav

import (
	"encoding/json"

	"git.home.luguber.info/inful/docsite/internal/outline"
)

// TOCEntry is a table of contents node: a leaf {URL, Title} or a section
// {"", Title, Children}. It marshals to the compact array form
// [url|null, title, children|null].
type TOCEntry struct {
	URL      string
	Title    string
	Children []TOCEntry
}

// IsSection reports whether the entry groups other entries without a page of its own.
func (e TOCEntry) IsSection() bool {
	return e.URL == ""
}

// MarshalJSON implements json.Marshaler.
func (e TOCEntry) MarshalJSON() ([]byte, error) {
	var url any
	if e.URL != "" {
		url = e.URL
	}
	var children any
	if e.Children != nil {
		children = e.Children
	}
	return json.Marshal([]any{url, e.Title, children})
}

// PageNav is the navigation context of one render.
type PageNav struct {
	Page      *Page
	PrevPage  *Page
	NextPage  *Page
	TOC       []TOCEntry
	PageTOC   []TOCEntry
	Languages []Language
	BaseURL   string
}

// GetPageTOC converts the headings found in one page into TOC entries
// pointing at their anchors. Children are never nil.
func GetPageTOC(headings []outline.Heading) []TOCEntry {
	out := make([]TOCEntry, 0, len(headings))
	for _, h := range headings {
		out = append(out, TOCEntry{
			URL:      "#" + h.ID,
			Title:    h.Name,
			Children: GetPageTOC(h.Children),
		})
	}
	return out
}
