package nav

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

const indexFile = "index.md"

// PagesInFolder builds a page tree from the Markdown files under dir.
// Entries are sorted by name, an index.md moves to the front of its
// folder and every sub-folder with pages becomes a section named after it.
// Hidden entries and entries starting with "_" are skipped.
func PagesInFolder(dir string) ([]any, error) {
	return listPages(dir, "")
}

func listPages(dir, prefix string) ([]any, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b os.DirEntry) int { return strings.Compare(a.Name(), b.Name()) })

	items := []any{}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		rel := path.Join(prefix, name)
		if entry.IsDir() {
			children, err := listPages(filepath.Join(dir, name), rel)
			if err != nil {
				return nil, err
			}
			if len(children) > 0 {
				items = append(items, Section{Title: name, Items: children})
			}
			continue
		}
		if strings.HasSuffix(name, ".md") {
			items = append(items, rel)
		}
	}

	index := path.Join(prefix, indexFile)
	if i := slices.Index(items, any(index)); i > 0 {
		items = slices.Delete(items, i, i+1)
		items = slices.Insert(items, 0, any(index))
	}
	return items, nil
}
