package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// AutoPages is the scalar that asks for a page tree built from the content folder.
const AutoPages = "auto"

// Pages is the page tree as written by the author. It is either a flat
// list (single language), a mapping of language code to list, or "auto".
// Items stay untyped here; the nav package validates their shape.
type Pages struct {
	Auto   bool
	Items  []any
	ByLang map[string]LangPages
	// Order keeps the mapping order of ByLang.
	Order []string
}

// LangPages is the page tree of one language.
type LangPages struct {
	Auto  bool
	Items []any
}

// MultiLanguage reports whether the tree is keyed by language.
func (p Pages) MultiLanguage() bool {
	return p.ByLang != nil
}

// IsZero reports whether no pages were configured.
func (p Pages) IsZero() bool {
	return !p.Auto && p.Items == nil && p.ByLang == nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Pages) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		auto, err := decodeAuto(node)
		p.Auto = auto
		return err
	case yaml.SequenceNode:
		return node.Decode(&p.Items)
	case yaml.MappingNode:
		p.ByLang = make(map[string]LangPages, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			lang := node.Content[i].Value
			var lp LangPages
			value := node.Content[i+1]
			switch value.Kind {
			case yaml.ScalarNode:
				auto, err := decodeAuto(value)
				if err != nil {
					return err
				}
				lp.Auto = auto
			case yaml.SequenceNode:
				if err := value.Decode(&lp.Items); err != nil {
					return err
				}
			default:
				return fmt.Errorf("line %d: pages for %q must be a list or %q", value.Line, lang, AutoPages)
			}
			p.ByLang[lang] = lp
			p.Order = append(p.Order, lang)
		}
		return nil
	default:
		return fmt.Errorf("line %d: pages must be a list, a mapping of languages or %q", node.Line, AutoPages)
	}
}

func decodeAuto(node *yaml.Node) (bool, error) {
	if node.Tag == "!!null" {
		return false, nil
	}
	if node.Value != AutoPages {
		return false, fmt.Errorf("line %d: unexpected pages value %q", node.Line, node.Value)
	}
	return true, nil
}

// Language is one entry of the site languages, in configuration order.
type Language struct {
	Code string
	Name string
}

// Languages is an ordered `code: name` mapping.
type Languages []Language

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Languages) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: languages must be a mapping of code to name", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		*l = append(*l, Language{Code: node.Content[i].Value, Name: node.Content[i+1].Value})
	}
	return nil
}

// Map returns the languages as a code to name map.
func (l Languages) Map() map[string]string {
	m := make(map[string]string, len(l))
	for _, lang := range l {
		m[lang.Code] = lang.Name
	}
	return m
}
