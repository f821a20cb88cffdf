// Package normalization maps loosely written configuration strings onto
// typed enum values.
package normalization

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Enum normalizes raw strings to values of T. Keys are matched after
// trimming and lower casing.
type Enum[T comparable] struct {
	name   string
	values map[string]T
	keys   []string
}

// NewEnum creates a normalizer for the enum called name.
func NewEnum[T comparable](name string, values map[string]T) *Enum[T] {
	e := &Enum[T]{name: name, values: make(map[string]T, len(values))}
	for k, v := range values {
		key := clean(k)
		e.values[key] = v
		e.keys = append(e.keys, key)
	}
	sort.Strings(e.keys)
	return e
}

// Normalize returns the value for raw, or fallback when raw is blank.
// Unknown values are a validation error listing the accepted keys.
func (e *Enum[T]) Normalize(raw string, fallback T) (T, error) {
	key := clean(raw)
	if key == "" {
		return fallback, nil
	}
	if v, ok := e.values[key]; ok {
		return v, nil
	}
	var zero T
	return zero, errors.ValidationError(fmt.Sprintf("invalid %s %q (expected one of %s)", e.name, raw, strings.Join(e.keys, ", "))).
		WithContext("value", raw).
		UserAction().
		Build()
}

// Keys returns the accepted keys in sorted order.
func (e *Enum[T]) Keys() []string {
	return append([]string(nil), e.keys...)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
