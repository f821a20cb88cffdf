package inflect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":     "hello-world",
		"guide":             "guide",
		"Árbol de Navidad":  "arbol-de-navidad",
		"It's a test":       "its-a-test",
		"  --spaced--  ":    "spaced",
		"1.1":               "1-1",
		"getting_started":   "getting-started",
		"CamelCase Title 2": "camelcase-title-2",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestSlugifyUnicode(t *testing.T) {
	assert.Equal(t, "11", SlugifyUnicode("1.1", "-"))
	assert.Equal(t, "too-deep", SlugifyUnicode("TOO Deep", "-"))
	assert.Equal(t, "level-2", SlugifyUnicode(" Level 2 ", "-"))
	assert.Equal(t, "snake_case", SlugifyUnicode("snake_case", "-"))
}

func TestCaseHelpers(t *testing.T) {
	assert.Equal(t, "DeviceType", Camelize("device_type"))
	assert.Equal(t, "device_type", Underscore("DeviceType"))
	assert.Equal(t, "Employee salary", Humanize("employee_salary"))
	assert.Equal(t, "Author", Humanize("author_id"))
	assert.Equal(t, "Employee Salary", Titleize("employee_salary"))
	assert.Equal(t, "donald-e-knuth", Parameterize("Donald E. Knuth", "-"))
	assert.Equal(t, "cafe", Parameterize("Café", "-"))
}

func TestOrdinalize(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 102: "102nd"}
	for n, want := range cases {
		assert.Equal(t, want, Ordinalize(n))
	}
	assert.Equal(t, "nd", Ordinal(22))
	assert.Equal(t, "th", Ordinal(111))
}

func TestPluralizeSingularize(t *testing.T) {
	pairs := [][2]string{
		{"post", "posts"},
		{"query", "queries"},
		{"box", "boxes"},
		{"person", "people"},
		{"child", "children"},
		{"sheep", "sheep"},
	}
	for _, p := range pairs {
		assert.Equal(t, p[1], Pluralize(p[0]), p[0])
		assert.Equal(t, p[0], Singularize(p[1]), p[1])
	}
	assert.Equal(t, "", Pluralize(""))
}

func TestWidont(t *testing.T) {
	assert.Equal(t, "Test   me&nbsp;out", Widont("Test   me   out"))
	assert.Equal(t, "It works with trailing spaces&nbsp;too  ", Widont("It works with trailing spaces too  "))
	assert.Equal(t, "no-effect", Widont("no-effect"))
}
