// Package inflect holds the string helpers exposed to templates as utils:
// case conversions, English plural rules, slugs and typography tweaks.
package inflect

import (
	"regexp"
	"strconv"
	"strings"

	openapi "github.com/go-openapi/inflect"
)

var rxWidont = regexp.MustCompile(`\s+(\S+\s*)$`)

// Camelize converts "device_type" to "DeviceType".
func Camelize(s string) string { return openapi.Camelize(s) }

// Underscore converts "DeviceType" to "device_type".
func Underscore(s string) string { return openapi.Underscore(s) }

// Humanize converts "employee_salary" to "Employee salary" and drops a
// trailing "_id".
func Humanize(s string) string { return openapi.Humanize(s) }

// Titleize capitalizes every word: "employee_salary" -> "Employee Salary".
func Titleize(s string) string { return openapi.Titleize(s) }

// Pluralize returns the plural form of an English word: "post" -> "posts".
func Pluralize(word string) string { return openapi.Pluralize(word) }

// Singularize returns the singular form of an English word: "posts" -> "post".
func Singularize(word string) string { return openapi.Singularize(word) }

// Parameterize makes s usable in a URL: "Donald E. Knuth" -> "donald-e-knuth".
// Diacritics are folded first.
func Parameterize(s, sep string) string {
	return openapi.ParameterizeJoin(Fold(s), sep)
}

// Ordinalize returns n with its ordinal suffix: 1 -> "1st".
func Ordinalize(n int) string {
	return openapi.Ordinalize(strconv.Itoa(n))
}

// Ordinal returns the suffix for n: "st", "nd", "rd" or "th".
func Ordinal(n int) string {
	return strings.TrimPrefix(Ordinalize(n), strconv.Itoa(n))
}

// Widont joins the last two words with a non-breaking space so the final
// word never sits alone on a line.
func Widont(s string) string {
	return rxWidont.ReplaceAllString(s, "&nbsp;${1}")
}
