package inflect

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	rxQuotes     = regexp.MustCompile(`['"’‘“”]+`)
	rxNonWord    = regexp.MustCompile(`[^\p{L}\p{N}_\s-]+`)
	rxDashSpaces = regexp.MustCompile(`[-\s]+`)
)

// Fold removes diacritics: "Español" -> "Espanol".
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify lowercases s, folds diacritics, drops quotes and collapses every
// other run of non alphanumeric characters into a single "-".
//
//	Slugify("Hello, World!") == "hello-world"
//	Slugify("1.1 Árbol") == "1-1-arbol"
func Slugify(s string) string {
	s = rxQuotes.ReplaceAllString(Fold(s), "")
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

// SlugifyUnicode keeps word characters (underscores included), removes
// punctuation in place and joins words with sep. It is the form used for
// heading anchors: "1<b>.</b>1" text "1.1" becomes "11".
func SlugifyUnicode(s, sep string) string {
	s = norm.NFKD.String(s)
	s = rxNonWord.ReplaceAllString(s, "")
	s = strings.ToLower(strings.TrimSpace(s))
	return rxDashSpaces.ReplaceAllString(s, sep)
}
