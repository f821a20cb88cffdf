package search

import (
	"strings"

	"git.home.luguber.info/inful/docsite/internal/inflect"
)

const stopWordsEN = `a able about across after all almost also am among an and any are as at
be because been but by can cannot could dear did do does either else ever every for from
get got had has have he her hers him his how however i if in into is it its just least let
like likely may me might most must my neither no nor not of off often on only or other our
own rather said say says she should since so some than that the their them then there these
they this tis to too twas us wants was we were what when where which while who whom why will
with would yet you your`

const stopWordsES = `a al algo algunas algunos ante antes como con contra cual cuando de del
desde donde durante e el ella ellas ellos en entre era erais eran eras eres es esa esas ese
eso esos esta estaba estaban estado estamos estar estas este esto estos estoy fue fueron fui
fuimos ha habia han has hasta hay haya he hemos la las le les lo los me mi mis mucho muchos
muy mas nada ni no nos nosotras nosotros nuestra nuestras nuestro nuestros o os otra otras
otro otros para pero poco por porque que quien quienes se sea sean ser sera si sido siendo
sin sobre sois somos son soy su sus suya suyas suyo suyos tambien tanto te tiene tienen
tienes todo todos tu tus un una uno unos vosotras vosotros vuestra vuestras vuestro vuestros
y ya yo`

var stopWords = map[string]map[string]bool{
	"en": wordSet(stopWordsEN),
	"es": wordSet(stopWordsES),
}

func wordSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[inflect.Fold(w)] = true
	}
	return set
}

// StopWords returns the stop word set for lang, falling back to English.
// Words are folded.
func StopWords(lang string) map[string]bool {
	if set, ok := stopWords[lang]; ok {
		return set
	}
	return stopWords["en"]
}
