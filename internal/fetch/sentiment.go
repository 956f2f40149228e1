package fetch

import (
	"strings"
	"unicode"
)

// polarityLexicon maps opinion words to polarity weights in [-1, 1].
// Tuned for environmental reporting vocabulary.
var polarityLexicon = map[string]float64{
	// negative
	"illegal":       -0.8,
	"destruction":   -0.8,
	"destroyed":     -0.8,
	"devastating":   -0.9,
	"crisis":        -0.7,
	"catastrophe":   -0.9,
	"toxic":         -0.7,
	"pollution":     -0.6,
	"polluted":      -0.6,
	"deforestation": -0.6,
	"corruption":    -0.7,
	"corrupt":       -0.7,
	"threat":        -0.5,
	"threatened":    -0.5,
	"endangered":    -0.5,
	"loss":          -0.4,
	"dying":         -0.6,
	"dead":          -0.5,
	"concern":       -0.3,
	"concerned":     -0.3,
	"concerning":    -0.4,
	"worried":       -0.4,
	"bad":           -0.5,
	"worse":         -0.6,
	"worst":         -0.8,
	"fail":          -0.5,
	"failed":        -0.5,
	"greed":         -0.6,
	"smuggling":     -0.7,
	"poaching":      -0.7,
	"fires":         -0.4,
	"burning":       -0.4,

	// positive
	"protect":      0.5,
	"protected":    0.5,
	"protection":   0.5,
	"conservation": 0.4,
	"restored":     0.6,
	"restoration":  0.5,
	"recovery":     0.5,
	"promising":    0.6,
	"success":      0.7,
	"successful":   0.7,
	"hope":         0.4,
	"hopeful":      0.5,
	"good":         0.5,
	"great":        0.7,
	"better":       0.4,
	"improved":     0.5,
	"improving":    0.5,
	"thriving":     0.7,
	"sustainable":  0.4,
	"preserve":     0.4,
	"preserved":    0.4,
}

var negators = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"without": true,
}

// AnalyzeSentiment scores text polarity in [-1, 1] and subjectivity in
// [0, 1]. Polarity averages matched lexicon weights with single-token
// negation flipping; subjectivity is the matched-token fraction.
func AnalyzeSentiment(text string) (polarity, subjectivity float64) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0, 0
	}

	var sum float64
	matched := 0
	negate := false
	for _, tok := range tokens {
		if negators[tok] {
			negate = true
			continue
		}
		if w, ok := polarityLexicon[tok]; ok {
			if negate {
				w = -w
			}
			sum += w
			matched++
		}
		negate = false
	}

	if matched > 0 {
		polarity = sum / float64(matched)
	}
	subjectivity = float64(matched) / float64(len(tokens))
	if subjectivity > 1 {
		subjectivity = 1
	}
	return polarity, subjectivity
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
