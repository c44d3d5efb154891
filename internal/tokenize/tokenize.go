package tokenize

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// wordRe matches a maximal run of Unicode letters, digits or underscore.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Lower folds text to lower case using Unicode rules.
func Lower(text string) string {
	// a Caser is not safe for concurrent use
	return cases.Lower(language.Und).String(text)
}

// Tokenize lower-cases text and returns its word tokens in order of
// appearance. Punctuation and whitespace only separate tokens.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return wordRe.FindAllString(Lower(text), -1)
}
