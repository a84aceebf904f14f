// Package insights derives spending analytics from a user's transaction
// history: keyword extraction from descriptions, a normalized category-weight
// vector, cosine similarity against a reference budget profile, and the
// composition of the final insight list.
package insights

import (
	"strings"
	"unicode"
)

// stopWords are dropped during tokenization: articles, prepositions and
// pronouns that carry no spending signal.
var stopWords = map[string]struct{}{
	"the": {}, "at": {}, "in": {}, "on": {}, "for": {}, "to": {},
	"and": {}, "a": {}, "of": {}, "via": {}, "with": {}, "my": {},
	"is": {}, "it": {},
}

// Tokenize turns free-text transaction descriptions into normalized keyword
// tokens: lower-cased, punctuation stripped, split on whitespace, with stop
// words and tokens of length <= 2 removed. Token order follows the input;
// nothing is stemmed. Empty input yields an empty slice.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			return unicode.ToLower(r)
		default:
			return -1
		}
	}, text)

	var tokens []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}
