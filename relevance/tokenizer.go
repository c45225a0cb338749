package relevance

import (
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// punctuation is the fixed set of characters stripped before tokenizing.
const punctuation = "~!@#$%^&*()_+{}:\"|<>?`-=[];'\\,./"

// Tokenize splits text into the set of words the relevance model scores on:
// punctuation replaced with spaces, lowercased, words of three characters or
// fewer discarded, each distinct word counted once regardless of frequency.
func Tokenize(text string) []string {
	text = strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return ' '
		}
		return r
	}, text)

	words := strings.Fields(strings.ToLower(text))
	words = lo.Filter(words, func(word string, _ int) bool {
		// Character count, not byte count, so short accented words are
		// discarded like their ASCII counterparts.
		return utf8.RuneCountInString(word) > 3
	})

	return lo.Uniq(words)
}
