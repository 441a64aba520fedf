// Package features turns conversation documents into the numeric
// representations the classifiers train on: a shared tokenizer, a label
// encoder and a TF-IDF vectorizer. Fitted state is plain JSON so a model
// bundle can be reloaded by a different process.
package features

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Tokenize splits text into lowercase, accent-folded word tokens.
// Strategy:
// 1. Lowercase for case-insensitive matching
// 2. Decompose to NFD and drop combining marks (é -> e), since the
//    corpus mixes French spellings with unaccented transliterations
// 3. Split on anything that is not a letter or digit
// 4. Drop single-rune tokens, which are almost always noise
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	text = foldAccents(text)

	var tokens []string
	var current strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			appendToken(&tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		appendToken(&tokens, current.String())
	}
	return tokens
}

// Bigrams returns the adjacent token pairs of tokens, joined by a space.
func Bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	grams := make([]string, 0, len(tokens)-1)
	for i := 0; i+1 < len(tokens); i++ {
		grams = append(grams, tokens[i]+" "+tokens[i+1])
	}
	return grams
}

func appendToken(tokens *[]string, tok string) {
	if len([]rune(tok)) < 2 {
		return
	}
	*tokens = append(*tokens, tok)
}

func foldAccents(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
