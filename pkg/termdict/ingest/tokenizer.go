package ingest

import (
	"strings"
	"unicode"

	"github.com/cognicore/termdict/pkg/termdict/stoplist"
)

// Tokenizer handles text tokenization and normalization
type Tokenizer struct {
	stops *stoplist.Manager
}

// NewTokenizer creates a new tokenizer with the given stopword list
func NewTokenizer(stopwords []string) *Tokenizer {
	t := &Tokenizer{stops: stoplist.NewManager(nil)}
	for _, w := range stopwords {
		t.AddStopword(w)
	}
	return t
}

// Tokenize splits text into lowercase tokens, removing stopwords,
// one-letter words and pure numbers.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if word := t.processToken(current.String()); word != "" {
			tokens = append(tokens, word)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			current.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// NGrams returns the distinct n-grams of tokens with min <= n <= max,
// in order of first appearance.
func NGrams(tokens []string, min, max int) []string {
	if min < 1 {
		min = 1
	}
	seen := make(map[string]struct{})
	var out []string
	for n := min; n <= max; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			gram := strings.Join(tokens[i:i+n], " ")
			if _, ok := seen[gram]; ok {
				continue
			}
			seen[gram] = struct{}{}
			out = append(out, gram)
		}
	}
	return out
}

// processToken applies cleaning and stopword filtering.
func (t *Tokenizer) processToken(token string) string {
	word := t.cleanToken(token)
	if word == "" || len([]rune(word)) <= 1 {
		return ""
	}

	// Mixed tokens like "3-phase" or "dc2" are kept.
	if isNumericOnly(word) {
		return ""
	}

	if t.stops.IsStop(word) {
		return ""
	}

	return word
}

// cleanToken strips leading/trailing hyphens and normalizes consecutive hyphens
func (t *Tokenizer) cleanToken(token string) string {
	token = strings.Trim(token, "-")

	for strings.Contains(token, "--") {
		token = strings.ReplaceAll(token, "--", "-")
	}

	return token
}

// isNumericOnly returns true if the token contains only digits and hyphens.
func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}

// AddStopword adds a word to the stopword list
func (t *Tokenizer) AddStopword(word string) {
	t.stops.Add(strings.ToLower(word))
}
