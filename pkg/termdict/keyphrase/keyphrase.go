// Package keyphrase scores candidate n-gram phrases against the text they
// were drawn from.
package keyphrase

import "context"

// Keyword is a candidate phrase with its relevance score.
type Keyword struct {
	Phrase string
	Score  float64
}

// Options configures one extraction call.
type Options struct {
	NgramMin int
	NgramMax int
	// StopWords are removed before n-grams are built.
	StopWords []string
	// Language adds the bundled stop words for the tag ("english").
	Language  string
	UseMMR    bool
	Diversity float64
	TopN      int
}

// DefaultOptions returns bigram/trigram extraction with MMR at diversity
// 0.7 and 30 results, using English stop words.
func DefaultOptions() Options {
	return Options{
		NgramMin:  2,
		NgramMax:  3,
		Language:  "english",
		UseMMR:    true,
		Diversity: 0.7,
		TopN:      30,
	}
}

// Extractor returns scored phrases for a text. Result order is by score,
// highest first.
type Extractor interface {
	Extract(ctx context.Context, text string, opts Options) ([]Keyword, error)
}
