package glossary

import (
	"sort"
	"strings"

	"github.com/cognicore/termdict/pkg/termdict/keyphrase"
	"github.com/cognicore/termdict/pkg/termdict/stoplist"
)

// Term is one glossary entry.
type Term struct {
	Phrase string
	Score  float64
}

// Aggregator merges keyword lists into a term dictionary holding the best
// score per phrase. Phrases compare case-insensitively; the first-seen
// spelling is kept.
type Aggregator struct {
	fillers *stoplist.Manager
	index   map[string]int // lowercased phrase -> position in terms
	terms   []Term         // discovery order
	dropped int
}

// NewAggregator creates an aggregator that rejects phrases containing any
// of fillerWords as a whole word.
func NewAggregator(fillerWords []string) *Aggregator {
	return &Aggregator{
		fillers: stoplist.NewManager(fillerWords),
		index:   make(map[string]int),
	}
}

// Add merges keywords in order. A later duplicate replaces the score only
// when strictly higher.
func (a *Aggregator) Add(keywords ...keyphrase.Keyword) {
	for _, kw := range keywords {
		if a.fillers.ContainsWord(kw.Phrase) {
			a.dropped++
			continue
		}
		key := strings.ToLower(kw.Phrase)
		if pos, ok := a.index[key]; ok {
			if kw.Score > a.terms[pos].Score {
				a.terms[pos].Score = kw.Score
			}
			continue
		}
		a.index[key] = len(a.terms)
		a.terms = append(a.terms, Term{Phrase: kw.Phrase, Score: kw.Score})
	}
}

// Inject adds every term not already present (case-insensitively) with the
// given score, and returns how many were added. Filler filtering does not
// apply to injected terms.
func (a *Aggregator) Inject(terms []string, score float64) int {
	added := 0
	for _, t := range terms {
		key := strings.ToLower(t)
		if _, ok := a.index[key]; ok {
			continue
		}
		a.index[key] = len(a.terms)
		a.terms = append(a.terms, Term{Phrase: t, Score: score})
		added++
	}
	return added
}

// Len returns the number of distinct phrases held.
func (a *Aggregator) Len() int { return len(a.terms) }

// Dropped returns how many keywords the filler filter rejected.
func (a *Aggregator) Dropped() int { return a.dropped }

// Terms returns every entry sorted by score, highest first; equal scores
// keep discovery order.
func (a *Aggregator) Terms() []Term {
	out := make([]Term, len(a.terms))
	copy(out, a.terms)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Top returns the first n terms; n <= 0 keeps all of them.
func Top(terms []Term, n int) []Term {
	if n <= 0 || n >= len(terms) {
		return terms
	}
	return terms[:n]
}
