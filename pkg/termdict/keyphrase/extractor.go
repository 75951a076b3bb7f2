package keyphrase

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/cognicore/termdict/pkg/termdict/embed"
	"github.com/cognicore/termdict/pkg/termdict/ingest"
	"github.com/cognicore/termdict/pkg/termdict/internalerr"
	"github.com/cognicore/termdict/pkg/termdict/stoplist"
)

// EmbeddingExtractor ranks n-gram candidates by the cosine similarity of
// their embeddings to the embedding of the whole text.
type EmbeddingExtractor struct {
	embedder embed.Embedder
}

// Compile-time interface check.
var _ Extractor = (*EmbeddingExtractor)(nil)

// NewEmbeddingExtractor creates an extractor scoring with e.
func NewEmbeddingExtractor(e embed.Embedder) *EmbeddingExtractor {
	return &EmbeddingExtractor{embedder: e}
}

// Candidates returns the distinct n-grams of text, alphabetically sorted.
func Candidates(text string, opts Options) ([]string, error) {
	stops, err := stoplist.ForLanguage(opts.Language)
	if err != nil {
		return nil, err
	}
	tok := ingest.NewTokenizer(stops)
	for _, w := range opts.StopWords {
		tok.AddStopword(w)
	}

	tokens := tok.Tokenize(text)
	grams := ingest.NGrams(tokens, opts.NgramMin, opts.NgramMax)
	sort.Strings(grams)
	return grams, nil
}

// Extract implements Extractor.
func (x *EmbeddingExtractor) Extract(ctx context.Context, text string, opts Options) ([]Keyword, error) {
	if opts.NgramMin < 1 || opts.NgramMax < opts.NgramMin {
		return nil, fmt.Errorf("%w: n-gram range (%d,%d)", internalerr.ErrInvalidInput, opts.NgramMin, opts.NgramMax)
	}
	if opts.TopN <= 0 {
		return nil, nil
	}

	candidates, err := Candidates(text, opts)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	vectors, err := x.embedder.Embed(ctx, append([]string{text}, candidates...))
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(candidates)+1 {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", internalerr.ErrEmbedding, len(vectors), len(candidates)+1)
	}
	doc, cands := vectors[0], vectors[1:]

	docSim := make([]float64, len(cands))
	for i, v := range cands {
		docSim[i] = embed.Cosine(v, doc)
	}

	var picked []int
	if opts.UseMMR {
		picked = MMR(docSim, cands, opts.TopN, opts.Diversity)
	} else {
		picked = topBySimilarity(docSim, opts.TopN)
	}

	keywords := make([]Keyword, len(picked))
	for i, idx := range picked {
		keywords[i] = Keyword{Phrase: candidates[idx], Score: round4(docSim[idx])}
	}
	sort.SliceStable(keywords, func(i, j int) bool {
		return keywords[i].Score > keywords[j].Score
	})
	return keywords, nil
}

func topBySimilarity(sim []float64, n int) []int {
	idx := make([]int, len(sim))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return sim[idx[a]] > sim[idx[b]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	return idx
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
