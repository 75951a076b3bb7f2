package keyphrase

import (
	"math"

	"github.com/cognicore/termdict/pkg/termdict/embed"
)

// MMR selects up to topN candidates by maximal marginal relevance: each
// round picks the candidate maximizing
//
//	(1-diversity)*sim(candidate, doc) - diversity*max sim(candidate, selected)
//
// starting from the candidate most similar to the document. It returns the
// selected indices in selection order.
func MMR(docSim []float64, candidates [][]float64, topN int, diversity float64) []int {
	n := len(candidates)
	if n == 0 || topN <= 0 {
		return nil
	}

	first := argmax(docSim)
	selected := []int{first}
	remaining := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		if i != first {
			remaining = append(remaining, i)
		}
	}

	// maxSim[i] tracks the highest similarity of candidate i to any selected one.
	maxSim := make([]float64, n)
	for _, i := range remaining {
		maxSim[i] = embed.Cosine(candidates[i], candidates[first])
	}

	rounds := min(topN-1, n-1)
	for r := 0; r < rounds; r++ {
		best, bestPos := -1, -1
		bestScore := math.Inf(-1)
		for pos, i := range remaining {
			score := (1-diversity)*docSim[i] - diversity*maxSim[i]
			if score > bestScore {
				best, bestPos, bestScore = i, pos, score
			}
		}
		selected = append(selected, best)
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
		for _, i := range remaining {
			if s := embed.Cosine(candidates[i], candidates[best]); s > maxSim[i] {
				maxSim[i] = s
			}
		}
	}
	return selected
}

func argmax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}
