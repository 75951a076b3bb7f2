package embed

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultDimension is the vector size of the hashing embedder.
const DefaultDimension = 1024

const trigramWeight = 0.5

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Hashing is an offline embedder: each word and each character trigram of a
// word is hashed into a signed bucket, and the sum is L2-normalized. Texts
// sharing words or word fragments point in similar directions.
type Hashing struct {
	dim int
}

// NewHashing creates a hashing embedder; dim <= 0 uses DefaultDimension.
func NewHashing(dim int) *Hashing {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Hashing{dim: dim}
}

// Name implements Embedder.
func (h *Hashing) Name() string { return fmt.Sprintf("hashing-%d", h.dim) }

// Embed implements Embedder.
func (h *Hashing) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		out[i] = h.vector(text)
	}
	return out, nil
}

func (h *Hashing) vector(text string) []float64 {
	v := make([]float64, h.dim)
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		h.add(v, "w:"+word, 1)
		padded := []rune("<" + word + ">")
		for i := 0; i+3 <= len(padded); i++ {
			h.add(v, "c:"+string(padded[i:i+3]), trigramWeight)
		}
	}
	Normalize(v)
	return v
}

func (h *Hashing) add(v []float64, feature string, weight float64) {
	sum := xxhash.Sum64String(feature)
	idx := sum % uint64(h.dim)
	if sum>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}
