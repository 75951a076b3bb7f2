package embed

import (
	"context"
	"fmt"

	"github.com/cognicore/termdict/internal/llm"
	"github.com/cognicore/termdict/pkg/termdict/internalerr"
)

// Remote embeds through an OpenAI-compatible embeddings API in batches.
type Remote struct {
	client    *llm.Client
	batchSize int
}

// NewRemote wraps client; batchSize <= 0 sends everything in one request.
func NewRemote(client *llm.Client, batchSize int) *Remote {
	return &Remote{client: client, batchSize: batchSize}
}

// Name implements Embedder.
func (r *Remote) Name() string { return "openai:" + r.client.Model }

// Embed implements Embedder.
func (r *Remote) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	size := r.batchSize
	if size <= 0 {
		size = len(texts)
	}
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		vectors, err := r.client.Embeddings(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d-%d: %v", internalerr.ErrEmbedding, start, end, err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}
