package embed

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type countingEmbedder struct {
	calls [][]string
	fail  bool
}

func (c *countingEmbedder) Name() string { return "counting" }

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if c.fail {
		return nil, errors.New("backend down")
	}
	c.calls = append(c.calls, append([]string(nil), texts...))
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = []float64{float64(len(t))}
	}
	return out, nil
}

type mapStore struct {
	data map[string][]float64
	puts int
}

func (m *mapStore) GetEmbeddings(ctx context.Context, model string, texts []string) (map[string][]float64, error) {
	out := make(map[string][]float64)
	for _, t := range texts {
		if v, ok := m.data[model+"|"+t]; ok {
			out[t] = v
		}
	}
	return out, nil
}

func (m *mapStore) PutEmbeddings(ctx context.Context, model string, vectors map[string][]float64) error {
	m.puts++
	for t, v := range vectors {
		m.data[model+"|"+t] = v
	}
	return nil
}

func TestCachedDeduplicatesAndMemoizes(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := NewCached(inner, 16, nil)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}
	ctx := context.Background()

	out, err := c.Embed(ctx, []string{"ab", "abc", "ab"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if out[0][0] != 2 || out[1][0] != 3 || out[2][0] != 2 {
		t.Errorf("unexpected vectors %v", out)
	}
	if len(inner.calls) != 1 || len(inner.calls[0]) != 2 {
		t.Fatalf("expected one call with 2 distinct texts, got %v", inner.calls)
	}

	if _, err := c.Embed(ctx, []string{"abc", "abcd"}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(inner.calls) != 2 || len(inner.calls[1]) != 1 || inner.calls[1][0] != "abcd" {
		t.Errorf("second call should only embed the new text, got %v", inner.calls)
	}
	if hits, _ := c.Stats(); hits != 1 {
		t.Errorf("expected 1 hit, got %d", hits)
	}
}

func TestCachedUsesStore(t *testing.T) {
	store := &mapStore{data: map[string][]float64{"counting|stored": {42}}}
	inner := &countingEmbedder{}
	c, _ := NewCached(inner, 4, store)

	out, err := c.Embed(context.Background(), []string{"stored", "fresh"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if out[0][0] != 42 {
		t.Errorf("stored vector not used: %v", out[0])
	}
	if len(inner.calls) != 1 || inner.calls[0][0] != "fresh" {
		t.Errorf("only the fresh text should reach the embedder, got %v", inner.calls)
	}
	if _, ok := store.data["counting|fresh"]; !ok || store.puts != 1 {
		t.Error("fresh vector should be written back to the store")
	}
}

func TestCachedPropagatesErrors(t *testing.T) {
	c, _ := NewCached(&countingEmbedder{fail: true}, 4, nil)
	if _, err := c.Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewCachedRejectsZeroSize(t *testing.T) {
	if _, err := NewCached(&countingEmbedder{}, 0, nil); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestCachedSkipsLongTexts(t *testing.T) {
	store := &mapStore{data: map[string][]float64{}}
	inner := &countingEmbedder{}
	c, _ := NewCached(inner, 4, store)
	ctx := context.Background()

	long := strings.Repeat("x", MaxCachedLen+1)
	for i := 0; i < 2; i++ {
		out, err := c.Embed(ctx, []string{long, "ab", long})
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}
		if out[0][0] != float64(len(long)) || out[2][0] != float64(len(long)) {
			t.Fatalf("unexpected vectors for long text: %v", out)
		}
	}

	if len(inner.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(inner.calls))
	}
	if len(inner.calls[0]) != 2 {
		t.Errorf("first call should embed long text once plus the short one, got %d texts", len(inner.calls[0]))
	}
	if len(inner.calls[1]) != 1 || inner.calls[1][0] != long {
		t.Errorf("second call should only re-embed the long text, got %d texts", len(inner.calls[1]))
	}
	if _, ok := store.data["counting|"+long]; ok {
		t.Error("long text must not be persisted")
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}
}
