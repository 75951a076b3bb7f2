package embed

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store persists vectors between runs, keyed by embedder name and text.
type Store interface {
	GetEmbeddings(ctx context.Context, model string, texts []string) (map[string][]float64, error)
	PutEmbeddings(ctx context.Context, model string, vectors map[string][]float64) error
}

// Cached memoizes another Embedder in an LRU and, when given, a Store.
type Cached struct {
	inner Embedder
	store Store

	mu    sync.Mutex
	cache *lru.Cache[string, []float64]

	hits, misses int
}

// NewCached wraps inner with an LRU of size entries. store may be nil.
func NewCached(inner Embedder, size int, store Store) (*Cached, error) {
	if size <= 0 {
		return nil, fmt.Errorf("embedder %q: cache size must be greater than zero", inner.Name())
	}
	cache, err := lru.New[string, []float64](size)
	if err != nil {
		return nil, fmt.Errorf("embedder %q: init cache: %w", inner.Name(), err)
	}
	return &Cached{inner: inner, store: store, cache: cache}, nil
}

// Name implements Embedder.
func (c *Cached) Name() string { return c.inner.Name() }

// Stats returns cache hits and misses so far.
func (c *Cached) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// MaxCachedLen is the longest text, in bytes, whose vector is cached.
// Longer inputs, such as whole document chunks, are embedded on every call.
const MaxCachedLen = 512

// Embed implements Embedder. Only texts missing from both cache layers
// reach the wrapped embedder, each once.
func (c *Cached) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	results := make([][]float64, len(texts))
	missing := make(map[string][]int)
	var order []string

	c.mu.Lock()
	for i, text := range texts {
		if cacheable(text) {
			if v, ok := c.cache.Get(text); ok {
				results[i] = v
				c.hits++
				continue
			}
		}
		if _, seen := missing[text]; !seen {
			order = append(order, text)
		}
		missing[text] = append(missing[text], i)
	}
	c.mu.Unlock()

	if len(order) == 0 {
		return results, nil
	}

	if c.store != nil {
		var lookup []string
		for _, text := range order {
			if cacheable(text) {
				lookup = append(lookup, text)
			}
		}
		if len(lookup) > 0 {
			stored, err := c.store.GetEmbeddings(ctx, c.Name(), lookup)
			if err != nil {
				return nil, fmt.Errorf("read embedding cache: %w", err)
			}
			remaining := order[:0:0]
			for _, text := range order {
				v, ok := stored[text]
				if !ok {
					remaining = append(remaining, text)
					continue
				}
				c.fill(results, missing[text], text, v, true)
			}
			order = remaining
			if len(order) == 0 {
				return results, nil
			}
		}
	}

	vectors, err := c.inner.Embed(ctx, order)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(order) {
		return nil, fmt.Errorf("embedder %q returned %d vectors for %d texts", c.Name(), len(vectors), len(order))
	}

	fresh := make(map[string][]float64, len(order))
	for i, text := range order {
		c.fill(results, missing[text], text, vectors[i], false)
		if cacheable(text) {
			fresh[text] = vectors[i]
		}
	}
	if c.store != nil && len(fresh) > 0 {
		if err := c.store.PutEmbeddings(ctx, c.Name(), fresh); err != nil {
			return nil, fmt.Errorf("write embedding cache: %w", err)
		}
	}
	return results, nil
}

func (c *Cached) fill(results [][]float64, idx []int, text string, v []float64, hit bool) {
	for _, i := range idx {
		results[i] = v
	}
	if !cacheable(text) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(text, v)
	if hit {
		c.hits += len(idx)
	} else {
		c.misses += len(idx)
	}
}

func cacheable(text string) bool {
	return len(text) <= MaxCachedLen
}
