package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/termdict/pkg/termdict/internalerr"
	"github.com/cognicore/termdict/pkg/termdict/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu         sync.RWMutex
	runs       map[string]store.Run
	embeddings map[string][]float64 // model + "\x00" + text
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:       make(map[string]store.Run),
		embeddings: make(map[string][]float64),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun inserts or replaces a run, keyed by ID.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("save run: %w: empty id", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = copyRun(r)
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return copyRun(r), nil
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, copyRun(r))
	}
	// ULIDs sort by creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetEmbeddings returns the cached vectors for the texts that have one.
func (s *Store) GetEmbeddings(ctx context.Context, model string, texts []string) (map[string][]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]float64)
	for _, text := range texts {
		if vec, ok := s.embeddings[embeddingKey(model, text)]; ok {
			out[text] = append([]float64(nil), vec...)
		}
	}
	return out, nil
}

// PutEmbeddings stores vectors for model, replacing existing ones.
func (s *Store) PutEmbeddings(ctx context.Context, model string, vectors map[string][]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for text, vec := range vectors {
		s.embeddings[embeddingKey(model, text)] = append([]float64(nil), vec...)
	}
	return nil
}

func embeddingKey(model, text string) string {
	return model + "\x00" + text
}

func copyRun(r store.Run) store.Run {
	r.Terms = append([]store.Term(nil), r.Terms...)
	return r
}

var _ store.Store = (*Store)(nil)
