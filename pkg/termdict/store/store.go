package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store persists glossary runs and cached embedding vectors.
type Store interface {
	Close() error

	// Runs
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Embedding cache, keyed by embedder name and input text
	GetEmbeddings(ctx context.Context, model string, texts []string) (map[string][]float64, error)
	PutEmbeddings(ctx context.Context, model string, vectors map[string][]float64) error
}

// Run records one completed pipeline execution.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	InputDir   string
	OutputPath string
	Documents  int
	Chunks     int
	Terms      []Term
}

// Term is a ranked glossary entry as stored with its run.
type Term struct {
	Phrase string
	Score  float64
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewRunID returns a lexically sortable run identifier for t.
func NewRunID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), idEntropy).String()
}
