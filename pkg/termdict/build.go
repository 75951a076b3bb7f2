package termdict

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cognicore/termdict/internal/llm"
	"github.com/cognicore/termdict/internal/logger"
	"github.com/cognicore/termdict/pkg/termdict/config"
	"github.com/cognicore/termdict/pkg/termdict/embed"
	"github.com/cognicore/termdict/pkg/termdict/ingest"
	"github.com/cognicore/termdict/pkg/termdict/internalerr"
	"github.com/cognicore/termdict/pkg/termdict/store"
	"github.com/cognicore/termdict/pkg/termdict/store/sqlite"
)

// Build assembles a Pipeline from cfg: the PDF extractor, the configured
// embedder behind an LRU cache, and the sqlite store when store_path is set.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*Pipeline, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var st store.Store
	if cfg.StorePath != "" {
		var err error
		st, err = sqlite.OpenSQLite(ctx, cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open store %s: %w", cfg.StorePath, err)
		}
		log.Info("store opened", "path", cfg.StorePath)
	}

	embedder, err := NewEmbedder(cfg.Embedder, st)
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, err
	}
	log.Info("embedder ready", "name", embedder.Name())

	source := ingest.NewExtractor(ingest.PDFOpener{SniffContent: true}, ExtractorOptions(cfg), log)
	p, err := New(Options{
		Config:   cfg,
		Source:   source,
		Embedder: embedder,
		Store:    st,
		Logger:   log,
	})
	if err != nil && st != nil {
		st.Close()
	}
	return p, err
}

// NewEmbedder builds the configured embedder wrapped in a cache. cache may
// be nil; when set, vectors persist across runs.
func NewEmbedder(cfg config.Embedder, cache embed.Store) (embed.Embedder, error) {
	var inner embed.Embedder
	switch cfg.Type {
	case config.EmbedderHashing:
		inner = embed.NewHashing(cfg.Dimension)
	case config.EmbedderOpenAI:
		key := os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("%w: embedder %q needs an API key in $%s", internalerr.ErrInvalidConfig, cfg.Type, cfg.APIKeyEnv)
		}
		client := &llm.Client{
			BaseURL:    cfg.BaseURL,
			APIKey:     key,
			Model:      cfg.Model,
			MaxRetries: cfg.MaxRetries,
			HTTPClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second},
		}
		inner = embed.NewRemote(client, cfg.BatchSize)
	default:
		return nil, fmt.Errorf("%w: unknown embedder %q", internalerr.ErrInvalidConfig, cfg.Type)
	}

	if cfg.CacheSize <= 0 {
		return inner, nil
	}
	return embed.NewCached(inner, cfg.CacheSize, cache)
}

// ExtractorOptions maps the run configuration onto document extraction.
func ExtractorOptions(cfg *config.Config) ingest.ExtractorOptions {
	return ingest.ExtractorOptions{
		Recursive:        cfg.Recursive,
		NormalizeUnicode: cfg.NormalizeUnicode,
		SkipMinPages:     cfg.FrontMatter.MinPages,
		SkipPages:        cfg.FrontMatter.Pages,
		GCEvery:          cfg.GCEveryPages,
	}
}
