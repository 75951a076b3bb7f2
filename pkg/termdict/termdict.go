package termdict

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/cognicore/termdict/internal/logger"
	"github.com/cognicore/termdict/pkg/termdict/config"
	"github.com/cognicore/termdict/pkg/termdict/embed"
	"github.com/cognicore/termdict/pkg/termdict/glossary"
	"github.com/cognicore/termdict/pkg/termdict/ingest"
	"github.com/cognicore/termdict/pkg/termdict/internalerr"
	"github.com/cognicore/termdict/pkg/termdict/keyphrase"
	"github.com/cognicore/termdict/pkg/termdict/store"
)

// DocumentSource yields the cleaned documents of an input directory.
type DocumentSource interface {
	ExtractDir(ctx context.Context, dir string) ([]ingest.Doc, error)
}

// Pipeline is the glossary extraction facade
type Pipeline struct {
	cfg       *config.Config
	source    DocumentSource
	keyphrase keyphrase.Extractor
	embedder  embed.Embedder
	store     store.Store
	log       logger.Logger
	now       func() time.Time
	reclaim   func()
}

// Options configures a Pipeline instance
type Options struct {
	Config    *config.Config
	Source    DocumentSource
	// Keyphrase defaults to an EmbeddingExtractor over Embedder.
	Keyphrase keyphrase.Extractor
	Embedder  embed.Embedder
	Store     store.Store // optional; records runs when set
	Logger    logger.Logger
}

// Result summarizes a run.
type Result struct {
	RunID        string
	OutputPath   string
	Documents    int
	Chunks       int
	FailedChunks int
	Extracted    int // distinct phrases kept before injection
	Injected     int
	Terms        []glossary.Term
}

// New creates a Pipeline with the given dependencies
func New(opts Options) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("%w: config is required", internalerr.ErrInvalidConfig)
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	kp := opts.Keyphrase
	if kp == nil && opts.Embedder != nil {
		kp = keyphrase.NewEmbeddingExtractor(opts.Embedder)
	}
	if opts.Source == nil || kp == nil {
		return nil, fmt.Errorf("%w: document source and keyphrase extractor are required", internalerr.ErrInvalidInput)
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		cfg:       opts.Config,
		source:    opts.Source,
		keyphrase: kp,
		embedder:  opts.Embedder,
		store:     opts.Store,
		log:       log,
		now:       time.Now,
		reclaim:   runtime.GC,
	}, nil
}

// Close releases the store, if any.
func (p *Pipeline) Close() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}

// Run extracts documents, scores phrases chunk by chunk, merges the
// essential terms and writes the ranked glossary. It returns
// internalerr.ErrNoText, without writing anything, when the input yields
// no text.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	cfg := p.cfg
	started := p.now()
	res := Result{
		RunID:      store.NewRunID(started),
		OutputPath: cfg.OutputPath(),
	}

	docs, err := p.source.ExtractDir(ctx, cfg.InputDir)
	if err != nil {
		return res, fmt.Errorf("extract %s: %w", cfg.InputDir, err)
	}
	res.Documents = len(docs)

	text := ingest.Combine(docs)
	if strings.TrimSpace(text) == "" {
		p.log.Warn("no text found", "dir", cfg.InputDir, "documents", len(docs))
		return res, internalerr.ErrNoText
	}
	p.log.Info("combined corpus",
		"documents", len(docs),
		"chars", humanize.Comma(int64(utf8.RuneCountInString(text))))

	agg := glossary.NewAggregator(cfg.FillerWords)
	opts := p.keyphraseOptions()

	if cfg.DisableChunking {
		res.Chunks = 1
		p.extract(ctx, agg, text, opts, 1, 1, &res)
	} else {
		total := ingest.CountChunks(text, cfg.ChunkSize)
		p.log.Info("chunking corpus", "chunks", total, "chunk_size", cfg.ChunkSize)
		i := 0
		for chunk := range ingest.Chunks(text, cfg.ChunkSize) {
			i++
			res.Chunks = i
			p.extract(ctx, agg, chunk, opts, i, total, &res)
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
	}

	res.Extracted = agg.Len()
	res.Injected = agg.Inject(cfg.EssentialTerms, cfg.EssentialScore)
	p.log.Info("aggregated terms",
		"extracted", res.Extracted,
		"filtered", agg.Dropped(),
		"injected", res.Injected)

	res.Terms = glossary.Top(agg.Terms(), cfg.TopN)

	w := glossary.Writer{Label: cfg.Label, Header: cfg.Header, Format: cfg.Format}
	if err := w.WriteFile(res.OutputPath, res.Terms); err != nil {
		return res, fmt.Errorf("write glossary %s: %w", res.OutputPath, err)
	}
	p.log.Info("glossary written", "path", res.OutputPath, "terms", len(res.Terms))
	p.logCacheStats()

	p.record(ctx, res, started)
	return res, nil
}

func (p *Pipeline) extract(ctx context.Context, agg *glossary.Aggregator, text string, opts keyphrase.Options, i, total int, res *Result) {
	p.log.Info("processing chunk", "chunk", i, "total", total)
	keywords, err := p.keyphrase.Extract(ctx, text, opts)
	if err != nil {
		res.FailedChunks++
		p.log.Error("chunk failed, skipping", "chunk", i, "err", err)
	} else {
		agg.Add(keywords...)
		p.log.Debug("chunk keywords", "chunk", i, "keywords", len(keywords))
	}
	p.reclaim()
}

func (p *Pipeline) keyphraseOptions() keyphrase.Options {
	kp := p.cfg.Keyphrase
	return keyphrase.Options{
		NgramMin:  kp.NgramMin,
		NgramMax:  kp.NgramMax,
		StopWords: kp.StopWords,
		Language:  kp.Language,
		UseMMR:    kp.UseMMR,
		Diversity: kp.Diversity,
		TopN:      kp.TopN,
	}
}

// cacheStats is implemented by embed.Cached.
type cacheStats interface {
	Stats() (hits, misses int)
}

func (p *Pipeline) logCacheStats() {
	cs, ok := p.embedder.(cacheStats)
	if !ok {
		return
	}
	hits, misses := cs.Stats()
	p.log.Info("embedding cache", "embedder", p.embedder.Name(), "hits", hits, "misses", misses)
}

// record saves the run when a store is configured. The glossary is already
// on disk, so a store failure is only logged.
func (p *Pipeline) record(ctx context.Context, res Result, started time.Time) {
	if p.store == nil {
		return
	}
	run := store.Run{
		ID:         res.RunID,
		StartedAt:  started,
		FinishedAt: p.now(),
		InputDir:   p.cfg.InputDir,
		OutputPath: res.OutputPath,
		Documents:  res.Documents,
		Chunks:     res.Chunks,
		Terms:      make([]store.Term, len(res.Terms)),
	}
	for i, t := range res.Terms {
		run.Terms[i] = store.Term{Phrase: t.Phrase, Score: t.Score}
	}
	if err := p.store.SaveRun(ctx, run); err != nil {
		p.log.Warn("could not record run", "run", run.ID, "err", err)
		return
	}
	p.log.Debug("run recorded", "run", run.ID)
}

// IsNoText reports whether err means the input held no extractable text.
func IsNoText(err error) bool {
	return errors.Is(err, internalerr.ErrNoText)
}
