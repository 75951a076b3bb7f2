package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/cognicore/termdict/internal/logger"
	"github.com/cognicore/termdict/pkg/termdict"
	"github.com/cognicore/termdict/pkg/termdict/config"
	"github.com/cognicore/termdict/pkg/termdict/store"
	"github.com/cognicore/termdict/pkg/termdict/store/sqlite"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath    = flag.String("config", "termdict.yaml", "YAML config file (optional; defaults apply when missing)")
		inputDir   = flag.String("input", "", "Directory of PDF files")
		outputDir  = flag.String("output-dir", "", "Output directory")
		outputFile = flag.String("output-file", "", "Output file name")
		topN       = flag.Int("top-n", 0, "Number of terms to write (0 keeps all)")
		chunkSize  = flag.Int("chunk-size", 0, "Chunk size in characters")
		embedder   = flag.String("embedder", "", "Embedder type: hashing or openai")
		storePath  = flag.String("store", "", "SQLite database for run history and embedding cache")
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		logJSON    = flag.Bool("log-json", false, "Log as JSON")
		history    = flag.Int("history", 0, "Print the last N recorded runs and exit")
	)
	flag.Parse()

	log := logger.New(logger.Config{Level: *logLevel, JSON: *logJSON, Output: os.Stderr})

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Error("failed to load config", "path", *cfgPath, "err", err)
		os.Exit(1)
	}

	// Only flags given on the command line override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputDir = *inputDir
		case "output-dir":
			cfg.OutputDir = *outputDir
		case "output-file":
			cfg.OutputFile = *outputFile
		case "top-n":
			cfg.TopN = *topN
		case "chunk-size":
			cfg.ChunkSize = *chunkSize
		case "embedder":
			cfg.Embedder.Type = *embedder
		case "store":
			cfg.StorePath = *storePath
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *history > 0 {
		if err := printHistory(ctx, os.Stdout, cfg.StorePath, *history); err != nil {
			log.Error("failed to read history", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	p, err := termdict.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer p.Close()

	res, err := p.Run(ctx)
	if termdict.IsNoText(err) {
		// Nothing to write is not a failure.
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("done",
		"run", res.RunID,
		"documents", res.Documents,
		"chunks", res.Chunks,
		"failed_chunks", res.FailedChunks,
		"terms", len(res.Terms),
		"output", res.OutputPath)
	return nil
}

func printHistory(ctx context.Context, w io.Writer, path string, limit int) error {
	if path == "" {
		return errors.New("-history needs a store (-store or store_path)")
	}
	st, err := sqlite.OpenSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		writeRun(w, r)
	}
	return nil
}

func writeRun(w io.Writer, r store.Run) {
	fmt.Fprintf(w, "%s  %s  docs=%d chunks=%d terms=%d  %s\n",
		r.ID,
		humanize.Time(r.FinishedAt),
		r.Documents,
		r.Chunks,
		len(r.Terms),
		r.OutputPath)
	for i, t := range r.Terms {
		if i == 3 {
			fmt.Fprintf(w, "    ... %d more\n", len(r.Terms)-3)
			break
		}
		fmt.Fprintf(w, "    %.2f  %s\n", t.Score, t.Phrase)
	}
}
