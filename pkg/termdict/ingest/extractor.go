package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/termdict/internal/logger"
)

// Document is an opened, paged document.
type Document interface {
	NumPages() int
	// PageText returns the raw text of the zero-based page i.
	PageText(i int) (string, error)
	Close() error
}

// Opener opens documents by path.
type Opener interface {
	Open(path string) (Document, error)
}

// ExtractorOptions tunes directory extraction.
type ExtractorOptions struct {
	Recursive        bool
	NormalizeUnicode bool
	// Documents with more than SkipMinPages pages lose their first SkipPages pages.
	SkipMinPages int
	SkipPages    int
	// GCEvery triggers a collection after every GCEvery-th page; 0 disables it.
	GCEvery int
}

// DefaultExtractorOptions mirrors the defaults of the run configuration.
func DefaultExtractorOptions() ExtractorOptions {
	return ExtractorOptions{
		NormalizeUnicode: true,
		SkipMinPages:     10,
		SkipPages:        5,
		GCEvery:          20,
	}
}

// Extractor turns a directory of PDFs into cleaned documents.
type Extractor struct {
	opener  Opener
	opts    ExtractorOptions
	log     logger.Logger
	reclaim func()
}

// NewExtractor creates an extractor reading documents through opener.
func NewExtractor(opener Opener, opts ExtractorOptions, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{opener: opener, opts: opts, log: log, reclaim: runtime.GC}
}

// ExtractDir extracts every PDF in dir. A missing directory yields no
// documents and no error; a document that fails is logged and skipped.
func (e *Extractor) ExtractDir(ctx context.Context, dir string) ([]Doc, error) {
	e.log.Info("processing PDFs", "dir", dir)

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			e.log.Error("input directory not found", "dir", dir)
		} else {
			e.log.Error("cannot read input directory", "dir", dir, "err", err)
		}
		return nil, nil
	}
	if !info.IsDir() {
		e.log.Error("input path is not a directory", "dir", dir)
		return nil, nil
	}

	names, err := e.listPDFs(dir)
	if err != nil {
		e.log.Error("cannot list input directory", "dir", dir, "err", err)
		return nil, nil
	}

	var docs []Doc
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return docs, err
		}
		e.log.Info("extracting", "file", name)
		doc, err := e.ExtractFile(filepath.Join(dir, name))
		if err != nil {
			e.log.Error("document failed, skipping", "file", name, "err", err)
			continue
		}
		doc.Name = name
		docs = append(docs, doc)
		if doc.Empty() {
			e.log.Warn("no extractable text", "file", name, "pages", doc.TotalPages)
		}
		e.log.Info("extracted", "file", name, "pages", doc.PagesRead)
	}

	e.reclaim()
	return docs, nil
}

// ExtractFile extracts the cleaned text of a single document.
func (e *Extractor) ExtractFile(path string) (Doc, error) {
	d, err := e.opener.Open(path)
	if err != nil {
		return Doc{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer d.Close()

	total := d.NumPages()
	start := 0
	if e.opts.SkipPages > 0 && total > e.opts.SkipMinPages {
		start = e.opts.SkipPages
	}

	var text strings.Builder
	read := 0
	for page := start; page < total; page++ {
		raw, err := d.PageText(page)
		if err != nil {
			return Doc{}, fmt.Errorf("page %d: %w", page+1, err)
		}
		if e.opts.NormalizeUnicode {
			raw = norm.NFKC.String(raw)
		}
		text.WriteString(CleanText(raw))
		text.WriteByte(' ')
		read++

		if e.opts.GCEvery > 0 && (page+1)%e.opts.GCEvery == 0 {
			e.reclaim()
		}
	}

	return Doc{
		Name:       filepath.Base(path),
		Path:       path,
		TotalPages: total,
		PagesRead:  read,
		Text:       text.String(),
	}, nil
}

// listPDFs returns the .pdf file names under dir (case-insensitive suffix),
// relative to dir and in lexical order.
func (e *Extractor) listPDFs(dir string) ([]string, error) {
	var names []string
	if !e.opts.Recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !isPDFName(entry.Name()) {
				continue
			}
			names = append(names, entry.Name())
		}
		return names, nil
	}

	err := doublestar.GlobWalk(os.DirFS(dir), "**/*", func(path string, d fs.DirEntry) error {
		if !d.IsDir() && isPDFName(path) {
			names = append(names, filepath.FromSlash(path))
		}
		return nil
	}, doublestar.WithFilesOnly())
	return names, err
}

func isPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
