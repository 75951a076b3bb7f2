package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/termdict/pkg/termdict/internalerr"
	"github.com/cognicore/termdict/pkg/termdict/stoplist"
)

// Output formats understood by the glossary writer.
const (
	FormatText = "txt"
	FormatHTML = "html"
)

// Embedder types.
const (
	EmbedderHashing = "hashing"
	EmbedderOpenAI  = "openai"
)

// DefaultEssentialScore is the confidence assigned to injected essential terms.
const DefaultEssentialScore = 0.95

// Config is the full run configuration passed to every pipeline stage.
type Config struct {
	InputDir         string   `yaml:"input_dir"`
	OutputDir        string   `yaml:"output_dir"`
	OutputFile       string   `yaml:"output_file"`
	Format           string   `yaml:"format"`
	Recursive        bool     `yaml:"recursive"`
	NormalizeUnicode bool     `yaml:"normalize_unicode"`
	ChunkSize        int      `yaml:"chunk_size"`
	DisableChunking  bool     `yaml:"disable_chunking"`
	TopN             int      `yaml:"top_n"`
	GCEveryPages     int      `yaml:"gc_every_pages"`
	Label            string   `yaml:"label"`
	Header           []string `yaml:"header"`

	EssentialTerms     []string `yaml:"essential_terms"`
	EssentialTermsFile string   `yaml:"essential_terms_file"`
	EssentialScore     float64  `yaml:"essential_score"`
	FillerWords        []string `yaml:"filler_words"`

	FrontMatter FrontMatter `yaml:"skip_front_matter"`
	Keyphrase   Keyphrase   `yaml:"keyphrase"`
	Embedder    Embedder    `yaml:"embedder"`

	// StorePath enables run history and the persistent embedding cache.
	StorePath string `yaml:"store_path"`
}

// FrontMatter controls cover/table-of-contents skipping for long documents.
type FrontMatter struct {
	MinPages int `yaml:"min_pages"` // skip only when a document has more pages than this
	Pages    int `yaml:"pages"`
}

// Keyphrase configures candidate generation and ranking.
type Keyphrase struct {
	NgramMin      int      `yaml:"ngram_min"`
	NgramMax      int      `yaml:"ngram_max"`
	StopWords     []string `yaml:"stop_words"`
	StopWordsFile string   `yaml:"stop_words_file"`
	Language      string   `yaml:"language"`
	UseMMR        bool     `yaml:"use_mmr"`
	Diversity     float64  `yaml:"diversity"`
	TopN          int      `yaml:"top_n"`
}

// Embedder selects and configures the embedding backend.
type Embedder struct {
	Type        string `yaml:"type"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
	MaxRetries  int    `yaml:"max_retries"`
	CacheSize   int    `yaml:"cache_size"`
	Dimension   int    `yaml:"dimension"`
}

// Default returns the canonical configuration: chunked extraction with
// filler filtering and essential-term injection, top 50 written.
func Default() *Config {
	return &Config{
		InputDir:         "data",
		OutputDir:        "output",
		OutputFile:       "electrical_vocab_final.txt",
		Format:           FormatText,
		NormalizeUnicode: true,
		ChunkSize:        50000,
		TopN:             50,
		GCEveryPages:     20,
		Label:            "electrical core term",
		Header: []string{
			"Electrical engineering core glossary",
			"Auto-extracted + expert-verified and supplemented",
		},
		EssentialTerms: []string{
			"Ohm's Law",
			"Kirchhoff's laws",
			"Thevenin's theorem",
			"Norton's theorem",
			"circuit breaker",
			"voltage regulator",
		},
		EssentialScore: DefaultEssentialScore,
		FillerWords:    []string{"of", "the", "and", "is", "for", "in"},
		FrontMatter:    FrontMatter{MinPages: 10, Pages: 5},
		Keyphrase: Keyphrase{
			NgramMin:  2,
			NgramMax:  3,
			Language:  "english",
			UseMMR:    true,
			Diversity: 0.7,
			TopN:      30,
		},
		Embedder: Embedder{
			Type:        EmbedderHashing,
			BaseURL:     "https://api.openai.com/v1",
			Model:       "text-embedding-3-small",
			APIKeyEnv:   "OPENAI_API_KEY",
			TimeoutSecs: 30,
			BatchSize:   64,
			MaxRetries:  4,
			CacheSize:   4096,
			Dimension:   1024,
		},
	}
}

// Load reads a YAML config over the defaults. A missing file yields the
// defaults. Lists referenced by file are resolved relative to the config.
// essential_terms_file replaces the default essential terms unless
// essential_terms is also given inline, in which case both are used.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	var inline struct {
		EssentialTerms *[]string `yaml:"essential_terms"`
	}
	if err := yaml.Unmarshal(data, &inline); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.EssentialTermsFile != "" && inline.EssentialTerms == nil {
		cfg.EssentialTerms = nil
	}
	if err := cfg.resolveLists(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OutputPath joins the output directory and file name.
func (c *Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputFile)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.InputDir == "":
		return fmt.Errorf("%w: input_dir is required", internalerr.ErrInvalidConfig)
	case c.OutputFile == "":
		return fmt.Errorf("%w: output_file is required", internalerr.ErrInvalidConfig)
	case c.ChunkSize < 0:
		return fmt.Errorf("%w: chunk_size must not be negative", internalerr.ErrInvalidConfig)
	case c.TopN < 0:
		return fmt.Errorf("%w: top_n must not be negative (0 keeps every term)", internalerr.ErrInvalidConfig)
	case c.Format != FormatText && c.Format != FormatHTML:
		return fmt.Errorf("%w: unknown format %q", internalerr.ErrInvalidConfig, c.Format)
	case c.Keyphrase.NgramMin < 1 || c.Keyphrase.NgramMax < c.Keyphrase.NgramMin:
		return fmt.Errorf("%w: invalid n-gram range (%d,%d)", internalerr.ErrInvalidConfig, c.Keyphrase.NgramMin, c.Keyphrase.NgramMax)
	case c.Keyphrase.Diversity < 0 || c.Keyphrase.Diversity > 1:
		return fmt.Errorf("%w: diversity must be within [0,1]", internalerr.ErrInvalidConfig)
	case c.Keyphrase.TopN < 1:
		return fmt.Errorf("%w: keyphrase.top_n must be positive", internalerr.ErrInvalidConfig)
	case c.Embedder.Type != EmbedderHashing && c.Embedder.Type != EmbedderOpenAI:
		return fmt.Errorf("%w: unknown embedder %q", internalerr.ErrInvalidConfig, c.Embedder.Type)
	}
	if _, err := stoplist.ForLanguage(c.Keyphrase.Language); err != nil {
		return fmt.Errorf("%w: keyphrase.language: %v", internalerr.ErrInvalidConfig, err)
	}
	return nil
}
