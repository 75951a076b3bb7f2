package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/termdict/pkg/termdict/internalerr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if cfg.OutputPath() != filepath.Join("output", "electrical_vocab_final.txt") {
		t.Errorf("unexpected output path %q", cfg.OutputPath())
	}
	if cfg.ChunkSize != 50000 || cfg.TopN != 50 {
		t.Errorf("unexpected sizes: chunk=%d top=%d", cfg.ChunkSize, cfg.TopN)
	}
	if cfg.EssentialScore != 0.95 || len(cfg.EssentialTerms) != 6 {
		t.Errorf("unexpected essentials: %v @ %v", cfg.EssentialTerms, cfg.EssentialScore)
	}
	kp := cfg.Keyphrase
	if kp.NgramMin != 2 || kp.NgramMax != 3 || !kp.UseMMR || kp.Diversity != 0.7 || kp.TopN != 30 {
		t.Errorf("unexpected keyphrase defaults %+v", kp)
	}
}

func TestValidateLanguage(t *testing.T) {
	for _, lang := range []string{"english", "en", ""} {
		cfg := Default()
		cfg.Keyphrase.Language = lang
		if err := cfg.Validate(); err != nil {
			t.Errorf("language %q should validate: %v", lang, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InputDir != "data" {
		t.Errorf("expected defaults, got input_dir %q", cfg.InputDir)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "termdict.yaml", `
input_dir: manuals
top_n: 0
essential_terms:
  - power factor
keyphrase:
  diversity: 0.3
embedder:
  type: openai
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InputDir != "manuals" {
		t.Errorf("input_dir not applied: %q", cfg.InputDir)
	}
	if cfg.TopN != 0 {
		t.Errorf("top_n 0 should be kept, got %d", cfg.TopN)
	}
	if len(cfg.EssentialTerms) != 1 || cfg.EssentialTerms[0] != "power factor" {
		t.Errorf("essential_terms should replace defaults, got %v", cfg.EssentialTerms)
	}
	if cfg.Keyphrase.Diversity != 0.3 || cfg.Keyphrase.NgramMax != 3 {
		t.Errorf("keyphrase not merged: %+v", cfg.Keyphrase)
	}
	if cfg.Embedder.Type != EmbedderOpenAI || cfg.Embedder.Model != "text-embedding-3-small" {
		t.Errorf("embedder not merged: %+v", cfg.Embedder)
	}
	if cfg.OutputFile != "electrical_vocab_final.txt" {
		t.Errorf("unset fields should keep defaults, got %q", cfg.OutputFile)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "top_n: [1, 2\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadResolvesListFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "lists"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "lists/essentials.yaml", `terms:
  - Maxwell's equations
  - "  "
  - "# reviewed 2024"
  - Faraday's law
`)
	writeFile(t, dir, "lists/stops.yaml", `terms:
  - Figure
  - Table
`)
	path := writeFile(t, dir, "termdict.yaml", `
essential_terms: [circuit breaker]
essential_terms_file: lists/essentials.yaml
keyphrase:
  stop_words: [shall]
  stop_words_file: lists/stops.yaml
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wantTerms := []string{"circuit breaker", "Maxwell's equations", "Faraday's law"}
	if len(cfg.EssentialTerms) != len(wantTerms) {
		t.Fatalf("expected %v, got %v", wantTerms, cfg.EssentialTerms)
	}
	for i := range wantTerms {
		if cfg.EssentialTerms[i] != wantTerms[i] {
			t.Errorf("term %d: expected %q, got %q", i, wantTerms[i], cfg.EssentialTerms[i])
		}
	}
	wantStops := []string{"shall", "figure", "table"}
	for i := range wantStops {
		if cfg.Keyphrase.StopWords[i] != wantStops[i] {
			t.Errorf("stop %d: expected %q, got %q", i, wantStops[i], cfg.Keyphrase.StopWords[i])
		}
	}
}

func TestLoadEssentialFileReplacesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "essentials.yaml", `terms:
  - Lenz's law
`)
	path := writeFile(t, dir, "termdict.yaml", "essential_terms_file: essentials.yaml\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.EssentialTerms) != 1 || cfg.EssentialTerms[0] != "Lenz's law" {
		t.Errorf("file should replace the default essentials, got %v", cfg.EssentialTerms)
	}
}

func TestLoadMissingListFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "termdict.yaml", "essential_terms_file: nope.yaml\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing list file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty input dir", func(c *Config) { c.InputDir = "" }},
		{"empty output file", func(c *Config) { c.OutputFile = "" }},
		{"negative chunk size", func(c *Config) { c.ChunkSize = -1 }},
		{"negative top n", func(c *Config) { c.TopN = -5 }},
		{"unknown format", func(c *Config) { c.Format = "csv" }},
		{"inverted ngram range", func(c *Config) { c.Keyphrase.NgramMin = 3; c.Keyphrase.NgramMax = 2 }},
		{"zero ngram", func(c *Config) { c.Keyphrase.NgramMin = 0 }},
		{"diversity above one", func(c *Config) { c.Keyphrase.Diversity = 1.5 }},
		{"zero keyphrase top n", func(c *Config) { c.Keyphrase.TopN = 0 }},
		{"unknown embedder", func(c *Config) { c.Embedder.Type = "bert" }},
		{"unknown stop-word language", func(c *Config) { c.Keyphrase.Language = "englsh" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
