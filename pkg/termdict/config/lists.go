package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// TermList is the on-disk shape of every word/phrase list:
//
//	terms:
//	  - circuit breaker
//	  - voltage regulator
type TermList struct {
	Terms []string `yaml:"terms"`
}

// LoadTerms loads a term list from a YAML file, dropping blanks and
// comments-only entries.
func LoadTerms(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tl TermList
	if err := yaml.Unmarshal(data, &tl); err != nil {
		return nil, err
	}

	terms := make([]string, 0, len(tl.Terms))
	for _, t := range tl.Terms {
		t = strings.TrimSpace(t)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// LoadStoplist loads stop words from a YAML file, lowercased.
func LoadStoplist(path string) ([]string, error) {
	terms, err := LoadTerms(path)
	if err != nil {
		return nil, err
	}
	for i := range terms {
		terms[i] = strings.ToLower(terms[i])
	}
	return terms, nil
}

// resolveLists appends the contents of file-backed lists to the inline ones.
func (c *Config) resolveLists(baseDir string) error {
	if c.EssentialTermsFile != "" {
		terms, err := LoadTerms(resolvePath(baseDir, c.EssentialTermsFile))
		if err != nil {
			return fmt.Errorf("load essential terms: %w", err)
		}
		c.EssentialTerms = append(c.EssentialTerms, terms...)
	}
	if c.Keyphrase.StopWordsFile != "" {
		stops, err := LoadStoplist(resolvePath(baseDir, c.Keyphrase.StopWordsFile))
		if err != nil {
			return fmt.Errorf("load stoplist: %w", err)
		}
		c.Keyphrase.StopWords = append(c.Keyphrase.StopWords, stops...)
	}
	return nil
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
