package stoplist

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/termdict/pkg/termdict/internalerr"
)

//go:embed stopwords-en.yaml
var englishYAML []byte

var english = sync.OnceValues(func() ([]string, error) {
	var sl struct {
		Terms []string `yaml:"terms"`
	}
	if err := yaml.Unmarshal(englishYAML, &sl); err != nil {
		return nil, fmt.Errorf("parse bundled stoplist: %w", err)
	}
	return sl.Terms, nil
})

// Manager holds a set of words to exclude.
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]struct{}, len(initialStops))
	for _, s := range initialStops {
		stops[s] = struct{}{}
	}
	return &Manager{stops: stops}
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[token]
	return ok
}

// Add adds a token to the stoplist
func (m *Manager) Add(token string) {
	m.stops[token] = struct{}{}
}

// ContainsWord reports whether phrase contains any listed word as a whole
// space-delimited word. The comparison is case-sensitive.
func (m *Manager) ContainsWord(phrase string) bool {
	padded := " " + phrase + " "
	for w := range m.stops {
		if strings.Contains(padded, " "+w+" ") {
			return true
		}
	}
	return false
}

// ForLanguage returns the built-in stop words for a language tag.
// Only "english" (or "en") is bundled; an empty tag yields no stop words.
func ForLanguage(lang string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "":
		return nil, nil
	case "english", "en":
		words, err := english()
		if err != nil {
			return nil, err
		}
		return append([]string(nil), words...), nil
	default:
		return nil, fmt.Errorf("%w: no bundled stop words for %q", internalerr.ErrInvalidInput, lang)
	}
}
