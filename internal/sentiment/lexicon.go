package sentiment

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// Lexicon holds word polarities plus the modifiers that adjust them.
type Lexicon struct {
	Words        map[string]float64 `yaml:"words"`
	Intensifiers map[string]float64 `yaml:"intensifiers"`
	Negations    []string           `yaml:"negations"`

	negations map[string]struct{}
}

// ParseLexicon reads a lexicon from YAML. Keys are lower-cased.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var raw Lexicon
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	lex := &Lexicon{
		Words:        make(map[string]float64, len(raw.Words)),
		Intensifiers: make(map[string]float64, len(raw.Intensifiers)),
		negations:    make(map[string]struct{}, len(raw.Negations)),
	}
	for w, p := range raw.Words {
		if p < -1 || p > 1 {
			return nil, fmt.Errorf("parse lexicon: polarity of %q out of range: %v", w, p)
		}
		lex.Words[strings.ToLower(strings.TrimSpace(w))] = p
	}
	for w, m := range raw.Intensifiers {
		lex.Intensifiers[strings.ToLower(strings.TrimSpace(w))] = m
	}
	for _, w := range raw.Negations {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		lex.Negations = append(lex.Negations, w)
		lex.negations[w] = struct{}{}
	}
	return lex, nil
}

// LoadLexicon reads a YAML lexicon file.
func LoadLexicon(path string) (*Lexicon, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLexicon(b)
}

// DefaultLexicon returns the built-in English lexicon.
func DefaultLexicon() *Lexicon {
	lex, err := ParseLexicon(defaultLexiconYAML)
	if err != nil {
		panic("sentiment: embedded lexicon is invalid: " + err.Error())
	}
	return lex
}

func (l *Lexicon) isNegation(tok string) bool {
	_, ok := l.negations[tok]
	return ok
}
