package sentiment

import "github.com/hyperifyio/textpulse/internal/tokenize"

const negationFactor = -0.5

// LexiconScorer averages the polarity of the lexicon words found in a text.
// A word preceded by an intensifier is scaled by it, and a negation within
// the two preceding tokens flips and halves it. Text without any lexicon
// word, including empty text, scores 0.
type LexiconScorer struct {
	lex *Lexicon
}

// NewLexiconScorer returns a scorer over lex, or over DefaultLexicon when lex
// is nil.
func NewLexiconScorer(lex *Lexicon) *LexiconScorer {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &LexiconScorer{lex: lex}
}

func (s *LexiconScorer) Score(text string) float64 {
	tokens := tokenize.Tokenize(text)
	var sum float64
	matched := 0
	for i, tok := range tokens {
		p, ok := s.lex.Words[tok]
		if !ok {
			continue
		}
		if i > 0 {
			if m, ok := s.lex.Intensifiers[tokens[i-1]]; ok {
				p *= m
			}
		}
		if s.negated(tokens, i) {
			p *= negationFactor
		}
		sum += clamp(p)
		matched++
	}
	if matched == 0 {
		return 0
	}
	return clamp(sum / float64(matched))
}

func (s *LexiconScorer) negated(tokens []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-2; j-- {
		if s.lex.isNegation(tokens[j]) {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
