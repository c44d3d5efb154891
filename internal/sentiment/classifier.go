package sentiment

// Scorer computes the polarity of a text in [-1, 1]. Implementations must
// return a defined value for empty text.
type Scorer interface {
	Score(text string) float64
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(text string) float64

func (f ScorerFunc) Score(text string) float64 { return f(text) }

// Classifier labels text using the polarity reported by its Scorer.
type Classifier struct {
	Scorer Scorer
}

// NewClassifier returns a Classifier backed by s, or by the built-in lexicon
// scorer when s is nil.
func NewClassifier(s Scorer) *Classifier {
	if s == nil {
		s = NewLexiconScorer(nil)
	}
	return &Classifier{Scorer: s}
}

// Classify scores text and buckets the score.
func (c *Classifier) Classify(text string) Label {
	label, _ := c.Analyze(text)
	return label
}

// Analyze returns both the label and the underlying polarity score.
func (c *Classifier) Analyze(text string) (Label, float64) {
	score := c.Scorer.Score(text)
	return Classify(score), score
}
