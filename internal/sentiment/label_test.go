package sentiment

import "testing"

func TestClassify_Thresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  Label
	}{
		{0.5, Positive},
		{0.0, Neutral},
		{-0.3, Negative},
		{0.2, Neutral},
		{-0.2, Neutral},
		{0.2000001, Positive},
		{-0.2000001, Negative},
		{1, Positive},
		{-1, Negative},
	}
	for _, c := range cases {
		if got := Classify(c.score); got != c.want {
			t.Fatalf("Classify(%v): want %s got %s", c.score, c.want, got)
		}
	}
}

func TestClassifier_UsesScorer(t *testing.T) {
	var seen string
	c := NewClassifier(ScorerFunc(func(text string) float64 {
		seen = text
		return -0.7
	}))
	label, score := c.Analyze("some text")
	if label != Negative || score != -0.7 {
		t.Fatalf("unexpected result %s %v", label, score)
	}
	if seen != "some text" {
		t.Fatalf("scorer received %q", seen)
	}
	if c.Classify("") != Negative {
		t.Fatalf("classifier must not special-case empty text")
	}
}

func TestNewClassifier_DefaultsToLexicon(t *testing.T) {
	c := NewClassifier(nil)
	if _, ok := c.Scorer.(*LexiconScorer); !ok {
		t.Fatalf("expected lexicon scorer, got %T", c.Scorer)
	}
	if got := c.Classify(""); got != Neutral {
		t.Fatalf("empty text should be Neutral, got %s", got)
	}
}
