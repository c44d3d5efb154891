package sentiment

// Label is the coarse sentiment bucket of a text.
type Label string

const (
	Positive Label = "Positive"
	Neutral  Label = "Neutral"
	Negative Label = "Negative"
)

// Scores strictly above PositiveThreshold are Positive and strictly below
// NegativeThreshold are Negative. Both bounds belong to Neutral.
const (
	PositiveThreshold = 0.2
	NegativeThreshold = -0.2
)

// Classify maps a polarity score in [-1, 1] to a Label.
func Classify(score float64) Label {
	switch {
	case score > PositiveThreshold:
		return Positive
	case score < NegativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

func (l Label) String() string { return string(l) }
