package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/textpulse/internal/aggregate"
	"github.com/hyperifyio/textpulse/internal/article"
	"github.com/hyperifyio/textpulse/internal/decode"
	"github.com/hyperifyio/textpulse/internal/sentiment"
	"github.com/hyperifyio/textpulse/internal/tokenize"
)

// ErrInvalidInput is returned when an Input carries neither or both of
// bytes and a URL.
var ErrInvalidInput = errors.New("invalid input")

// Input is the text source of one analysis. Exactly one of Bytes (non-nil,
// possibly empty) or URL (non-blank) must be set.
type Input struct {
	Bytes []byte
	URL   string
}

// FromBytes returns an Input for raw document bytes. A nil b is treated as an
// empty document.
func FromBytes(b []byte) Input {
	if b == nil {
		b = []byte{}
	}
	return Input{Bytes: b}
}

// FromURL returns an Input for a remote article.
func FromURL(u string) Input { return Input{URL: u} }

// Validate reports ErrInvalidInput unless exactly one source is set.
func (in Input) Validate() error {
	hasBytes := in.Bytes != nil
	hasURL := strings.TrimSpace(in.URL) != ""
	switch {
	case hasBytes && hasURL:
		return fmt.Errorf("%w: both bytes and url supplied", ErrInvalidInput)
	case !hasBytes && !hasURL:
		return fmt.Errorf("%w: neither bytes nor url supplied", ErrInvalidInput)
	}
	return nil
}

// Result is what one analysis produces.
type Result struct {
	Source      string                 `json:"source"`
	Frequencies *aggregate.Frequencies `json:"-"`
	Top         []aggregate.Entry      `json:"top"`
	Sentiment   sentiment.Label        `json:"sentiment"`
	Polarity    float64                `json:"polarity"`
	TokenCount  int                    `json:"token_count"`
}

// Analyzer runs the decode-or-fetch, tokenize, count and classify steps. It
// holds no per-call state and is safe for concurrent use when its
// collaborators are.
type Analyzer struct {
	Decoder    *decode.Decoder
	Fetcher    article.Fetcher
	Classifier *sentiment.Classifier
	// TopK is the top list length. Zero means aggregate.DefaultTopK.
	TopK int
}

// New returns an Analyzer with the default decoder, HTTP article fetcher and
// lexicon-based classifier.
func New() *Analyzer {
	return &Analyzer{
		Decoder:    decode.NewDecoder(),
		Fetcher:    article.NewHTTPFetcher(),
		Classifier: sentiment.NewClassifier(nil),
		TopK:       aggregate.DefaultTopK,
	}
}

// Process analyzes in. It fails only with ErrInvalidInput or with the
// fetcher's error, returned unchanged.
func (a *Analyzer) Process(ctx context.Context, in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	var (
		text   string
		source string
	)
	if in.Bytes != nil {
		source = "bytes"
		text = a.decoder().Decode(in.Bytes)
	} else {
		source = strings.TrimSpace(in.URL)
		if a.Fetcher == nil {
			return Result{}, fmt.Errorf("%w: no article fetcher configured for url", ErrInvalidInput)
		}
		fetched, err := a.Fetcher.Fetch(ctx, source)
		if err != nil {
			return Result{}, err
		}
		text = fetched
	}
	res := a.Analyze(text)
	res.Source = source
	log.Debug().Str("source", source).Int("tokens", res.TokenCount).Int("distinct", res.Frequencies.Len()).Str("label", string(res.Sentiment)).Float64("polarity", res.Polarity).Msg("analyzed text")
	return res, nil
}

// Analyze runs the text-only part of Process on already decoded text.
func (a *Analyzer) Analyze(text string) Result {
	tokens := tokenize.Tokenize(text)
	freq, top := aggregate.Aggregate(tokens, a.TopK)
	label, score := a.classifier().Analyze(text)
	return Result{
		Frequencies: freq,
		Top:         top,
		Sentiment:   label,
		Polarity:    score,
		TokenCount:  len(tokens),
	}
}

func (a *Analyzer) decoder() *decode.Decoder {
	if a.Decoder != nil {
		return a.Decoder
	}
	return decode.NewDecoder()
}

func (a *Analyzer) classifier() *sentiment.Classifier {
	if a.Classifier != nil && a.Classifier.Scorer != nil {
		return a.Classifier
	}
	return sentiment.NewClassifier(nil)
}
