package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/hyperifyio/textpulse/internal/aggregate"
	"github.com/hyperifyio/textpulse/internal/article"
	"github.com/hyperifyio/textpulse/internal/decode"
	"github.com/hyperifyio/textpulse/internal/sentiment"
)

func newTestAnalyzer(f article.Fetcher) *Analyzer {
	return &Analyzer{
		Decoder:    decode.NewDecoder(),
		Fetcher:    f,
		Classifier: sentiment.NewClassifier(nil),
	}
}

func TestProcess_BytesScenario(t *testing.T) {
	a := newTestAnalyzer(nil)
	res, err := a.Process(context.Background(), FromBytes([]byte("The cat sat on the mat. The cat was happy.")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Frequencies.Count("the") != 3 || res.Frequencies.Count("cat") != 2 {
		t.Fatalf("unexpected counts %v", res.Frequencies.Map())
	}
	if res.Top[0] != (aggregate.Entry{Token: "the", Count: 3}) || res.Top[1] != (aggregate.Entry{Token: "cat", Count: 2}) {
		t.Fatalf("unexpected top list %v", res.Top)
	}
	if res.Sentiment != sentiment.Positive && res.Sentiment != sentiment.Neutral {
		t.Fatalf("unexpected label %s", res.Sentiment)
	}
	if res.TokenCount != 10 || res.Source != "bytes" {
		t.Fatalf("unexpected token count %d source %q", res.TokenCount, res.Source)
	}
}

func TestProcess_Idempotent(t *testing.T) {
	a := newTestAnalyzer(nil)
	in := FromBytes([]byte("Good things come to those who wait. Bad things happen too. Good good good!"))
	first, err := a.Process(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Process(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Frequencies.Entries(), second.Frequencies.Entries()) {
		t.Fatalf("frequency maps differ")
	}
	if !reflect.DeepEqual(first.Top, second.Top) || first.Sentiment != second.Sentiment || first.Polarity != second.Polarity {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestProcess_EmptyBytes(t *testing.T) {
	a := newTestAnalyzer(nil)
	res, err := a.Process(context.Background(), FromBytes(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Frequencies.Len() != 0 || len(res.Top) != 0 || res.Sentiment != sentiment.Neutral {
		t.Fatalf("unexpected result for empty input: %+v", res)
	}
}

func TestProcess_MalformedBytesDoNotFail(t *testing.T) {
	a := &Analyzer{Decoder: &decode.Decoder{Detector: decode.Static{Name: "utf-8"}}}
	res, err := a.Process(context.Background(), FromBytes([]byte{'h', 'i', 0xff, ' ', 'h', 'i'}))
	if err != nil {
		t.Fatalf("decode problems must not surface: %v", err)
	}
	if res.Frequencies.Count("hi") != 2 {
		t.Fatalf("unexpected counts %v", res.Frequencies.Map())
	}
}

func TestProcess_URL(t *testing.T) {
	var got string
	f := article.FetcherFunc(func(ctx context.Context, rawURL string) (string, error) {
		got = rawURL
		return "Terrible terrible news", nil
	})
	a := newTestAnalyzer(f)
	res, err := a.Process(context.Background(), FromURL(" https://example.com/a "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://example.com/a" || res.Source != "https://example.com/a" {
		t.Fatalf("unexpected url passed %q / source %q", got, res.Source)
	}
	if res.Sentiment != sentiment.Negative || res.Top[0].Token != "terrible" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestProcess_FetchErrorUnchanged(t *testing.T) {
	want := errors.New("network unreachable")
	a := newTestAnalyzer(article.FetcherFunc(func(context.Context, string) (string, error) {
		return "", want
	}))
	_, err := a.Process(context.Background(), FromURL("https://example.com"))
	if err != want {
		t.Fatalf("expected fetch error returned unchanged, got %v", err)
	}
}

func TestProcess_InvalidInput(t *testing.T) {
	a := newTestAnalyzer(nil)
	for _, in := range []Input{{}, {URL: "   "}, {Bytes: []byte("x"), URL: "https://example.com"}} {
		if _, err := a.Process(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}
	if _, err := a.Process(context.Background(), FromURL("https://example.com")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("url without fetcher should be invalid, got %v", err)
	}
}

func TestProcess_CustomScorerAndTopK(t *testing.T) {
	a := &Analyzer{
		Classifier: sentiment.NewClassifier(sentiment.ScorerFunc(func(string) float64 { return 0.2 })),
		TopK:       2,
	}
	res, err := a.Process(context.Background(), FromBytes([]byte("a b c a b a")))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Top) != 2 || res.Sentiment != sentiment.Neutral || res.Polarity != 0.2 {
		t.Fatalf("unexpected result %+v", res)
	}
}
