package article

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"

	"github.com/hyperifyio/textpulse/internal/extract"
	"github.com/hyperifyio/textpulse/internal/fetch"
)

// DefaultUserAgent identifies article requests.
const DefaultUserAgent = "textpulse/1.0 (+https://github.com/hyperifyio/textpulse)"

// ErrNoContent is returned when a page was retrieved but no article text
// could be extracted from it.
var ErrNoContent = errors.New("no article text extracted")

// Fetcher retrieves the plain text of the article at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, rawURL string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, rawURL string) (string, error) { return f(ctx, rawURL) }

// HTTPFetcher downloads a page with a fetch.Client, converts it to UTF-8
// according to its Content-Type and <meta> charset, and extracts the article
// body. Plain-text responses are returned without extraction.
type HTTPFetcher struct {
	Client    *fetch.Client
	Extractor extract.Extractor
}

// NewHTTPFetcher returns a fetcher with polite defaults and readability
// extraction.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &fetch.Client{
			UserAgent:         DefaultUserAgent,
			MaxAttempts:       2,
			PerRequestTimeout: 15 * time.Second,
			RedirectMaxHops:   5,
		},
		Extractor: extract.ReadabilityExtractor{Fallback: extract.HeuristicExtractor{}},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := Canonicalize(rawURL)
	if err != nil {
		return "", err
	}
	client := f.Client
	if client == nil {
		client = NewHTTPFetcher().Client
	}
	res, err := client.Get(ctx, u.String())
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", u, err)
	}
	body, err := toUTF8(res.Body, res.ContentType)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", u, err)
	}

	var text string
	if isPlainText(res.ContentType) {
		text = strings.TrimSpace(string(body))
	} else {
		ex := f.Extractor
		if ex == nil {
			ex = extract.HeuristicExtractor{}
		}
		doc := ex.Extract(body, u)
		log.Debug().Str("url", u.String()).Str("method", doc.Method).Str("title", doc.Title).Int("chars", len(doc.Text)).Msg("extracted article")
		text = strings.TrimSpace(doc.Text)
	}
	if text == "" {
		return "", fmt.Errorf("%s: %w", u, ErrNoContent)
	}
	return text, nil
}

// toUTF8 converts body using the charset from contentType, a BOM, or an HTML
// <meta> declaration, in that order of precedence.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func isPlainText(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && strings.EqualFold(mt, "text/plain")
}

// trackingParams are dropped from article URLs so that equivalent links share
// one cache entry.
var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid"}

// Canonicalize parses rawURL, lower-cases the host, and strips the fragment
// and tracking parameters. Only absolute http(s) URLs are accepted.
func Canonicalize(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("unsupported url %q: need absolute http(s) URL", rawURL)
	}
	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.RawQuery != "" {
		q := u.Query()
		for _, p := range trackingParams {
			q.Del(p)
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}
