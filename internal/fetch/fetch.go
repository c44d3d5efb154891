package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/textpulse/internal/cache"
)

const defaultMaxBodyBytes = 10 << 20

// Response is a successful GET result.
type Response struct {
	Body        []byte
	ContentType string
	// FromCache is true when the body was served from the HTTP cache after a
	// 304 revalidation.
	FromCache bool
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Code, e.URL)
}

// ErrUnsupportedContentType is returned for bodies that are neither HTML nor
// plain text.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// Client wraps http.Client with per-request timeouts, limited retry on
// transient errors and an optional conditional-GET disk cache.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration
	// Cache, when set, stores 200 responses and revalidates with
	// If-None-Match / If-Modified-Since.
	Cache *cache.HTTPCache
	// BypassCache skips revalidation but still stores fresh responses.
	BypassCache bool
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
	// MaxConcurrent limits in-flight requests for this client. Zero means
	// unlimited.
	MaxConcurrent int
	// MaxBodyBytes caps the body read. Zero means 10 MiB.
	MaxBodyBytes int64

	limiter     chan struct{}
	limiterOnce sync.Once
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		// copy so the redirect policy does not leak into the caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirect()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirect()}
}

// Get fetches rawURL, retrying 5xx responses and deadline errors up to
// MaxAttempts times.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if !isHTTPScheme(u) {
		return nil, fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}

	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}

	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		res, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil {
			return c.finish(ctx, rawURL, res)
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			break
		}
		log.Debug().Err(err).Str("url", rawURL).Int("attempt", i+1).Msg("transient fetch error; retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	return nil, lastErr
}

type attempt struct {
	status       int
	body         []byte
	contentType  string
	etag         string
	lastModified string
}

func (c *Client) finish(ctx context.Context, rawURL string, a attempt) (*Response, error) {
	if a.status == http.StatusNotModified {
		if c.Cache != nil {
			body, err := c.Cache.LoadBody(ctx, rawURL)
			if err == nil {
				ct := a.contentType
				if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta.ContentType != "" {
					ct = meta.ContentType
				}
				return &Response{Body: body, ContentType: ct, FromCache: true}, nil
			}
		}
		return nil, fmt.Errorf("not modified but no cached body for %s", rawURL)
	}
	if c.Cache != nil {
		if err := c.Cache.Save(ctx, rawURL, a.contentType, a.etag, a.lastModified, a.body); err != nil {
			log.Debug().Err(err).Str("url", rawURL).Msg("http cache save failed")
		}
	}
	return &Response{Body: a.body, ContentType: a.contentType}, nil
}

func (c *Client) tryOnce(ctx context.Context, rawURL, etag, lastMod string) (attempt, error) {
	if err := c.acquire(ctx); err != nil {
		return attempt{}, err
	}
	defer c.release()

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return attempt{}, fmt.Errorf("new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return attempt{}, err
	}
	defer resp.Body.Close()

	a := attempt{
		status:       resp.StatusCode,
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}
	if resp.StatusCode == http.StatusNotModified {
		return a, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return attempt{}, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}
	if !IsAllowedContentType(a.contentType) {
		return attempt{}, fmt.Errorf("%w: %q", ErrUnsupportedContentType, a.contentType)
	}
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return attempt{}, fmt.Errorf("read body: %w", err)
	}
	a.body = b
	return a, nil
}

// isTransient treats 5xx responses and per-request deadlines as retryable.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 500 && se.Code <= 599
}

func (c *Client) checkRedirect() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// IsAllowedContentType accepts HTML, XHTML and plain text. An empty header is
// accepted; the body is sniffed downstream.
func IsAllowedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" {
		return true
	}
	return strings.HasPrefix(ct, "text/html") ||
		strings.HasPrefix(ct, "application/xhtml+xml") ||
		strings.HasPrefix(ct, "text/plain")
}

// acquire waits for a request slot or for ctx to end.
func (c *Client) acquire(ctx context.Context) error {
	if c.MaxConcurrent <= 0 {
		return nil
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	select {
	case c.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
