package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matsen/flowline/internal/graph"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit caps document fetches per second.
	RateLimit = 2.0

	// MaxDocumentSize is the default limit on a response body, in bytes.
	MaxDocumentSize = 32 << 20

	// cacheBustParam is appended to every request so intermediaries never serve a stale document.
	cacheBustParam = "_"
)

// Client is a rate-limited HTTP client for timeline documents.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
	maxSize    int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit overrides the fetch rate (requests per second).
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithMaxSize overrides the largest accepted response body, in bytes.
func WithMaxSize(n int64) ClientOption {
	return func(c *Client) {
		c.maxSize = n
	}
}

// WithClock sets the clock used for cache-busting tokens (for testing).
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a document fetch client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		now:        time.Now,
		maxSize:    MaxDocumentSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HTTPError is a non-2xx response from the document server.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// CacheBustedURL returns rawURL with a unique cache-busting query parameter.
func (c *Client) CacheBustedURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}
	q := u.Query()
	q.Set(cacheBustParam, strconv.FormatInt(c.now().UnixNano(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch downloads and decodes a document. It performs exactly one request:
// failures are returned to the caller, never retried.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*graph.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	target, err := c.CacheBustedURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrLoad, err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %w", ErrLoad, &HTTPError{StatusCode: resp.StatusCode, URL: rawURL})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrLoad, err)
	}
	if int64(len(body)) > c.maxSize {
		return nil, fmt.Errorf("%w: %w: more than %d bytes from %s", ErrLoad, ErrTooLarge, c.maxSize, rawURL)
	}

	return Decode(body, formatForResponse(resp, rawURL))
}

// formatForResponse prefers the Content-Type header, then the URL path extension.
func formatForResponse(resp *http.Response, rawURL string) Format {
	switch ct := resp.Header.Get("Content-Type"); {
	case containsAny(ct, "yaml", "yml"):
		return FormatYAML
	case containsAny(ct, "json"):
		return FormatJSON
	}
	if u, err := url.Parse(rawURL); err == nil {
		return FormatForPath(u.Path)
	}
	return FormatJSON
}

func containsAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
