package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Feedbox/1.0 (+https://feedbox.local)"
	acceptHeader   = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8"

	// maxBodySize caps feed downloads; anything larger is not a feed.
	maxBodySize = 10 << 20
)

// FetchError reports a non-success HTTP response from the remote feed.
type FetchError struct {
	Status int
	URL    string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.Status)
}

// NetworkError reports a transport-level failure (DNS, TLS, timeout).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Fetcher retrieves raw feed bodies. It never retries; retry policy belongs
// to the caller. The optional limiter paces outbound requests globally.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient injects the HTTP client, mainly for tests.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithRateLimit paces fetches to at most one per interval. A zero or
// negative interval disables pacing.
func WithRateLimit(interval time.Duration) Option {
	return func(f *Fetcher) {
		if interval > 0 {
			f.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// WithTimeout overrides the default fetch timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = timeout }
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{client: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the feed at url and returns its raw bytes. Non-2xx
// responses yield a *FetchError, transport failures a *NetworkError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{URL: url, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Status: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	return body, nil
}
