// Package sourcefetch downloads the markup of a public web page so it can be
// submitted for analysis.
package sourcefetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Bahjat/a11y-insight-tool/internal/platform/tracing"
)

const (
	maxRedirects    = 5
	defaultMaxBytes = 10 << 20
	userAgent       = "A11yInsight/1.0"
)

var (
	ErrInvalidURL    = errors.New("sourcefetch: URL must be absolute http or https")
	ErrStatus        = errors.New("sourcefetch: page returned a non-success status")
	ErrNotMarkup     = errors.New("sourcefetch: page is not HTML")
	ErrTooLarge      = errors.New("sourcefetch: page exceeds size limit")
	errRedirectLoop  = errors.New("too many redirects")
	errRedirectProto = errors.New("redirect to non-http(s) scheme blocked")
)

// Fetcher retrieves page source over HTTP. The default client refuses to
// connect to private or reserved addresses.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the guarded HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithMaxBytes bounds the size of the downloaded page.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// New returns a Fetcher with a 15s timeout and redirect validation.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: tracing.Transport(&http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         guardedDialer().DialContext,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			}),
			CheckRedirect: checkRedirect,
		},
		maxBytes: defaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errRedirectLoop, maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errRedirectProto, req.URL.Scheme)
	}
	return nil
}

// Fetch downloads the page at rawURL and returns its markup.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sourcefetch: GET %s: %w", u.Redacted(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isMarkup(ct) {
		return "", fmt.Errorf("%w: %s", ErrNotMarkup, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("sourcefetch: reading body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}
	return string(body), nil
}

func isMarkup(contentType string) bool {
	mt, _, _ := strings.Cut(contentType, ";")
	switch strings.ToLower(strings.TrimSpace(mt)) {
	case "text/html", "application/xhtml+xml", "text/plain":
		return true
	}
	return false
}
