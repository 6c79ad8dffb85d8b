// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	gocache "github.com/patrickmn/go-cache"

	"github.com/pdiddy/grantscraper/pkg/types"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultUserAgent    = "grantscraper/0.1"
	defaultMaxBodyBytes = 8 << 20
	maxRedirects        = 5
)

// ErrNotFound matches a StatusError carrying HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrDisallowed is returned when robots.txt forbids the URL.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// ErrBodyTooLarge is returned when a page exceeds the configured size cap.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// Fetcher performs polite GET requests: a timeout on every request, a
// per-host rate limit, optional robots.txt checks, retry on throttling, a
// body size cap, and an optional in-memory page cache.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxBytes   int64
	maxRetries int
	limiter    *HostLimiter
	robots     *RobotsChecker
	cache      *gocache.Cache
}

// NewFetcher builds a Fetcher from cfg, filling unset fields with defaults.
func NewFetcher(cfg types.HTTPConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}

	client := &http.Client{
		Timeout:       timeout,
		CheckRedirect: limitRedirects,
	}

	f := &Fetcher{
		client:     client,
		userAgent:  ua,
		maxBytes:   maxBytes,
		maxRetries: cfg.MaxRetries,
		limiter:    NewHostLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
	if cfg.RespectRobots {
		f.robots = NewRobotsChecker(client, ua)
	}
	if cfg.CacheTTL > 0 {
		f.cache = gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return f
}

func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

// Insecure returns a copy of f that skips TLS certificate verification.
// The copy shares the limiter, robots cache, and page cache with f.
func (f *Fetcher) Insecure() *Fetcher {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // sites with broken chains only
	cp := *f
	cp.client = &http.Client{
		Timeout:       f.client.Timeout,
		Transport:     tr,
		CheckRedirect: limitRedirects,
	}
	return &cp
}

// Get fetches rawURL and returns the (size-capped) body. Non-2xx responses
// return a *StatusError.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if f.cache != nil {
		if v, ok := f.cache.Get(rawURL); ok {
			return v.([]byte), nil
		}
	}

	if f.robots != nil {
		ok, err := f.robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("GET %s: %w", rawURL, ErrDisallowed)
		}
	}

	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := DoWithRetry(ctx, f.client, req, f.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBytes))
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("reading %s: %w (%d bytes)", rawURL, ErrBodyTooLarge, f.maxBytes)
	}

	if f.cache != nil {
		f.cache.Set(rawURL, body, gocache.DefaultExpiration)
	}
	return body, nil
}

// Document fetches rawURL and parses it as HTML. The document's Url is set
// so relative links can be resolved against it.
func (f *Fetcher) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := f.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	if u, err := url.Parse(rawURL); err == nil {
		doc.Url = u
	}
	return doc, nil
}
