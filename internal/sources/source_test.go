// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"errors"
	"net/http"
	neturl "net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/grantscraper/internal/httputil"
	"github.com/pdiddy/grantscraper/pkg/types"
)

// stubFetcher serves canned HTML by URL. Unknown URLs return 404.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	fail  map[string]error
	calls []string
}

func (s *stubFetcher) Document(_ context.Context, url string) (*goquery.Document, error) {
	s.mu.Lock()
	s.calls = append(s.calls, url)
	s.mu.Unlock()

	if err, ok := s.fail[url]; ok {
		return nil, err
	}
	html, ok := s.pages[url]
	if !ok {
		return nil, &httputil.StatusError{URL: url, Code: http.StatusNotFound}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	doc.Url, _ = neturl.Parse(url)
	return doc, nil
}

func testDeps(f DocumentFetcher, base string) Deps {
	return Deps{Fetcher: f, Config: types.SourceConfig{BaseURL: base}}
}

func docFrom(t *testing.T, rawURL, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	if rawURL != "" {
		doc.Url, err = neturl.Parse(rawURL)
		require.NoError(t, err)
	}
	return doc
}

func TestFetchError(t *testing.T) {
	cause := &httputil.StatusError{URL: "https://x.test/", Code: http.StatusNotFound}
	err := error(&FetchError{Site: "X", URL: "https://x.test/", Err: cause})

	assert.Contains(t, err.Error(), "X: fetching https://x.test/")
	assert.True(t, errors.Is(err, httputil.ErrNotFound))

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "X", fe.Site)
}

func TestParseError(t *testing.T) {
	err := &ParseError{Site: "X", URL: "https://x.test/a", Reason: "missing name"}
	assert.Equal(t, "X: parsing https://x.test/a: missing name", err.Error())
}

func TestDepsDefaults(t *testing.T) {
	var d Deps
	assert.Equal(t, "https://fallback.test", d.baseURL("https://fallback.test"))
	assert.NotNil(t, d.logger())

	d.Config.BaseURL = "http://127.0.0.1:1"
	assert.Equal(t, "http://127.0.0.1:1", d.baseURL("https://fallback.test"))
}
