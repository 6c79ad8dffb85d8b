// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources holds one extractor per upstream scholarship site. Each
// extractor owns the markup traversal for its site and returns normalized
// scholarships; a failure of one extractor never affects another.
package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/grantscraper/internal/logger"
	"github.com/pdiddy/grantscraper/pkg/types"
)

// Extractor scrapes one upstream site.
type Extractor interface {
	// Name is the stable config key ("philscholar").
	Name() string
	// Site is the display name stored in Source.Site.
	Site() string
	// Extract returns every listing the site currently offers. It fails as
	// a unit only when index pages cannot be fetched or parsed; individual
	// listings that fail are logged and skipped.
	Extract(ctx context.Context) ([]types.Scholarship, error)
}

// DocumentFetcher fetches and parses an HTML page.
type DocumentFetcher interface {
	Document(ctx context.Context, url string) (*goquery.Document, error)
}

// Deps are the collaborators every extractor is built with.
type Deps struct {
	Fetcher DocumentFetcher
	Log     logger.Logger
	Config  types.SourceConfig
}

func (d Deps) baseURL(fallback string) string {
	if d.Config.BaseURL != "" {
		return d.Config.BaseURL
	}
	return fallback
}

func (d Deps) delay() time.Duration { return d.Config.Delay }

func (d Deps) logger() logger.Logger {
	if d.Log == nil {
		return logger.NewNop()
	}
	return d.Log
}

// FetchError means a page of the site could not be retrieved.
type FetchError struct {
	Site string
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetching %s: %v", e.Site, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means a page was retrieved but lacked required structure.
type ParseError struct {
	Site   string
	URL    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parsing %s: %s", e.Site, e.URL, e.Reason)
}
