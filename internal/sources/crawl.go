// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/grantscraper/internal/httputil"
	"github.com/pdiddy/grantscraper/internal/logger"
	"github.com/pdiddy/grantscraper/pkg/types"
)

// indexPage is what a paginated extractor reads off one index page.
type indexPage struct {
	// listings counts entries found on the page, including ones filtered out of links.
	listings int
	links    []string
	next     bool
}

// crawlPages walks numbered index pages starting at 1. It stops on the
// first page with no listings, when readPage reports no next page, on a
// 404 past the first page, or at the configured page cap. Other fetch
// errors fail the whole run.
func crawlPages(ctx context.Context, d Deps, site string, pageURL func(int) string, readPage func(*goquery.Document) indexPage, onPage func(links []string) error) error {
	for page := 1; d.Config.MaxPages <= 0 || page <= d.Config.MaxPages; page++ {
		if page > 1 {
			if err := httputil.Sleep(ctx, d.delay()); err != nil {
				return err
			}
		}

		u := pageURL(page)
		doc, err := d.Fetcher.Document(ctx, u)
		if err != nil {
			if page > 1 && errors.Is(err, httputil.ErrNotFound) {
				d.logger().Debug("pagination ended", logger.String("url", u))
				return nil
			}
			return &FetchError{Site: site, URL: u, Err: err}
		}

		idx := readPage(doc)
		if err := onPage(idx.links); err != nil {
			return err
		}
		if idx.listings == 0 || !idx.next {
			return nil
		}
	}
	return nil
}

// detailParser builds one scholarship from a detail page.
type detailParser func(doc *goquery.Document, link string) (types.Scholarship, error)

// fetchDetails fetches each link with the configured pause between
// requests. Failed listings are logged and skipped.
func fetchDetails(ctx context.Context, d Deps, site string, links []string, parse detailParser) ([]types.Scholarship, error) {
	var out []types.Scholarship
	for i, link := range links {
		if i > 0 {
			if err := httputil.Sleep(ctx, d.delay()); err != nil {
				return out, err
			}
		}
		if s, ok := fetchDetail(ctx, d, site, link, parse); ok {
			out = append(out, s)
		}
	}
	return out, ctx.Err()
}

func fetchDetail(ctx context.Context, d Deps, site, link string, parse detailParser) (types.Scholarship, bool) {
	doc, err := d.Fetcher.Document(ctx, link)
	if err != nil {
		skip(d, &FetchError{Site: site, URL: link, Err: err})
		return types.Scholarship{}, false
	}
	s, err := parse(doc, link)
	if err != nil {
		skip(d, err)
		return types.Scholarship{}, false
	}
	return s, true
}

func skip(d Deps, err error) {
	d.logger().Warn("listing skipped", logger.Error(err))
}

func requireName(site, link, name string) error {
	if name == "" {
		return &ParseError{Site: site, URL: link, Reason: "missing name"}
	}
	return nil
}

func pageURLf(format, base string) func(int) string {
	return func(n int) string { return fmt.Sprintf(format, base, n) }
}
