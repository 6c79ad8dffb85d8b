// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/grantscraper/internal/classify"
	"github.com/pdiddy/grantscraper/internal/logger"
	"github.com/pdiddy/grantscraper/pkg/types"
)

const tesdaBase = "https://www.tesda.gov.ph"

// TESDA scrapes the barangay scholarship page of the Technical Education
// and Skills Development Authority: vocational grants, always open.
type TESDA struct {
	deps Deps
}

// NewTESDA returns the tesda.gov.ph extractor.
func NewTESDA(deps Deps) *TESDA { return &TESDA{deps: deps} }

func (t *TESDA) Name() string { return "tesda" }
func (t *TESDA) Site() string { return "TESDA" }

// Extract reads one record per .row.content block. The first block lists
// eligibility across all its columns; later blocks put eligibility in the
// first column and benefits in the last.
func (t *TESDA) Extract(ctx context.Context) ([]types.Scholarship, error) {
	pageURL := strings.TrimRight(t.deps.baseURL(tesdaBase), "/") + "/barangay/"
	doc, err := t.deps.Fetcher.Document(ctx, pageURL)
	if err != nil {
		return nil, &FetchError{Site: t.Site(), URL: pageURL, Err: err}
	}

	var out []types.Scholarship
	doc.Find(".row.content").Each(func(i int, block *goquery.Selection) {
		name := cleanText(block.Find("h3").First().Text())
		if err := requireName(t.Site(), pageURL, name); err != nil {
			t.deps.logger().Warn("listing skipped", logger.Int("index", i), logger.Error(err))
			return
		}

		s := types.Scholarship{
			Name:        name,
			Description: strings.Join(texts(block.Find("p:not(.font-italic)")), " "),
			Deadline:    types.Ongoing(),
			Level:       types.LevelVocational,
			Type:        types.AwardGrant,
			Source:      types.Source{Link: pageURL, Site: t.Site()},
		}

		columns := block.Find(`.col-md-6[data-aos="fade-up"]`)
		if i == 0 {
			s.Eligibility = plainItems(texts(columns.Find("ul li")))
		} else {
			s.Eligibility = plainItems(texts(columns.First().Find("ul li")))
			s.Benefits = texts(columns.Last().Find("ul li"))
		}

		s.Programs = classify.Programs(s)
		out = append(out, s)
	})
	return out, nil
}
