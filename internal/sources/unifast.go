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

const unifastBase = "https://unifast.gov.ph"

// UniFAST scrapes the single program page of the Unified Student Financial
// Assistance System. Every program there is a need-based college subsidy
// with rolling applications.
type UniFAST struct {
	deps Deps
}

// NewUniFAST returns the unifast.gov.ph extractor.
func NewUniFAST(deps Deps) *UniFAST { return &UniFAST{deps: deps} }

func (u *UniFAST) Name() string { return "unifast" }
func (u *UniFAST) Site() string { return "UniFAST" }

// Extract reads one record per .faq-container section.
func (u *UniFAST) Extract(ctx context.Context) ([]types.Scholarship, error) {
	pageURL := strings.TrimRight(u.deps.baseURL(unifastBase), "/") + "/tes.html"
	doc, err := u.deps.Fetcher.Document(ctx, pageURL)
	if err != nil {
		return nil, &FetchError{Site: u.Site(), URL: pageURL, Err: err}
	}

	var out []types.Scholarship
	doc.Find(".faq-container").Each(func(i int, sec *goquery.Selection) {
		s, err := u.parseProgram(doc, sec, pageURL)
		if err != nil {
			u.deps.logger().Warn("listing skipped", logger.Int("index", i), logger.Error(err))
			return
		}
		out = append(out, s)
	})
	return out, nil
}

func (u *UniFAST) parseProgram(doc *goquery.Document, sec *goquery.Selection, pageURL string) (types.Scholarship, error) {
	name := titleCase(cleanText(sec.Find(".page-title").Text()))
	if err := requireName(u.Site(), pageURL, name); err != nil {
		return types.Scholarship{}, err
	}

	columns := sec.Find(".faq-sub-container .col-6")
	s := types.Scholarship{
		Name:         name,
		Description:  cleanText(sec.Find(".fs-5").First().Text()),
		Deadline:     types.Ongoing(),
		Level:        types.LevelCollege,
		Type:         types.AwardNeedBased,
		Eligibility:  plainItems(texts(sec.Find(".faq-list ol").First().Find("li"))),
		Requirements: plainItems(texts(columns.Last().Find("ul li"))),
		Source:       types.Source{Link: pageURL, Site: u.Site()},
	}

	switch {
	case strings.Contains(name, "Tertiary Education Subsidy"):
		s.Benefits = texts(columns.First().Find("ul li"))
	case strings.Contains(name, "Tulong Dunong Program"):
		paras := texts(sec.Find(`.faq-title:contains("Benefits")`).NextAllFiltered("p"))
		if len(paras) > 0 {
			s.Benefits = []string{strings.Join(paras, " ")}
		}
	}

	sec.Find("a[download]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		link := resolve(doc, href)
		label := cleanText(a.Text())
		if label == "" {
			label = link
		}
		s.Misc = append(s.Misc, types.MiscLink{Label: label, Value: link})
	})

	s.Programs = classify.Programs(s)
	return s, nil
}
