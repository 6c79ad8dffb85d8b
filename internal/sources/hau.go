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

const hauBase = "https://www.hau.edu.ph"

const (
	hauSectionSel = "p.default-text-color.primary-font.bold.mt-20.text-uppercase"
	hauColumnSel  = `td[style="width: 48.527%;"]`
)

// HAU scrapes the scholarships and grants page of Holy Angel University.
// The page groups tabbed programs under section headers; the Senior High
// School section is basic education, every other section is college.
type HAU struct {
	deps Deps
}

// NewHAU returns the hau.edu.ph extractor. The site's certificate chain is
// incomplete, so the registry hands it an insecure fetcher by default.
func NewHAU(deps Deps) *HAU { return &HAU{deps: deps} }

func (h *HAU) Name() string { return "hau" }
func (h *HAU) Site() string { return "HAU Scholarships & Grants" }

func (h *HAU) Extract(ctx context.Context) ([]types.Scholarship, error) {
	pageURL := strings.TrimRight(h.deps.baseURL(hauBase), "/") + "/admissions/scholarship-and-grants"
	doc, err := h.deps.Fetcher.Document(ctx, pageURL)
	if err != nil {
		return nil, &FetchError{Site: h.Site(), URL: pageURL, Err: err}
	}

	var out []types.Scholarship
	doc.Find(hauSectionSel).Each(func(_ int, header *goquery.Selection) {
		level := types.LevelCollege
		if strings.EqualFold(cleanText(header.Text()), "Senior High School") {
			level = types.LevelBasicEducation
		}

		tabs := header.NextFiltered(".nav-tabs-wrapper")
		tabs.Find(`.nav-tabs a[data-toggle="tab"]`).Each(func(i int, a *goquery.Selection) {
			name := cleanText(a.Text())
			href, _ := a.Attr("href")
			if err := requireName(h.Site(), pageURL, name); err != nil {
				h.deps.logger().Warn("listing skipped", logger.Int("index", i), logger.Error(err))
				return
			}
			if !strings.HasPrefix(href, "#") {
				return
			}
			pane := tabPane(tabs, strings.TrimPrefix(href, "#"))
			if pane.Length() == 0 {
				h.deps.logger().Warn("listing skipped", logger.String("tab", name),
					logger.Error(&ParseError{Site: h.Site(), URL: pageURL, Reason: "missing tab pane " + href}))
				return
			}
			out = append(out, h.parseTab(pane, name, level, pageURL))
		})
	})
	return out, nil
}

// tabPane finds the element with the given id, matching by attribute so
// ids that are not valid CSS identifiers still resolve.
func tabPane(container *goquery.Selection, id string) *goquery.Selection {
	return container.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("id")
		return v == id
	}).First()
}

func (h *HAU) parseTab(pane *goquery.Selection, name string, level types.Level, pageURL string) types.Scholarship {
	s := types.Scholarship{
		Name:     name,
		Deadline: types.Ongoing(),
		Level:    level,
		Source:   types.Source{Link: pageURL, Site: h.Site()},
	}
	s.Description, s.Benefits = hauDescription(pane)

	eligibility := texts(pane.Find(`td:contains("eligibility:")`).NextFiltered("td").Find("li"))
	requirements := texts(pane.Find(`td:contains("REQUIREMENTS:")`).NextFiltered("td").Find("li"))
	requirements = append(requirements,
		texts(pane.Find(`p:contains("REQUIREMENTS:"), p:contains("Requirements:")`).NextFiltered("ol").Find("li"))...)

	// Two-column qualification tables: the first column with a <ul> lists
	// qualifications, the first column with an <ol> lists requirements.
	columns := pane.Find(hauColumnSel)
	qualified := false
	columns.EachWithBreak(func(_ int, td *goquery.Selection) bool {
		if ul := td.Find("ul"); ul.Length() > 0 {
			eligibility = append(eligibility, texts(ul.Find("li"))...)
			qualified = true
			return false
		}
		return true
	})
	if qualified {
		columns.EachWithBreak(func(_ int, td *goquery.Selection) bool {
			if ol := td.Find("ol"); ol.Length() > 0 {
				requirements = append(requirements, texts(ol.Find("li"))...)
				return false
			}
			return true
		})
	}

	s.Eligibility = plainItems(eligibility)
	s.Requirements = plainItems(requirements)
	s.Type = classify.Type(classify.Text(s))
	s.Programs = classify.Programs(s)
	return s
}

// hauDescription walks the pane's children up to the requirements marker.
// Paragraphs form the description. A list before any paragraph is the
// benefits list; later lists are folded into the description.
func hauDescription(pane *goquery.Selection) (string, []string) {
	var (
		desc     []string
		benefits []string
		reached  bool
	)
	pane.Children().Each(func(_ int, el *goquery.Selection) {
		text := strings.TrimSpace(el.Text())
		marker := strings.Contains(strings.ToLower(text), "requirements:")

		switch {
		case el.Is("p") && !marker:
			if t := cleanText(text); t != "" {
				desc = append(desc, t)
			}
		case el.Is("ul, ol") && !reached:
			items := texts(el.Find("li"))
			if len(desc) == 0 {
				benefits = items
			} else {
				desc = append(desc, items...)
			}
		}
		if marker {
			reached = true
		}
	})
	return strings.Join(desc, "\n"), benefits
}
