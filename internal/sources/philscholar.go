// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/grantscraper/internal/classify"
	"github.com/pdiddy/grantscraper/pkg/types"
)

const philscholarBase = "https://philscholar.com"

const (
	philscholarDeadlineSel = `#application-deadline ~ p, #application-deadline ~ table td, #application-deadline ~ li, ` +
		`#application-period-and-key-dates ~ ul, li:contains("Application Deadline"), li:contains("Application Period"), ` +
		`li:contains("Last Day for Filing"), li:contains("Deadline"), p:contains("deadline"), p:contains("apply"), ` +
		`p:contains("submission"), table th:contains("Deadline"), table td:contains("Deadline"), ` +
		`ul li strong:contains("Deadline"), ul li strong:contains("Application Period")`
	philscholarBenefitsSel     = `h2:contains("Benefits"), h2:contains("Scholarship Coverage"), h3:contains("Benefits")`
	philscholarEligibilitySel  = `h2:contains("Eligibility"), h2:contains("Qualifications"), h3:contains("Eligibility")`
	philscholarRequirementsSel = `h3#requirements, h2:contains("Requirements"), h3:contains("Requirements")`
	philscholarDescriptionStop = `h2, div.wp-block-spacer[aria-hidden="true"], blockquote`
)

// Philscholar scrapes the paginated scholarship-programs category of
// philscholar.com, one detail page per listing.
type Philscholar struct {
	deps Deps
}

// NewPhilscholar returns the philscholar.com extractor.
func NewPhilscholar(deps Deps) *Philscholar { return &Philscholar{deps: deps} }

func (p *Philscholar) Name() string { return "philscholar" }
func (p *Philscholar) Site() string { return "Philscholar" }

// Extract walks every category page and scrapes each listing on it.
func (p *Philscholar) Extract(ctx context.Context) ([]types.Scholarship, error) {
	base := strings.TrimRight(p.deps.baseURL(philscholarBase), "/")
	var out []types.Scholarship
	err := crawlPages(ctx, p.deps, p.Site(),
		pageURLf("%s/category/scholarship-programs/page/%d", base),
		readPhilscholarIndex,
		func(links []string) error {
			recs, err := fetchDetails(ctx, p.deps, p.Site(), links, p.parseDetail)
			out = append(out, recs...)
			return err
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// readPhilscholarIndex lists detail links on a category page. Roundup
// posts ("List of ...") are not scholarships and are dropped.
func readPhilscholarIndex(doc *goquery.Document) indexPage {
	var idx indexPage
	doc.Find("h2.wp-block-post-title.has-large-font-size a").Each(func(_ int, a *goquery.Selection) {
		idx.listings++
		if strings.Contains(a.Text(), "List") {
			return
		}
		if href, ok := a.Attr("href"); ok && href != "" {
			idx.links = append(idx.links, resolve(doc, href))
		}
	})
	href, _ := doc.Find("a.wp-block-query-pagination-next").Attr("href")
	idx.next = href != ""
	return idx
}

func (p *Philscholar) parseDetail(doc *goquery.Document, link string) (types.Scholarship, error) {
	title := doc.Find("h1.wp-block-post-title.has-x-large-font-size").Text()
	name := cleanText(strings.SplitN(title, "|", 2)[0])
	if err := requireName(p.Site(), link, name); err != nil {
		return types.Scholarship{}, err
	}

	s := types.Scholarship{
		Name:         name,
		Description:  philscholarDescription(doc),
		Deadline:     parseDeadline(rawTexts(doc.Find(philscholarDeadlineSel)), types.Passed()),
		Benefits:     philscholarBenefits(doc),
		Eligibility:  sectionLists(doc, philscholarEligibilitySel),
		Requirements: sectionLists(doc, philscholarRequirementsSel),
		Misc:         buttonLinks(doc, doc.Find(".wp-block-button__link")),
		Source:       types.Source{Link: link, Site: p.Site()},
	}
	classify.Apply(&s)
	return s, nil
}

// philscholarDescription joins the paragraphs of the "About" section.
func philscholarDescription(doc *goquery.Document) string {
	heading := doc.Find(`h2:contains("About")`).First()
	if heading.Length() == 0 {
		return ""
	}
	return strings.Join(texts(heading.NextUntil(philscholarDescriptionStop).Filter("p")), "\n\n")
}

// philscholarBenefits reads the first list after the benefits heading.
// Items spanning several lines are layout artifacts and are dropped.
func philscholarBenefits(doc *goquery.Document) []string {
	heading := doc.Find(philscholarBenefitsSel).First()
	if heading.Length() == 0 {
		return nil
	}
	var out []string
	heading.NextAllFiltered("ul").First().Find("li").Each(func(_ int, li *goquery.Selection) {
		t := strings.TrimSpace(li.Text())
		if t != "" && !strings.Contains(t, "\n") {
			out = append(out, t)
		}
	})
	return out
}

// rawTexts returns the trimmed text of each node without collapsing
// internal whitespace.
func rawTexts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}
