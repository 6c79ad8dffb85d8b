// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/grantscraper/internal/classify"
	"github.com/pdiddy/grantscraper/pkg/types"
)

const careersFilipinoBase = "https://careersfilipino.com"

const (
	cfEligibilitySel  = `h2:contains("Eligibility"), h2:contains("Qualifications"), h3:contains("Eligibility"), h3:contains("Qualifications"), h3:contains("Who can apply")`
	cfRequirementsSel = `h2:contains("Requirements"), h3:contains("Requirements"), h3:contains("How to apply")`
	cfBenefitsSel     = `h2:contains("Benefits"), h3:contains("Benefits"), h3:contains("Coverage")`
	cfSectionStop     = `h2, h3, h4, .wp-block-spacer`
	cfDeadlineSel     = `p:contains("Deadline"), p:contains("deadline"), li:contains("Deadline"), li:contains("deadline")`
)

// CareersFilipino scrapes the scholarships category of careersfilipino.com.
// Posts without a stated deadline are treated as open.
type CareersFilipino struct {
	deps Deps
}

// NewCareersFilipino returns the careersfilipino.com extractor.
func NewCareersFilipino(deps Deps) *CareersFilipino { return &CareersFilipino{deps: deps} }

func (c *CareersFilipino) Name() string { return "careersfilipino" }
func (c *CareersFilipino) Site() string { return "Careers Filipino" }

// Extract pages through the category until a page lists nothing or 404s.
func (c *CareersFilipino) Extract(ctx context.Context) ([]types.Scholarship, error) {
	base := strings.TrimRight(c.deps.baseURL(careersFilipinoBase), "/")
	var out []types.Scholarship
	err := crawlPages(ctx, c.deps, c.Site(),
		pageURLf("%s/scholarships/page/%d/", base),
		readCareersFilipinoIndex,
		func(links []string) error {
			recs, err := fetchDetails(ctx, c.deps, c.Site(), links, c.parseDetail)
			out = append(out, recs...)
			return err
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func readCareersFilipinoIndex(doc *goquery.Document) indexPage {
	var idx indexPage
	doc.Find("a.ct-media-container").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && href != "" {
			idx.links = append(idx.links, resolve(doc, href))
		}
	})
	idx.links = dedupe(idx.links)
	idx.listings = len(idx.links)
	idx.next = true
	return idx
}

func (c *CareersFilipino) parseDetail(doc *goquery.Document, link string) (types.Scholarship, error) {
	name := cleanText(doc.Find("h2").First().Text())
	if name == "" {
		name = cleanText(doc.Find("h1").First().Text())
	}
	if err := requireName(c.Site(), link, name); err != nil {
		return types.Scholarship{}, err
	}

	s := types.Scholarship{
		Name:         name,
		Description:  careersFilipinoDescription(doc),
		Deadline:     parseDeadline(rawTexts(doc.Find(cfDeadlineSel)), types.Ongoing()),
		Eligibility:  sectionListsUntil(doc, cfEligibilitySel, cfSectionStop),
		Requirements: sectionListsUntil(doc, cfRequirementsSel, cfSectionStop),
		Source:       types.Source{Link: link, Site: c.Site()},
	}
	for _, item := range sectionListsUntil(doc, cfBenefitsSel, cfSectionStop) {
		s.Benefits = append(s.Benefits, item.Flatten())
	}
	classify.Apply(&s)
	return s, nil
}

// careersFilipinoDescription keeps the opening paragraphs of the post.
func careersFilipinoDescription(doc *goquery.Document) string {
	paras := texts(doc.Find(".entry-content > p"))
	if len(paras) > 2 {
		paras = paras[:2]
	}
	return strings.Join(paras, "\n\n")
}
