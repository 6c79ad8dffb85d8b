// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/grantscraper/internal/classify"
	"github.com/pdiddy/grantscraper/pkg/types"
)

const updOICABase = "https://oica.upd.edu.ph"

var (
	letterMarker    = regexp.MustCompile(`(?i)^[a-z]\.\s*`)
	submissionLabel = regexp.MustCompile(`(?i)^Submission of the following documents:\s*`)
)

// UPDOICA scrapes the grants and awards of the UP Diliman Office for
// Initiatives in Culture and the Arts. Each grant lives on its own page
// organised as accordion panels.
type UPDOICA struct {
	deps Deps
}

// NewUPDOICA returns the oica.upd.edu.ph extractor.
func NewUPDOICA(deps Deps) *UPDOICA { return &UPDOICA{deps: deps} }

func (u *UPDOICA) Name() string { return "upd-oica" }
func (u *UPDOICA) Site() string { return "UPD-OICA Grants & Awards" }

// Extract follows every grant button on the index page.
func (u *UPDOICA) Extract(ctx context.Context) ([]types.Scholarship, error) {
	indexURL := strings.TrimRight(u.deps.baseURL(updOICABase), "/") + "/grants-awards/"
	doc, err := u.deps.Fetcher.Document(ctx, indexURL)
	if err != nil {
		return nil, &FetchError{Site: u.Site(), URL: indexURL, Err: err}
	}

	var links []string
	doc.Find("a.btn-primary").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && href != "" {
			links = append(links, resolve(doc, href))
		}
	})

	out, err := fetchDetails(ctx, u.deps, u.Site(), dedupe(links), u.parseDetail)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *UPDOICA) parseDetail(doc *goquery.Document, link string) (types.Scholarship, error) {
	name := cleanText(doc.Find("h1.entry-title").Text())
	if err := requireName(u.Site(), link, name); err != nil {
		return types.Scholarship{}, err
	}

	s := types.Scholarship{
		Name:         name,
		Description:  cleanText(doc.Find("p.has-text-align-justify").First().Text()),
		Deadline:     types.Ongoing(),
		Level:        types.LevelCollege,
		Type:         types.AwardArt,
		Eligibility:  plainItems(oicaEligibility(doc)),
		Benefits:     texts(oicaPanel(doc, "ENTITLEMENTS").Find("ol li")),
		Requirements: oicaRequirements(doc),
		Source:       types.Source{Link: link, Site: u.Site()},
	}
	s.Programs = classify.Programs(s)
	return s, nil
}

// oicaPanel returns the accordion panel whose title contains marker.
func oicaPanel(doc *goquery.Document, markers ...string) *goquery.Selection {
	var panel *goquery.Selection
	doc.Find(".wpsm_panel-title").EachWithBreak(func(_ int, title *goquery.Selection) bool {
		upper := strings.ToUpper(title.Text())
		for _, m := range markers {
			if strings.Contains(upper, m) {
				panel = title.Closest(".wpsm_panel")
				return false
			}
		}
		return true
	})
	if panel == nil {
		return doc.Find(".wpsm_panel-none")
	}
	return panel
}

// oicaEligibility merges the eligibility panel with the numbered
// "1. Eligible applicants" paragraph some pages use instead.
func oicaEligibility(doc *goquery.Document) []string {
	out := texts(oicaPanel(doc, "ELIGIBILITY", "ELIGIBLE").Find("ol li"))

	doc.Find("p.has-text-align-left").Each(func(_ int, p *goquery.Selection) {
		if !strings.HasPrefix(strings.TrimSpace(p.Text()), "1. Eligible applicants") {
			return
		}
		for _, line := range breakLines(p.NextFiltered("ol")) {
			if line = strings.TrimSpace(letterMarker.ReplaceAllString(line, "")); line != "" {
				out = append(out, line)
			}
		}
	})
	return dedupe(out)
}

// oicaRequirements reads the application requirements or procedure panel.
// An <ol> headed list followed by a <ul> becomes a group; otherwise the
// first <ol> gives plain items. A "Submission of the following documents"
// entry, when present, replaces everything with its own line breaks.
func oicaRequirements(doc *goquery.Document) []types.ListItem {
	var out []types.ListItem
	doc.Find("h4.wpsm_panel-title").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		title := strings.ToUpper(heading.Find("span.ac_title_class").Text())
		if !strings.Contains(title, "APPLICATION REQUIREMENTS") && !strings.Contains(title, "APPLICATION PROCEDURE") {
			return true
		}
		body := heading.Closest(".wpsm_panel").Find(".wpsm_panel-body")

		body.Find("ol").Each(func(_ int, ol *goquery.Selection) {
			ul := ol.NextFiltered("ul")
			if ul.Length() > 0 {
				var items []string
				ul.Find("li").Each(func(_ int, li *goquery.Selection) {
					if li.Find("ul").Length() > 0 {
						return
					}
					if t := htmlText(li); t != "" {
						items = append(items, t)
					}
				})
				out = append(out, types.GroupedItem(cleanText(ol.Find("li").First().Text()), items))
				return
			}
			if ol.Is(":first-of-type") {
				ol.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
					if t := htmlText(li); t != "" {
						out = append(out, types.PlainItem(t))
					}
				})
			}
		})

		body.Find("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
			if !strings.Contains(li.Text(), "Submission of the following documents:") {
				return true
			}
			out = nil
			for _, line := range breakLines(li) {
				line = submissionLabel.ReplaceAllString(line, "")
				line = strings.TrimSpace(letterMarker.ReplaceAllString(line, ""))
				if line != "" {
					out = append(out, types.PlainItem(line))
				}
			}
			return false
		})
		return false
	})
	return out
}

// htmlText renders a node's inner HTML as text, treating <br> as a space.
func htmlText(sel *goquery.Selection) string {
	html, err := sel.Html()
	if err != nil {
		return cleanText(sel.Text())
	}
	return fragmentText(lineBreak.ReplaceAllString(html, " "))
}
