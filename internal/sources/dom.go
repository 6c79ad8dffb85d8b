// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/grantscraper/pkg/types"
)

var lineBreak = regexp.MustCompile(`(?i)<br\s*/?>`)

// cleanText collapses runs of whitespace and trims the result.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// texts returns the cleaned, non-empty text of every node in sel.
func texts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := cleanText(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// plainItems wraps each string as a plain list item.
func plainItems(lines []string) []types.ListItem {
	if len(lines) == 0 {
		return nil
	}
	out := make([]types.ListItem, len(lines))
	for i, l := range lines {
		out[i] = types.PlainItem(l)
	}
	return out
}

// listItems converts the direct <li> children of an <ol>/<ul>. An item with
// a nested <ul> becomes a group titled by its own text.
func listItems(list *goquery.Selection) []types.ListItem {
	var out []types.ListItem
	list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		own := li.Clone()
		own.ChildrenFiltered("ul").Remove()
		title := cleanText(own.Text())

		sub := texts(li.Find("ul li"))
		switch {
		case len(sub) > 0:
			out = append(out, types.GroupedItem(title, sub))
		case title != "":
			out = append(out, types.PlainItem(title))
		}
	})
	return out
}

// sectionLists collects the list items of every <ol>/<ul> following the
// headings matched by headingSel, stopping at the first block spacer.
func sectionLists(doc *goquery.Document, headingSel string) []types.ListItem {
	return sectionListsUntil(doc, headingSel, ".wp-block-spacer")
}

// sectionListsUntil is sectionLists with a caller-chosen stop selector.
func sectionListsUntil(doc *goquery.Document, headingSel, stop string) []types.ListItem {
	var out []types.ListItem
	doc.Find(headingSel).First().NextAll().EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if el.Is(stop) {
			return false
		}
		if el.Is("ol, ul") {
			out = append(out, listItems(el)...)
		}
		return true
	})
	return out
}

// fragmentText renders an HTML fragment as cleaned plain text.
func fragmentText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div>" + fragment + "</div>"))
	if err != nil {
		return cleanText(fragment)
	}
	return cleanText(doc.Text())
}

// breakLines splits the inner HTML of sel on <br> tags and returns the
// non-empty text of each piece.
func breakLines(sel *goquery.Selection) []string {
	html, err := sel.Html()
	if err != nil {
		return nil
	}
	var out []string
	for _, part := range lineBreak.Split(html, -1) {
		if t := fragmentText(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// resolve turns href into an absolute URL relative to the document.
func resolve(doc *goquery.Document, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || doc.Url == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return doc.Url.ResolveReference(ref).String()
}

// titleCase lowercases s and upper-cases the first letter of each word.
func titleCase(s string) string {
	var b strings.Builder
	start := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			start = true
			b.WriteRune(r)
			continue
		}
		if start {
			r = unicode.ToUpper(r)
			start = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// dedupe drops repeated strings, keeping the first occurrence.
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// buttonLinks collects labelled links from sel, one per distinct URL.
func buttonLinks(doc *goquery.Document, sel *goquery.Selection) []types.MiscLink {
	var out []types.MiscLink
	seen := make(map[string]bool)
	sel.Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		label := cleanText(a.Text())
		link := resolve(doc, href)
		if link == "" || label == "" || seen[link] {
			return
		}
		seen[link] = true
		out = append(out, types.MiscLink{Label: label, Value: link})
	})
	return out
}
