// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"regexp"
	"time"

	"github.com/pdiddy/grantscraper/pkg/types"
)

const monthNames = `(January|February|March|April|May|June|July|August|September|October|November|December)`

var (
	closedPhrase = regexp.MustCompile(`(?i)deadline.*has passed|\b(passed|closed)\b`)

	// "January 16-24, 2025": the window ends on the second day.
	dateRange = regexp.MustCompile(`(?i)\b` + monthNames + ` \d{1,2}\s*[-–]\s*(\d{1,2}),? (\d{4})\b`)

	// "January 24, 2025", "January 24th 2025".
	monthFirst = regexp.MustCompile(`(?i)\b` + monthNames + ` (\d{1,2})(?:st|nd|rd|th)?,? (\d{4})\b`)

	// "24 January 2025", as used in key-date tables.
	dayFirst = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)? ` + monthNames + `,? (\d{4})\b`)
)

type dateHit struct {
	end  int
	date time.Time
}

// parseDeadline reads deadline text gathered from a listing. Any "passed"
// or "closed" phrasing wins outright; otherwise the last date mentioned in
// reading order is the deadline. No dates at all yields absent.
func parseDeadline(lines []string, absent types.Deadline) types.Deadline {
	var last *time.Time
	for _, line := range lines {
		if closedPhrase.MatchString(line) {
			return types.Passed()
		}
		if d, ok := lastDate(line); ok {
			last = &d
		}
	}
	if last == nil {
		return absent
	}
	return types.On(*last)
}

// lastDate returns the date whose mention ends furthest into text.
func lastDate(text string) (time.Time, bool) {
	var best *dateHit
	consider := func(end int, month, day, year string) {
		t, err := time.Parse("January 2 2006", month+" "+day+" "+year)
		if err != nil {
			return
		}
		if best == nil || end > best.end {
			best = &dateHit{end: end, date: t}
		}
	}

	for _, m := range dateRange.FindAllStringSubmatchIndex(text, -1) {
		consider(m[1], text[m[2]:m[3]], text[m[4]:m[5]], text[m[6]:m[7]])
	}
	for _, m := range monthFirst.FindAllStringSubmatchIndex(text, -1) {
		consider(m[1], text[m[2]:m[3]], text[m[4]:m[5]], text[m[6]:m[7]])
	}
	for _, m := range dayFirst.FindAllStringSubmatchIndex(text, -1) {
		consider(m[1], text[m[4]:m[5]], text[m[2]:m[3]], text[m[6]:m[7]])
	}

	if best == nil {
		return time.Time{}, false
	}
	return best.date, true
}
