// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile computes the insert and retire sets that bring the live
// corpus in line with a freshly scraped batch. It performs no I/O.
//
// Records are matched by identity key (name plus deadline). A changed record
// is never updated in place: the live copy is retired and the incoming copy
// inserted. Listings that disappear upstream are retired, and so is every
// live record whose deadline has passed.
package reconcile

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/pdiddy/grantscraper/pkg/types"
)

// Reason explains why a live record is retired.
type Reason string

const (
	// ReasonSuperseded means the batch carries a changed copy of the record.
	ReasonSuperseded Reason = "superseded"
	// ReasonRemoved means the record's key no longer appears upstream.
	ReasonRemoved Reason = "removed"
	// ReasonExpired means the deadline is Passed or on or before today.
	ReasonExpired Reason = "expired"
	// ReasonDuplicate means another live record already holds the same key.
	ReasonDuplicate Reason = "duplicate"
)

// Retirement is one live record scheduled for retirement.
type Retirement struct {
	ID     string
	Key    types.IdentityKey
	Site   string
	Reason Reason
}

// Rejection is a batch record excluded for lacking required fields.
type Rejection struct {
	// Index is the record's position in the batch.
	Index  int
	Name   string
	Site   string
	Reason string
}

// Options controls a reconciliation.
type Options struct {
	// Today is the calendar date used for expiry. Only its date in its own
	// location matters.
	Today time.Time

	// SkipPresenceForSites lists source sites whose extraction failed this
	// run. Their live records are not retired for being absent from the
	// batch; expiry still applies to them.
	SkipPresenceForSites []string

	// PresenceSites, when non-nil, limits the presence pass to live records
	// of these sites. Sources that did not run this time are left out so
	// their records survive; nil prunes every site.
	PresenceSites []string
}

// Plan is the outcome of a reconciliation.
type Plan struct {
	// ToInsert lists new or changed records in batch order.
	ToInsert []types.Scholarship

	// ToRetire lists live records to retire, each id at most once.
	ToRetire []Retirement

	// Unchanged lists batch keys whose live copy already matches.
	Unchanged []types.IdentityKey

	// SkippedExpired lists batch keys dropped because their deadline passed.
	SkippedExpired []types.IdentityKey

	// Collapsed lists batch indexes dropped as repeats of an earlier key.
	Collapsed []int

	Rejected []Rejection
}

// Empty reports whether the plan writes nothing.
func (p Plan) Empty() bool {
	return len(p.ToInsert) == 0 && len(p.ToRetire) == 0
}

// RetireIDs returns the ids of ToRetire in order.
func (p Plan) RetireIDs() []string {
	ids := make([]string, len(p.ToRetire))
	for i, r := range p.ToRetire {
		ids[i] = r.ID
	}
	return ids
}

// CountByReason tallies ToRetire by reason.
func (p Plan) CountByReason() map[Reason]int {
	out := make(map[Reason]int)
	for _, r := range p.ToRetire {
		out[r.Reason]++
	}
	return out
}

// Reconcile compares batch against the live corpus and returns the writes
// needed to make them agree. Records in live that are already retired are
// ignored.
func Reconcile(batch []types.Scholarship, live []types.Record, opts Options) Plan {
	var plan Plan
	retiring := make(map[string]bool)
	retire := func(r types.Record, reason Reason) {
		if retiring[r.ID] {
			return
		}
		retiring[r.ID] = true
		plan.ToRetire = append(plan.ToRetire, Retirement{
			ID:     r.ID,
			Key:    r.Key(),
			Site:   r.Source.Site,
			Reason: reason,
		})
	}

	current := liveOnly(live)

	byKey := make(map[types.IdentityKey]types.Record, len(current))
	for _, r := range current {
		if r.Deadline.Expired(opts.Today) {
			retire(r, ReasonExpired)
		}
	}
	for _, r := range current {
		if _, dup := byKey[r.Key()]; dup {
			retire(r, ReasonDuplicate)
			continue
		}
		byKey[r.Key()] = r
	}

	seen := make(map[types.IdentityKey]bool, len(batch))
	for i, s := range batch {
		if reason := validate(s); reason != "" {
			plan.Rejected = append(plan.Rejected, Rejection{Index: i, Name: s.Name, Site: s.Source.Site, Reason: reason})
			continue
		}
		key := s.Key()
		if seen[key] {
			plan.Collapsed = append(plan.Collapsed, i)
			continue
		}
		seen[key] = true

		if s.Deadline.Expired(opts.Today) {
			plan.SkippedExpired = append(plan.SkippedExpired, key)
			continue
		}

		existing, ok := byKey[key]
		switch {
		case !ok:
			plan.ToInsert = append(plan.ToInsert, s)
		case Same(existing.Scholarship, s):
			plan.Unchanged = append(plan.Unchanged, key)
		default:
			retire(existing, ReasonSuperseded)
			plan.ToInsert = append(plan.ToInsert, s)
		}
	}

	exempt := make(map[string]bool, len(opts.SkipPresenceForSites))
	for _, site := range opts.SkipPresenceForSites {
		exempt[site] = true
	}
	var covered map[string]bool
	if opts.PresenceSites != nil {
		covered = make(map[string]bool, len(opts.PresenceSites))
		for _, site := range opts.PresenceSites {
			covered[site] = true
		}
	}
	for _, r := range current {
		if seen[r.Key()] || exempt[r.Source.Site] {
			continue
		}
		if covered != nil && !covered[r.Source.Site] {
			continue
		}
		retire(r, ReasonRemoved)
	}

	return plan
}

// Expired returns a retirement for every live record whose deadline is
// Passed or on or before today, in corpus order.
func Expired(live []types.Record, today time.Time) []Retirement {
	var out []Retirement
	for _, r := range liveOnly(live) {
		if r.Deadline.Expired(today) {
			out = append(out, Retirement{ID: r.ID, Key: r.Key(), Site: r.Source.Site, Reason: ReasonExpired})
		}
	}
	return out
}

// Same reports whether two scholarships agree on every compared field.
// Identity fields are covered by the key; programs are derived from the
// other fields and are not compared.
func Same(a, b types.Scholarship) bool {
	return a.Description == b.Description &&
		a.Type == b.Type &&
		a.Level == b.Level &&
		a.Source == b.Source &&
		types.ItemsEqual(a.Eligibility, b.Eligibility) &&
		types.StringsEqual(a.Benefits, b.Benefits) &&
		types.ItemsEqual(a.Requirements, b.Requirements) &&
		slices.Equal(a.Misc, b.Misc)
}

func validate(s types.Scholarship) string {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return "missing name"
	case s.Deadline.IsZero():
		return "missing deadline"
	default:
		return ""
	}
}

// liveOnly drops retired records and orders the rest by creation time,
// then id, so that "first" is well defined for duplicate keys.
func liveOnly(records []types.Record) []types.Record {
	out := make([]types.Record, 0, len(records))
	for _, r := range records {
		if r.Live() {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b types.Record) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
