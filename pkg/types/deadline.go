// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// DeadlineKind discriminates the three deadline variants. The zero value
// marks a deadline that was never set.
type DeadlineKind int

const (
	DeadlineUnset DeadlineKind = iota
	DeadlineOngoing
	DeadlinePassed
	DeadlineDate
)

const (
	ongoingText = "Ongoing"
	passedText  = "Passed"

	// DateLayout is the calendar-date encoding used in storage and exports.
	DateLayout = "2006-01-02"
)

// Deadline is either a calendar date, Ongoing (rolling, no fixed date), or
// Passed (the source reports the window as closed). Dates carry no time of
// day; they are normalized to midnight UTC.
type Deadline struct {
	kind DeadlineKind
	date time.Time
}

// Ongoing returns the rolling-deadline variant.
func Ongoing() Deadline { return Deadline{kind: DeadlineOngoing} }

// Passed returns the closed-deadline variant.
func Passed() Deadline { return Deadline{kind: DeadlinePassed} }

// On returns a dated deadline for the calendar date of t in t's location.
func On(t time.Time) Deadline {
	return Deadline{kind: DeadlineDate, date: CivilDate(t)}
}

// Date builds a dated deadline from calendar components.
func Date(year int, month time.Month, day int) Deadline {
	return Deadline{kind: DeadlineDate, date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// CivilDate drops the time of day from t, keeping the calendar date as seen
// in t's own location, and returns it as midnight UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Kind reports which variant d holds.
func (d Deadline) Kind() DeadlineKind { return d.kind }

// IsZero reports whether the deadline was never set.
func (d Deadline) IsZero() bool { return d.kind == DeadlineUnset }

// IsOngoing reports whether d is the rolling variant.
func (d Deadline) IsOngoing() bool { return d.kind == DeadlineOngoing }

// Time returns the calendar date for dated deadlines and the zero time otherwise.
func (d Deadline) Time() time.Time {
	if d.kind != DeadlineDate {
		return time.Time{}
	}
	return d.date
}

// Expired reports whether the deadline is Passed or falls on or before
// today. Ongoing and unset deadlines never expire.
func (d Deadline) Expired(today time.Time) bool {
	switch d.kind {
	case DeadlinePassed:
		return true
	case DeadlineDate:
		return !d.date.After(CivilDate(today))
	default:
		return false
	}
}

func (d Deadline) String() string {
	switch d.kind {
	case DeadlineOngoing:
		return ongoingText
	case DeadlinePassed:
		return passedText
	case DeadlineDate:
		return d.date.Format(DateLayout)
	default:
		return ""
	}
}

// ParseDeadline decodes the storage encoding: "Ongoing", "Passed", a
// YYYY-MM-DD date, or an RFC 3339 timestamp (its calendar date is kept).
func ParseDeadline(s string) (Deadline, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, ongoingText):
		return Ongoing(), nil
	case strings.EqualFold(s, passedText):
		return Passed(), nil
	case s == "":
		return Deadline{}, fmt.Errorf("empty deadline")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return On(t), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Deadline{}, fmt.Errorf("parsing deadline %q: %w", s, err)
	}
	return On(t), nil
}

// MarshalText implements encoding.TextMarshaler (JSON and YAML use it).
func (d Deadline) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Deadline) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Deadline{}
		return nil
	}
	parsed, err := ParseDeadline(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
