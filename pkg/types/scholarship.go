// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Level is the education level a scholarship targets.
type Level string

const (
	LevelBasicEducation Level = "Basic Education"
	LevelCollege        Level = "College"
	LevelGraduate       Level = "Graduate"
	LevelVocational     Level = "Vocational"
)

// Levels lists every level in classification priority order.
var Levels = []Level{LevelBasicEducation, LevelCollege, LevelGraduate, LevelVocational}

// AwardType is the kind of award a scholarship grants.
type AwardType string

const (
	AwardAthletic  AwardType = "Athletic"
	AwardArt       AwardType = "Art"
	AwardMerit     AwardType = "Merit"
	AwardNeedBased AwardType = "Need-based"
	AwardGrant     AwardType = "Grant"
)

// AwardTypes lists every award type.
var AwardTypes = []AwardType{AwardAthletic, AwardArt, AwardMerit, AwardNeedBased, AwardGrant}

// ParseLevel matches s case-insensitively against the known levels.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels {
		if strings.EqualFold(string(l), strings.TrimSpace(s)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level %q", s)
}

// ParseAwardType matches s case-insensitively against the known award types.
func ParseAwardType(s string) (AwardType, error) {
	for _, a := range AwardTypes {
		if strings.EqualFold(string(a), strings.TrimSpace(s)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown award type %q", s)
}

// GeneralProgram is the fallback program tag when nothing else matches.
const GeneralProgram = "General"

// ListItem is one eligibility or requirement entry: either a plain line of
// text, or a titled group of sub-items.
type ListItem struct {
	// Text is the line for plain items and the group title for grouped ones.
	Text string

	// Items holds the sub-items of a grouped entry.
	Items []string

	// Grouped distinguishes a group (even an empty one) from a plain line.
	Grouped bool
}

// PlainItem returns a single-line entry.
func PlainItem(text string) ListItem { return ListItem{Text: text} }

// GroupedItem returns a titled entry with sub-items.
func GroupedItem(title string, items []string) ListItem {
	return ListItem{Text: title, Items: items, Grouped: true}
}

// Equal compares two items structurally. Nil and empty sub-item lists are equal.
func (li ListItem) Equal(other ListItem) bool {
	if li.Grouped != other.Grouped || li.Text != other.Text {
		return false
	}
	return StringsEqual(li.Items, other.Items)
}

// Flatten renders the item as one line of text for classification.
func (li ListItem) Flatten() string {
	if !li.Grouped || len(li.Items) == 0 {
		return li.Text
	}
	return li.Text + " " + strings.Join(li.Items, " ")
}

type groupedItemJSON struct {
	Title string   `json:"title" yaml:"title"`
	Items []string `json:"items" yaml:"items"`
}

// MarshalJSON encodes plain items as strings and grouped items as objects.
func (li ListItem) MarshalJSON() ([]byte, error) {
	if !li.Grouped {
		return json.Marshal(li.Text)
	}
	return json.Marshal(groupedItemJSON{Title: li.Text, Items: nonNil(li.Items)})
}

// UnmarshalJSON accepts either encoding produced by MarshalJSON.
func (li *ListItem) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*li = PlainItem(text)
		return nil
	}
	var g groupedItemJSON
	if err := json.Unmarshal(data, &g); err != nil {
		return fmt.Errorf("decoding list item: %w", err)
	}
	*li = GroupedItem(g.Title, g.Items)
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (li ListItem) MarshalYAML() (any, error) {
	if !li.Grouped {
		return li.Text, nil
	}
	return groupedItemJSON{Title: li.Text, Items: nonNil(li.Items)}, nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (li *ListItem) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*li = PlainItem(node.Value)
		return nil
	}
	var g groupedItemJSON
	if err := node.Decode(&g); err != nil {
		return fmt.Errorf("decoding list item: %w", err)
	}
	*li = GroupedItem(g.Title, g.Items)
	return nil
}

// Source records where a listing was scraped from.
type Source struct {
	// Link is the URL of the page the record was built from.
	Link string `json:"link" yaml:"link"`

	// Site is the display name of the upstream site.
	Site string `json:"site" yaml:"site"`
}

// MiscLink is an auxiliary labelled link (application form, portal button).
type MiscLink struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// IdentityKey identifies a scholarship across runs: the same name with a
// different deadline is a different entity. Case is preserved.
type IdentityKey struct {
	Name     string
	Deadline string
}

func (k IdentityKey) String() string { return k.Name + k.Deadline }

// Scholarship is the normalized shape every extractor produces.
type Scholarship struct {
	Name         string     `json:"name" yaml:"name"`
	Description  string     `json:"description" yaml:"description"`
	Deadline     Deadline   `json:"deadline" yaml:"deadline"`
	Level        Level      `json:"level" yaml:"level"`
	Type         AwardType  `json:"type" yaml:"type"`
	Eligibility  []ListItem `json:"eligibility" yaml:"eligibility"`
	Benefits     []string   `json:"benefits" yaml:"benefits"`
	Requirements []ListItem `json:"requirements" yaml:"requirements"`
	Programs     []string   `json:"programs" yaml:"programs"`
	Source       Source     `json:"source" yaml:"source"`
	Misc         []MiscLink `json:"misc" yaml:"misc"`
}

// Key returns the identity key of s.
func (s Scholarship) Key() IdentityKey {
	return IdentityKey{Name: s.Name, Deadline: s.Deadline.String()}
}

// Record is a Scholarship as stored in the corpus.
type Record struct {
	Scholarship `yaml:",inline"`

	// ID is assigned by the corpus on insert.
	ID string `json:"id" yaml:"id"`

	// CreatedAt is the insert time.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// RetiredAt is set once when the record stops being offered.
	RetiredAt *time.Time `json:"retired_at,omitempty" yaml:"retired_at,omitempty"`
}

// Live reports whether the record has not been retired.
func (r Record) Live() bool { return r.RetiredAt == nil }

// StringsEqual compares string slices, treating nil and empty as equal.
func StringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ItemsEqual compares list-item slices, treating nil and empty as equal.
func ItemsEqual(a, b []ListItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
