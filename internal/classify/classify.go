// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify infers education level, award type, and field-of-study
// tags from free scholarship text. Everything here is pure: rule tables are
// plain data evaluated in order, first match wins.
package classify

import (
	"regexp"

	"github.com/pdiddy/grantscraper/pkg/types"
)

// LevelRule maps a text pattern to a level.
type LevelRule struct {
	Level   types.Level
	Pattern *regexp.Regexp
}

// TypeRule maps a text pattern to an award type.
type TypeRule struct {
	Type    types.AwardType
	Pattern *regexp.Regexp
}

// LevelRules is evaluated top to bottom. Patterns are substring matches,
// so "undergraduate" resolves to College before Graduate is tried.
var LevelRules = []LevelRule{
	{types.LevelBasicEducation, regexp.MustCompile(`(?i)elementary|high school|k-12|basic education`)},
	{types.LevelCollege, regexp.MustCompile(`(?i)undergraduate|college|bachelor|tertiary`)},
	{types.LevelGraduate, regexp.MustCompile(`(?i)postgraduate|graduate|master'?s|phd|doctorate|advance`)},
	{types.LevelVocational, regexp.MustCompile(`(?i)vocational|technical|trade school|certificate`)},
}

// DefaultLevel applies when no level rule matches.
const DefaultLevel = types.LevelCollege

// TypeRules is evaluated top to bottom with word-boundary matching.
var TypeRules = []TypeRule{
	{types.AwardNeedBased, regexp.MustCompile(`(?i)\b(financial need|low income|disadvantaged|need-based|indigent|indigency|scholarship for the poor)\b`)},
	{types.AwardGrant, regexp.MustCompile(`(?i)\b(grant|funding|financial aid|assistance|stipend|subsidy)\b`)},
	{types.AwardMerit, regexp.MustCompile(`(?i)\b(merit|excellence|academic achievement|accomplishments|honors|scholastic|score|gwa|top student|valedictorian|rank|summa|magna|cum laude)\b`)},
	{types.AwardAthletic, regexp.MustCompile(`(?i)\b(athlete|sports|olympic|athletic|varsity|sports-related)\b`)},
	{types.AwardArt, regexp.MustCompile(`(?i)\b(art|music|painting|dance|theater|creative|design|fine arts|performing arts)\b`)},
}

// DefaultType applies when no type rule matches.
const DefaultType = types.AwardGrant

// Level returns the first level whose rule matches text.
func Level(text string) types.Level {
	for _, r := range LevelRules {
		if r.Pattern.MatchString(text) {
			return r.Level
		}
	}
	return DefaultLevel
}

// Type returns the first award type whose rule matches text.
func Type(text string) types.AwardType {
	for _, r := range TypeRules {
		if r.Pattern.MatchString(text) {
			return r.Type
		}
	}
	return DefaultType
}
