// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/grantscraper/pkg/types"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.Level
	}{
		{"senior high", "Scholarship for senior high school students", types.LevelBasicEducation},
		{"undergraduate before graduate", "Undergraduate grant for incoming freshmen", types.LevelCollege},
		{"masters", "Open to Master's students", types.LevelGraduate},
		{"phd", "Funding for PhD candidates", types.LevelGraduate},
		{"vocational", "TESDA vocational training", types.LevelVocational},
		{"basic beats college", "For high school graduates entering college", types.LevelBasicEducation},
		{"default", "A scholarship", types.LevelCollege},
		{"empty", "", types.LevelCollege},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Level(tt.text))
		})
	}
}

func TestType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.AwardType
	}{
		{"need beats merit", "this is a merit and need-based scholarship", types.AwardNeedBased},
		{"grant beats merit", "Merit scholarship with a monthly stipend", types.AwardGrant},
		{"merit", "Awarded for academic excellence", types.AwardMerit},
		{"rank", "Top rank graduates", types.AwardMerit},
		{"athletic", "For varsity players", types.AwardAthletic},
		{"art", "Music and dance performers", types.AwardArt},
		{"word boundary", "Partners in smart cities", types.AwardGrant},
		{"default", "Something unrelated", types.AwardGrant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Type(tt.text))
		})
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MBA", "Business"},
		{"bsa", "Agriculture"},
		{"BSCE", "Engineering"},
		{"computer science", "Computer Science"},
		{"nursing", "Medicine"},
		{"civil engineering", "Engineering"},
		{"Bachelor of Laws", "Law"},
		{"", ""},
		{"underwater basket weaving", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Category(tt.in))
		})
	}
}

func TestCandidates(t *testing.T) {
	got := Candidates("Open to students pursuing civil engineering or nursing.")
	assert.Equal(t, []string{"civil engineering", "nursing"}, got)

	assert.Empty(t, Candidates(""))
	assert.Empty(t, Candidates("BS or BA holders"), "two-letter codes are too short")
}

func TestCandidates_Capped(t *testing.T) {
	text := "mathematics physics chemistry biology geology astronomy statistics biochemistry biotechnology nursing pharmacy radiology"
	assert.Len(t, Candidates(text), maxCandidates)
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name string
		in   types.Scholarship
		want []string
	}{
		{
			name: "title match short-circuits",
			in: types.Scholarship{
				Name:        "BS Computer Science Scholarship",
				Description: "Also open to nursing students.",
			},
			want: []string{"Computer Science"},
		},
		{
			name: "combined text",
			in: types.Scholarship{
				Name:        "DOST Undergraduate Scholarship",
				Description: "Open to students pursuing civil engineering or nursing.",
			},
			want: []string{"Engineering", "Medicine"},
		},
		{
			name: "eligibility items contribute",
			in: types.Scholarship{
				Name:        "Provincial Scholarship",
				Eligibility: []types.ListItem{types.GroupedItem("Courses", []string{"accounting"})},
			},
			want: []string{"Business"},
		},
		{
			name: "general fallback",
			in: types.Scholarship{
				Name:        "Local Government Scholarship",
				Description: "Financial assistance for deserving students.",
			},
			want: []string{types.GeneralProgram},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Programs(tt.in))
		})
	}
}

func TestApply(t *testing.T) {
	s := types.Scholarship{
		Name:        "City Scholarship for Graduate Students",
		Description: "Supports indigent learners.",
	}
	Apply(&s)
	assert.Equal(t, types.LevelGraduate, s.Level)
	assert.Equal(t, types.AwardNeedBased, s.Type)
	assert.NotEmpty(t, s.Programs)
}
