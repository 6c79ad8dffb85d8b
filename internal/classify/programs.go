// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/grantscraper/pkg/types"
)

// ProgramEntry maps a degree name or course code to a field-of-study category.
type ProgramEntry struct {
	Program  string
	Category string
}

// ProgramDictionary is consulted in order; the first entry that matches a
// candidate decides its category.
var ProgramDictionary = []ProgramEntry{
	{"BS Computer Science", "Computer Science"},
	{"BS Information Technology", "Computer Science"},
	{"BS Information Systems", "Computer Science"},
	{"BS Cybersecurity", "Computer Science"},
	{"BS Data Science", "Computer Science"},
	{"BS Software Engineering", "Computer Science"},
	{"BS Computer Engineering", "Computer Science"},
	{"BS Computer Programming", "Computer Science"},
	{"BS Database Administration", "Computer Science"},
	{"BS Network Administration", "Computer Science"},
	{"BS IT Management", "Computer Science"},
	{"BSCS", "Computer Science"},
	{"BSIT", "Computer Science"},
	{"BSCpE", "Engineering"},
	{"BSCE", "Engineering"},

	{"BS Mechanical Engineering", "Engineering"},
	{"BS Electrical Engineering", "Engineering"},
	{"BS Civil Engineering", "Engineering"},
	{"BS Chemical Engineering", "Engineering"},
	{"BS Industrial Engineering", "Engineering"},
	{"BS Aerospace Engineering", "Engineering"},
	{"BS Biomedical Engineering", "Engineering"},
	{"BS Environmental Engineering", "Engineering"},
	{"BS Agricultural Engineering", "Agriculture"},
	{"BS Petroleum Engineering", "Engineering"},
	{"BS Materials Engineering", "Engineering"},
	{"BS Nuclear Engineering", "Engineering"},
	{"BS Marine Engineering", "Engineering"},
	{"BSME", "Engineering"},
	{"BSEE", "Engineering"},
	{"BSChE", "Engineering"},
	{"BSIE", "Engineering"},

	{"BS Business Administration", "Business"},
	{"BS Business Management", "Business"},
	{"BS Accounting", "Business"},
	{"BS Finance", "Business"},
	{"BS Marketing", "Business"},
	{"BS Human Resources", "Business"},
	{"BS Entrepreneurship", "Business"},
	{"BS Economics", "Business"},
	{"BS International Business", "Business"},
	{"BS Supply Chain Management", "Business"},
	{"BS Operations Management", "Business"},
	{"BS Project Management", "Business"},
	{"BS Public Administration", "Business"},
	{"BS Hospitality Management", "Business"},
	{"BS Tourism Management", "Business"},
	{"BSBA", "Business"},
	{"BSA", "Agriculture"},
	{"BSE", "Business"},
	{"BSPA", "Business"},
	{"BSTM", "Business"},
	{"BSHM", "Business"},
	{"BBA", "Business"},
	{"MBA", "Business"},

	{"Doctor of Medicine", "Medicine"},
	{"BS Nursing", "Medicine"},
	{"BS Pharmacy", "Medicine"},
	{"BS Physical Therapy", "Medicine"},
	{"BS Occupational Therapy", "Medicine"},
	{"BS Medical Technology", "Medicine"},
	{"BS Radiology", "Medicine"},
	{"Doctor of Dental Medicine", "Medicine"},
	{"Doctor of Veterinary Medicine", "Medicine"},
	{"BS Public Health", "Medicine"},
	{"BS Healthcare Management", "Medicine"},
	{"BS Nutrition", "Medicine"},
	{"BS Psychology", "Medicine"},
	{"BS Mental Health", "Medicine"},
	{"BS Health Sciences", "Medicine"},
	{"BSN", "Medicine"},
	{"BSPT", "Medicine"},
	{"BSOT", "Medicine"},
	{"BSMT", "Medicine"},
	{"DVM", "Medicine"},
	{"MD", "Medicine"},
	{"DMD", "Medicine"},

	{"Bachelor of Elementary Education", "Education"},
	{"Bachelor of Secondary Education", "Education"},
	{"BS Elementary Education", "Education"},
	{"BS Secondary Education", "Education"},
	{"BS Special Education", "Education"},
	{"BS Educational Leadership", "Education"},
	{"BS Curriculum Development", "Education"},
	{"BS Educational Psychology", "Education"},
	{"BS Early Childhood Education", "Education"},
	{"BS Adult Education", "Education"},
	{"BS Educational Technology", "Education"},
	{"BEED", "Education"},
	{"BSED", "Education"},
	{"BEEd", "Education"},
	{"BS Ed", "Education"},
	{"MA Education", "Education"},
	{"MA Teaching", "Education"},
	{"MEd", "Education"},
	{"PhD Education", "Education"},

	{"BA English", "Arts & Humanities"},
	{"BA Literature", "Arts & Humanities"},
	{"BA History", "Arts & Humanities"},
	{"BA Philosophy", "Arts & Humanities"},
	{"BA Sociology", "Arts & Humanities"},
	{"BA Political Science", "Arts & Humanities"},
	{"BA International Relations", "Arts & Humanities"},
	{"BA Communication", "Arts & Humanities"},
	{"BA Journalism", "Arts & Humanities"},
	{"BA Mass Communication", "Arts & Humanities"},
	{"BA Fine Arts", "Arts & Humanities"},
	{"BA Music", "Arts & Humanities"},
	{"BA Theater", "Arts & Humanities"},
	{"BA Film Studies", "Arts & Humanities"},
	{"BA Languages", "Arts & Humanities"},
	{"AB English", "Arts & Humanities"},
	{"AB History", "Arts & Humanities"},
	{"AB Philosophy", "Arts & Humanities"},
	{"AB Political Science", "Arts & Humanities"},
	{"AB Communication", "Arts & Humanities"},
	{"AB Journalism", "Arts & Humanities"},
	{"AB Mass Communication", "Arts & Humanities"},
	{"AB", "Arts & Humanities"},
	{"BA", "Arts & Humanities"},
	{"Arts and Culture", "Arts & Humanities"},
	{"Artistic", "Arts & Humanities"},
	{"Performing Arts", "Arts & Humanities"},
	{"Visual arts", "Arts & Humanities"},
	{"Humanities", "Arts & Humanities"},
	{"Culture", "Arts & Humanities"},
	{"Arts", "Arts & Humanities"},
	{"Visual Arts", "Arts & Humanities"},
	{"Music", "Arts & Humanities"},
	{"Theater", "Arts & Humanities"},
	{"Film Studies", "Arts & Humanities"},
	{"Languages", "Arts & Humanities"},

	{"BS Mathematics", "Science"},
	{"BS Physics", "Science"},
	{"BS Chemistry", "Science"},
	{"BS Biology", "Science"},
	{"BS Environmental Science", "Science"},
	{"BS Geology", "Science"},
	{"BS Astronomy", "Science"},
	{"BS Statistics", "Science"},
	{"BS Applied Mathematics", "Science"},
	{"BS Biochemistry", "Science"},
	{"BS Biotechnology", "Science"},
	{"BS Marine Biology", "Science"},
	{"BS Microbiology", "Science"},
	{"BS Zoology", "Science"},
	{"BS Botany", "Science"},
	{"BSC", "Science"},
	{"BS Math", "Science"},

	{"BS Agriculture", "Agriculture"},
	{"BS Forestry", "Agriculture"},
	{"BS Environmental Studies", "Agriculture"},
	{"BS Sustainable Development", "Agriculture"},
	{"BS Food Science", "Agriculture"},
	{"BS Animal Science", "Agriculture"},
	{"BS Crop Science", "Agriculture"},
	{"BS Agricultural Economics", "Agriculture"},
	{"BS Soil Science", "Agriculture"},
	{"BS Horticulture", "Agriculture"},
	{"BS Ag", "Agriculture"},

	{"BS Architecture", "Architecture & Design"},
	{"BS Interior Design", "Architecture & Design"},
	{"BS Graphic Design", "Architecture & Design"},
	{"BS Fashion Design", "Architecture & Design"},
	{"BS Industrial Design", "Architecture & Design"},
	{"BS Urban Planning", "Architecture & Design"},
	{"BS Landscape Architecture", "Architecture & Design"},
	{"BS Product Design", "Architecture & Design"},
	{"BS Digital Design", "Architecture & Design"},

	{"Bachelor of Laws", "Law"},
	{"BS Legal Studies", "Law"},
	{"BS Criminology", "Law"},
	{"BS Criminal Justice", "Law"},
	{"BS Paralegal Studies", "Law"},
	{"BS Forensic Science", "Law"},
	{"LLB", "Law"},
	{"JD", "Law"},
	{"BSCrim", "Law"},
	{"BSCJ", "Law"},

	{"BS Social Work", "Social Work"},
	{"BS Social Services", "Social Work"},
	{"BS Community Development", "Social Work"},
	{"BS Counseling", "Social Work"},
	{"BS Social Psychology", "Social Work"},
	{"BS Human Services", "Social Work"},
	{"BSW", "Social Work"},
	{"BSSW", "Social Work"},
}

// programPatterns find field-of-study mentions in running text.
var programPatterns = compileAll(
	`\b(computer engineering|software engineering|civil engineering|mechanical engineering|electrical engineering|chemical engineering|industrial engineering|aerospace engineering|biomedical engineering|environmental engineering)\b`,
	`\b(computer science|information technology|information systems|cybersecurity|data science|artificial intelligence|machine learning|software development|web development|mobile development)\b`,
	`\b(business administration|business management|accounting|finance|marketing|human resources|entrepreneurship|economics|international business|supply chain management)\b`,
	`\b(medicine|nursing|pharmacy|physical therapy|occupational therapy|medical technology|radiology|dentistry|veterinary medicine|public health|healthcare management)\b`,
	`\b(curriculum development|educational psychology)\b`,
	`\b(english|literature|history|philosophy|psychology|sociology|political science|international relations|communication|journalism|mass communication|humanities|culture|arts|visual arts|music|theater|film studies|languages)\b`,
	`\b(mathematics|physics|chemistry|biology|environmental science|geology|astronomy|statistics|applied mathematics|biochemistry|biotechnology)\b`,
	`\b(agriculture|agricultural engineering|forestry|environmental studies|sustainable development|food science|animal science|crop science)\b`,
	`\b(architecture|interior design|graphic design|fashion design|industrial design|urban planning|landscape architecture)\b`,
	`\b(law|legal studies|criminology|criminal justice|political science|public administration)\b`,
	`\b(social work|psychology|counseling|social services|community development)\b`,
	`\b(bs|ba|ma|ms|mba|md|phd|dmd|dvm|rn|bsc|bcom|btech|mtech|mcom|msc)\b`,
)

// phrasePatterns catch "studying X engineering" and "bachelor's in X" forms.
var phrasePatterns = compileAll(
	`(?:for|in|studying|pursuing|enrolled in)\s+([a-z\s]+(?:engineering|science|arts|business|medicine|education|law|agriculture|architecture|technology))`,
	`(?:bachelor'?s|master'?s|doctorate|phd)\s+(?:in|of)\s+([a-z\s]+)`,
)

var (
	phraseSubject = regexp.MustCompile(`(?i)(?:for|in|studying|pursuing|enrolled in|bachelor'?s|master'?s|doctorate|phd)\s+(?:in|of)?\s*([a-z\s]+)`)
	stopWords     = regexp.MustCompile(`(?i)\b(degree|program|course|studies|major|minor|scholarship)\b`)
	spaces        = regexp.MustCompile(`\s+`)
)

const (
	maxCandidates = 10

	// Substring containment only considers dictionary entries at least this
	// long; shorter course codes must match on word boundaries.
	minContainedEntry = 4
)

type compiledEntry struct {
	lower    string
	boundary *regexp.Regexp
	category string
}

var dictionary = compileDictionary(ProgramDictionary)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

func compileDictionary(entries []ProgramEntry) []compiledEntry {
	out := make([]compiledEntry, len(entries))
	for i, e := range entries {
		lower := strings.ToLower(e.Program)
		out[i] = compiledEntry{
			lower:    lower,
			boundary: regexp.MustCompile(`\b` + regexp.QuoteMeta(lower) + `\b`),
			category: e.Category,
		}
	}
	return out
}

// Category maps a single program name or phrase to its category: exact
// match first, then word-boundary match, then substring containment in
// either direction. It returns "" when nothing matches.
func Category(program string) string {
	lower := strings.ToLower(strings.TrimSpace(program))
	if lower == "" {
		return ""
	}
	for _, e := range dictionary {
		if lower == e.lower {
			return e.category
		}
	}
	for _, e := range dictionary {
		if e.boundary.MatchString(lower) {
			return e.category
		}
	}
	for _, e := range dictionary {
		if len(e.lower) >= minContainedEntry && strings.Contains(lower, e.lower) {
			return e.category
		}
		if utf8.RuneCountInString(lower) > 2 && strings.Contains(e.lower, lower) {
			return e.category
		}
	}
	return ""
}

// Candidates extracts raw field-of-study phrases from text, lowercased and
// deduplicated in discovery order, at most ten.
func Candidates(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	add := func(raw string) {
		clean := cleanCandidate(raw)
		if utf8.RuneCountInString(clean) <= 2 || seen[clean] {
			return
		}
		seen[clean] = true
		out = append(out, clean)
	}

	for _, p := range programPatterns {
		for _, m := range p.FindAllString(text, -1) {
			add(m)
		}
	}
	for _, p := range phrasePatterns {
		for _, m := range p.FindAllString(text, -1) {
			if sub := phraseSubject.FindStringSubmatch(m); len(sub) > 1 && sub[1] != "" {
				add(sub[1])
			}
		}
	}

	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

func cleanCandidate(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = stopWords.ReplaceAllString(s, "")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// Programs returns the field-of-study categories for s. A match on the name
// alone wins outright; otherwise candidates from the combined text (name
// counted twice) are mapped through the dictionary. It never returns an
// empty slice.
func Programs(s types.Scholarship) []string {
	if c := Category(s.Name); c != "" {
		return []string{c}
	}

	text := strings.Join([]string{
		s.Name + " " + s.Name,
		s.Description,
		strings.Join(s.Benefits, " "),
		flattenItems(s.Eligibility),
		flattenItems(s.Requirements),
	}, " ")

	var out []string
	seen := make(map[string]bool)
	for _, cand := range Candidates(text) {
		c := Category(cand)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		return []string{types.GeneralProgram}
	}
	return out
}

// Text joins the fields level and type rules look at.
func Text(s types.Scholarship) string {
	return strings.Join([]string{s.Name, s.Description, flattenItems(s.Requirements), flattenItems(s.Eligibility)}, " ")
}

// Apply fills Level, Type, and Programs on s from its text fields.
func Apply(s *types.Scholarship) {
	text := Text(*s)
	s.Level = Level(text)
	s.Type = Type(text)
	s.Programs = Programs(*s)
}

func flattenItems(items []types.ListItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.Flatten()
	}
	return strings.Join(parts, " ")
}
