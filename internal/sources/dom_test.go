// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/grantscraper/pkg/types"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", cleanText("  a\n\tb   c "))
	assert.Equal(t, "", cleanText(" \n "))
}

func TestListItems(t *testing.T) {
	doc := docFrom(t, "", `<ul id="l">
		<li>Resident of Manila</li>
		<li>Documents
			<ul><li>Form 138</li><li> Birth certificate </li></ul>
		</li>
		<li>   </li>
	</ul>`)

	got := listItems(doc.Find("#l"))
	assert.Equal(t, []types.ListItem{
		types.PlainItem("Resident of Manila"),
		types.GroupedItem("Documents", []string{"Form 138", "Birth certificate"}),
	}, got)
}

func TestSectionLists(t *testing.T) {
	doc := docFrom(t, "", `<div>
		<h2>Eligibility</h2>
		<p>Applicants must be:</p>
		<ul><li>Filipino</li></ul>
		<ol><li>Incoming freshman</li></ol>
		<div class="wp-block-spacer"></div>
		<ul><li>Unrelated</li></ul>
	</div>`)

	got := sectionLists(doc, `h2:contains("Eligibility")`)
	assert.Equal(t, []types.ListItem{
		types.PlainItem("Filipino"),
		types.PlainItem("Incoming freshman"),
	}, got)

	assert.Empty(t, sectionLists(doc, `h2:contains("Benefits")`))
}

func TestBreakLines(t *testing.T) {
	doc := docFrom(t, "", `<p id="p">a. One<br>b. Two<br/><strong>c.</strong> Three<br><br></p>`)
	assert.Equal(t, []string{"a. One", "b. Two", "c. Three"}, breakLines(doc.Find("#p")))
}

func TestResolve(t *testing.T) {
	doc := docFrom(t, "https://example.com/a/b", "<p></p>")

	tests := []struct {
		href string
		want string
	}{
		{"../c", "https://example.com/c"},
		{"/x", "https://example.com/x"},
		{"https://other.test/y", "https://other.test/y"},
		{"  ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolve(doc, tt.href), tt.href)
	}

	bare := docFrom(t, "", "<p></p>")
	assert.Equal(t, "/x", resolve(bare, "/x"))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Tertiary Education Subsidy", titleCase("TERTIARY EDUCATION SUBSIDY"))
	assert.Equal(t, "Tulong Dunong Program", titleCase("tulong dunong program"))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, dedupe([]string{"a", "b", "a", "c", "b"}))
	assert.Empty(t, dedupe(nil))
}

func TestButtonLinks(t *testing.T) {
	doc := docFrom(t, "https://example.com/post/", `<div>
		<a class="btn" href="/apply">Apply Now</a>
		<a class="btn" href="https://example.com/apply">Apply again</a>
		<a class="btn" href="/form.pdf">Form</a>
		<a class="btn" href="/nolabel"> </a>
	</div>`)

	got := buttonLinks(doc, doc.Find("a.btn"))
	assert.Equal(t, []types.MiscLink{
		{Label: "Apply Now", Value: "https://example.com/apply"},
		{Label: "Form", Value: "https://example.com/form.pdf"},
	}, got)
}
