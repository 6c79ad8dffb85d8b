package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/grantscraper/internal/ingest"
	"github.com/pdiddy/grantscraper/internal/reconcile"
	"github.com/pdiddy/grantscraper/pkg/types"
)

func TestPrintSummary(t *testing.T) {
	sum := ingest.Summary{
		Inserted: 3,
		Retired:  2,
		RetiredBy: map[reconcile.Reason]int{
			reconcile.ReasonSuperseded: 1,
			reconcile.ReasonRemoved:    1,
		},
		Sources: []ingest.SourceResult{
			{Name: "tesda", Count: 3, Duration: 1500 * time.Millisecond},
			{Name: "hau", Err: errors.New("tls"), Error: "tls"},
		},
		DryRun: true,
	}

	var buf bytes.Buffer
	printSummary(&buf, sum)
	out := buf.String()
	assert.Contains(t, out, "tesda")
	assert.Contains(t, out, "3 records")
	assert.Contains(t, out, "FAILED: tls")
	assert.Contains(t, out, "Would insert 3, retired 2")
	assert.Contains(t, out, "retired superseded")
	assert.NotContains(t, out, "retired expired")
}

func TestPrintPlan(t *testing.T) {
	plan := reconcile.Plan{
		ToInsert: []types.Scholarship{{Name: "New", Deadline: types.Ongoing(), Source: types.Source{Site: "TESDA"}}},
		ToRetire: []reconcile.Retirement{{
			ID:     "1",
			Key:    types.IdentityKey{Name: "Old", Deadline: "2025-01-31"},
			Site:   "TESDA",
			Reason: reconcile.ReasonExpired,
		}},
		Rejected: []reconcile.Rejection{{Index: 4, Site: "HAU", Reason: "missing name"}},
	}

	var buf bytes.Buffer
	printPlan(&buf, plan)
	assert.Equal(t,
		"+ New (Ongoing) [TESDA]\n"+
			"- Old (2025-01-31) [TESDA] "+string(reconcile.ReasonExpired)+"\n"+
			"! #4 \"\" [HAU] missing name\n",
		buf.String())
}
