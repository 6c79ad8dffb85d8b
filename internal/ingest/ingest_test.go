// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/grantscraper/internal/corpus"
	"github.com/pdiddy/grantscraper/internal/reconcile"
	"github.com/pdiddy/grantscraper/internal/sources"
	"github.com/pdiddy/grantscraper/pkg/types"
)

type fakeExtractor struct {
	name, site string
	records    []types.Scholarship
	err        error
	delay      time.Duration
	panics     bool
	calls      atomic.Int32
}

func (f *fakeExtractor) Name() string { return f.name }
func (f *fakeExtractor) Site() string { return f.site }

func (f *fakeExtractor) Extract(ctx context.Context) ([]types.Scholarship, error) {
	f.calls.Add(1)
	if f.panics {
		panic("selector exploded")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.records, f.err
}

func award(name, site string, d types.Deadline) types.Scholarship {
	return types.Scholarship{
		Name:        name,
		Description: "About " + name,
		Deadline:    d,
		Level:       types.LevelCollege,
		Type:        types.AwardMerit,
		Source:      types.Source{Link: "https://example.test/" + name, Site: site},
	}
}

var manila = time.FixedZone("PHT", 8*60*60)

// 2025-06-01 02:00 in Manila, still May 31 in UTC.
var runAt = time.Date(2025, time.May, 31, 18, 0, 0, 0, time.UTC)

func TestRunAll_PreservesRegistrationOrder(t *testing.T) {
	slow := &fakeExtractor{name: "slow", site: "Slow", delay: 20 * time.Millisecond,
		records: []types.Scholarship{award("S1", "Slow", types.Ongoing()), award("S2", "Slow", types.Ongoing())}}
	fast := &fakeExtractor{name: "fast", site: "Fast",
		records: []types.Scholarship{award("F1", "Fast", types.Ongoing())}}

	b := NewOrchestrator(nil, 0).RunAll(context.Background(), []sources.Extractor{slow, fast})

	names := make([]string, len(b.Records))
	for i, r := range b.Records {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"S1", "S2", "F1"}, names)
	require.Len(t, b.Sources, 2)
	assert.Equal(t, "slow", b.Sources[0].Name)
	assert.Equal(t, 2, b.Sources[0].Count)
	assert.Equal(t, 1, b.Sources[1].Count)
	assert.Empty(t, b.FailedSites())
}

func TestRunAll_IsolatesFailures(t *testing.T) {
	ok := &fakeExtractor{name: "ok", site: "OK", records: []types.Scholarship{award("A", "OK", types.Ongoing())}}
	failing := &fakeExtractor{name: "down", site: "Down", err: &sources.FetchError{Site: "Down", URL: "https://down.test", Err: errors.New("503")},
		records: []types.Scholarship{award("partial", "Down", types.Ongoing())}}
	panicking := &fakeExtractor{name: "boom", site: "Boom", panics: true}
	hanging := &fakeExtractor{name: "hang", site: "Hang", delay: time.Minute}

	b := NewOrchestrator(nil, 50*time.Millisecond).RunAll(context.Background(),
		[]sources.Extractor{ok, failing, panicking, hanging})

	require.Len(t, b.Records, 1, "failed sources contribute nothing")
	assert.Equal(t, "A", b.Records[0].Name)
	assert.Equal(t, []string{"Down", "Boom", "Hang"}, b.FailedSites())

	assert.Zero(t, b.Sources[1].Count)
	assert.Contains(t, b.Sources[2].Error, "panic")
	assert.ErrorIs(t, b.Sources[3].Err, context.DeadlineExceeded)
}

func TestRunAll_EachExtractorOnce(t *testing.T) {
	exs := make([]sources.Extractor, 5)
	fakes := make([]*fakeExtractor, 5)
	for i := range fakes {
		fakes[i] = &fakeExtractor{name: "x", site: "X"}
		exs[i] = fakes[i]
	}
	NewOrchestrator(nil, 0).RunAll(context.Background(), exs)
	for _, f := range fakes {
		assert.EqualValues(t, 1, f.calls.Load())
	}
}

func pipeline(store corpus.Gateway, exs ...sources.Extractor) *Pipeline {
	return &Pipeline{
		Extractors: exs,
		Corpus:     store,
		Location:   manila,
		Now:        func() time.Time { return runAt },
	}
}

func TestRunIngestion_InsertsAndSupersedes(t *testing.T) {
	old := award("DOST", "PhilScholar", types.Date(2025, time.August, 29))
	store := corpus.NewMemoryStore(types.Record{ID: "old", CreatedAt: runAt.Add(-24 * time.Hour), Scholarship: old})

	changed := old
	changed.Description = "Updated"
	ex := &fakeExtractor{name: "philscholar", site: "PhilScholar", records: []types.Scholarship{
		changed,
		award("CHED", "PhilScholar", types.Ongoing()),
	}}

	sum, err := pipeline(store, ex).RunIngestion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Inserted)
	assert.Equal(t, 1, sum.Retired)
	assert.Equal(t, 1, sum.RetiredBy[reconcile.ReasonSuperseded])

	live, err := store.LoadLive(context.Background())
	require.NoError(t, err)
	require.Len(t, live, 2)
	for _, r := range live {
		assert.NotEqual(t, "old", r.ID)
		if r.Name == "DOST" {
			assert.Equal(t, "Updated", r.Description)
		}
	}
}

func TestRunIngestion_Idempotent(t *testing.T) {
	store := corpus.NewMemoryStore()
	ex := &fakeExtractor{name: "tesda", site: "TESDA", records: []types.Scholarship{
		award("TWSP", "TESDA", types.Ongoing()),
		award("STEP", "TESDA", types.Date(2025, time.December, 31)),
	}}
	p := pipeline(store, ex)

	first, err := p.RunIngestion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Inserted)

	second, err := p.RunIngestion(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Inserted)
	assert.Zero(t, second.Retired)
	assert.Equal(t, 2, second.Unchanged)
	assert.Len(t, store.All(), 2)
}

func TestRunIngestion_FailedSiteKeepsItsRecords(t *testing.T) {
	store := corpus.NewMemoryStore(
		types.Record{ID: "1", CreatedAt: runAt, Scholarship: award("Kept", "HAU", types.Ongoing())},
		types.Record{ID: "2", CreatedAt: runAt, Scholarship: award("Gone", "TESDA", types.Ongoing())},
	)
	down := &fakeExtractor{name: "hau", site: "HAU", err: errors.New("tls handshake")}
	up := &fakeExtractor{name: "tesda", site: "TESDA"}

	sum, err := pipeline(store, down, up).RunIngestion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Retired)
	assert.Equal(t, 1, sum.RetiredBy[reconcile.ReasonRemoved])
	assert.Equal(t, "tls handshake", sum.Sources[0].Error)

	live, err := store.LoadLive(context.Background())
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "Kept", live[0].Name)
}

func TestRunIngestion_ExpiryUsesConfiguredZone(t *testing.T) {
	// runAt is still 2025-05-31 in UTC but already June 1 in Manila.
	store := corpus.NewMemoryStore(
		types.Record{ID: "1", CreatedAt: runAt, Scholarship: award("Due", "Other", types.Date(2025, time.June, 1))},
	)
	p := pipeline(store)

	p.Location = time.UTC
	expired, _, err := p.RetireExpired(context.Background())
	require.NoError(t, err)
	assert.Empty(t, expired)

	p.Location = manila
	expired, n, err := p.RetireExpired(context.Background())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, 1, n)
}

func TestRunIngestion_SkipsExpiredAndRejected(t *testing.T) {
	store := corpus.NewMemoryStore()
	ex := &fakeExtractor{name: "careersfilipino", site: "Careers Filipino", records: []types.Scholarship{
		award("Past", "Careers Filipino", types.Passed()),
		award("  ", "Careers Filipino", types.Ongoing()),
		award("Open", "Careers Filipino", types.Ongoing()),
		award("Open", "Careers Filipino", types.Ongoing()),
	}}

	sum, err := pipeline(store, ex).RunIngestion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Inserted)
	assert.Equal(t, 1, sum.SkippedExpired)
	assert.Equal(t, 1, sum.Rejected)
	assert.Equal(t, 1, sum.Collapsed)
}

func TestRunIngestion_DryRunWritesNothing(t *testing.T) {
	store := corpus.NewMemoryStore(types.Record{ID: "1", CreatedAt: runAt, Scholarship: award("Old", "TESDA", types.Ongoing())})
	ex := &fakeExtractor{name: "tesda", site: "TESDA", records: []types.Scholarship{award("New", "TESDA", types.Ongoing())}}
	p := pipeline(store, ex)
	p.DryRun = true

	sum, err := p.RunIngestion(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.DryRun)
	assert.Equal(t, 1, sum.Inserted)
	assert.Equal(t, 1, sum.Retired)
	require.NotNil(t, sum.Plan)
	assert.Len(t, sum.Plan.ToInsert, 1)

	all := store.All()
	require.Len(t, all, 1)
	assert.True(t, all[0].Live())
}

type brokenStore struct {
	corpus.Gateway
	loadErr, retireErr error
	inserted           int
}

func (b *brokenStore) LoadLive(ctx context.Context) ([]types.Record, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	return b.Gateway.LoadLive(ctx)
}

func (b *brokenStore) RetireMany(ctx context.Context, ids []string, at time.Time) (int, error) {
	if b.retireErr != nil {
		return 0, b.retireErr
	}
	return b.Gateway.RetireMany(ctx, ids, at)
}

func (b *brokenStore) InsertMany(ctx context.Context, in []types.Scholarship) ([]types.Record, error) {
	b.inserted += len(in)
	return b.Gateway.InsertMany(ctx, in)
}

func TestRunIngestion_CorpusErrors(t *testing.T) {
	ex := &fakeExtractor{name: "tesda", site: "TESDA", records: []types.Scholarship{award("New", "TESDA", types.Ongoing())}}
	unavailable := errors.Join(corpus.ErrUnavailable, errors.New("locked"))

	t.Run("load", func(t *testing.T) {
		s := &brokenStore{Gateway: corpus.NewMemoryStore(), loadErr: unavailable}
		_, err := pipeline(s, ex).RunIngestion(context.Background())
		assert.ErrorIs(t, err, corpus.ErrUnavailable)
		assert.Zero(t, s.inserted)
	})

	t.Run("retire stops before insert", func(t *testing.T) {
		s := &brokenStore{Gateway: corpus.NewMemoryStore(
			types.Record{ID: "1", CreatedAt: runAt, Scholarship: award("Old", "TESDA", types.Ongoing())},
		), retireErr: unavailable}
		_, err := pipeline(s, ex).RunIngestion(context.Background())
		assert.ErrorIs(t, err, corpus.ErrUnavailable)
		assert.Zero(t, s.inserted)
	})
}

func TestRunIngestion_SubsetRunKeepsOtherSites(t *testing.T) {
	store := corpus.NewMemoryStore(
		types.Record{ID: "1", CreatedAt: runAt, Scholarship: award("TWSP", "TESDA", types.Ongoing())},
		types.Record{ID: "2", CreatedAt: runAt, Scholarship: award("Phil A", "PhilScholar", types.Ongoing())},
		types.Record{ID: "3", CreatedAt: runAt, Scholarship: award("Phil B", "PhilScholar", types.Ongoing())},
	)
	only := &fakeExtractor{name: "philscholar", site: "PhilScholar",
		records: []types.Scholarship{award("Phil A", "PhilScholar", types.Ongoing())}}

	sum, err := pipeline(store, only).RunIngestion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Retired)
	assert.Equal(t, 1, sum.RetiredBy[reconcile.ReasonRemoved])

	live, err := store.LoadLive(context.Background())
	require.NoError(t, err)
	names := make([]string, len(live))
	for i, r := range live {
		names[i] = r.Name
	}
	assert.ElementsMatch(t, []string{"TWSP", "Phil A"}, names)
}

func TestRunIngestion_AllFailedPrunesNothing(t *testing.T) {
	store := corpus.NewMemoryStore(
		types.Record{ID: "1", CreatedAt: runAt, Scholarship: award("TWSP", "TESDA", types.Ongoing())},
	)
	down := &fakeExtractor{name: "philscholar", site: "PhilScholar", err: errors.New("503")}

	sum, err := pipeline(store, down).RunIngestion(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.Retired)
}

func TestBatch_SucceededSites(t *testing.T) {
	b := Batch{Sources: []SourceResult{
		{Site: "A"},
		{Site: "B", Err: errors.New("down")},
	}}
	assert.Equal(t, []string{"A"}, b.SucceededSites())
	assert.NotNil(t, Batch{}.SucceededSites())
}
