// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/grantscraper/internal/corpus"
	"github.com/pdiddy/grantscraper/internal/logger"
	"github.com/pdiddy/grantscraper/internal/reconcile"
	"github.com/pdiddy/grantscraper/internal/sources"
)

// Summary reports what one ingestion run did.
type Summary struct {
	Inserted       int                      `json:"inserted" yaml:"inserted"`
	Retired        int                      `json:"retired" yaml:"retired"`
	Unchanged      int                      `json:"unchanged" yaml:"unchanged"`
	Rejected       int                      `json:"rejected" yaml:"rejected"`
	SkippedExpired int                      `json:"skipped_expired" yaml:"skipped_expired"`
	Collapsed      int                      `json:"collapsed" yaml:"collapsed"`
	RetiredBy      map[reconcile.Reason]int `json:"retired_by,omitempty" yaml:"retired_by,omitempty"`
	Sources        []SourceResult           `json:"sources" yaml:"sources"`
	DryRun         bool                     `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Duration       time.Duration            `json:"duration" yaml:"duration"`

	// Plan is the computed reconciliation, kept for dry runs.
	Plan *reconcile.Plan `json:"-" yaml:"-"`
}

// Pipeline wires extraction, reconciliation, and corpus writes.
type Pipeline struct {
	Extractors []sources.Extractor
	Corpus     corpus.Gateway
	Log        logger.Logger

	// SourceTimeout bounds each extractor. Zero means no bound.
	SourceTimeout time.Duration

	// Location defines the calendar date used for expiry (default UTC).
	Location *time.Location

	// DryRun computes the plan without writing to the corpus.
	DryRun bool

	// Now overrides the clock in tests.
	Now func() time.Time
}

func (p *Pipeline) logger() logger.Logger {
	if p.Log == nil {
		return logger.NewNop()
	}
	return p.Log
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// today returns the current time in the configured location.
func (p *Pipeline) today() time.Time {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return p.now().In(loc)
}

// Scrape runs every extractor and returns the combined batch without
// touching the corpus.
func (p *Pipeline) Scrape(ctx context.Context) Batch {
	return NewOrchestrator(p.logger(), p.SourceTimeout).RunAll(ctx, p.Extractors)
}

// RunIngestion scrapes all sources, reconciles the batch with the live
// corpus, and writes the result: retirements first, then inserts, so an
// interrupted run is corrected by the next one. Only sites whose extractor
// ran and succeeded lose records for being absent. Per-source failures are
// reported in the summary; only corpus failures return an error.
func (p *Pipeline) RunIngestion(ctx context.Context) (Summary, error) {
	start := p.now()
	log := p.logger()

	batch := p.Scrape(ctx)
	sum := Summary{Sources: batch.Sources, DryRun: p.DryRun}

	live, err := p.Corpus.LoadLive(ctx)
	if err != nil {
		return sum, fmt.Errorf("loading live corpus: %w", err)
	}

	plan := reconcile.Reconcile(batch.Records, live, reconcile.Options{
		Today:                p.today(),
		SkipPresenceForSites: batch.FailedSites(),
		PresenceSites:        batch.SucceededSites(),
	})
	sum.Unchanged = len(plan.Unchanged)
	sum.Rejected = len(plan.Rejected)
	sum.SkippedExpired = len(plan.SkippedExpired)
	sum.Collapsed = len(plan.Collapsed)
	sum.RetiredBy = plan.CountByReason()
	sum.Plan = &plan

	for _, r := range plan.Rejected {
		log.Warn("record rejected", logger.Int("index", r.Index), logger.String("site", r.Site),
			logger.String("name", r.Name), logger.String("reason", r.Reason))
	}
	log.Info("reconciled",
		logger.Int("batch", len(batch.Records)),
		logger.Int("live", len(live)),
		logger.Int("insert", len(plan.ToInsert)),
		logger.Int("retire", len(plan.ToRetire)),
		logger.Int("unchanged", sum.Unchanged),
		logger.Strings("failed_sites", batch.FailedSites()),
	)

	if p.DryRun {
		sum.Inserted = len(plan.ToInsert)
		sum.Retired = len(plan.ToRetire)
		sum.Duration = p.now().Sub(start)
		return sum, nil
	}

	retired, err := p.Corpus.RetireMany(ctx, plan.RetireIDs(), p.now())
	if err != nil {
		return sum, fmt.Errorf("retiring records: %w", err)
	}
	sum.Retired = retired

	inserted, err := p.Corpus.InsertMany(ctx, plan.ToInsert)
	if err != nil {
		return sum, fmt.Errorf("inserting records: %w", err)
	}
	sum.Inserted = len(inserted)
	sum.Duration = p.now().Sub(start)

	log.Info("ingestion complete",
		logger.Int("inserted", sum.Inserted),
		logger.Int("retired", sum.Retired),
		logger.Duration("duration", sum.Duration),
	)
	return sum, nil
}

// RetireExpired retires every live record whose deadline is Passed or on
// or before today without scraping. It returns the planned retirements and
// the number of rows changed.
func (p *Pipeline) RetireExpired(ctx context.Context) ([]reconcile.Retirement, int, error) {
	live, err := p.Corpus.LoadLive(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("loading live corpus: %w", err)
	}

	expired := reconcile.Expired(live, p.today())
	if p.DryRun || len(expired) == 0 {
		return expired, 0, nil
	}

	ids := make([]string, len(expired))
	for i, r := range expired {
		ids[i] = r.ID
	}
	n, err := p.Corpus.RetireMany(ctx, ids, p.now())
	if err != nil {
		return expired, 0, fmt.Errorf("retiring expired records: %w", err)
	}
	p.logger().Info("expired records retired", logger.Int("retired", n))
	return expired, n, nil
}
