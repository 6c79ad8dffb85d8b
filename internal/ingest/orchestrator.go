// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest runs the extractors, reconciles their output against the
// corpus, and applies the resulting writes.
package ingest

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/pdiddy/grantscraper/internal/logger"
	"github.com/pdiddy/grantscraper/internal/sources"
	"github.com/pdiddy/grantscraper/pkg/types"
)

// SourceResult is the outcome of one extractor run.
type SourceResult struct {
	Name     string        `json:"name" yaml:"name"`
	Site     string        `json:"site" yaml:"site"`
	Count    int           `json:"count" yaml:"count"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Err      error         `json:"-" yaml:"-"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the extractor returned an error.
func (r SourceResult) Failed() bool { return r.Err != nil }

// Batch is the combined output of one extraction round.
type Batch struct {
	// Records holds every extractor's output in registration order.
	Records []types.Scholarship
	Sources []SourceResult
}

// FailedSites returns the Site of every extractor that failed.
func (b Batch) FailedSites() []string {
	var out []string
	for _, s := range b.Sources {
		if s.Failed() {
			out = append(out, s.Site)
		}
	}
	return out
}

// SucceededSites returns the Site of every extractor that ran without error.
// The result is never nil, so an all-failed batch covers no site.
func (b Batch) SucceededSites() []string {
	out := []string{}
	for _, s := range b.Sources {
		if !s.Failed() {
			out = append(out, s.Site)
		}
	}
	return out
}

// Orchestrator runs extractors concurrently with per-source isolation.
type Orchestrator struct {
	log     logger.Logger
	timeout time.Duration
}

// NewOrchestrator returns an Orchestrator. A zero timeout leaves each
// extractor bounded only by ctx.
func NewOrchestrator(log logger.Logger, timeout time.Duration) *Orchestrator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Orchestrator{log: log, timeout: timeout}
}

// RunAll runs every extractor in its own goroutine and waits for all of
// them. A failing or panicking extractor contributes no records and never
// affects the others.
func (o *Orchestrator) RunAll(ctx context.Context, extractors []sources.Extractor) Batch {
	type slot struct {
		records []types.Scholarship
		result  SourceResult
	}
	slots := make([]slot, len(extractors))

	var wg sync.WaitGroup
	for i, ex := range extractors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recs, res := o.runOne(ctx, ex)
			slots[i] = slot{records: recs, result: res}
		}()
	}
	wg.Wait()

	var b Batch
	for _, s := range slots {
		b.Records = append(b.Records, s.records...)
		b.Sources = append(b.Sources, s.result)
	}
	return b
}

func (o *Orchestrator) runOne(ctx context.Context, ex sources.Extractor) (recs []types.Scholarship, res SourceResult) {
	res = SourceResult{Name: ex.Name(), Site: ex.Site()}
	log := o.log.With(logger.String("source", ex.Name()))

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			log.Error("extractor panicked", logger.String("stack", string(debug.Stack())))
			recs = nil
			res.Err = fmt.Errorf("%s: panic: %v", ex.Name(), p)
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			res.Error = res.Err.Error()
			res.Count = 0
			log.Warn("source failed", logger.Duration("duration", res.Duration), logger.Error(res.Err))
			return
		}
		res.Count = len(recs)
		log.Info("source done", logger.Int("records", res.Count), logger.Duration("duration", res.Duration))
	}()

	recs, err := ex.Extract(ctx)
	if err != nil {
		recs, res.Err = nil, err
	}
	return recs, res
}
