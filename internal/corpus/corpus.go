// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus persists scholarship records. It is the only package that
// touches storage. Records are never deleted; retiring a record stamps
// retired_at once and leaves the row in place.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/grantscraper/pkg/types"
)

// ErrUnavailable marks failures to reach or write the underlying store.
var ErrUnavailable = errors.New("corpus unavailable")

// Gateway is the storage boundary used by the ingestion pipeline.
type Gateway interface {
	// LoadLive returns every record that has not been retired.
	LoadLive(ctx context.Context) ([]types.Record, error)

	// InsertMany stores recs and returns them with ids assigned. A record
	// whose identity key already has a live row is not inserted again; the
	// existing row is returned in its place.
	InsertMany(ctx context.Context, recs []types.Scholarship) ([]types.Record, error)

	// RetireMany stamps retired_at on the given ids and returns how many
	// rows changed. Already-retired or unknown ids are skipped.
	RetireMany(ctx context.Context, ids []string, at time.Time) (int, error)
}

// Lister reads records for the CLI and exports.
type Lister interface {
	List(ctx context.Context, f Filter) ([]types.Record, error)
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Level          types.Level
	Type           types.AwardType
	Site           string
	IncludeRetired bool
	// Limit caps the result count. Zero means no cap.
	Limit int
}

func (f Filter) match(r types.Record) bool {
	switch {
	case !f.IncludeRetired && !r.Live():
		return false
	case f.Level != "" && r.Level != f.Level:
		return false
	case f.Type != "" && r.Type != f.Type:
		return false
	case f.Site != "" && r.Source.Site != f.Site:
		return false
	}
	return true
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
