// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/grantscraper/pkg/types"
)

// MemoryStore is an in-process Gateway with the same live-key rule as
// Store. It backs dry runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records []types.Record
	now     func() time.Time
}

// NewMemoryStore returns a MemoryStore seeded with records.
func NewMemoryStore(records ...types.Record) *MemoryStore {
	m := &MemoryStore{now: time.Now}
	m.records = append(m.records, records...)
	return m
}

func (m *MemoryStore) LoadLive(ctx context.Context) ([]types.Record, error) {
	return m.List(ctx, Filter{})
}

func (m *MemoryStore) List(ctx context.Context, f Filter) ([]types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("listing records", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []types.Record
	for _, r := range m.records {
		if !f.match(r) {
			continue
		}
		out = append(out, r)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) InsertMany(ctx context.Context, recs []types.Scholarship) ([]types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("inserting records", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	out := make([]types.Record, 0, len(recs))
	for _, s := range recs {
		if existing, ok := m.liveByKey(s.Key()); ok {
			out = append(out, existing)
			continue
		}
		rec := types.Record{ID: uuid.NewString(), Scholarship: s, CreatedAt: now}
		m.records = append(m.records, rec)
		out = append(out, rec)
	}
	return out, nil
}

func (m *MemoryStore) RetireMany(ctx context.Context, ids []string, at time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("retiring records", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	stamp := at.UTC()
	n := 0
	for i := range m.records {
		r := &m.records[i]
		if want[r.ID] && r.Live() {
			r.RetiredAt = &stamp
			n++
		}
	}
	return n, nil
}

// All returns every record, retired ones included, in insertion order.
func (m *MemoryStore) All() []types.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Record, len(m.records))
	copy(out, m.records)
	return out
}

func (m *MemoryStore) liveByKey(key types.IdentityKey) (types.Record, bool) {
	for _, r := range m.records {
		if r.Live() && r.Key() == key {
			return r, true
		}
	}
	return types.Record{}, false
}
