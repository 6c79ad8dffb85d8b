// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/grantscraper/pkg/types"
)

const (
	defaultDBPath = "data/grantscraper.db"
	// timeLayout is fixed width so text order in SQLite matches time order.
	// Values are parsed with time.RFC3339Nano, which also reads it.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	// retireChunk keeps IN lists well under SQLite's bound-variable limit.
	retireChunk = 500
)

const columns = `id, name, description, deadline, level, type, eligibility, benefits, requirements, programs, misc, source_link, source_site, created_at, retired_at`

// Store is the SQLite-backed Gateway.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		path = defaultDBPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating corpus directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, unavailable("opening database", err)
	}
	// One writer; WAL lets readers proceed alongside it.
	db.SetMaxOpenConns(1)

	s := NewStore(db)
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an open database without touching the schema.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("pinging database", err)
	}
	return nil
}

// Migrate creates the schema if it does not exist. The partial unique
// index allows one live row per identity key while retired history with
// the same key accumulates freely.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS scholarships (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			deadline TEXT NOT NULL,
			level TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			eligibility TEXT NOT NULL DEFAULT '[]',
			benefits TEXT NOT NULL DEFAULT '[]',
			requirements TEXT NOT NULL DEFAULT '[]',
			programs TEXT NOT NULL DEFAULT '[]',
			misc TEXT NOT NULL DEFAULT '[]',
			source_link TEXT NOT NULL DEFAULT '',
			source_site TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			retired_at TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_scholarships_live_key
			ON scholarships(name, deadline) WHERE retired_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_scholarships_site ON scholarships(source_site)`,
		`CREATE INDEX IF NOT EXISTS idx_scholarships_retired ON scholarships(retired_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return unavailable("executing schema statement", err)
		}
	}
	return nil
}

// row is the scholarships table layout. List fields are JSON text.
type row struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Description  string         `db:"description"`
	Deadline     string         `db:"deadline"`
	Level        string         `db:"level"`
	Type         string         `db:"type"`
	Eligibility  string         `db:"eligibility"`
	Benefits     string         `db:"benefits"`
	Requirements string         `db:"requirements"`
	Programs     string         `db:"programs"`
	Misc         string         `db:"misc"`
	SourceLink   string         `db:"source_link"`
	SourceSite   string         `db:"source_site"`
	CreatedAt    string         `db:"created_at"`
	RetiredAt    sql.NullString `db:"retired_at"`
}

func toRow(r types.Record) (row, error) {
	out := row{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Deadline:    r.Deadline.String(),
		Level:       string(r.Level),
		Type:        string(r.Type),
		SourceLink:  r.Source.Link,
		SourceSite:  r.Source.Site,
		CreatedAt:   r.CreatedAt.UTC().Format(timeLayout),
	}
	if r.RetiredAt != nil {
		out.RetiredAt = sql.NullString{String: r.RetiredAt.UTC().Format(timeLayout), Valid: true}
	}

	fields := []struct {
		dst *string
		v   any
	}{
		{&out.Eligibility, nonNilItems(r.Eligibility)},
		{&out.Benefits, nonNil(r.Benefits)},
		{&out.Requirements, nonNilItems(r.Requirements)},
		{&out.Programs, nonNil(r.Programs)},
		{&out.Misc, nonNilLinks(r.Misc)},
	}
	for _, f := range fields {
		data, err := json.Marshal(f.v)
		if err != nil {
			return row{}, fmt.Errorf("encoding record %s: %w", r.ID, err)
		}
		*f.dst = string(data)
	}
	return out, nil
}

func (r row) record() (types.Record, error) {
	deadline, err := types.ParseDeadline(r.Deadline)
	if err != nil {
		return types.Record{}, fmt.Errorf("decoding record %s: %w", r.ID, err)
	}
	created, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return types.Record{}, fmt.Errorf("decoding record %s created_at: %w", r.ID, err)
	}

	rec := types.Record{
		ID:        r.ID,
		CreatedAt: created,
		Scholarship: types.Scholarship{
			Name:        r.Name,
			Description: r.Description,
			Deadline:    deadline,
			Level:       types.Level(r.Level),
			Type:        types.AwardType(r.Type),
			Source:      types.Source{Link: r.SourceLink, Site: r.SourceSite},
		},
	}
	if r.RetiredAt.Valid {
		at, err := time.Parse(time.RFC3339Nano, r.RetiredAt.String)
		if err != nil {
			return types.Record{}, fmt.Errorf("decoding record %s retired_at: %w", r.ID, err)
		}
		rec.RetiredAt = &at
	}

	fields := []struct {
		src string
		dst any
	}{
		{r.Eligibility, &rec.Eligibility},
		{r.Benefits, &rec.Benefits},
		{r.Requirements, &rec.Requirements},
		{r.Programs, &rec.Programs},
		{r.Misc, &rec.Misc},
	}
	for _, f := range fields {
		if f.src == "" {
			continue
		}
		if err := json.Unmarshal([]byte(f.src), f.dst); err != nil {
			return types.Record{}, fmt.Errorf("decoding record %s: %w", r.ID, err)
		}
	}
	return rec, nil
}

func (s *Store) selectRecords(ctx context.Context, query string, args ...any) ([]types.Record, error) {
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, unavailable("querying scholarships", err)
	}
	out := make([]types.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// LoadLive returns every live record, oldest first.
func (s *Store) LoadLive(ctx context.Context) ([]types.Record, error) {
	return s.selectRecords(ctx,
		`SELECT `+columns+` FROM scholarships WHERE retired_at IS NULL ORDER BY created_at, id`)
}

// List returns records matching f, oldest first.
func (s *Store) List(ctx context.Context, f Filter) ([]types.Record, error) {
	var (
		where []string
		args  []any
	)
	if !f.IncludeRetired {
		where = append(where, "retired_at IS NULL")
	}
	if f.Level != "" {
		where = append(where, "level = ?")
		args = append(args, string(f.Level))
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Site != "" {
		where = append(where, "source_site = ?")
		args = append(args, f.Site)
	}

	query := `SELECT ` + columns + ` FROM scholarships`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return s.selectRecords(ctx, query, args...)
}

const insertSQL = `INSERT OR IGNORE INTO scholarships (` + columns + `)
	VALUES (:id, :name, :description, :deadline, :level, :type, :eligibility, :benefits,
		:requirements, :programs, :misc, :source_link, :source_site, :created_at, :retired_at)`

// InsertMany stores recs in one transaction. See Gateway.
func (s *Store) InsertMany(ctx context.Context, recs []types.Scholarship) ([]types.Record, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, unavailable("beginning transaction", err)
	}
	defer tx.Rollback()

	now := s.now().UTC()
	out := make([]types.Record, 0, len(recs))
	for _, sch := range recs {
		rec := types.Record{ID: uuid.NewString(), Scholarship: sch, CreatedAt: now}
		r, err := toRow(rec)
		if err != nil {
			return nil, err
		}

		res, err := tx.NamedExecContext(ctx, insertSQL, r)
		if err != nil {
			return nil, unavailable("inserting "+sch.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, unavailable("inserting "+sch.Name, err)
		}
		if n == 0 {
			existing, err := liveByKey(ctx, tx, r.Name, r.Deadline)
			if err != nil {
				return nil, err
			}
			rec = existing
		}
		out = append(out, rec)
	}

	if err := tx.Commit(); err != nil {
		return nil, unavailable("committing insert", err)
	}
	return out, nil
}

func liveByKey(ctx context.Context, tx *sqlx.Tx, name, deadline string) (types.Record, error) {
	var r row
	err := tx.GetContext(ctx, &r,
		`SELECT `+columns+` FROM scholarships WHERE name = ? AND deadline = ? AND retired_at IS NULL`,
		name, deadline)
	if err != nil {
		return types.Record{}, unavailable("reading live record "+name, err)
	}
	return r.record()
}

// RetireMany stamps retired_at on ids. See Gateway.
func (s *Store) RetireMany(ctx context.Context, ids []string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	stamp := at.UTC().Format(timeLayout)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, unavailable("beginning transaction", err)
	}
	defer tx.Rollback()

	var total int64
	for start := 0; start < len(ids); start += retireChunk {
		chunk := ids[start:min(start+retireChunk, len(ids))]
		query, args, err := sqlx.In(
			`UPDATE scholarships SET retired_at = ? WHERE retired_at IS NULL AND id IN (?)`,
			stamp, chunk)
		if err != nil {
			return 0, fmt.Errorf("building retire query: %w", err)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return 0, unavailable("retiring records", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, unavailable("retiring records", err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, unavailable("committing retire", err)
	}
	return int(total), nil
}

// Counts summarizes the table for the CLI.
type Counts struct {
	Live    int `db:"live" json:"live" yaml:"live"`
	Retired int `db:"retired" json:"retired" yaml:"retired"`
}

// Count returns live and retired row counts.
func (s *Store) Count(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.GetContext(ctx, &c, `SELECT
		COALESCE(SUM(CASE WHEN retired_at IS NULL THEN 1 ELSE 0 END), 0) AS live,
		COALESCE(SUM(CASE WHEN retired_at IS NULL THEN 0 ELSE 1 END), 0) AS retired
		FROM scholarships`)
	if err != nil {
		return Counts{}, unavailable("counting scholarships", err)
	}
	return c, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilItems(s []types.ListItem) []types.ListItem {
	if s == nil {
		return []types.ListItem{}
	}
	return s
}

func nonNilLinks(s []types.MiscLink) []types.MiscLink {
	if s == nil {
		return []types.MiscLink{}
	}
	return s
}
