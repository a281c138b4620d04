// Package store persists batch runs and their records in SQLite.
//
// Build modes:
//   - Default (CGO_ENABLED=0): pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): mattn/go-sqlite3
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/FocuswithJustin/JuniperLectionary/core/calendar"
	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/lectionary"
	"github.com/FocuswithJustin/JuniperLectionary/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	created_at     TEXT NOT NULL,
	row_count      INTEGER NOT NULL,
	record_count   INTEGER NOT NULL,
	skipped        INTEGER NOT NULL,
	parse_failures INTEGER NOT NULL,
	fallbacks      INTEGER NOT NULL,
	unmatched      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	row_index   INTEGER NOT NULL,
	identifier  TEXT NOT NULL,
	cycle       TEXT NOT NULL,
	grp         TEXT NOT NULL,
	step        TEXT NOT NULL,
	digest      TEXT NOT NULL,
	body        TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS records_identifier ON records(identifier);
`

// DriverName returns the database/sql driver name in use.
func DriverName() string {
	return driverName
}

// Info describes the SQLite driver configuration.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// GetInfo returns the compiled-in driver configuration.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      driverType == "cgo",
		Package:    driverPackage,
	}
}

// Run summarises one stored batch.
type Run struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"createdAt"`
	Stats     lectionary.Stats `json:"stats"`
}

// Store is a SQLite database of batch runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.NewIO("migrate", path, err)
	}
	logging.Debug("store opened", "path", path, "driver", driverName)
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBatch stores a batch and its records in one transaction.
func (s *Store) SaveBatch(ctx context.Context, b *lectionary.Batch) error {
	if b.RunID == "" {
		return errors.NewValidation("run_id", "batch has no run id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback() //nolint:errcheck

	st := b.Stats
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, row_count, record_count, skipped, parse_failures, fallbacks, unmatched)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.RunID, time.Now().UTC().Format(time.RFC3339Nano),
		st.Rows, st.Records, st.Skipped, st.ParseFailures, st.Fallbacks, st.Unmatched,
	); err != nil {
		return errors.Wrapf(err, "insert run %s", b.RunID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, position, row_index, identifier, cycle, grp, step, digest, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare record insert")
	}
	defer stmt.Close()

	for i, r := range b.Records {
		body, err := json.Marshal(r)
		if err != nil {
			return errors.Wrapf(err, "encode record %s", r.Identifier)
		}
		if _, err := stmt.ExecContext(ctx,
			b.RunID, i, r.Row, r.Identifier, r.Cycle, string(r.Group), string(r.Step), r.Digest(), string(body),
		); err != nil {
			return errors.Wrapf(err, "insert record %s", r.Identifier)
		}
	}
	return tx.Commit()
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, row_count, record_count, skipped, parse_failures, fallbacks, unmatched
		 FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			created string
		)
		if err := rows.Scan(&r.ID, &created, &r.Stats.Rows, &r.Stats.Records, &r.Stats.Skipped,
			&r.Stats.ParseFailures, &r.Stats.Fallbacks, &r.Stats.Unmatched); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Records returns the records of a run in batch order.
func (s *Store) Records(ctx context.Context, runID string) ([]lectionary.Record, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&n); err != nil {
		return nil, errors.Wrap(err, "query run")
	}
	if n == 0 {
		return nil, errors.NewNotFound("run", runID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_index, cycle, grp, step, body FROM records WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query records")
	}
	defer rows.Close()

	out := []lectionary.Record{}
	for rows.Next() {
		var (
			r           lectionary.Record
			row         int
			cycle, body string
			grp, step   string
		)
		if err := rows.Scan(&row, &cycle, &grp, &step, &body); err != nil {
			return nil, errors.Wrap(err, "scan record")
		}
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			return nil, &errors.ParseError{Format: "JSON", Message: err.Error(), Err: err}
		}
		r.Row = row
		r.Cycle = cycle
		r.Group = calendar.Group(grp)
		r.Step = calendar.Step(step)
		out = append(out, r)
	}
	return out, rows.Err()
}

// FindByDigest returns the identifiers of stored records with the given
// content digest, across runs.
func (s *Store) FindByDigest(ctx context.Context, digest string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT identifier FROM records WHERE digest = ? ORDER BY identifier`, digest)
	if err != nil {
		return nil, errors.Wrap(err, "query digest")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan identifier")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
