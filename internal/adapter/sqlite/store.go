// Package sqlite persists assembled XYZ series in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"

	"github.com/couchcryptid/geomag-wdc-etl/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

// Store writes hourly XYZ rows keyed by station and timestamp.
// It implements pipeline.Loader.
type Store struct {
	db    *sql.DB
	clock clockwork.Clock
}

// Open opens or creates a SQLite database at the given path. A nil clock
// uses the real clock for loaded_at stamps.
func Open(path string, clock clockwork.Clock) (*Store, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, clock: clock}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS xyz_hourly (
		station TEXT NOT NULL,
		ts TEXT NOT NULL,
		x REAL,
		y REAL,
		z REAL,
		loaded_at TEXT NOT NULL,
		PRIMARY KEY (station, ts)
	);

	CREATE INDEX IF NOT EXISTS idx_xyz_hourly_ts ON xyz_hourly(ts);
	`)
	return err
}

func (s *Store) Name() string { return "sqlite" }

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load inserts every row of the table in one transaction. An hour already
// stored for the station aborts the whole load with a consistency error.
func (s *Store) Load(ctx context.Context, table domain.XYZTable) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO xyz_hourly (station, ts, x, y, z, loaded_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	loadedAt := s.clock.Now().UTC().Format(time.RFC3339)
	for _, r := range table.Rows {
		_, err := stmt.ExecContext(ctx, table.Code, r.Time.Format(timeLayout), nullable(r.X), nullable(r.Y), nullable(r.Z), loadedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return &domain.ConsistencyError{Kind: domain.ConflictDuplicateTimestamp, Code: table.Code, Time: r.Time}
			}
			return fmt.Errorf("insert %s %s: %w", table.Code, r.Time.Format(timeLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Series returns the stored rows for a station with from <= time < to,
// ascending.
func (s *Store) Series(ctx context.Context, code string, from, to time.Time) (domain.XYZTable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, x, y, z FROM xyz_hourly WHERE station = ? AND ts >= ? AND ts < ? ORDER BY ts`,
		code, from.Format(timeLayout), to.Format(timeLayout))
	if err != nil {
		return domain.XYZTable{}, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	table := domain.XYZTable{Code: code}
	for rows.Next() {
		var (
			ts      string
			x, y, z sql.NullFloat64
		)
		if err := rows.Scan(&ts, &x, &y, &z); err != nil {
			return domain.XYZTable{}, fmt.Errorf("scan series: %w", err)
		}
		t, err := time.Parse(timeLayout, ts)
		if err != nil {
			return domain.XYZTable{}, fmt.Errorf("parse ts %q: %w", ts, err)
		}
		table.Rows = append(table.Rows, domain.XYZRow{Time: t, X: fromNullable(x), Y: fromNullable(y), Z: fromNullable(z)})
	}
	if err := rows.Err(); err != nil {
		return domain.XYZTable{}, fmt.Errorf("iterate series: %w", err)
	}
	return table, nil
}

func nullable(v domain.Value) sql.NullFloat64 {
	f, ok := v.Get()
	return sql.NullFloat64{Float64: f, Valid: ok}
}

func fromNullable(n sql.NullFloat64) domain.Value {
	if !n.Valid {
		return domain.Missing
	}
	return domain.Some(n.Float64)
}

func isUniqueViolation(err error) bool {
	var coded interface{ Code() int }
	// SQLITE_CONSTRAINT_PRIMARYKEY and SQLITE_CONSTRAINT_UNIQUE.
	if errors.As(err, &coded) && (coded.Code() == 1555 || coded.Code() == 2067) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
