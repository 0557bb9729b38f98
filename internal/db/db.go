// Package db records filter decisions in a SQLite file so thresholds can
// be tuned offline against real captured motion.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/snapscroll/snapscroll/snap"
)

type DB struct {
	*sql.DB
}

// Open opens (or creates) the recording database and ensures the schema.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS decisions (
			at_ns      BIGINT NOT NULL,
			code       INTEGER NOT NULL,
			raw        INTEGER NOT NULL,
			snapped    INTEGER NOT NULL,
			detected   TEXT NOT NULL,
			effective  TEXT NOT NULL,
			locked     BOOLEAN NOT NULL,
			suppressed BOOLEAN NOT NULL,
			abs_x      BIGINT NOT NULL,
			abs_y      BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS decisions_at ON decisions(at_ns);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db}, nil
}

// RecordDecision appends one decision row.
func (db *DB) RecordDecision(d snap.Decision) error {
	_, err := db.Exec(
		`INSERT INTO decisions (at_ns, code, raw, snapped, detected, effective, locked, suppressed, abs_x, abs_y)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.At.UnixNano(), d.Code, d.Raw, d.Snapped,
		d.Detected.String(), d.Effective.String(),
		d.LockActive, d.Suppressed, d.AbsX, d.AbsY,
	)
	return err
}

// Summary aggregates a recording for the tuning report.
type Summary struct {
	Events     int
	Suppressed int
	ByDecision map[string]int
}

// Summarize reads back the whole recording.
func (db *DB) Summarize() (Summary, error) {
	s := Summary{ByDecision: make(map[string]int)}

	rows, err := db.Query(`SELECT effective, suppressed, COUNT(*) FROM decisions GROUP BY effective, suppressed`)
	if err != nil {
		return s, err
	}
	defer rows.Close()

	for rows.Next() {
		var effective string
		var suppressed bool
		var n int
		if err := rows.Scan(&effective, &suppressed, &n); err != nil {
			return s, err
		}
		s.Events += n
		if suppressed {
			s.Suppressed += n
			continue
		}
		s.ByDecision[effective] += n
	}
	return s, rows.Err()
}
