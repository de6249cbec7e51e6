// Package history persists finished run reports to a local sqlite
// database so success rates can be compared across runs. Purely additive:
// a run never reads history to decide anything.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/convocheck/internal/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at   TEXT NOT NULL,
	suite        TEXT NOT NULL,
	base_url     TEXT NOT NULL,
	state        TEXT NOT NULL,
	total        INTEGER NOT NULL,
	passed       INTEGER NOT NULL,
	failed       INTEGER NOT NULL,
	errored      INTEGER NOT NULL,
	skipped      INTEGER NOT NULL,
	success_rate REAL NOT NULL,
	report_json  TEXT NOT NULL
);`

// Store is a handle on the run-history database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns ~/.convocheck/history.db.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "convocheck-history.db"
	}
	return filepath.Join(home, ".convocheck", "history.db")
}

// Open opens (or creates) the history database and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("history: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ensure schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record persists one finished report and returns its row id.
func (s *Store) Record(r *report.Report) (int64, error) {
	blob, err := json.Marshal(r)
	if err != nil {
		return 0, fmt.Errorf("history: marshal report: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO runs (started_at, suite, base_url, state, total, passed, failed, errored, skipped, success_rate, report_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.StartedAt.UTC().Format(time.RFC3339),
		r.Suite,
		r.BaseURL,
		string(r.State),
		r.Summary.Total,
		r.Summary.Passed,
		r.Summary.Failed,
		r.Summary.Errored,
		r.Summary.Skipped,
		r.Summary.SuccessRate,
		string(blob),
	)
	if err != nil {
		return 0, fmt.Errorf("history: insert run: %w", err)
	}

	return res.LastInsertId()
}

// Run is one row of the history listing.
type Run struct {
	ID          int64
	StartedAt   time.Time
	Suite       string
	BaseURL     string
	State       string
	Total       int
	Passed      int
	Failed      int
	Errored     int
	Skipped     int
	SuccessRate float64
}

// List returns the most recent runs, newest first.
func (s *Store) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, started_at, suite, base_url, state, total, passed, failed, errored, skipped, success_rate
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.Suite, &r.BaseURL, &r.State,
			&r.Total, &r.Passed, &r.Failed, &r.Errored, &r.Skipped, &r.SuccessRate); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		out = append(out, r)
	}

	return out, rows.Err()
}

// Get loads the full stored report for one run.
func (s *Store) Get(id int64) (*report.Report, error) {
	var blob string
	err := s.db.QueryRow(`SELECT report_json FROM runs WHERE id = ?`, id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("history: run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("history: load run %d: %w", id, err)
	}

	var r report.Report
	if err := json.Unmarshal([]byte(blob), &r); err != nil {
		return nil, fmt.Errorf("history: decode run %d: %w", id, err)
	}
	return &r, nil
}
