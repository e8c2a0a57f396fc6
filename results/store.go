// ════════════════════════════════════════════════════════════════════════════════════════════════
// Benchmark Run Log
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: SQLite persistence for wake latency runs
//
// Description:
//   Every `powerwait bench --db` run appends one row: which platform served the run, the
//   consumer slot, how many messages went through, how often the consumer slept, and the
//   wake latency percentiles. `powerwait history` reads the newest rows back.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package results

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	started   INTEGER NOT NULL,
	platform  TEXT    NOT NULL,
	slot      INTEGER NOT NULL,
	messages  INTEGER NOT NULL,
	woken     INTEGER NOT NULL,
	p50_ns    INTEGER NOT NULL,
	p99_ns    INTEGER NOT NULL,
	max_ns    INTEGER NOT NULL
)`

// recentPrealloc bounds the slice Recent sizes up front; the limit itself
// comes from the command line.
const recentPrealloc = 64

// Run is one benchmark result.
type Run struct {
	Started  time.Time     `json:"started"`
	Platform string        `json:"platform"`
	Slot     uint          `json:"slot"`
	Messages uint64        `json:"messages"`
	Woken    uint64        `json:"woken"` // monitored sleeps the consumer completed
	P50      time.Duration `json:"p50_ns"`
	P99      time.Duration `json:"p99_ns"`
	Max      time.Duration `json:"max_ns"`
}

// Store is an open run log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and makes sure the runs table
// exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "results: open %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "results: create schema in %s", path)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends r.
func (s *Store) Record(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (started, platform, slot, messages, woken, p50_ns, p99_ns, max_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Started.UnixNano(), r.Platform, int64(r.Slot), int64(r.Messages), int64(r.Woken),
		int64(r.P50), int64(r.P99), int64(r.Max))
	return errors.Wrap(err, "results: record run")
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT started, platform, slot, messages, woken, p50_ns, p99_ns, max_ns
		FROM runs
		ORDER BY started DESC, id DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, errors.Wrap(err, "results: query runs")
	}
	defer rows.Close()

	runs := make([]Run, 0, min(n, recentPrealloc))
	for rows.Next() {
		var (
			r               Run
			started, slot   int64
			messages, woken int64
			p50, p99, maxNs int64
		)
		if err := rows.Scan(&started, &r.Platform, &slot, &messages, &woken, &p50, &p99, &maxNs); err != nil {
			return nil, errors.Wrap(err, "results: scan run")
		}
		r.Started = time.Unix(0, started)
		r.Slot = uint(slot)
		r.Messages = uint64(messages)
		r.Woken = uint64(woken)
		r.P50 = time.Duration(p50)
		r.P99 = time.Duration(p99)
		r.Max = time.Duration(maxNs)
		runs = append(runs, r)
	}
	return runs, errors.Wrap(rows.Err(), "results: iterate runs")
}
