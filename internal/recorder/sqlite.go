package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the fetch journal to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetch_attempts (
			id           TEXT PRIMARY KEY,
			timestamp    INTEGER NOT NULL,
			source       TEXT,
			outcome      TEXT NOT NULL,
			slots        INTEGER,
			window_start INTEGER,
			window_end   INTEGER,
			retry_count  INTEGER,
			next_due     INTEGER,
			error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_ts ON fetch_attempts(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordFetch(a *FetchAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO fetch_attempts
		(id, timestamp, source, outcome, slots, window_start, window_end, retry_count, next_due, error)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.At.Unix(), a.Source, a.Outcome, a.Slots,
		unixOrZero(a.WindowStart), unixOrZero(a.WindowEnd),
		a.RetryCount, unixOrZero(a.NextDue), a.Error,
	)
	return err
}

// CountByOutcome returns how many attempts ended with outcome.
func (r *SQLiteRecorder) CountByOutcome(outcome string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM fetch_attempts WHERE outcome = ?`, outcome).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
