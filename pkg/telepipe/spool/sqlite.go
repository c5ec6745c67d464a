package spool

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists spooled entries to SQLite, so unsent telemetry
// survives restarts. Suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens (and if necessary creates) a spool database.
// The path should be a file path (e.g. "./spool.db") or ":memory:" for
// testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Timestamps are unix nanoseconds; comparisons and ordering stay numeric.
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS spool (
			event_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			params BLOB NOT NULL,
			attempts INTEGER NOT NULL,
			first_failed_at INTEGER NOT NULL,
			last_failed_at INTEGER NOT NULL,
			next_retry_at INTEGER NOT NULL,
			last_error TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_spool_next_retry
		ON spool(next_retry_at)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO spool (event_id, name, category, params, attempts,
			first_failed_at, last_failed_at, next_retry_at, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			attempts = excluded.attempts,
			last_failed_at = excluded.last_failed_at,
			next_retry_at = excluded.next_retry_at,
			last_error = excluded.last_error
	`, e.EventID, e.Name, e.Category, e.Params, e.Attempts,
		e.FirstFailedAt.UnixNano(), e.LastFailedAt.UnixNano(),
		e.NextRetryAt.UnixNano(), e.LastError)

	if err != nil {
		return fmt.Errorf("put spool entry: %w", err)
	}
	return nil
}

// Due implements Store.
func (s *SQLiteStore) Due(ctx context.Context, limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, name, category, params, attempts,
			first_failed_at, last_failed_at, next_retry_at, last_error
		FROM spool
		WHERE next_retry_at <= ?
		ORDER BY next_retry_at
		LIMIT ?
	`, time.Now().UnixNano(), limit)
	if err != nil {
		return nil, fmt.Errorf("query due entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var first, last, next int64
		if err := rows.Scan(&e.EventID, &e.Name, &e.Category, &e.Params,
			&e.Attempts, &first, &last, &next, &e.LastError); err != nil {
			return nil, fmt.Errorf("scan spool entry: %w", err)
		}
		e.FirstFailedAt = time.Unix(0, first).UTC()
		e.LastFailedAt = time.Unix(0, last).UTC()
		e.NextRetryAt = time.Unix(0, next).UTC()
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spool entries: %w", err)
	}
	return entries, nil
}

// Ack implements Store.
func (s *SQLiteStore) Ack(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM spool WHERE event_id = ?`, eventID)
	if err != nil {
		return fmt.Errorf("ack spool entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Fail implements Store.
func (s *SQLiteStore) Fail(ctx context.Context, eventID string, nextRetryAt time.Time, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE spool SET
			attempts = attempts + 1,
			last_failed_at = ?,
			next_retry_at = ?,
			last_error = ?
		WHERE event_id = ?
	`, time.Now().UnixNano(), nextRetryAt.UnixNano(), lastError, eventID)
	if err != nil {
		return fmt.Errorf("fail spool entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spool`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count spool entries: %w", err)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
