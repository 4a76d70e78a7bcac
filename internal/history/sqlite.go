package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a SQLite-backed history store.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS build_attempts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		account_id TEXT NOT NULL,
		outcome TEXT NOT NULL,
		message TEXT,
		started_at INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_build_attempts_started ON build_attempts(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends an attempt.
func (s *SQLiteStore) Record(ctx context.Context, a Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO build_attempts (id, account_id, outcome, message, started_at, duration_ns) VALUES (?, ?, ?, ?, ?, ?)",
		a.ID, a.AccountID, a.Outcome, a.Message, a.StartedAt.UnixMilli(), int64(a.Duration),
	)
	if err != nil {
		return fmt.Errorf("insert build attempt: %w", err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if err := ValidateLimit(limit); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, account_id, outcome, message, started_at, duration_ns FROM build_attempts ORDER BY seq DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query build attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var message sql.NullString
		var startedMS, durationNS int64
		if err := rows.Scan(&a.ID, &a.AccountID, &a.Outcome, &message, &startedMS, &durationNS); err != nil {
			return nil, fmt.Errorf("scan build attempt: %w", err)
		}
		a.Message = message.String
		a.StartedAt = time.UnixMilli(startedMS)
		a.Duration = time.Duration(durationNS)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return attempts, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
