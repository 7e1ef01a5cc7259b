// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a local audit log of completed conversions in
// SQLite. The log is opt-in and write-only from the pipeline's point of
// view: deduplication stays with the session ledger, which never consults
// this store.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/doc2md/pkg/types"
)

// Store manages the conversion history SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the history database at path, creating parent
// directories and the schema as needed.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			engine TEXT NOT NULL,
			original_size INTEGER NOT NULL,
			converted_size INTEGER NOT NULL,
			converted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_name ON conversions(name)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Entry is one recorded conversion.
type Entry struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Engine        string    `json:"engine"`
	OriginalSize  int64     `json:"original_size"`
	ConvertedSize int64     `json:"converted_size"`
	ConvertedAt   time.Time `json:"converted_at"`
}

// Record appends a successful conversion to the log.
func (s *Store) Record(ctx context.Context, res types.ConversionResult, engine string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (name, engine, original_size, converted_size, converted_at)
		 VALUES (?, ?, ?, ?, ?)`,
		res.Name, engine, res.OriginalSize, res.ConvertedSize,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording conversion %s: %w", res.Name, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit
// selects the default (20).
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, engine, original_size, converted_size, converted_at
		 FROM conversions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.ID, &e.Name, &e.Engine, &e.OriginalSize, &e.ConvertedSize, &at); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339Nano, at); parseErr == nil {
			e.ConvertedAt = t
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Summary aggregates the whole log.
type Summary struct {
	Conversions    int   `json:"conversions"`
	OriginalBytes  int64 `json:"original_bytes"`
	ConvertedBytes int64 `json:"converted_bytes"`
}

// Summarize returns totals across every recorded conversion.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(original_size), 0), COALESCE(SUM(converted_size), 0)
		 FROM conversions`,
	).Scan(&sum.Conversions, &sum.OriginalBytes, &sum.ConvertedBytes)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing history: %w", err)
	}
	return sum, nil
}
