// Package store caches prepared transaction rows in a local SQLite database so
// repeated runs over the same spreadsheet skip parsing.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotCached means the source has no cached rows or its file changed since.
	ErrNotCached = errors.New("store: source not cached")
	// ErrNotInitialized means the schema has not been created yet.
	ErrNotInitialized = errors.New("store: cache not initialized (run 'basketloom cache build')")
)

// Store provides SQLite operations for the row cache.
type Store struct {
	db *sql.DB
}

// New creates a new Store with the specified database path.
// Use ":memory:" for in-memory databases (useful for testing).
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &Store{db: db}, nil
}

// Open is New followed by CreateSchema.
func Open(dbPath string) (*Store, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.CreateSchema(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateSchema creates all tables and indexes.
func (s *Store) CreateSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// classify maps a missing-table failure to ErrNotInitialized.
func classify(err error) error {
	if err != nil && strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%w: %v", ErrNotInitialized, err)
	}
	return err
}
