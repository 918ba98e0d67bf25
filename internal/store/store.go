// Package store persists users, profiles, postings and matches in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/spigell/job-matcher/internal/matching"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

const pragmas = "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"

var _ matching.Repository = (*Store)(nil)

type Store struct {
	db *sql.DB
}

// Open opens the database at path, creating the file and its directory when
// missing, and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", path, pragmas))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id INTEGER NOT NULL,
	filename TEXT NOT NULL,
	data TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE (owner_id, filename),
	FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS postings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	company TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL UNIQUE,
	source_site TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	full_text TEXT,
	discovered_at DATETIME NOT NULL,
	FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS matches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	profile_id INTEGER NOT NULL,
	posting_id INTEGER NOT NULL,
	score INTEGER NOT NULL,
	technical INTEGER,
	experience INTEGER,
	education INTEGER,
	language INTEGER,
	certificate INTEGER,
	analysis TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE (profile_id, posting_id),
	FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE CASCADE,
	FOREIGN KEY (posting_id) REFERENCES postings(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_profiles_owner ON profiles(owner_id);
CREATE INDEX IF NOT EXISTS idx_postings_owner ON postings(owner_id);
CREATE INDEX IF NOT EXISTS idx_matches_posting ON matches(posting_id);
`

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}
