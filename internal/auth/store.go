// Package auth holds the credential store and the session gate. The store is
// the single durable home of the bearer token; the gate is its single writer
// and the component every protected view consults before rendering.
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const credentialKey = "token"

// Store persists the credential in a small key-value table so it survives
// process restarts.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the credential database at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreWithDB wraps an already opened database. The caller keeps
// ownership of db; used by tests with in-memory databases.
func NewStoreWithDB(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.init(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("failed to init credential store: %w", err)
	}
	return nil
}

// Load returns the persisted token, or "" when none is stored.
func (s *Store) Load(ctx context.Context) (string, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, credentialKey).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load credential: %w", err)
	}
	return string(value), nil
}

// Save stores the token under the credential key, replacing any prior value.
func (s *Store) Save(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, credentialKey, []byte(token))
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

// Clear removes the persisted token. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, credentialKey)
	if err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
