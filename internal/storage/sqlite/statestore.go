// Package sqlite persists cross-run pipeline state: which documents
// have already been turned into podcasts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/briefcast/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS processed_documents (
	url          TEXT PRIMARY KEY,
	processed_at TIMESTAMP NOT NULL
);
`

// StateStore records processed document URLs in a SQLite database.
type StateStore struct {
	db   *sql.DB
	path string
}

// NewStateStore opens (or creates) the state database at the given
// path, creating parent directories as needed.
func NewStateStore(dbPath string) (*StateStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating state directory: %w", err)
		}
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &StateStore{db: db, path: dbPath}, nil
}

// Seen reports whether the document key was recorded by a previous run.
func (s *StateStore) Seen(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM processed_documents WHERE url = ?", key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying state: %w", err)
	}
	return true, nil
}

// MarkSeen records a document key. Marking the same key twice is a
// no-op.
func (s *StateStore) MarkSeen(ctx context.Context, key string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_documents (url, processed_at) VALUES (?, ?) ON CONFLICT(url) DO NOTHING",
		key, at.UTC())
	if err != nil {
		return fmt.Errorf("recording state: %w", err)
	}
	return nil
}

// Prune removes entries older than the retention period. Keeps the
// database from growing without bound on long-lived installs.
func (s *StateStore) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM processed_documents WHERE processed_at < ?",
		time.Now().Add(-retention).UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning state: %w", err)
	}
	return res.RowsAffected()
}

// Path returns the database file path.
func (s *StateStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *StateStore) Close() error {
	return s.db.Close()
}
