// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/plures/superlocalmemory-mcp/internal/memory"
	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// Compile-time interface check.
var _ memory.Store = (*Store)(nil)

// Store implements memory.Store backed by a single-file SQLite database.
// Embeddings are persisted as JSON float arrays in a flat per-record
// table and compared by exact brute-force cosine similarity; this is
// O(N*D) per query and is the intended design for the target dataset
// sizes, not a placeholder for an index.
type Store struct {
	db         *sql.DB
	dimensions int
	logger     *slog.Logger

	// writeMu serializes the dedup-search-then-write sequence so two
	// concurrent stores of near-duplicate content cannot race into two
	// records.
	writeMu sync.Mutex
}

// NewStore opens (or creates) the memory database at dbPath, creating
// parent directories as needed, and validates the dimension contract
// against any existing records. dimensions is the embedding length the
// configured provider produces and is fixed for the life of the store.
func NewStore(dbPath string, dimensions int) (*Store, error) {
	if dimensions <= 0 {
		return nil, slmerr.Errorf(slmerr.CodeEmbedderConfigInvalid,
			"embedding dimensions must be positive, got %d", dimensions)
	}

	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, slmerr.Wrapf(err, slmerr.CodeMemoryDatabaseFailure,
				"creating data directory %s", dir)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "pinging sqlite db: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "migrating memory tables: %w", err)
	}

	s := &Store{db: db, dimensions: dimensions, logger: slog.Default()}

	if err := s.validateDimensions(dbPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS memories (
	id         TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	embedding  TEXT NOT NULL,
	tags       TEXT NOT NULL DEFAULT '[]',
	category   TEXT,
	source     TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`
	_, err := db.Exec(ddl)
	return err
}

// validateDimensions enforces the dimension contract at open time: a
// dataset is admitted once, against one record, and assumed internally
// consistent afterwards because every write goes through the same
// configured dimension.
func (s *Store) validateDimensions(dbPath string) error {
	var raw string
	err := s.db.QueryRow(`SELECT embedding FROM memories ORDER BY rowid DESC LIMIT 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // empty dataset, nothing to check
	}
	if err != nil {
		return slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "inspecting existing embeddings: %w", err)
	}

	var embedding []float32
	if err := json.Unmarshal([]byte(raw), &embedding); err != nil {
		return slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "decoding existing embedding: %w", err)
	}

	if len(embedding) != s.dimensions {
		msg := fmt.Sprintf(
			"existing dataset at %s contains %d-dimensional embeddings but the configured embedding provider produces %d dimensions; "+
				"either (1) switch to a provider or credential that produces %d-dimensional embeddings, "+
				"(2) point at a new database path, or (3) delete the database and re-embed every memory at %d dimensions",
			dbPath, len(embedding), s.dimensions, len(embedding), s.dimensions)
		return slmerr.New(slmerr.CodeMemoryDimensionMismatch, msg,
			slmerr.FieldPath(dbPath),
			slmerr.Field("found_dimensions", len(embedding)),
			slmerr.Field("expected_dimensions", s.dimensions),
		)
	}

	return nil
}

// Dimensions returns the configured embedding length.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Close flushes and closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
