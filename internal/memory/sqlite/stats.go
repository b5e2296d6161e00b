// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/plures/superlocalmemory-mcp/internal/memory"
	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// Meta keys for store-level state.
const (
	metaCaptureCount = "capture_count"
	metaProfile      = "profile"
)

// Stats returns a point-in-time view of the store with no side effects.
func (s *Store) Stats(ctx context.Context) (*memory.Stats, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&total); err != nil {
		return nil, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "counting memories: %w", err)
	}

	captures, err := s.captureCount(ctx)
	if err != nil {
		return nil, err
	}

	return &memory.Stats{
		TotalMemories: total,
		CaptureCount:  captures,
		Dimensions:    s.dimensions,
	}, nil
}

// ListRecent returns the content of the limit most recently created
// records, newest first. This is recency ordering only and must not be
// confused with similarity search.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	const q = `SELECT content FROM memories ORDER BY created_at DESC, rowid DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "listing recent memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contents []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "scanning memory content: %w", err)
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "iterating recent memories: %w", err)
	}

	return contents, nil
}

// IncrementCaptureCount bumps the monotone capture counter. The counter
// survives restarts and is never reset by normal operations.
func (s *Store) IncrementCaptureCount(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	const q = `INSERT INTO meta (key, value) VALUES (?, '1')
ON CONFLICT(key) DO UPDATE SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT)`
	if _, err := s.db.ExecContext(ctx, q, metaCaptureCount); err != nil {
		return slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "incrementing capture count: %w", err)
	}
	return nil
}

// Profile returns the opaque profile blob verbatim, or "" when none has
// been written. The blob is written by a process outside this store's
// scope; it is never interpreted here.
func (s *Store) Profile(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaProfile).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "reading profile: %w", err)
	}
	return value, nil
}

func (s *Store) captureCount(ctx context.Context) (int64, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaCaptureCount).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "reading capture count: %w", err)
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "parsing capture count %q: %w", value, err)
	}
	return n, nil
}
