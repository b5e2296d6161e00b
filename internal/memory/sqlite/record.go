// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package sqlite

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plures/superlocalmemory-mcp/internal/memory"
	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// bulkDeleteCap bounds how many records one delete-by-similarity call
// can match.
const bulkDeleteCap = 100

// Store persists content with insert-with-dedup semantics. A search for
// the single best match at the dedupe threshold decides between
// overwriting an existing record in place (keeping its id) and
// inserting a fresh one. The capture counter is not touched here; see
// IncrementCaptureCount.
func (s *Store) Store(ctx context.Context, content string, embedding []float32, opts memory.StoreOptions) (*memory.StoreResult, error) {
	if content == "" {
		return nil, slmerr.New(slmerr.CodeMemoryInvalidInput, "memory content must not be empty")
	}
	if len(embedding) != s.dimensions {
		return nil, slmerr.Errorf(slmerr.CodeMemoryInvalidInput,
			"embedding has %d dimensions, store is configured for %d", len(embedding), s.dimensions)
	}

	threshold := opts.DedupeThreshold
	if threshold <= 0 {
		threshold = memory.DefaultDedupeThreshold
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	matches, err := s.search(ctx, embedding, 1, threshold)
	if err != nil {
		return nil, err
	}

	record := &memory.Record{
		Content:   content,
		Embedding: embedding,
		Tags:      opts.Tags,
		Category:  opts.Category,
		Source:    opts.Source,
		CreatedAt: time.Now(),
	}

	embJSON, tagsJSON, err := encodeRecord(record)
	if err != nil {
		return nil, err
	}

	if len(matches) > 0 {
		record.ID = matches[0].Record.ID

		const q = `UPDATE memories
SET content = ?, embedding = ?, tags = ?, category = ?, source = ?, created_at = ?
WHERE id = ?`
		if _, err := s.db.ExecContext(ctx, q,
			record.Content, embJSON, tagsJSON, nullable(record.Category), record.Source,
			record.CreatedAt.UnixMilli(), record.ID,
		); err != nil {
			return nil, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure,
				"updating duplicate memory %s: %w", record.ID, err)
		}

		return &memory.StoreResult{Record: record, IsDuplicate: true, UpdatedID: record.ID}, nil
	}

	record.ID = uuid.NewString()

	const q = `INSERT INTO memories (id, content, embedding, tags, category, source, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q,
		record.ID, record.Content, embJSON, tagsJSON, nullable(record.Category), record.Source,
		record.CreatedAt.UnixMilli(),
	); err != nil {
		return nil, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure,
			"inserting memory %s: %w", record.ID, err)
	}

	return &memory.StoreResult{Record: record}, nil
}

// Delete removes a record by id. Unknown ids are a no-op; deletion is
// idempotent.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id); err != nil {
		return slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "deleting memory %s: %w", id, err)
	}
	return nil
}

// DeleteBySimilarity removes every record scoring at least threshold
// against the query, up to an internal cap, and returns the count
// deleted. Zero matches is a valid outcome, not an error.
func (s *Store) DeleteBySimilarity(ctx context.Context, query []float32, threshold float64) (int, error) {
	if len(query) != s.dimensions {
		return 0, slmerr.Errorf(slmerr.CodeMemoryVectorMismatch,
			"query has %d dimensions, store is configured for %d", len(query), s.dimensions)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	matches, err := s.search(ctx, query, bulkDeleteCap, threshold)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(matches))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(matches))
	for i, m := range matches {
		args[i] = m.Record.ID
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return 0, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "deleting matched memories: %w", err)
	}

	return len(matches), nil
}

func encodeRecord(r *memory.Record) (embJSON, tagsJSON string, err error) {
	emb, err := json.Marshal(r.Embedding)
	if err != nil {
		return "", "", slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "encoding embedding: %w", err)
	}

	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	tg, err := json.Marshal(tags)
	if err != nil {
		return "", "", slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "encoding tags: %w", err)
	}

	return string(emb), string(tg), nil
}

// nullable maps a nil category to SQL NULL, keeping "absent" distinct
// from the empty string.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
