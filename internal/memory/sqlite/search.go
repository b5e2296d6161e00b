// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/plures/superlocalmemory-mcp/internal/memory"
	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// Search compares the query against every persisted embedding with
// exact cosine similarity, keeps records scoring at least
// opts.MinScore, and returns the top opts.Limit ordered by score
// descending. Ties keep storage order.
func (s *Store) Search(ctx context.Context, query []float32, opts memory.SearchOptions) ([]memory.SearchResult, error) {
	if len(query) != s.dimensions {
		return nil, slmerr.Errorf(slmerr.CodeMemoryVectorMismatch,
			"query has %d dimensions, store is configured for %d", len(query), s.dimensions)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = memory.DefaultSearchLimit
	}
	minScore := opts.MinScore
	if minScore == 0 {
		minScore = memory.DefaultMinScore
	}

	return s.search(ctx, query, limit, minScore)
}

// search is the brute-force scan shared by Search, the dedup probe in
// Store, and DeleteBySimilarity. Callers own threshold defaulting.
func (s *Store) search(ctx context.Context, query []float32, limit int, minScore float64) ([]memory.SearchResult, error) {
	const q = `SELECT id, content, embedding, tags, category, source, created_at
FROM memories
ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "loading memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []memory.SearchResult
	for rows.Next() {
		record, ok, err := scanRecord(rows, s.logger)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue // corrupt row, already logged
		}

		score, err := memory.Cosine(query, record.Embedding)
		if err != nil {
			// I1 guarantees equal lengths for admitted data, so a stored
			// vector of the wrong length is corruption: skip it like a
			// decode failure rather than failing the whole search.
			s.logger.Warn("skipping memory with wrong-length embedding",
				slog.String("memory_id", record.ID),
				slog.Int("length", len(record.Embedding)),
				slog.Int("expected", s.dimensions),
			)
			continue
		}

		if score < minScore {
			continue
		}

		results = append(results, memory.SearchResult{Record: record, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "iterating memories: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// scanRecord reads one memories row. A row whose embedding fails to
// decode is reported as ok=false after a warning; the search continues
// over the rest of the dataset.
func scanRecord(rows *sql.Rows, logger *slog.Logger) (*memory.Record, bool, error) {
	var (
		r         memory.Record
		embJSON   string
		tagsJSON  string
		category  sql.NullString
		createdAt int64
	)

	if err := rows.Scan(&r.ID, &r.Content, &embJSON, &tagsJSON, &category, &r.Source, &createdAt); err != nil {
		return nil, false, slmerr.Errorf(slmerr.CodeMemoryDatabaseFailure, "scanning memory row: %w", err)
	}

	if err := json.Unmarshal([]byte(embJSON), &r.Embedding); err != nil {
		logger.Warn("skipping memory with corrupt embedding",
			slog.String("memory_id", r.ID),
			slog.String("error", err.Error()),
		)
		return nil, false, nil
	}

	if tagsJSON != "" && tagsJSON != "[]" {
		if err := json.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
			// Tags are advisory metadata; a corrupt tag list does not
			// invalidate the memory itself.
			logger.Warn("dropping corrupt tags",
				slog.String("memory_id", r.ID),
				slog.String("error", err.Error()),
			)
			r.Tags = nil
		}
	}

	if category.Valid {
		c := category.String
		r.Category = &c
	}
	r.CreatedAt = time.UnixMilli(createdAt)

	return &r, true, nil
}
