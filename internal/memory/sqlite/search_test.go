// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/plures/superlocalmemory-mcp/internal/memory"
	"github.com/plures/superlocalmemory-mcp/internal/memory/sqlite"
	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_ExactMatch(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.NewStore(testDBPath(t, "exact"), 3)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	embedding := []float32{0.2, -0.7, 0.4}
	_, err = s.Store(ctx, "prefers tabs over spaces", embedding, memory.StoreOptions{})
	require.NoError(t, err)

	results, err := s.Search(ctx, embedding, memory.SearchOptions{Limit: 5, MinScore: 0.3})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "prefers tabs over spaces", results[0].Record.Content)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestSearch_BelowThresholdExcluded(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.NewStore(testDBPath(t, "below"), 3)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = s.Store(ctx, "on the x axis", unitVec(3, 0), memory.StoreOptions{})
	require.NoError(t, err)

	// Orthogonal query: similarity 0.0, below minScore 0.3.
	results, err := s.Search(ctx, unitVec(3, 1), memory.SearchOptions{Limit: 5, MinScore: 0.3})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_RankingAndLimit(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.NewStore(testDBPath(t, "ranking"), 3)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	vectors := [][]float32{
		{0.5, 0.87, 0},
		{1, 0, 0},
		{0.9, 0.44, 0},
		{0.99, 0.14, 0},
		{0.7, 0.71, 0},
	}
	for i, v := range vectors {
		_, err := s.Store(ctx, fmt.Sprintf("memory-%d", i), v, memory.StoreOptions{DedupeThreshold: 1.01})
		require.NoError(t, err)
	}

	results, err := s.Search(ctx, unitVec(3, 0), memory.SearchOptions{Limit: 3, MinScore: 0.3})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Non-increasing scores, all at or above minScore.
	for i, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.3)
		if i > 0 {
			assert.LessOrEqual(t, r.Score, results[i-1].Score)
		}
	}
	assert.Equal(t, "memory-1", results[0].Record.Content)
}

func TestSearch_Defaults(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.NewStore(testDBPath(t, "defaults"), 3)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	for i := 0; i < 8; i++ {
		v := []float32{1, float32(i) * 0.01, 0}
		_, err := s.Store(ctx, fmt.Sprintf("memory-%d", i), v, memory.StoreOptions{DedupeThreshold: 1.01})
		require.NoError(t, err)
	}

	// Zero options fall back to limit 5, minScore 0.3.
	results, err := s.Search(ctx, unitVec(3, 0), memory.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, memory.DefaultSearchLimit)
}

func TestSearch_EmptyStore(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.NewStore(testDBPath(t, "empty-search"), 3)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	results, err := s.Search(ctx, unitVec(3, 0), memory.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.NewStore(testDBPath(t, "query-mismatch"), 3)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = s.Search(ctx, make([]float32, 7), memory.SearchOptions{})
	require.Error(t, err)
	assert.True(t, slmerr.HasCode(err, slmerr.CodeMemoryVectorMismatch))
}

func TestSearch_SkipsCorruptEmbedding(t *testing.T) {
	ctx := context.Background()
	dbPath := testDBPath(t, "corrupt")
	s, err := sqlite.NewStore(dbPath, 3)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = s.Store(ctx, "healthy", unitVec(3, 0), memory.StoreOptions{})
	require.NoError(t, err)

	// Inject a row the store would never write: embedding is not JSON.
	rawExec(t, dbPath,
		`INSERT INTO memories (id, content, embedding, tags, category, source, created_at)
		 VALUES ('corrupt-row', 'broken', 'not json at all', '[]', NULL, '', 0)`)

	// The corrupt row is skipped; the healthy record still comes back.
	results, err := s.Search(ctx, unitVec(3, 0), memory.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "healthy", results[0].Record.Content)
}

func TestSearch_SkipsWrongLengthEmbedding(t *testing.T) {
	ctx := context.Background()
	dbPath := testDBPath(t, "wrong-length")
	s, err := sqlite.NewStore(dbPath, 3)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = s.Store(ctx, "healthy", unitVec(3, 0), memory.StoreOptions{})
	require.NoError(t, err)

	rawExec(t, dbPath,
		`INSERT INTO memories (id, content, embedding, tags, category, source, created_at)
		 VALUES ('short-row', 'two dims', '[1.0, 0.0]', '[]', NULL, '', 0)`)

	results, err := s.Search(ctx, unitVec(3, 0), memory.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "healthy", results[0].Record.Content)
}
