// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/plures/superlocalmemory-mcp/internal/memory"
	"github.com/plures/superlocalmemory-mcp/internal/memory/sqlite"
	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_CreatesParentDirs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "deeper", "memory.db")
	s, err := sqlite.NewStore(dbPath, 3)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.FileExists(t, dbPath)
}

func TestNewStore_RejectsNonPositiveDimensions(t *testing.T) {
	_, err := sqlite.NewStore(testDBPath(t, "baddims"), 0)
	require.Error(t, err)
	assert.True(t, slmerr.IsInvalidInput(err))
}

func TestNewStore_EmptyDatasetOpensAtAnyDimension(t *testing.T) {
	dbPath := testDBPath(t, "empty")
	s, err := sqlite.NewStore(dbPath, 1536)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// An empty dataset carries no dimension yet, so any configuration
	// may adopt it.
	s, err = sqlite.NewStore(dbPath, 384)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestNewStore_DimensionMismatchRefusesOpen(t *testing.T) {
	ctx := context.Background()
	dbPath := testDBPath(t, "mismatch")

	s, err := sqlite.NewStore(dbPath, 384)
	require.NoError(t, err)
	_, err = s.Store(ctx, "written at 384 dims", unitVec(384, 0), memory.StoreOptions{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = sqlite.NewStore(dbPath, 1536)
	require.Error(t, err)
	assert.True(t, slmerr.IsDimensionMismatch(err))
	// Operators act on this message: it must name both dimensions.
	assert.Contains(t, err.Error(), "384")
	assert.Contains(t, err.Error(), "1536")
}

func TestNewStore_MatchingDimensionReopens(t *testing.T) {
	ctx := context.Background()
	dbPath := testDBPath(t, "reopen")

	s, err := sqlite.NewStore(dbPath, 3)
	require.NoError(t, err)
	_, err = s.Store(ctx, "survives reopen", unitVec(3, 0), memory.StoreOptions{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = sqlite.NewStore(dbPath, 3)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	results, err := s.Search(ctx, unitVec(3, 0), memory.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "survives reopen", results[0].Record.Content)
}

func TestStore_Dimensions(t *testing.T) {
	s, err := sqlite.NewStore(testDBPath(t, "dims"), 42)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	assert.Equal(t, 42, s.Dimensions())
}
