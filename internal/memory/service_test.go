// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package memory_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plures/superlocalmemory-mcp/internal/embedding/mock"
	"github.com/plures/superlocalmemory-mcp/internal/memory"
	"github.com/plures/superlocalmemory-mcp/internal/memory/sqlite"
	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

func newTestService(t *testing.T) *memory.Service {
	t.Helper()

	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "memory.db"), 384)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return memory.NewService(store, mock.New(384), nil)
}

func TestService_CaptureAndSearch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	result, err := svc.Capture(ctx, "the deploy runs every Tuesday at noon", memory.StoreOptions{
		Tags: []string{"ops"},
	})
	require.NoError(t, err)
	assert.False(t, result.IsDuplicate)
	assert.NotEmpty(t, result.Record.ID)

	// The mock embedder is deterministic, so the same text matches
	// itself exactly.
	hits, err := svc.Search(ctx, "the deploy runs every Tuesday at noon", memory.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestService_CaptureCountsEveryCall(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Capture(ctx, "a memorable fact about the system", memory.StoreOptions{})
	require.NoError(t, err)
	_, err = svc.Capture(ctx, "a memorable fact about the system", memory.StoreOptions{})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	// Identical text dedups to one record, but both captures count.
	assert.Equal(t, int64(1), stats.TotalMemories)
	assert.Equal(t, int64(2), stats.CaptureCount)
}

func TestService_EmptyInputsRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Capture(ctx, "", memory.StoreOptions{})
	assert.True(t, slmerr.IsInvalidInput(err))

	_, err = svc.Search(ctx, "", memory.SearchOptions{})
	assert.True(t, slmerr.IsInvalidInput(err))

	err = svc.Forget(ctx, "")
	assert.True(t, slmerr.IsInvalidInput(err))

	_, err = svc.ForgetByQuery(ctx, "", 0.8)
	assert.True(t, slmerr.IsInvalidInput(err))
}

func TestService_ForgetByQuery(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Capture(ctx, "the old staging server is decommissioned", memory.StoreOptions{})
	require.NoError(t, err)

	// An unrelated query leaves the memory alone.
	removed, err := svc.ForgetByQuery(ctx, "favorite pizza toppings", 0.99)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	removed, err = svc.ForgetByQuery(ctx, "the old staging server is decommissioned", 0.99)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestService_ListRecentAndProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Capture(ctx, "earlier captured memory content here", memory.StoreOptions{})
	require.NoError(t, err)

	recent, err := svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"earlier captured memory content here"}, recent)

	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Empty(t, profile)
}
