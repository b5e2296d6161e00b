// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package mock_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plures/superlocalmemory-mcp/internal/embedding/mock"
)

func TestEmbed_Deterministic(t *testing.T) {
	e := mock.New(384)

	a, err := e.Embed(context.Background(), "the same text")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "the same text")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEmbed_DistinctTexts(t *testing.T) {
	e := mock.New(384)

	a, err := e.Embed(context.Background(), "first")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "second")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestEmbed_UnitNorm(t *testing.T) {
	e := mock.New(64)

	vec, err := e.Embed(context.Background(), "normalize me")
	require.NoError(t, err)
	require.Len(t, vec, 64)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestNew_DefaultDimensions(t *testing.T) {
	assert.Equal(t, 384, mock.New(0).Dimensions())
	assert.Equal(t, 1536, mock.New(1536).Dimensions())
}
