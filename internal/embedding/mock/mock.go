// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

// Package mock provides a deterministic in-memory embedder for tests
// and offline development. The same text always maps to the same unit
// vector, and distinct texts almost always map to distinct vectors.
package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// Embedder derives pseudo-random unit vectors from a hash of the input
// text. It performs no I/O and is safe for concurrent use.
type Embedder struct {
	dimensions int
}

// New creates a mock embedder producing vectors of the given length.
// Non-positive dims falls back to 384 to mirror the local model.
func New(dims int) *Embedder {
	if dims <= 0 {
		dims = 384
	}
	return &Embedder{dimensions: dims}
}

// Embed hashes text with FNV-1a and expands the hash through a linear
// congruential generator into a normalized vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, e.dimensions)
	var norm float64
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		v := float32(int64(seed)) / float32(math.MaxInt64)
		vec[i] = v
		norm += float64(v) * float64(v)
	}

	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// Dimensions returns the configured vector length.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}
