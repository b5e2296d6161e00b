// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

// Package embedding defines the capability the memory core requires
// from an embedding provider: turn a string into a fixed-length vector,
// and declare that length up front. Two interchangeable variants exist
// (a local in-process model and a remote API); exactly one is selected
// at process start and its dimension governs every operation for the
// life of the process.
package embedding

import "context"

// Embedder converts text to fixed-length embedding vectors.
type Embedder interface {
	// Embed converts a single text to an embedding vector of exactly
	// Dimensions() values.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size. Fixed per provider;
	// never changes within a running process.
	Dimensions() int
}
