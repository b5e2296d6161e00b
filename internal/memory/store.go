// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package memory

import "context"

// Store owns persisted memory records and enforces the embedding
// dimension contract: every record in one dataset has the same
// embedding length, fixed at open time.
type Store interface {
	// Store persists content with its embedding. When an existing record
	// scores at or above the dedupe threshold against the new embedding,
	// that record is overwritten in place and keeps its id.
	Store(ctx context.Context, content string, embedding []float32, opts StoreOptions) (*StoreResult, error)

	// Search returns records scoring at least opts.MinScore against the
	// query, ordered by score descending, at most opts.Limit results.
	Search(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error)

	// Delete removes the record with the given id. Deleting an unknown
	// id is a no-op.
	Delete(ctx context.Context, id string) error

	// DeleteBySimilarity removes every record scoring at least threshold
	// against the query and returns the count deleted.
	DeleteBySimilarity(ctx context.Context, query []float32, threshold float64) (int, error)

	// ListRecent returns the content of the limit most recently created
	// records, newest first. Pure recency ordering, not similarity.
	ListRecent(ctx context.Context, limit int) ([]string, error)

	// Stats returns a point-in-time read with no side effects.
	Stats(ctx context.Context) (*Stats, error)

	// IncrementCaptureCount bumps the monotone capture counter. Callers
	// invoke it after a successful store; it is decoupled from Store so
	// upstream policy can count dedup updates and fresh inserts as it
	// sees fit.
	IncrementCaptureCount(ctx context.Context) error

	// Profile returns the opaque profile blob, verbatim, or "" when
	// none has been written.
	Profile(ctx context.Context) (string, error)

	Close() error
}
