// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package memory

import "time"

// Defaults for store and search operations.
const (
	// DefaultDedupeThreshold is the minimum similarity at which a new
	// memory overwrites an existing near-duplicate instead of creating
	// a new record.
	DefaultDedupeThreshold = 0.95

	// DefaultSearchLimit caps search results when the caller passes 0.
	DefaultSearchLimit = 5

	// DefaultMinScore filters out weak matches when the caller passes 0.
	DefaultMinScore = 0.3
)

// Record is the unit of persisted knowledge: a text memory, its
// embedding, and its classification metadata.
type Record struct {
	ID        string
	Content   string
	Embedding []float32
	// Tags preserve insertion order; duplicates are the caller's problem.
	Tags []string
	// Category is nil when absent, which is distinct from an empty string.
	Category  *string
	Source    string
	CreatedAt time.Time
}

// StoreOptions carries the optional metadata for a store operation.
type StoreOptions struct {
	Tags     []string
	Category *string
	Source   string
	// DedupeThreshold overrides DefaultDedupeThreshold when > 0.
	DedupeThreshold float64
}

// StoreResult reports the outcome of an insert-with-dedup operation.
type StoreResult struct {
	Record *Record
	// IsDuplicate is true when the store updated an existing
	// near-duplicate record in place instead of inserting a new one.
	IsDuplicate bool
	// UpdatedID is the id of the overwritten record when IsDuplicate
	// is true, empty otherwise.
	UpdatedID string
}

// SearchOptions controls a similarity search.
type SearchOptions struct {
	// Limit caps the result count; 0 means DefaultSearchLimit.
	Limit int
	// MinScore excludes results scoring below it; 0 means DefaultMinScore.
	MinScore float64
}

// SearchResult pairs a record with its similarity score against the query.
type SearchResult struct {
	Record *Record
	Score  float64
}

// Stats is a point-in-time view of the store.
type Stats struct {
	TotalMemories int64
	CaptureCount  int64
	Dimensions    int
}
