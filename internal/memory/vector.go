// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package memory

import (
	"math"

	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// Cosine returns the cosine similarity of two equal-length vectors,
// always in [-1, 1]. A zero-norm vector on either side yields 0.
//
// A length mismatch is a programming-contract violation: the dimension
// gate guarantees equal lengths for all persisted data, so the only way
// to trigger it is a malformed query vector.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, slmerr.Errorf(slmerr.CodeMemoryVectorMismatch,
			"vector length mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Accumulated rounding can push the ratio a hair outside [-1, 1].
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return sim, nil
}
