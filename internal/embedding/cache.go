// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package embedding

import (
	"context"

	"github.com/dgraph-io/ristretto"

	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// Cached wraps an Embedder with an in-process ristretto cache keyed by
// the exact input text. Repeated embeds of the same text, common during
// ingest of near-duplicate notes, skip model inference or API calls.
type Cached struct {
	inner Embedder
	cache *ristretto.Cache
}

var _ Embedder = (*Cached)(nil)

// NewCached wraps inner with a cache holding up to maxEntries recent
// embeddings. maxEntries <= 0 selects a default of 4096.
func NewCached(inner Embedder, maxEntries int64) (*Cached, error) {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, slmerr.Wrap(err, slmerr.CodeEmbedderInitFailure, "creating embedding cache")
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text if present, otherwise
// delegates to the wrapped embedder and caches the result. Errors are
// never cached.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if hit, ok := c.cache.Get(text); ok {
		if vec, ok := hit.([]float32); ok {
			return vec, nil
		}
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(text, vec, 1)
	return vec, nil
}

// Dimensions reports the wrapped embedder's vector length.
func (c *Cached) Dimensions() int {
	return c.inner.Dimensions()
}

// Close releases the cache. The wrapped embedder, if it holds
// resources, is closed separately by its owner.
func (c *Cached) Close() error {
	c.cache.Close()
	return nil
}
