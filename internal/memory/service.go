// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package memory

import (
	"context"
	"log/slog"

	"github.com/plures/superlocalmemory-mcp/internal/embedding"
	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// Service pairs an embedder with a store so callers deal in text, not
// vectors. All text entering or querying the store flows through the
// one embedder selected at startup, keeping every vector in the same
// space.
type Service struct {
	store    Store
	embedder embedding.Embedder
	logger   *slog.Logger
}

// NewService wires a store and embedder together. The store must have
// been opened with the embedder's dimensions.
func NewService(store Store, embedder embedding.Embedder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, embedder: embedder, logger: logger}
}

// Capture embeds content, stores it through the dedup path, and then
// bumps the capture counter. The counter moves on every capture call,
// duplicate or not, so it tracks usage rather than record count.
func (s *Service) Capture(ctx context.Context, content string, opts StoreOptions) (*StoreResult, error) {
	if content == "" {
		return nil, slmerr.New(slmerr.CodeMemoryInvalidInput, "content must not be empty")
	}

	vec, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, err
	}

	result, err := s.store.Store(ctx, content, vec, opts)
	if err != nil {
		return nil, err
	}

	if err := s.store.IncrementCaptureCount(ctx); err != nil {
		return nil, err
	}

	if result.IsDuplicate {
		s.logger.Debug("capture deduplicated", "memory_id", result.Record.ID)
	}
	return result, nil
}

// Search embeds the query text and runs a similarity search.
func (s *Service) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	if query == "" {
		return nil, slmerr.New(slmerr.CodeMemoryInvalidInput, "query must not be empty")
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.store.Search(ctx, vec, opts)
}

// Forget removes a memory by id. Unknown ids are a no-op.
func (s *Service) Forget(ctx context.Context, id string) error {
	if id == "" {
		return slmerr.New(slmerr.CodeMemoryInvalidInput, "id must not be empty")
	}
	return s.store.Delete(ctx, id)
}

// ForgetByQuery embeds the query and deletes all memories whose
// similarity meets the threshold, returning how many were removed.
func (s *Service) ForgetByQuery(ctx context.Context, query string, threshold float64) (int, error) {
	if query == "" {
		return 0, slmerr.New(slmerr.CodeMemoryInvalidInput, "query must not be empty")
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return 0, err
	}
	return s.store.DeleteBySimilarity(ctx, vec, threshold)
}

// ListRecent returns the content of the most recent memories.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]string, error) {
	return s.store.ListRecent(ctx, limit)
}

// Stats reports store totals.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}

// Profile returns the stored user profile blob verbatim.
func (s *Service) Profile(ctx context.Context) (string, error) {
	return s.store.Profile(ctx)
}
