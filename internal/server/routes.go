// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/plures/superlocalmemory-mcp/internal/memory"
	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "store-memory",
		Method:      http.MethodPost,
		Path:        "/api/v1/memories",
		Summary:     "Store a memory",
		Tags:        []string{"memories"},
	}, s.handleStoreMemory)

	huma.Register(s.api, huma.Operation{
		OperationID: "search-memories",
		Method:      http.MethodPost,
		Path:        "/api/v1/memories/search",
		Summary:     "Search memories by similarity",
		Tags:        []string{"memories"},
	}, s.handleSearchMemories)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-memory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/memories/{id}",
		Summary:     "Delete a memory by id",
		Tags:        []string{"memories"},
	}, s.handleDeleteMemory)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-memories-by-query",
		Method:      http.MethodPost,
		Path:        "/api/v1/memories/delete-by-query",
		Summary:     "Delete all memories similar to a query",
		Tags:        []string{"memories"},
	}, s.handleDeleteByQuery)

	huma.Register(s.api, huma.Operation{
		OperationID: "recent-memories",
		Method:      http.MethodGet,
		Path:        "/api/v1/memories/recent",
		Summary:     "List recent memory content",
		Tags:        []string{"memories"},
	}, s.handleRecentMemories)

	huma.Register(s.api, huma.Operation{
		OperationID: "memory-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Store statistics",
		Tags:        []string{"system"},
	}, s.handleStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "user-profile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile",
		Summary:     "Stored user profile",
		Tags:        []string{"system"},
	}, s.handleProfile)
}

// apiError maps a classified error onto the matching HTTP status.
func apiError(err error) error {
	return huma.NewError(slmerr.HTTPStatus(err), err.Error())
}

// --- Request/Response types for huma ---

// MemoryView is the JSON representation of a stored memory.
type MemoryView struct {
	ID        string    `json:"id" doc:"Memory identifier"`
	Content   string    `json:"content" doc:"Memory text"`
	Tags      []string  `json:"tags,omitempty" doc:"Labels attached at capture"`
	Category  *string   `json:"category,omitempty" doc:"Optional category"`
	Source    string    `json:"source,omitempty" doc:"Where the memory came from"`
	CreatedAt time.Time `json:"created_at" doc:"Capture time"`
}

func viewOf(rec *memory.Record) MemoryView {
	return MemoryView{
		ID:        rec.ID,
		Content:   rec.Content,
		Tags:      rec.Tags,
		Category:  rec.Category,
		Source:    rec.Source,
		CreatedAt: rec.CreatedAt,
	}
}

type storeMemoryInput struct {
	Body struct {
		Content  string   `json:"content" minLength:"1" doc:"Text to remember"`
		Tags     []string `json:"tags,omitempty" doc:"Labels to attach"`
		Category *string  `json:"category,omitempty" doc:"Optional category"`
		Source   string   `json:"source,omitempty" doc:"Origin of the text"`
	}
}
type storeMemoryOutput struct {
	Body struct {
		Memory    MemoryView `json:"memory"`
		Duplicate bool       `json:"duplicate" doc:"True when an existing memory was refreshed instead of inserting"`
	}
}

type searchMemoriesInput struct {
	Body struct {
		Query    string  `json:"query" minLength:"1" doc:"Search text"`
		Limit    int     `json:"limit,omitempty" doc:"Maximum results, default 5"`
		MinScore float64 `json:"min_score,omitempty" doc:"Similarity floor, default 0.3"`
	}
}
type searchMemoriesOutput struct {
	Body struct {
		Results []searchResultView `json:"results"`
	}
}
type searchResultView struct {
	Memory MemoryView `json:"memory"`
	Score  float64    `json:"score" doc:"Cosine similarity to the query"`
}

type deleteMemoryInput struct {
	ID string `path:"id"`
}
type deleteMemoryOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

type deleteByQueryInput struct {
	Body struct {
		Query     string  `json:"query" minLength:"1" doc:"Deletion query"`
		Threshold float64 `json:"threshold,omitempty" doc:"Similarity threshold, default 0.8"`
	}
}
type deleteByQueryOutput struct {
	Body struct {
		Deleted int `json:"deleted" doc:"Number of memories removed"`
	}
}

type recentMemoriesInput struct {
	Limit int `query:"limit" doc:"Maximum entries, default 10"`
}
type recentMemoriesOutput struct {
	Body struct {
		Memories []string `json:"memories"`
	}
}

type statsOutput struct {
	Body struct {
		TotalMemories int64 `json:"total_memories"`
		CaptureCount  int64 `json:"capture_count"`
		Dimensions    int   `json:"dimensions"`
	}
}

type profileOutput struct {
	Body struct {
		Profile string `json:"profile" doc:"Opaque profile blob, verbatim"`
	}
}

// --- Handlers ---

func (s *Server) handleStoreMemory(ctx context.Context, input *storeMemoryInput) (*storeMemoryOutput, error) {
	result, err := s.svc.Capture(ctx, input.Body.Content, memory.StoreOptions{
		Tags:     input.Body.Tags,
		Category: input.Body.Category,
		Source:   input.Body.Source,
	})
	if err != nil {
		return nil, apiError(err)
	}

	out := &storeMemoryOutput{}
	out.Body.Memory = viewOf(result.Record)
	out.Body.Duplicate = result.IsDuplicate
	return out, nil
}

func (s *Server) handleSearchMemories(ctx context.Context, input *searchMemoriesInput) (*searchMemoriesOutput, error) {
	results, err := s.svc.Search(ctx, input.Body.Query, memory.SearchOptions{
		Limit:    input.Body.Limit,
		MinScore: input.Body.MinScore,
	})
	if err != nil {
		return nil, apiError(err)
	}

	out := &searchMemoriesOutput{}
	out.Body.Results = make([]searchResultView, len(results))
	for i, r := range results {
		out.Body.Results[i] = searchResultView{Memory: viewOf(r.Record), Score: r.Score}
	}
	return out, nil
}

func (s *Server) handleDeleteMemory(ctx context.Context, input *deleteMemoryInput) (*deleteMemoryOutput, error) {
	if err := s.svc.Forget(ctx, input.ID); err != nil {
		return nil, apiError(err)
	}

	out := &deleteMemoryOutput{}
	out.Body.Status = "deleted"
	return out, nil
}

const defaultDeleteThreshold = 0.8

func (s *Server) handleDeleteByQuery(ctx context.Context, input *deleteByQueryInput) (*deleteByQueryOutput, error) {
	threshold := input.Body.Threshold
	if threshold == 0 {
		threshold = defaultDeleteThreshold
	}

	deleted, err := s.svc.ForgetByQuery(ctx, input.Body.Query, threshold)
	if err != nil {
		return nil, apiError(err)
	}

	out := &deleteByQueryOutput{}
	out.Body.Deleted = deleted
	return out, nil
}

func (s *Server) handleRecentMemories(ctx context.Context, input *recentMemoriesInput) (*recentMemoriesOutput, error) {
	memories, err := s.svc.ListRecent(ctx, input.Limit)
	if err != nil {
		return nil, apiError(err)
	}

	out := &recentMemoriesOutput{}
	out.Body.Memories = memories
	if out.Body.Memories == nil {
		out.Body.Memories = []string{}
	}
	return out, nil
}

func (s *Server) handleStats(ctx context.Context, _ *struct{}) (*statsOutput, error) {
	stats, err := s.svc.Stats(ctx)
	if err != nil {
		return nil, apiError(err)
	}

	out := &statsOutput{}
	out.Body.TotalMemories = stats.TotalMemories
	out.Body.CaptureCount = stats.CaptureCount
	out.Body.Dimensions = stats.Dimensions
	return out, nil
}

func (s *Server) handleProfile(ctx context.Context, _ *struct{}) (*profileOutput, error) {
	profile, err := s.svc.Profile(ctx)
	if err != nil {
		return nil, apiError(err)
	}

	out := &profileOutput{}
	out.Body.Profile = profile
	return out, nil
}
