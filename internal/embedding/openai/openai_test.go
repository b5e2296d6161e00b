// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plures/superlocalmemory-mcp/internal/embedding/openai"
	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

func embeddingResponse(dims int) map[string]any {
	vec := make([]float64, dims)
	vec[0] = 1
	return map[string]any{
		"object": "list",
		"model":  "text-embedding-ada-002",
		"data": []map[string]any{
			{"object": "embedding", "index": 0, "embedding": vec},
		},
		"usage": map[string]any{"prompt_tokens": 3, "total_tokens": 3},
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := openai.New(openai.Config{})
	require.Error(t, err)
	assert.Equal(t, slmerr.CodeEmbedderConfigInvalid, slmerr.CodeOf(err))
}

func TestEmbed_Success(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Input string `json:"input"`
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "remember the milk", body.Input)
		assert.Equal(t, "text-embedding-ada-002", body.Model)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(embeddingResponse(1536)))
	}))
	defer server.Close()

	e, err := openai.New(openai.Config{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	vec, err := e.Embed(context.Background(), "remember the milk")
	require.NoError(t, err)
	require.Len(t, vec, 1536)
	assert.Equal(t, float32(1), vec[0])
	assert.Equal(t, "Bearer sk-test", gotAuth)
}

func TestEmbed_UpstreamErrorFailsFast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key", "type": "invalid_request_error"},
		})
	}))
	defer server.Close()

	e, err := openai.New(openai.Config{APIKey: "sk-bad", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, slmerr.CodeEmbedderUpstreamFailure, slmerr.CodeOf(err))
	assert.True(t, slmerr.IsUpstreamFailure(err))
}

func TestEmbed_WrongVectorLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(embeddingResponse(8)))
	}))
	defer server.Close()

	e, err := openai.New(openai.Config{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "short vector")
	require.Error(t, err)
	assert.Equal(t, slmerr.CodeEmbedderUpstreamFailure, slmerr.CodeOf(err))
}

func TestDimensions(t *testing.T) {
	e, err := openai.New(openai.Config{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, 1536, e.Dimensions())
}
