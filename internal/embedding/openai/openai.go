// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package openai

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// Dimensions of text-embedding-ada-002 output.
const adaDimensions = 1536

// Config holds OpenAI embedder configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server
	Model   string // optional, defaults to text-embedding-ada-002
}

// Embedder produces embeddings through the OpenAI embeddings API.
// It is the remote variant: it requires a credential, produces
// 1536-dimensional vectors, and never falls back to another provider,
// since silently switching dimension mid-session would corrupt the dataset.
type Embedder struct {
	client openaisdk.Client
	model  string
}

// New creates an OpenAI embedder. The API key is required.
func New(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, slmerr.New(slmerr.CodeEmbedderConfigInvalid, "openai: missing api key")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = string(openaisdk.EmbeddingModelTextEmbeddingAda002)
	}

	return &Embedder{client: openaisdk.NewClient(opts...), model: model}, nil
}

// Embed requests an embedding for a single text. Upstream failures are
// surfaced to the caller, never downgraded to a different provider.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: openaisdk.String(text),
		},
		Model: openaisdk.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, slmerr.Wrapf(err, slmerr.CodeEmbedderUpstreamFailure,
			"openai: embedding request for model %s", e.model)
	}

	if len(resp.Data) == 0 {
		return nil, slmerr.Errorf(slmerr.CodeEmbedderUpstreamFailure,
			"openai: empty embedding response for model %s", e.model)
	}

	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}

	if len(vec) != adaDimensions {
		return nil, slmerr.Errorf(slmerr.CodeEmbedderUpstreamFailure,
			"openai: expected %d dimensions, got %d", adaDimensions, len(vec))
	}

	return vec, nil
}

// Dimensions returns the fixed output length of the remote model.
func (e *Embedder) Dimensions() int {
	return adaDimensions
}
