// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package embedding

import (
	"log/slog"

	"github.com/plures/superlocalmemory-mcp/internal/embedding/mock"
	"github.com/plures/superlocalmemory-mcp/internal/embedding/onnx"
	"github.com/plures/superlocalmemory-mcp/internal/embedding/openai"
	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// Provider names accepted in configuration.
const (
	ProviderAuto   = "auto"
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Settings selects and configures the embedding provider. Exactly one
// provider is chosen at startup and used for the life of the process;
// there is no mid-run fallback between providers, since mixing vector
// spaces would poison the store.
type Settings struct {
	// Provider is one of auto, local, openai, or mock. Auto picks
	// openai when an API key is present, otherwise local.
	Provider string

	// APIKey authenticates the remote provider. May be a keyring://
	// reference already resolved by the config layer.
	APIKey string

	// BaseURL overrides the remote API endpoint.
	BaseURL string

	// Model overrides the remote embedding model.
	Model string

	// ModelPath and TokenizerPath locate the local model assets.
	ModelPath     string
	TokenizerPath string

	// ONNXLibraryPath optionally overrides the onnxruntime shared
	// library location.
	ONNXLibraryPath string

	// CacheEntries bounds the embedding cache; 0 uses the default.
	CacheEntries int64
}

// New builds the configured embedder wrapped in a cache. The returned
// Embedder is fixed for the process lifetime.
func New(settings Settings, logger *slog.Logger) (Embedder, error) {
	if logger == nil {
		logger = slog.Default()
	}

	provider := settings.Provider
	if provider == "" || provider == ProviderAuto {
		if settings.APIKey != "" {
			provider = ProviderOpenAI
		} else {
			provider = ProviderLocal
		}
	}

	var (
		inner Embedder
		err   error
	)
	switch provider {
	case ProviderOpenAI:
		inner, err = openai.New(openai.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case ProviderLocal:
		inner, err = onnx.New(onnx.Config{
			ModelPath:     settings.ModelPath,
			TokenizerPath: settings.TokenizerPath,
			LibraryPath:   settings.ONNXLibraryPath,
		})
	case ProviderMock:
		inner = mock.New(0)
	default:
		return nil, slmerr.Errorf(slmerr.CodeEmbedderConfigInvalid,
			"unknown embedding provider %q (expected auto, local, openai, or mock)", provider)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("embedding provider selected",
		"provider", provider,
		"dimensions", inner.Dimensions(),
	)

	return NewCached(inner, settings.CacheEntries)
}
