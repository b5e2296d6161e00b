// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package main

import (
	"log/slog"

	"github.com/spf13/viper"

	"github.com/plures/superlocalmemory-mcp/internal/config"
	"github.com/plures/superlocalmemory-mcp/internal/embedding"
	"github.com/plures/superlocalmemory-mcp/internal/memory"
	"github.com/plures/superlocalmemory-mcp/internal/memory/sqlite"
	"github.com/plures/superlocalmemory-mcp/internal/secrets"
)

// app holds the wired subsystems behind every data command.
type app struct {
	cfg      *config.Config
	store    *sqlite.Store
	embedder embedding.Embedder
	service  *memory.Service
}

// wireApp builds the application from the resolved global Viper:
// resolve keyring references, construct the one embedder for this
// process, and open the store at the embedder's dimensions. A store
// created by a different provider refuses to open here, surfacing the
// dimension mismatch before any data is touched.
func wireApp() (*app, error) {
	v := viper.GetViper()

	secrets.ResolveViperSecrets(v, secrets.NewKeyringStore())

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}

	embedder, err := embedding.New(embedding.Settings{
		Provider:        cfg.Embedding.Provider,
		APIKey:          cfg.Embedding.APIKey,
		BaseURL:         cfg.Embedding.BaseURL,
		Model:           cfg.Embedding.Model,
		ModelPath:       cfg.Embedding.ModelPath,
		TokenizerPath:   cfg.Embedding.TokenizerPath,
		ONNXLibraryPath: cfg.Embedding.ONNXLibraryPath,
		CacheEntries:    cfg.Embedding.CacheEntries,
	}, slog.Default())
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewStore(cfg.Storage.Path, embedder.Dimensions())
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		store:    store,
		embedder: embedder,
		service:  memory.NewService(store, embedder, slog.Default()),
	}, nil
}

// Close releases the store. Safe to call once wiring succeeded.
func (a *app) Close() error {
	return a.store.Close()
}
