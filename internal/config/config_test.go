// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plures/superlocalmemory-mcp/internal/config"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(cfg.Storage.Path, filepath.Join(".superlocalmemory", "memory.db")))
	assert.Equal(t, "auto", cfg.Embedding.Provider)
	assert.Equal(t, int64(4096), cfg.Embedding.CacheEntries)
	assert.Equal(t, "127.0.0.1:7411", cfg.Server.Listen)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Contains(t, cfg.Ingest.Include, "**/*.md")
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `
storage:
  path: /tmp/custom/memories.db
embedding:
  provider: openai
  api_key: sk-test
server:
  listen: "0.0.0.0:9999"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom/memories.db", cfg.Storage.Path)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "0.0.0.0:9999", cfg.Server.Listen)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SLM_SERVER_LISTEN", "10.0.0.1:8080")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8080", cfg.Server.Listen)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "no-such.yaml"))
	require.Error(t, err)
}

func TestLoad_ValidationCalledAtLoadTime(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `
embedding:
  provider: quantum
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	_, err := config.Load(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding.provider")
}

// validConfig returns a minimal config that passes all validation.
func validConfig() *config.Config {
	return &config.Config{
		Storage:   config.StorageConfig{Path: "/tmp/memory.db"},
		Embedding: config.EmbeddingConfig{Provider: "auto", CacheEntries: 1024},
		Server:    config.ServerConfig{Listen: "127.0.0.1:7411"},
		Logging:   config.LoggingConfig{Level: "info"},
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.Empty(t, validConfig().Validate())
}

func TestValidate_EmptyStoragePath(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Path = ""

	errs := cfg.Validate()
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "storage.path")
}

func TestValidate_OpenAIRequiresKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Provider = "openai"

	errs := cfg.Validate()
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "api_key")
}

func TestValidate_BadListen(t *testing.T) {
	tests := []struct {
		name   string
		listen string
	}{
		{"empty", ""},
		{"no port", "127.0.0.1"},
		{"bad port", "127.0.0.1:notaport"},
		{"port out of range", "127.0.0.1:70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Listen = tt.listen
			assert.NotEmpty(t, cfg.Validate())
		})
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"

	errs := cfg.Validate()
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "logging.level")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Path = ""
	cfg.Server.Listen = ""
	cfg.Logging.Level = "loud"

	assert.Len(t, cfg.Validate(), 3)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tilde only", "~", home},
		{"tilde prefix", "~/.superlocalmemory/memory.db", filepath.Join(home, ".superlocalmemory", "memory.db")},
		{"absolute", "/var/lib/memory.db", "/var/lib/memory.db"},
		{"relative", "data/memory.db", "data/memory.db"},
		{"empty", "", ""},
		{"tilde mid-path", "/data/~backup", "/data/~backup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := config.ExpandHome(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_ExpandsStoragePath(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `
storage:
  path: ~/custom/memory.db
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "custom", "memory.db"), cfg.Storage.Path)
}
