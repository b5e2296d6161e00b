// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

// Package config loads application configuration from an optional YAML
// file, environment variables with the SLM_ prefix, and built-in
// defaults, in ascending priority.
package config

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// Config is the top-level configuration.
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Server    ServerConfig    `mapstructure:"server"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// StorageConfig locates the memory database.
type StorageConfig struct {
	// Path is the SQLite database file; a leading ~ expands to the
	// user's home directory.
	Path string `mapstructure:"path"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is one of auto, local, openai, or mock.
	Provider string `mapstructure:"provider"`

	// APIKey authenticates the remote provider. Supports keyring://
	// references resolved at load time.
	APIKey string `mapstructure:"api_key"`

	// BaseURL overrides the remote API endpoint.
	BaseURL string `mapstructure:"base_url"`

	// Model overrides the remote embedding model.
	Model string `mapstructure:"model"`

	// ModelPath and TokenizerPath locate the local model assets.
	ModelPath     string `mapstructure:"model_path"`
	TokenizerPath string `mapstructure:"tokenizer_path"`

	// ONNXLibraryPath overrides the onnxruntime shared library.
	ONNXLibraryPath string `mapstructure:"onnx_library_path"`

	// CacheEntries bounds the in-process embedding cache.
	CacheEntries int64 `mapstructure:"cache_entries"`
}

// ServerConfig controls the HTTP tool surface.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// IngestConfig sets defaults for bulk document ingestion.
type IngestConfig struct {
	// Include are doublestar glob patterns selecting files to ingest.
	Include []string `mapstructure:"include"`

	// Exclude patterns are removed from the include set.
	Exclude []string `mapstructure:"exclude"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, or error.
	Level string `mapstructure:"level"`
}

// Load reads configuration from path (optional) with environment
// variable overrides (prefix SLM_, dots become underscores).
func Load(path string) (*Config, error) {
	v := NewViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, slmerr.Errorf(slmerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// NewViper returns a Viper instance carrying the application defaults
// and environment bindings, without a config file attached. The CLI
// layer shares this instance so flags, file, and env compose.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("storage.path", "~/.superlocalmemory/memory.db")
	v.SetDefault("embedding.provider", "auto")
	v.SetDefault("embedding.cache_entries", 4096)
	v.SetDefault("embedding.model_path", "~/.superlocalmemory/models/all-MiniLM-L6-v2.onnx")
	v.SetDefault("embedding.tokenizer_path", "~/.superlocalmemory/models/tokenizer.json")
	v.SetDefault("server.listen", "127.0.0.1:7411")
	v.SetDefault("ingest.include", []string{"**/*.md", "**/*.txt"})
	v.SetDefault("ingest.exclude", []string{"**/node_modules/**", "**/.git/**"})
	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix("SLM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// FromViper unmarshals and validates a populated Viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, slmerr.Errorf(slmerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, slmerr.Errorf(slmerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}
	return &cfg, nil
}

// Validate checks the configuration for logical errors, collecting all
// issues rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	if c.Storage.Path == "" {
		errs = append(errs, slmerr.New(slmerr.CodeConfigValidateInvalidValue, "config: storage.path must not be empty"))
	}

	errs = append(errs, c.validateEmbedding()...)
	errs = append(errs, c.validateServer()...)

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, slmerr.Errorf(slmerr.CodeConfigValidateInvalidValue,
			"config: logging.level must be one of [debug, info, warn, error], got %q",
			c.Logging.Level,
		))
	}

	return errs
}

func (c *Config) validateEmbedding() []error {
	var errs []error

	validProviders := map[string]bool{"auto": true, "local": true, "openai": true, "mock": true}
	if !validProviders[c.Embedding.Provider] {
		errs = append(errs, slmerr.Errorf(slmerr.CodeConfigValidateInvalidValue,
			"config: embedding.provider must be one of [auto, local, openai, mock], got %q",
			c.Embedding.Provider,
		))
	}

	if c.Embedding.Provider == "openai" && c.Embedding.APIKey == "" {
		errs = append(errs, slmerr.New(slmerr.CodeConfigValidateInvalidValue,
			"config: embedding.provider openai requires embedding.api_key"))
	}

	if c.Embedding.CacheEntries < 0 {
		errs = append(errs, slmerr.Errorf(slmerr.CodeConfigValidateInvalidValue,
			"config: embedding.cache_entries must not be negative, got %d",
			c.Embedding.CacheEntries,
		))
	}

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, slmerr.New(slmerr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
		return errs
	}

	_, portStr, err := net.SplitHostPort(c.Server.Listen)
	if err != nil {
		errs = append(errs, slmerr.Errorf(slmerr.CodeConfigValidateInvalidValue,
			"config: server.listen must be a valid host:port address, got %q: %w",
			c.Server.Listen, err,
		))
		return errs
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, slmerr.Errorf(slmerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be a number, got %q", portStr))
	} else if port < 1 || port > 65535 {
		errs = append(errs, slmerr.Errorf(slmerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be between 1 and 65535, got %d", port))
	}

	return errs
}

func (c *Config) expandPaths() error {
	var err error
	for _, p := range []*string{
		&c.Storage.Path,
		&c.Embedding.ModelPath,
		&c.Embedding.TokenizerPath,
		&c.Embedding.ONNXLibraryPath,
	} {
		if *p, err = ExpandHome(*p); err != nil {
			return err
		}
	}
	return nil
}

// ExpandHome replaces a leading ~ or ~/ in path with the user's home
// directory. Other values pass through unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", slmerr.Errorf(slmerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
