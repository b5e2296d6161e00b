// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package main

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/plures/superlocalmemory-mcp/internal/config"
	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// NewRootCmd creates the root command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "superlocalmemory",
		Short:         "Local semantic text memory",
		Long:          "SuperLocalMemory stores short text memories with embeddings in a local SQLite file and retrieves them by meaning.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newServeCmd(),
		newIngestCmd(),
		newStatsCmd(),
		newRecentCmd(),
		newSecretCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, and
// the optional config file so the standard precedence (flag > env >
// file > defaults) is handled uniformly.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	defaults := config.NewViper()
	for key, val := range defaults.AllSettings() {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix("SLM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return slmerr.Errorf(slmerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
		config.WarnInsecurePermissions(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.config/superlocalmemory")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return slmerr.Errorf(slmerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			// No config anywhere: write a commented default and load it.
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return slmerr.Errorf(slmerr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		} else {
			config.WarnInsecurePermissions(v.ConfigFileUsed())
		}
	}

	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return slmerr.Errorf(slmerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	setupLogging(v.GetString("logging.level"), v.GetBool("verbose"))
	return nil
}

func setupLogging(level string, verbose bool) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
