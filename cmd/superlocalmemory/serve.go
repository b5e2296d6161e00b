// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/plures/superlocalmemory-mcp/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP memory API",
		Long:  "Open the memory store, select the embedding provider, and serve the HTTP API until interrupted.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	_ = viper.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := wireApp()
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.New(server.Config{
		ListenAddr: a.cfg.Server.Listen,
	}, a.service, slog.Default())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("serving memory API",
		"listen", a.cfg.Server.Listen,
		"db", a.cfg.Storage.Path,
		"dimensions", a.embedder.Dimensions(),
	)

	// Start blocks until the signal arrives, then drains in-flight
	// requests; the deferred Close flushes the store afterwards.
	return srv.Start(ctx)
}
