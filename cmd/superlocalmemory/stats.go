// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print memory store statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp()
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.service.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database:       %s\n", a.cfg.Storage.Path)
			fmt.Fprintf(out, "Total memories: %d\n", stats.TotalMemories)
			fmt.Fprintf(out, "Capture count:  %d\n", stats.CaptureCount)
			fmt.Fprintf(out, "Dimensions:     %d\n", stats.Dimensions)
			return nil
		},
	}
}

func newRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently stored memories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp()
			if err != nil {
				return err
			}
			defer a.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			memories, err := a.service.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(memories) == 0 {
				fmt.Fprintln(out, "No memories stored.")
				return nil
			}
			for _, m := range memories {
				fmt.Fprintln(out, m)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 10, "maximum entries to list")
	return cmd
}
