// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package main

import (
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/plures/superlocalmemory-mcp/internal/ingest"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <dir>",
		Short: "Bulk-load text files from a directory",
		Long: `Walk a directory tree, split matching text files into paragraph
chunks, and store each chunk as a memory. Chunks flow through the
normal dedup path, so re-running over an unchanged tree is idempotent.`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().StringSlice("include", nil, "glob patterns to include (default from config)")
	cmd.Flags().StringSlice("exclude", nil, "glob patterns to exclude (default from config)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := wireApp()
	if err != nil {
		return err
	}
	defer a.Close()

	root, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	includes := a.cfg.Ingest.Include
	if flagIncludes, _ := cmd.Flags().GetStringSlice("include"); len(flagIncludes) > 0 {
		includes = flagIncludes
	}
	excludes := a.cfg.Ingest.Exclude
	if flagExcludes, _ := cmd.Flags().GetStringSlice("exclude"); len(flagExcludes) > 0 {
		excludes = flagExcludes
	}

	in := ingest.New(a.store, a.embedder, ingest.NewWalker(includes, excludes), nil)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanning %s...\n", root)

	var bar *progressbar.ProgressBar
	progress := func(processed, total int, _ string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("Ingesting"),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(out)
				}),
			)
		}
		_ = bar.Set(processed)
	}

	result, err := in.Ingest(cmd.Context(), root, progress)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nIngest complete:\n")
	fmt.Fprintf(out, "  Files processed: %d\n", result.FilesProcessed)
	fmt.Fprintf(out, "  Chunks stored:   %d\n", result.ChunksStored)
	fmt.Fprintf(out, "  Duplicates:      %d\n", result.Duplicates)

	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  - %v\n", e)
		}
	}
	return nil
}
