// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package ingest

import (
	"context"
	"log/slog"
	"os"

	"github.com/plures/superlocalmemory-mcp/internal/embedding"
	"github.com/plures/superlocalmemory-mcp/internal/memory"
	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// Progress is invoked after each file completes, with the number of
// files processed so far and the total.
type Progress func(processed, total int, path string)

// Result summarizes an ingest run.
type Result struct {
	FilesProcessed int
	ChunksStored   int
	Duplicates     int

	// Errors holds per-file failures that did not abort the run.
	Errors []error
}

// Ingestor walks a directory tree and stores paragraph chunks of each
// matching file as memories.
type Ingestor struct {
	store    memory.Store
	embedder embedding.Embedder
	walker   *Walker
	chunker  *Chunker
	logger   *slog.Logger
}

// New builds an ingestor over the given store and embedder.
func New(store memory.Store, embedder embedding.Embedder, walker *Walker, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		store:    store,
		embedder: embedder,
		walker:   walker,
		chunker:  NewChunker(0),
		logger:   logger,
	}
}

// Ingest processes every matching file under root. Unreadable files are
// reported in Result.Errors and skipped; a store failure aborts the
// run. Chunks flow through the store's dedup path, so re-ingesting an
// unchanged tree mostly counts duplicates.
func (in *Ingestor) Ingest(ctx context.Context, root string, progress Progress) (*Result, error) {
	if info, err := os.Stat(root); err != nil {
		return nil, slmerr.Wrapf(err, slmerr.CodeIngestWalkFailure, "stat %s", root)
	} else if !info.IsDir() {
		return nil, slmerr.Errorf(slmerr.CodeIngestWalkFailure, "%s is not a directory", root)
	}

	files, err := in.walker.Walk(root)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := in.ingestFile(ctx, path, result); err != nil {
			return result, err
		}
		result.FilesProcessed++

		if progress != nil {
			progress(i+1, len(files), path)
		}
	}
	return result, nil
}

func (in *Ingestor) ingestFile(ctx context.Context, path string, result *Result) error {
	text, err := readFile(path)
	if err != nil {
		in.logger.Warn("skipping unreadable file", "path", path, "error", err)
		result.Errors = append(result.Errors, err)
		return nil
	}

	for _, chunk := range in.chunker.Chunk(text) {
		vec, err := in.embedder.Embed(ctx, chunk)
		if err != nil {
			// Embedding failures are fatal: a remote credential or
			// local model problem will not fix itself mid-run.
			return err
		}

		stored, err := in.store.Store(ctx, chunk, vec, memory.StoreOptions{
			Source: path,
			Tags:   []string{"ingest"},
		})
		if err != nil {
			return slmerr.Wrapf(err, slmerr.CodeIngestStoreFailure, "storing chunk from %s", path)
		}

		result.ChunksStored++
		if stored.IsDuplicate {
			result.Duplicates++
		}
	}
	return nil
}
