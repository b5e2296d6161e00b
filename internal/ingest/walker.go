// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

// Package ingest bulk-loads text documents into the memory store. Files
// are selected with glob patterns, split into paragraph chunks, and
// stored through the normal dedup path so re-ingesting a directory is
// idempotent.
package ingest

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// Walker selects files under a root directory by doublestar glob
// patterns evaluated against root-relative paths.
type Walker struct {
	includes []string
	excludes []string
}

// NewWalker builds a walker. Empty includes selects every file.
func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{includes: includes, excludes: excludes}
}

// Walk returns the paths of all regular files under root matching the
// include patterns and not matching the exclude patterns. Excluded
// directories are pruned without descending.
func (w *Walker) Walk(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, slmerr.Wrapf(err, slmerr.CodeIngestWalkFailure, "resolving root %s", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if rel != "." && w.excluded(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if w.included(rel) && !w.excluded(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, slmerr.Wrapf(err, slmerr.CodeIngestWalkFailure, "walking %s", root)
	}
	return files, nil
}

func (w *Walker) included(rel string) bool {
	return matchAny(w.includes, rel)
}

func (w *Walker) excluded(rel string) bool {
	return matchAny(w.excludes, rel)
}

func matchAny(patterns []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// readFile loads a file as UTF-8 text.
func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", slmerr.Wrapf(err, slmerr.CodeIngestReadFailure, "reading %s", path)
	}
	return string(data), nil
}
