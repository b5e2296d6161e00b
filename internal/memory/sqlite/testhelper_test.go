// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package sqlite_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// testDBPath returns a temp SQLite database path.
func testDBPath(t *testing.T, name string) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "superlocalmemory-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, name+".db")
}

// unitVec returns a dims-length unit vector along the given axis.
func unitVec(dims, axis int) []float32 {
	v := make([]float32, dims)
	v[axis] = 1.0
	return v
}

// rawExec runs a statement against the database outside the store, for
// injecting rows the store would never write itself.
func rawExec(t *testing.T, dbPath, query string, args ...any) {
	t.Helper()
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	_, err = db.Exec(query, args...)
	require.NoError(t, err)
}
