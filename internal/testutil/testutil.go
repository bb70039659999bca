// Package testutil provides shared test helpers for setting up stores and
// repositories.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/starford/pocketnotes/internal/kv"
	"github.com/starford/pocketnotes/internal/noterepo"
)

// Quiet is a logger that discards everything.
var Quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// TestFSStore creates a file-backed store in a temporary directory.
func TestFSStore(t *testing.T) (string, *kv.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := kv.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestSQLiteStore creates a temporary SQLite store that is closed on cleanup.
func TestSQLiteStore(t *testing.T) *kv.SQLite {
	t.Helper()
	store, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestRepo returns a repository over store that logs nowhere.
func TestRepo(t *testing.T, store kv.Store, opts ...noterepo.Option) *noterepo.Repository {
	t.Helper()
	base := []noterepo.Option{noterepo.WithLogger(Quiet)}
	return noterepo.New(store, append(base, opts...)...)
}
