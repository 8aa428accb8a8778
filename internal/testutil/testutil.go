// Package testutil provides shared test helpers for setting up temporary
// SQLite stores.
package testutil

import (
	"os"
	"testing"

	"github.com/scopedev/scopepad/internal/store"
)

// TestStore creates a temporary SQLite store that is automatically cleaned up.
func TestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	dbFile, err := os.CreateTemp("", "scopepad-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	s, err := store.NewSQLiteStore(dbFile.Name())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
