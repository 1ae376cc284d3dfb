package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/yawn/internal/testutil"
)

// createTestStore creates a new temp-file store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createBookstore creates a store loaded with the bookstore fixture.
func createBookstore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	testutil.SeedBookstore(t, s.DB())
	return s
}
