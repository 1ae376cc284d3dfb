package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/yawn/internal/store"
	"github.com/roach88/yawn/internal/testutil"
)

// writeCatalog writes the bookstore catalog into a fresh directory.
func writeCatalog(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "catalog")
	require.NoError(t, os.MkdirAll(dir, 0755))
	src := "package bookstore\n\n" + testutil.BookstoreCatalog
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bookstore.cue"), []byte(src), 0644))
	return dir
}

// writeDocument writes a query document and returns its path.
func writeDocument(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

// seedDatabase creates a SQLite database with the bookstore fixture.
func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.db")
	s, err := store.Open(path, store.Options{})
	require.NoError(t, err)
	defer s.Close()
	testutil.SeedBookstore(t, s.DB())
	return path
}

const longestDoc = `
from: books
where:
  - column: pages
    op: ge
    quantifier: all
    sub:
      from: books
      where: [{column: author_id, op: eq, other: ^.author_id}]
      select: [{column: pages}]
select:
  - column: title
  - column: author.name
order:
  - column: title
`
