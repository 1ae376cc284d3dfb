package store

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/yawn/internal/query"
	"github.com/roach88/yawn/internal/testutil"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path, Options{})
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path, Options{})
	require.NoError(t, err)
	require.NoError(t, s.Exec(context.Background(), "CREATE TABLE t (id INTEGER PRIMARY KEY)"))
	require.NoError(t, s.Close())

	for i := 0; i < 3; i++ {
		s, err := Open(path, Options{})
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}

	s, err = Open(path, Options{})
	require.NoError(t, err)
	defer s.Close()

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='t'").Scan(&name)
	assert.NoError(t, err)
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
}

func TestOpen_BusyTimeoutOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, Options{BusyTimeout: 250 * time.Millisecond})
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.verifyPragma("busy_timeout", "250"))
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "test.db"), Options{})
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestCompile_LogsStatement(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, Options{Logger: logger})
	require.NoError(t, err)
	defer s.Close()
	testutil.SeedBookstore(t, s.DB())

	q := query.From(s, testutil.Books)
	b := testutil.NewBookDef(q.Root())
	q.Add(query.Eq(b.Title, "Mort"))

	got, err := q.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	out := buf.String()
	assert.Contains(t, out, "compiled statement")
	assert.Contains(t, out, "statement_id=")
	assert.Contains(t, out, "executed statement")
	assert.Contains(t, out, "rows=1")
	assert.NotContains(t, out, "Mort", "parameter values are not logged")
}

func TestPrepare_RejectsUnresolvedTree(t *testing.T) {
	s := createTestStore(t)
	q := query.From(s, testutil.Books)
	b := testutil.NewBookDef(q.Root())
	q.Add(query.Eq(b.Title, "Mort"))

	sel, err := query.Resolve(q.Model(), q.Root())
	require.NoError(t, err)
	sel.From.Alias = "b" // columns still reference the unaliased root

	_, err = s.Prepare(sel)
	assert.ErrorContains(t, err, "invalid resolved query")
}
