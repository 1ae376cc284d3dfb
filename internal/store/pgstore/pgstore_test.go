package pgstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/yawn/internal/query"
	"github.com/roach88/yawn/internal/testutil"
)

// unreachable is never dialled: pools connect lazily and these tests only
// compile statements.
const unreachable = "postgres://yawn@127.0.0.1:1/yawn?sslmode=disable"

func lazyStore(t *testing.T, logger *slog.Logger) *Store {
	t.Helper()
	s, err := Open(context.Background(), unreachable, Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func compile(t *testing.T, s *Store, m *query.Model, root query.Parent) *Statement {
	t.Helper()
	exec, err := s.Compile(m, root)
	require.NoError(t, err)
	stmt, ok := exec.(*Statement)
	require.True(t, ok, "Compile returned %T", exec)
	return stmt
}

func TestOpen_InvalidConnString(t *testing.T) {
	_, err := Open(context.Background(), "postgres://%zz", Options{})
	assert.Error(t, err)
}

func TestOpen_Options(t *testing.T) {
	s, err := Open(context.Background(), unreachable, Options{Schema: "bookstore", MaxConns: 3})
	require.NoError(t, err)
	defer s.Close()

	cfg := s.Pool().Config()
	assert.Equal(t, "bookstore", cfg.ConnConfig.RuntimeParams["search_path"])
	assert.Equal(t, int32(3), cfg.MaxConns)
}

func TestCompile_PostgresDialect(t *testing.T) {
	s := lazyStore(t, nil)

	q := query.From(s, testutil.Books)
	b := testutil.NewBookDef(q.Root())
	q.AddILike(b.Title, "guards", query.MatchAnywhere).AddGt(b.Pages, 200).Lock(query.LockWrite)

	stmt := compile(t, s, q.Model(), q.Root())
	assert.Equal(t,
		"SELECT books.id, books.title, books.author_id, books.price, books.pages, books.published_at FROM books WHERE books.title ILIKE $1 AND books.pages > $2 FOR UPDATE",
		stmt.SQL())
	assert.Equal(t, []any{"%guards%", 200}, stmt.Params())
	assert.NotEmpty(t, stmt.ID())
}

func TestCompile_LogsStatement(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := lazyStore(t, logger)

	q := query.From(s, testutil.Authors)
	stmt := compile(t, s, q.Model(), q.Root())

	out := buf.String()
	assert.Contains(t, out, "compiled statement")
	assert.Contains(t, out, "dialect=postgres")
	assert.Contains(t, out, "statement_id="+stmt.ID())
}

func TestCompile_ParamsAreCopied(t *testing.T) {
	s := lazyStore(t, nil)
	q := query.From(s, testutil.Books)
	b := testutil.NewBookDef(q.Root())
	q.AddEq(b.Title, "Mort")

	stmt := compile(t, s, q.Model(), q.Root())
	params := stmt.Params()
	params[0] = "changed"
	assert.Equal(t, []any{"Mort"}, stmt.Params())
}

// The integration tests below need a reachable server:
//
//	YAWN_POSTGRES_URL=postgres://localhost/yawn_test go test ./internal/store/pgstore
func integrationStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("YAWN_POSTGRES_URL")
	if url == "" {
		t.Skip("YAWN_POSTGRES_URL not set")
	}
	ctx := context.Background()

	admin, err := Open(ctx, url, Options{})
	require.NoError(t, err)
	defer admin.Close()
	require.NoError(t, admin.Ping(ctx))

	schema := fmt.Sprintf("yawn_%d", time.Now().UnixNano())
	require.NoError(t, admin.Exec(ctx, "CREATE SCHEMA "+schema))
	t.Cleanup(func() {
		cleanup, err := Open(context.Background(), url, Options{})
		if err != nil {
			return
		}
		defer cleanup.Close()
		_ = cleanup.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
	})

	s, err := Open(ctx, url, Options{Schema: schema})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	testutil.Seed(t, func(stmt string) error { return s.Exec(ctx, stmt) })
	return s
}

func TestIntegration_EntityRecords(t *testing.T) {
	s := integrationStore(t)
	q := query.From(s, testutil.Books)
	b := testutil.NewBookDef(q.Root())
	q.AddEq(b.ID, int64(1))

	got, ok, err := q.UniqueResult(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A Wizard of Earthsea", got.Title)
	assert.True(t, decimal.RequireFromString("9.5").Equal(got.Price), "price %s", got.Price)
	assert.Equal(t, time.Date(1968, 11, 1, 0, 0, 0, 0, time.UTC), got.PublishedAt.UTC())
}

func TestIntegration_QuantifiedAndPagination(t *testing.T) {
	s := integrationStore(t)
	ctx := context.Background()

	// the longest book of each author
	q := query.From(s, testutil.Books)
	b := testutil.NewBookDef(q.Root())
	others := query.Detached(testutil.Books)
	o := testutil.NewBookDef(others.Root())
	others.AddEqColumn(o.AuthorID, b.AuthorID)
	longest := query.Project(others, query.Field(o.Pages))
	q.AddAll(b.Pages, query.OpGe, longest).OrderAsc(b.ID)

	titles, err := query.Project(q, query.Field(b.Title)).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"The Dispossessed", "Thud!"}, titles)

	pq := query.From(s, testutil.Books)
	pb := testutil.NewBookDef(pq.Root())
	page, err := query.Project(pq.OrderAsc(pb.Title), query.Field(pb.Title)).ListPaginated(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mort", "The Dispossessed"}, page)
}

func TestIntegration_ReviewsAndLocks(t *testing.T) {
	s := integrationStore(t)
	ctx := context.Background()

	q := query.From(s, testutil.Reviews)
	r := testutil.NewReviewDef(q.Root())
	q.AddIsNotNull(r.Body).AddEq(r.Rating, int64(5)).OrderAsc(r.ID).Lock(query.LockRead)

	got, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, uuid.MustParse("7f1d3a52-4c0e-4f51-9b57-0d2b1c3e9a01"), got[0].ID)
	assert.Equal(t, "Timeless", got[0].Body.V)

	n, err := query.From(s, testutil.Authors).RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestInTx_BeginFailureSkipsCallback(t *testing.T) {
	s := lazyStore(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	called := false
	err := s.InTx(ctx, func(*Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin")
	assert.False(t, called)
}

func TestIntegration_LockHeldAcrossTransaction(t *testing.T) {
	s := integrationStore(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx *Tx) error {
		q := query.From(tx, testutil.Books)
		b := testutil.NewBookDef(q.Root())
		q.AddGt(b.Pages, int64(350)).Lock(query.LockWrite).OrderAsc(b.ID)

		exec, err := tx.Compile(q.Model(), q.Root())
		if err != nil {
			return err
		}
		assert.Contains(t, exec.(*Statement).SQL(), "FOR UPDATE")

		long, err := q.List(ctx)
		if err != nil {
			return err
		}
		for _, book := range long {
			if err := tx.Exec(ctx, "UPDATE books SET pages = pages - 100 WHERE id = $1", book.ID); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	q := query.From(s, testutil.Books)
	b := testutil.NewBookDef(q.Root())
	n, err := q.AddGt(b.Pages, int64(350)).RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
