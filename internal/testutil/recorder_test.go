package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/yawn/internal/query"
)

func TestRecorder_RecordsResolvedStatements(t *testing.T) {
	rec := NewRecorder()
	q := query.From(rec, Books)
	b := NewBookDef(q.Root())
	q.Add(query.Eq(b.Pages, int64(300)))

	_, err := q.List(context.Background())
	require.NoError(t, err)

	stmts := rec.Statements()
	require.Len(t, stmts, 1)
	assert.Equal(t, "books", stmts[0].From.Name)
	assert.Same(t, stmts[0], rec.Last())
}

func TestRecorder_AnswersQueuedResponsesInOrder(t *testing.T) {
	rec := NewRecorder().
		Respond([]any{int64(1)}, []any{int64(2)}).
		Respond([]any{int64(3)})

	q := query.From(rec, Books)
	ids := query.Project(q, query.Field(NewBookDef(q.Root()).ID))

	first, err := ids.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, first)

	second, err := ids.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, second)

	third, err := ids.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, third)
}

func TestRecorder_Reset(t *testing.T) {
	rec := NewRecorder().Respond([]any{int64(1)})
	q := query.From(rec, Books)
	_, _ = q.Clone().List(context.Background())
	require.Len(t, rec.Statements(), 1)

	rec.Reset()
	assert.Empty(t, rec.Statements())
	assert.Nil(t, rec.Last())
}

func TestRecorder_ThreadSafe(t *testing.T) {
	rec := NewRecorder()
	const numGoroutines = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			q := query.From(rec, Authors)
			_, err := q.List(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, rec.Statements(), numGoroutines)
}

func TestFixedRows_UniqueResult(t *testing.T) {
	ctx := context.Background()

	_, ok, err := NewFixedRows().UniqueResult(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	row, ok, err := NewFixedRows([]any{"x"}).UniqueResult(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []any{"x"}, row)

	_, _, err = NewFixedRows([]any{"x"}, []any{"y"}).UniqueResult(ctx)
	assert.True(t, query.ErrNonUniqueResult.Is(err))
}
