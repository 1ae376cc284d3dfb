package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/yawn/internal/query"
	"github.com/roach88/yawn/internal/testutil"
)

func TestInTx_LockedReadThenWrite(t *testing.T) {
	s := createBookstore(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx *Tx) error {
		q := query.From(tx, testutil.Books)
		b := testutil.NewBookDef(q.Root())
		q.AddGt(b.Pages, 350).Lock(query.LockWrite).OrderAsc(b.ID)

		long, err := q.List(ctx)
		if err != nil {
			return err
		}
		for _, book := range long {
			if err := tx.Exec(ctx, "UPDATE books SET pages = pages - 100 WHERE id = ?", book.ID); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	q, b := books(s)
	got, err := query.Project(q.AddGt(b.Pages, 350), query.Field(b.ID)).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s := createBookstore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx *Tx) error {
		if err := tx.Exec(ctx, "DELETE FROM reviews"); err != nil {
			return err
		}
		q := query.From(tx, testutil.Reviews)
		n, err := q.RowCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n, "delete visible inside the transaction")
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := query.From(s, testutil.Reviews).RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
}

func TestInTx_StatementsBoundToTransaction(t *testing.T) {
	s := createBookstore(t)
	ctx := context.Background()

	require.NoError(t, s.InTx(ctx, func(tx *Tx) error {
		q := query.From(tx, testutil.Books)
		exec, err := tx.Compile(q.Model(), q.Root())
		require.NoError(t, err)
		st := exec.(*Statement)
		assert.Same(t, tx.tx, st.tx)
		assert.NotEmpty(t, st.ID())
		return nil
	}))
}
