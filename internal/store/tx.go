package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/yawn/internal/query"
)

// Tx is a query.Compiler whose statements run in one transaction. Locks
// taken by its reads are held until InTx returns.
type Tx struct {
	store *Store
	tx    *sql.Tx
}

// InTx runs fn in a transaction, committing when fn returns nil and
// rolling back otherwise.
//
// The store has a single connection: inside fn, use tx rather than the
// Store itself or the call blocks.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{store: s, tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Compile implements query.Compiler.
func (t *Tx) Compile(m *query.Model, root query.Parent) (query.Executable, error) {
	sel, err := query.Resolve(m, root)
	if err != nil {
		return nil, err
	}
	st, err := t.store.Prepare(sel)
	if err != nil {
		return nil, err
	}
	st.tx = t.tx
	return st, nil
}

// Exec runs a statement that returns no rows inside the transaction.
func (t *Tx) Exec(ctx context.Context, stmt string, args ...any) error {
	if _, err := t.tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}
