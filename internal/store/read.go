package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/yawn/internal/query"
	"github.com/roach88/yawn/internal/queryir"
)

// Statement is a compiled, parameterized query bound to a Store.
type Statement struct {
	store  *Store
	tx     *sql.Tx // set for statements compiled by a Tx
	id     string
	sql    string
	params []any
	lock   queryir.LockMode
}

// ID returns the statement id used in logs.
func (st *Statement) ID() string { return st.id }

// SQL returns the rendered statement.
func (st *Statement) SQL() string { return st.sql }

// Params returns the bound parameters in placeholder order.
func (st *Statement) Params() []any { return append([]any(nil), st.params...) }

// List implements query.Executable.
//
// Returns an empty slice (not nil) if no rows match.
func (st *Statement) List(ctx context.Context) ([][]any, error) {
	start := time.Now()
	rows, err := st.run(ctx)
	if err != nil {
		return nil, err
	}
	st.store.logger.Debug("executed statement",
		"statement_id", st.id,
		"rows", len(rows),
		"elapsed", time.Since(start),
	)
	return rows, nil
}

// UniqueResult implements query.Executable.
// Returns query.ErrNonUniqueResult if more than one row matches.
func (st *Statement) UniqueResult(ctx context.Context) ([]any, bool, error) {
	rows, err := st.List(ctx)
	if err != nil {
		return nil, false, err
	}
	switch len(rows) {
	case 0:
		return nil, false, nil
	case 1:
		return rows[0], true, nil
	default:
		return nil, false, query.ErrNonUniqueResult.New(len(rows))
	}
}

// run executes the statement. Outside a Tx a locked read gets a
// transaction of its own, released before the rows are returned.
func (st *Statement) run(ctx context.Context) ([][]any, error) {
	if st.tx != nil {
		return queryRows(ctx, st.tx, st.sql, st.params)
	}
	if st.lock == queryir.LockNone {
		return queryRows(ctx, st.store.db, st.sql, st.params)
	}

	tx, err := st.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin locked read: %w", err)
	}
	defer tx.Rollback()

	rows, err := queryRows(ctx, tx, st.sql, st.params)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit locked read: %w", err)
	}
	return rows, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// queryRows runs text and scans every row into raw cells.
func queryRows(ctx context.Context, q queryer, text string, params []any) ([][]any, error) {
	rows, err := q.QueryContext(ctx, text, params...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	out := [][]any{}
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, cells)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
