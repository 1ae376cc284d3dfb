package pgstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roach88/yawn/internal/query"
	"github.com/roach88/yawn/internal/queryir"
	"github.com/roach88/yawn/internal/querysql"
)

var postgres = querysql.NewSQLCompiler(querysql.Postgres)

// Options configures a Store.
type Options struct {
	// Logger receives per-statement debug logs. Nil means slog.Default().
	Logger *slog.Logger

	// Schema, when set, becomes the search_path of every pooled
	// connection.
	Schema string

	// MaxConns overrides the pool default when positive.
	MaxConns int32
}

// Store executes compiled queries against a PostgreSQL database.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open parses connString and creates a connection pool. Connections are
// established lazily; use Ping to verify the server is reachable.
func Open(ctx context.Context, connString string, opts Options) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	if opts.Schema != "" {
		cfg.ConnConfig.RuntimeParams["search_path"] = opts.Schema
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Ping acquires a connection and checks the server responds.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close closes every pooled connection.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Pool returns the underlying pool for direct queries.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Exec runs a statement that returns no rows.
func (s *Store) Exec(ctx context.Context, stmt string, args ...any) error {
	if _, err := s.pool.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// Compile implements query.Compiler.
func (s *Store) Compile(m *query.Model, root query.Parent) (query.Executable, error) {
	sel, err := query.Resolve(m, root)
	if err != nil {
		return nil, err
	}
	return s.Prepare(sel)
}

// Prepare validates and renders an already resolved statement.
func (s *Store) Prepare(sel *queryir.Select) (*Statement, error) {
	if v := queryir.Validate(sel); !v.Valid {
		return nil, fmt.Errorf("invalid resolved query: %s", strings.Join(v.Problems, "; "))
	}
	text, params, err := postgres.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("render sql: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	stmt := &Statement{
		store:  s,
		id:     id.String(),
		sql:    text,
		params: params,
		lock:   sel.Lock,
	}
	s.logger.Debug("compiled statement",
		"statement_id", stmt.id,
		"dialect", querysql.Postgres.String(),
		"sql", text,
		"params", len(params),
		"lock", sel.Lock.String(),
	)
	return stmt, nil
}

// Tx is a query.Compiler whose statements run in one transaction. Row
// locks taken with FOR SHARE / FOR UPDATE are held until InTx returns.
type Tx struct {
	store *Store
	tx    pgx.Tx
}

// InTx runs fn in a transaction, committing when fn returns nil and
// rolling back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	pgTx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer pgTx.Rollback(ctx)

	if err := fn(&Tx{store: s, tx: pgTx}); err != nil {
		return err
	}
	if err := pgTx.Commit(ctx); err != nil {
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
	if _, err := t.tx.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// Statement is a compiled, parameterized query bound to a Store.
type Statement struct {
	store  *Store
	tx     pgx.Tx // set for statements compiled by a Tx
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

// run executes the statement. Row locks only last for the enclosing
// transaction; outside a Tx a locked read runs in one of its own, which
// commits before the rows are returned.
func (st *Statement) run(ctx context.Context) ([][]any, error) {
	if st.tx != nil {
		return collect(ctx, st.tx, st.sql, st.params)
	}
	if st.lock == queryir.LockNone {
		return collect(ctx, st.store.pool, st.sql, st.params)
	}

	tx, err := st.store.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin locked read: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := collect(ctx, tx, st.sql, st.params)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit locked read: %w", err)
	}
	return rows, nil
}

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func collect(ctx context.Context, q querier, text string, params []any) ([][]any, error) {
	rows, err := q.Query(ctx, text, params...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([]any, error) {
		return row.Values()
	})
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}
	if out == nil {
		out = [][]any{}
	}
	return out, nil
}
