package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/yawn/internal/query"
	"github.com/roach88/yawn/internal/queryir"
	"github.com/roach88/yawn/internal/querysql"
)

var sqlite = querysql.NewSQLCompiler(querysql.SQLite)

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
	text, params, err := sqlite.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("render sql: %w", err)
	}

	stmt := &Statement{
		store:  s,
		id:     newStatementID(),
		sql:    text,
		params: params,
		lock:   sel.Lock,
	}
	s.logger.Debug("compiled statement",
		"statement_id", stmt.id,
		"sql", text,
		"params", len(params),
		"lock", sel.Lock.String(),
	)
	return stmt, nil
}

// newStatementID returns a time-ordered id correlating the compile and
// execution logs of one statement.
func newStatementID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
