package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/yawn/internal/queryir"
)

// Dialect selects the SQL flavour rendered.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	default:
		return "sqlite"
	}
}

// ParseDialect maps a dialect name to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q", name)
	}
}

// SQLCompiler renders resolved statements to parameterized SQL.
//
// CRITICAL: All values are parameterized (never interpolated). Only integer
// and boolean literals of constant projections, and LIMIT/OFFSET bounds,
// are written inline.
type SQLCompiler struct {
	dialect Dialect
}

// NewSQLCompiler creates a compiler for d.
func NewSQLCompiler(d Dialect) *SQLCompiler {
	return &SQLCompiler{dialect: d}
}

// Dialect returns the compiler's dialect.
func (c *SQLCompiler) Dialect() Dialect {
	return c.dialect
}

// Compile converts a resolved statement to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q *queryir.Select) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}
	w := &writer{dialect: c.dialect}
	if err := w.selectStmt(q, true); err != nil {
		return "", nil, err
	}
	return w.sb.String(), w.params, nil
}

// writer accumulates SQL text and the parameters in placeholder order.
type writer struct {
	dialect Dialect
	sb      strings.Builder
	params  []any
}

func (w *writer) write(parts ...string) {
	for _, p := range parts {
		w.sb.WriteString(p)
	}
}

// param writes a placeholder for v.
func (w *writer) param(v any) {
	w.params = append(w.params, v)
	if w.dialect == Postgres {
		w.write("$", strconv.Itoa(len(w.params)))
		return
	}
	w.write("?")
}

// selectStmt writes q. Lock clauses are only written for the outermost
// statement.
func (w *writer) selectStmt(q *queryir.Select, outer bool) error {
	if len(q.Columns) == 0 {
		return fmt.Errorf("select from %s has no columns", q.From.Name)
	}

	w.write("SELECT ")
	if len(q.Hints) > 0 {
		for _, h := range q.Hints {
			if strings.Contains(h, "*/") {
				return fmt.Errorf("hint %q contains a comment terminator", h)
			}
		}
		w.write("/*+ ", strings.Join(q.Hints, " "), " */ ")
	}
	if q.Distinct {
		w.write("DISTINCT ")
	}
	for i, col := range q.Columns {
		if i > 0 {
			w.write(", ")
		}
		if err := w.expr(q, col); err != nil {
			return err
		}
	}

	w.write(" FROM ")
	w.table(q.From)

	for _, j := range q.Joins {
		w.write(" ", j.Kind.String(), " JOIN ")
		w.table(j.Table)
		w.write(" ON ")
		if err := w.predicate(q, j.On, true); err != nil {
			return fmt.Errorf("compile join %s: %w", j.Table.Ref(), err)
		}
	}

	if q.Where != nil {
		w.write(" WHERE ")
		if err := w.predicate(q, q.Where, true); err != nil {
			return fmt.Errorf("compile filter: %w", err)
		}
	}

	if len(q.GroupBy) > 0 {
		w.write(" GROUP BY ")
		for i, e := range q.GroupBy {
			if i > 0 {
				w.write(", ")
			}
			if err := w.expr(q, e); err != nil {
				return err
			}
		}
	}

	if len(q.OrderBy) > 0 {
		w.write(" ORDER BY ")
		for i, o := range q.OrderBy {
			if i > 0 {
				w.write(", ")
			}
			if err := w.expr(q, o.Expr); err != nil {
				return err
			}
			if o.Desc {
				w.write(" DESC")
			} else {
				w.write(" ASC")
			}
			switch o.Nulls {
			case queryir.NullsFirst:
				w.write(" NULLS FIRST")
			case queryir.NullsLast:
				w.write(" NULLS LAST")
			}
		}
	}

	w.bounds(q.Limit, q.Offset)

	if outer && w.dialect == Postgres {
		switch q.Lock {
		case queryir.LockRead:
			w.write(" FOR SHARE")
		case queryir.LockWrite:
			w.write(" FOR UPDATE")
		}
	}
	return nil
}

func (w *writer) bounds(limit, offset int) {
	switch {
	case limit > 0:
		w.write(" LIMIT ", strconv.Itoa(limit))
	case offset > 0 && w.dialect == SQLite:
		// SQLite only accepts OFFSET after a LIMIT.
		w.write(" LIMIT -1")
	}
	if offset > 0 {
		w.write(" OFFSET ", strconv.Itoa(offset))
	}
}

func (w *writer) table(t queryir.Table) {
	w.write(t.Name)
	if t.Alias != "" {
		w.write(" AS ", t.Alias)
	}
}

// expr writes e. Unqualified columns belong to the unaliased root of q and
// are qualified with its table name.
func (w *writer) expr(q *queryir.Select, e queryir.Expr) error {
	switch x := e.(type) {
	case queryir.Column:
		if x.Qualifier == "" {
			w.write(q.From.Name, ".", x.Name)
		} else {
			w.write(x.Qualifier, ".", x.Name)
		}
	case queryir.Param:
		w.param(x.Value)
	case queryir.Literal:
		w.literal(x.Value)
	case queryir.Aggregate:
		w.write(string(x.Func), "(")
		if x.Distinct {
			w.write("DISTINCT ")
		}
		if x.Arg == nil {
			w.write("*")
		} else if err := w.expr(q, x.Arg); err != nil {
			return err
		}
		w.write(")")
	case queryir.Subquery:
		w.write("(")
		if err := w.selectStmt(x.Query, false); err != nil {
			return err
		}
		w.write(")")
	default:
		return fmt.Errorf("unsupported expression type: %T", e)
	}
	return nil
}

func (w *writer) literal(v any) {
	switch x := v.(type) {
	case nil:
		w.write("NULL")
	case bool:
		if x {
			w.write("1")
		} else {
			w.write("0")
		}
	case int:
		w.write(strconv.Itoa(x))
	case int64:
		w.write(strconv.FormatInt(x, 10))
	case int32:
		w.write(strconv.FormatInt(int64(x), 10))
	default:
		w.param(v)
	}
}

// predicate writes p. top is true where no enclosing operator binds
// tighter than AND/OR, so junctions need no parentheses.
func (w *writer) predicate(q *queryir.Select, p queryir.Predicate, top bool) error {
	switch x := p.(type) {
	case nil:
		w.write("1 = 1")
	case queryir.Const:
		if x.Value {
			w.write("1 = 1")
		} else {
			w.write("1 = 0")
		}
	case queryir.Compare:
		if err := w.expr(q, x.Left); err != nil {
			return err
		}
		w.write(" ", string(x.Op), " ")
		return w.expr(q, x.Right)
	case queryir.Between:
		if err := w.expr(q, x.Expr); err != nil {
			return err
		}
		w.write(" BETWEEN ")
		if err := w.expr(q, x.Low); err != nil {
			return err
		}
		w.write(" AND ")
		return w.expr(q, x.High)
	case queryir.Like:
		return w.like(q, x)
	case queryir.IsNull:
		if err := w.expr(q, x.Expr); err != nil {
			return err
		}
		if x.Negate {
			w.write(" IS NOT NULL")
		} else {
			w.write(" IS NULL")
		}
	case queryir.In:
		if len(x.Values) == 0 {
			return fmt.Errorf("IN with no values")
		}
		if err := w.expr(q, x.Expr); err != nil {
			return err
		}
		if x.Negate {
			w.write(" NOT")
		}
		w.write(" IN (")
		for i, v := range x.Values {
			if i > 0 {
				w.write(", ")
			}
			if err := w.expr(q, v); err != nil {
				return err
			}
		}
		w.write(")")
	case queryir.InSelect:
		if err := w.expr(q, x.Expr); err != nil {
			return err
		}
		if x.Negate {
			w.write(" NOT")
		}
		w.write(" IN (")
		if err := w.selectStmt(x.Query, false); err != nil {
			return err
		}
		w.write(")")
	case queryir.Exists:
		if x.Negate {
			w.write("NOT ")
		}
		w.write("EXISTS (")
		if err := w.selectStmt(x.Query, false); err != nil {
			return err
		}
		w.write(")")
	case queryir.Quantified:
		return w.quantified(q, x)
	case queryir.Not:
		w.write("NOT (")
		if err := w.predicate(q, x.Predicate, true); err != nil {
			return err
		}
		w.write(")")
	case queryir.And:
		return w.junction(q, x.Predicates, " AND ", "1 = 1", top)
	case queryir.Or:
		return w.junction(q, x.Predicates, " OR ", "1 = 0", top)
	default:
		return fmt.Errorf("unsupported predicate type: %T", p)
	}
	return nil
}

func (w *writer) junction(q *queryir.Select, preds []queryir.Predicate, op, empty string, top bool) error {
	if len(preds) == 0 {
		w.write(empty)
		return nil
	}
	if len(preds) == 1 {
		return w.predicate(q, preds[0], top)
	}
	if !top {
		w.write("(")
	}
	for i, p := range preds {
		if i > 0 {
			w.write(op)
		}
		if err := w.predicate(q, p, false); err != nil {
			return err
		}
	}
	if !top {
		w.write(")")
	}
	return nil
}

func (w *writer) like(q *queryir.Select, l queryir.Like) error {
	if !l.CaseInsensitive {
		if err := w.expr(q, l.Expr); err != nil {
			return err
		}
		w.write(" LIKE ")
		w.param(l.Pattern)
		return nil
	}

	if w.dialect == Postgres {
		if err := w.expr(q, l.Expr); err != nil {
			return err
		}
		w.write(" ILIKE ")
		w.param(l.Pattern)
		return nil
	}

	w.write("lower(")
	if err := w.expr(q, l.Expr); err != nil {
		return err
	}
	w.write(") LIKE lower(")
	w.param(l.Pattern)
	w.write(")")
	return nil
}
