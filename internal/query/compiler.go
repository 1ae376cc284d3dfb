package query

import (
	"context"

	"github.com/roach88/yawn/internal/queryir"
)

// Compiler is the backend boundary. Compile turns a model into an
// executable statement; everything it receives through Resolve is already
// alias-resolved and every literal already adapted.
type Compiler interface {
	Compile(m *Model, root Parent) (Executable, error)
}

// Executable is a compiled statement.
type Executable interface {
	// List returns every matching row as raw cells.
	List(ctx context.Context) ([][]any, error)

	// UniqueResult returns the single matching row, or ok=false when no
	// row matches. More than one row is an error.
	UniqueResult(ctx context.Context) (row []any, ok bool, err error)
}

// Resolve walks m once against a fresh compilation context and returns the
// fully aliased statement. The root is aliased when any criterion carries
// a correlated sub-query, or when root is itself a sub-query root.
func Resolve(m *Model, root Parent) (*queryir.Select, error) {
	if root == nil {
		root = m.root
	}
	ctx := NewContext()
	if m.ContainsSubquery() {
		ctx.RequireRootAlias()
	}
	return resolveFrom(ctx, m, root)
}

// resolveSelect resolves m inside an existing context. Sub-queries use it
// so that they share the outer alias namespace.
func resolveSelect(ctx *Context, m *Model) (*queryir.Select, error) {
	return resolveFrom(ctx, m, m.root)
}

func resolveFrom(ctx *Context, m *Model, root Parent) (*queryir.Select, error) {
	rootAlias, err := ctx.Alias(root)
	if err != nil {
		return nil, err
	}
	sel := &queryir.Select{
		From:   queryir.Table{Name: m.entity, Alias: rootAlias},
		Offset: m.offset,
		Limit:  m.maxResults,
		Lock:   m.lock,
		Hints:  append([]string(nil), m.hints...),
	}

	for _, j := range orderJoins(m.joins) {
		rj, err := j.resolve(ctx)
		if err != nil {
			return nil, err
		}
		sel.Joins = append(sel.Joins, rj)
	}

	where := make([]queryir.Predicate, 0, len(m.criteria))
	for _, c := range m.criteria {
		p, err := c.compile(ctx)
		if err != nil {
			return nil, err
		}
		where = append(where, p)
	}
	sel.Where = queryir.Conjoin(where...)

	proj := m.selection()
	if proj == nil {
		return nil, ErrUnsupported.New("query over " + m.entity + " selects nothing")
	}
	s, err := proj.compileSelection(ctx)
	if err != nil {
		return nil, err
	}
	sel.Columns = s.exprs
	sel.GroupBy = s.groupBy
	sel.Distinct = s.distinct

	for _, o := range m.orders {
		term, err := o.resolve(ctx)
		if err != nil {
			return nil, err
		}
		sel.OrderBy = append(sel.OrderBy, term)
	}
	return sel, nil
}
