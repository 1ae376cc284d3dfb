package query

import (
	"github.com/roach88/yawn/internal/queryir"
)

// Detachable is a query usable as a correlated sub-query. Query[T]
// satisfies it; queries built with Detached are the usual operands.
type Detachable interface {
	Model() *Model
}

// shaped checks at construction that sub selects exactly one column.
func shaped(sub Detachable) *Model {
	m := sub.Model()
	if w := m.width(); w != 1 {
		panic(ErrSubqueryShape.New(m.entity, w))
	}
	return m
}

// compileSub resolves a detached model inside the outer compilation so
// that both share one alias namespace.
func compileSub(ctx *Context, m *Model) (*queryir.Select, error) {
	return resolveSelect(ctx, m)
}

// inSubquery is <column> [NOT] IN (<sub-query>).
type inSubquery struct {
	col    Ref
	sub    *Model
	negate bool
}

func (r *inSubquery) compile(ctx *Context) (queryir.Predicate, error) {
	col, err := ctx.Column(r.col)
	if err != nil {
		return nil, err
	}
	sel, err := compileSub(ctx, r.sub)
	if err != nil {
		return nil, err
	}
	return queryir.InSelect{Expr: col, Query: sel, Negate: r.negate}, nil
}

// exists is [NOT] EXISTS (<sub-query>). Any projection shape is accepted.
type exists struct {
	sub    *Model
	negate bool
}

func (r *exists) compile(ctx *Context) (queryir.Predicate, error) {
	sel, err := compileSub(ctx, r.sub)
	if err != nil {
		return nil, err
	}
	return queryir.Exists{Query: sel, Negate: r.negate}, nil
}

// quantified is <column> <op> ALL|ANY (<sub-query>).
type quantified struct {
	col   Ref
	op    queryir.CompareOp
	quant queryir.Quantifier
	sub   *Model
}

func (r *quantified) compile(ctx *Context) (queryir.Predicate, error) {
	col, err := ctx.Column(r.col)
	if err != nil {
		return nil, err
	}
	sel, err := compileSub(ctx, r.sub)
	if err != nil {
		return nil, err
	}
	return queryir.Quantified{Left: col, Op: r.op, Quantifier: r.quant, Query: sel}, nil
}

// compareSubquery is <column> <op> (<scalar sub-query>).
type compareSubquery struct {
	col Ref
	op  queryir.CompareOp
	sub *Model
}

func (r *compareSubquery) compile(ctx *Context) (queryir.Predicate, error) {
	col, err := ctx.Column(r.col)
	if err != nil {
		return nil, err
	}
	sel, err := compileSub(ctx, r.sub)
	if err != nil {
		return nil, err
	}
	return queryir.Compare{Left: col, Op: r.op, Right: queryir.Subquery{Query: sel}}, nil
}
