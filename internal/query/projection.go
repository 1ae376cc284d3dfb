package query

import (
	"database/sql"

	"github.com/roach88/yawn/internal/queryir"
)

// selection is a compiled projection: the expressions to select, the
// expressions to group by, and whether rows are distinct.
type selection struct {
	exprs    []queryir.Expr
	groupBy  []queryir.Expr
	distinct bool
}

func (s *selection) merge(o selection) {
	s.exprs = append(s.exprs, o.exprs...)
	s.groupBy = append(s.groupBy, o.groupBy...)
	s.distinct = s.distinct || o.distinct
}

// Selection is the untyped view of a projection.
//
// This is a sealed interface: the leaf, aggregate, wrapper and composite
// variants all live in this package.
type Selection interface {
	compileSelection(ctx *Context) (selection, error)

	// width is the number of cells the projection occupies in a row.
	width() int

	convertAny(row []any) (any, error)
}

// Projection selects something and converts the raw cells it occupies
// back to T. Composite projections index into the row positionally in
// the order their parts were declared.
type Projection[T any] interface {
	Selection
	Convert(row []any) (T, error)
}

// field selects one column.
type field[V any] struct {
	col Ref
}

// Field selects column c and converts its cell to V. NULL converts to the
// zero value of V; use Nullable to observe it.
func Field[V any](c *Column[V]) Projection[V] {
	return &field[V]{col: c}
}

// FieldOf selects an untyped column reference.
func FieldOf(c Ref) Projection[any] {
	return &field[any]{col: c}
}

func (p *field[V]) compileSelection(ctx *Context) (selection, error) {
	col, err := ctx.Column(p.col)
	if err != nil {
		return selection{}, err
	}
	return selection{exprs: []queryir.Expr{col}}, nil
}

func (p *field[V]) width() int { return 1 }

func (p *field[V]) Convert(row []any) (V, error) {
	if err := checkWidth(row, 1); err != nil {
		var zero V
		return zero, err
	}
	return convertCell[V](row[0])
}

func (p *field[V]) convertAny(row []any) (any, error) { return p.Convert(row) }

// nullable selects one column and keeps NULL observable.
type nullable[V any] struct {
	col Ref
}

// Nullable selects column c as a sql.Null, for columns reached through an
// outer join or declared nullable.
func Nullable[V any](c *Column[V]) Projection[sql.Null[V]] {
	return &nullable[V]{col: c}
}

func (p *nullable[V]) compileSelection(ctx *Context) (selection, error) {
	col, err := ctx.Column(p.col)
	if err != nil {
		return selection{}, err
	}
	return selection{exprs: []queryir.Expr{col}}, nil
}

func (p *nullable[V]) width() int { return 1 }

func (p *nullable[V]) Convert(row []any) (sql.Null[V], error) {
	if err := checkWidth(row, 1); err != nil {
		return sql.Null[V]{}, err
	}
	return convertNull[V](row[0])
}

func (p *nullable[V]) convertAny(row []any) (any, error) { return p.Convert(row) }

// distinct marks the selection distinct and otherwise defers to inner.
type distinct[T any] struct {
	inner Projection[T]
}

// Distinct selects only distinct rows of p.
func Distinct[T any](p Projection[T]) Projection[T] {
	return &distinct[T]{inner: p}
}

func (p *distinct[T]) compileSelection(ctx *Context) (selection, error) {
	s, err := p.inner.compileSelection(ctx)
	if err != nil {
		return selection{}, err
	}
	s.distinct = true
	return s, nil
}

func (p *distinct[T]) width() int                        { return p.inner.width() }
func (p *distinct[T]) Convert(row []any) (T, error)      { return p.inner.Convert(row) }
func (p *distinct[T]) convertAny(row []any) (any, error) { return p.Convert(row) }

// coalesce substitutes def when the inner result is absent.
type coalesce[V any] struct {
	inner Projection[sql.Null[V]]
	def   V
}

// Coalesce converts an absent result of p to def.
func Coalesce[V any](p Projection[sql.Null[V]], def V) Projection[V] {
	return &coalesce[V]{inner: p, def: def}
}

func (p *coalesce[V]) compileSelection(ctx *Context) (selection, error) {
	return p.inner.compileSelection(ctx)
}

func (p *coalesce[V]) width() int { return p.inner.width() }

func (p *coalesce[V]) Convert(row []any) (V, error) {
	n, err := p.inner.Convert(row)
	if err != nil {
		return p.def, err
	}
	if !n.Valid {
		return p.def, nil
	}
	return n.V, nil
}

func (p *coalesce[V]) convertAny(row []any) (any, error) { return p.Convert(row) }

// constant selects a fixed value and never reads its cell.
type constant[T any] struct {
	value T
	lit   any
}

// Constant selects v. Conversion returns v without looking at the row.
func Constant[V any](v V) Projection[V] {
	return &constant[V]{value: v, lit: v}
}

// Null selects NULL; conversion always yields an invalid sql.Null.
func Null[V any]() Projection[sql.Null[V]] {
	return &constant[sql.Null[V]]{}
}

func (p *constant[T]) compileSelection(*Context) (selection, error) {
	return selection{exprs: []queryir.Expr{queryir.Literal{Value: p.lit}}}, nil
}

func (p *constant[T]) width() int                        { return 1 }
func (p *constant[T]) Convert([]any) (T, error)          { return p.value, nil }
func (p *constant[T]) convertAny(row []any) (any, error) { return p.Convert(row) }
