package query

import (
	"database/sql"

	"golang.org/x/exp/constraints"

	"github.com/roach88/yawn/internal/queryir"
)

// Number is the set of column types Sum accepts.
type Number interface {
	constraints.Integer | constraints.Float
}

// aggregate applies an aggregate function to a column (or to "*" when col
// is nil) and converts the single result cell with conv.
type aggregate[T any] struct {
	fn       queryir.AggFunc
	col      Ref
	distinct bool
	conv     func(raw any) (T, error)
}

func (p *aggregate[T]) compileSelection(ctx *Context) (selection, error) {
	agg := queryir.Aggregate{Func: p.fn, Distinct: p.distinct}
	if p.col != nil {
		col, err := ctx.Column(p.col)
		if err != nil {
			return selection{}, err
		}
		agg.Arg = col
	}
	return selection{exprs: []queryir.Expr{agg}}, nil
}

func (p *aggregate[T]) width() int { return 1 }

func (p *aggregate[T]) Convert(row []any) (T, error) {
	if err := checkWidth(row, 1); err != nil {
		var zero T
		return zero, err
	}
	return p.conv(row[0])
}

func (p *aggregate[T]) convertAny(row []any) (any, error) { return p.Convert(row) }

// Count counts the non-NULL values of c.
func Count(c Ref) Projection[int64] {
	return &aggregate[int64]{fn: queryir.AggCount, col: c, conv: convertCell[int64]}
}

// CountDistinct counts the distinct non-NULL values of c.
func CountDistinct(c Ref) Projection[int64] {
	return &aggregate[int64]{fn: queryir.AggCount, col: c, distinct: true, conv: convertCell[int64]}
}

// RowCount counts rows.
func RowCount() Projection[int64] {
	return &aggregate[int64]{fn: queryir.AggCount, conv: convertCell[int64]}
}

// Sum totals c. The result is absent when no non-NULL value was scanned.
func Sum[V Number](c *Column[V]) Projection[sql.Null[V]] {
	return &aggregate[sql.Null[V]]{fn: queryir.AggSum, col: c, conv: convertNull[V]}
}

// Avg averages c. The result is absent when no non-NULL value was scanned.
func Avg[V Number](c *Column[V]) Projection[sql.Null[float64]] {
	return &aggregate[sql.Null[float64]]{fn: queryir.AggAvg, col: c, conv: convertNull[float64]}
}

// Min selects the smallest value of c.
func Min[V any](c *Column[V]) Projection[sql.Null[V]] {
	return &aggregate[sql.Null[V]]{fn: queryir.AggMin, col: c, conv: convertNull[V]}
}

// Max selects the largest value of c.
func Max[V any](c *Column[V]) Projection[sql.Null[V]] {
	return &aggregate[sql.Null[V]]{fn: queryir.AggMax, col: c, conv: convertNull[V]}
}

// AggregateOf builds an untyped aggregate for dynamic callers. A nil c
// with AggCount counts rows.
func AggregateOf(fn queryir.AggFunc, c Ref, distinct bool) Projection[any] {
	return &aggregate[any]{fn: fn, col: c, distinct: distinct, conv: convertCell[any]}
}

// groupBy selects c and groups by it.
type groupBy[V any] struct {
	col Ref
}

// GroupBy selects c and adds it to the GROUP BY list.
func GroupBy[V any](c *Column[V]) Projection[V] {
	return &groupBy[V]{col: c}
}

// GroupByOf is the untyped GroupBy.
func GroupByOf(c Ref) Projection[any] {
	return &groupBy[any]{col: c}
}

func (p *groupBy[V]) compileSelection(ctx *Context) (selection, error) {
	col, err := ctx.Column(p.col)
	if err != nil {
		return selection{}, err
	}
	return selection{exprs: []queryir.Expr{col}, groupBy: []queryir.Expr{col}}, nil
}

func (p *groupBy[V]) width() int { return 1 }

func (p *groupBy[V]) Convert(row []any) (V, error) {
	if err := checkWidth(row, 1); err != nil {
		var zero V
		return zero, err
	}
	return convertCell[V](row[0])
}

func (p *groupBy[V]) convertAny(row []any) (any, error) { return p.Convert(row) }
