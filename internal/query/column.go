package query

import (
	"database/sql/driver"
)

// Ref is a column handle: a name relative to a Parent. Generated column and
// join-column definitions implement it.
type Ref interface {
	Parent() Parent
	Name() string
}

// ref is an ad-hoc Ref used while resolving join conditions.
type ref struct {
	parent Parent
	name   string
}

func (r ref) Parent() Parent { return r.parent }
func (r ref) Name() string   { return r.name }

// ColumnOf returns an untyped Ref for name under parent.
func ColumnOf(parent Parent, name string) Ref {
	return ref{parent: parent, name: name}
}

// Column is an immutable, typed column definition. V is the Go type of the
// column's values.
type Column[V any] struct {
	parent  Parent
	name    string
	adapter func(V) any
}

// NewColumn defines column name under parent.
func NewColumn[V any](parent Parent, name string) *Column[V] {
	return &Column[V]{parent: parent, name: name}
}

// WithAdapter returns a copy of c whose literal values are passed through
// fn before reaching the backend.
func (c *Column[V]) WithAdapter(fn func(V) any) *Column[V] {
	cp := *c
	cp.adapter = fn
	return &cp
}

// Parent returns the join-tree node the column belongs to.
func (c *Column[V]) Parent() Parent { return c.parent }

// Name returns the column name.
func (c *Column[V]) Name() string { return c.name }

// Path returns the column's dotted path under ctx.
func (c *Column[V]) Path(ctx *Context) (string, error) {
	return ctx.Path(c)
}

func (c *Column[V]) adaptValue(v any) any {
	if c.adapter == nil {
		return v
	}
	if typed, ok := v.(V); ok {
		return c.adapter(typed)
	}
	return v
}

// valueAdapter is implemented by columns carrying their own adapter.
type valueAdapter interface {
	adaptValue(v any) any
}

// Adapt routes a literal through the value-adaptation hook: the column's
// own adapter first, then driver.Valuer unwrapping (uuid.UUID,
// decimal.Decimal, sql.Null*, ...). Every predicate kind sends its
// literals through here.
func Adapt(r Ref, v any) (any, error) {
	if a, ok := r.(valueAdapter); ok {
		v = a.adaptValue(v)
	}
	if valuer, ok := v.(driver.Valuer); ok {
		out, err := valuer.Value()
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return v, nil
}
