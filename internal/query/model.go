package query

import (
	"github.com/roach88/yawn/internal/queryir"
)

// LockMode selects row locking for the compiled statement.
type LockMode = queryir.LockMode

const (
	LockNone  = queryir.LockNone
	LockRead  = queryir.LockRead
	LockWrite = queryir.LockWrite
)

// NullOrder places NULLs within an ordering.
type NullOrder = queryir.NullOrder

// Order is one ordering specification.
type Order struct {
	col   Ref
	desc  bool
	nulls NullOrder
}

// Asc orders by c ascending.
func Asc(c Ref) Order { return Order{col: c} }

// Desc orders by c descending.
func Desc(c Ref) Order { return Order{col: c, desc: true} }

// NullsFirst returns o with NULLs sorted before other values.
func (o Order) NullsFirst() Order {
	o.nulls = queryir.NullsFirst
	return o
}

// NullsLast returns o with NULLs sorted after other values.
func (o Order) NullsLast() Order {
	o.nulls = queryir.NullsLast
	return o
}

func (o Order) Column() Ref      { return o.col }
func (o Order) Descending() bool { return o.desc }
func (o Order) Nulls() NullOrder { return o.nulls }

func (o Order) resolve(ctx *Context) (queryir.OrderTerm, error) {
	col, err := ctx.Column(o.col)
	if err != nil {
		return queryir.OrderTerm{}, err
	}
	return queryir.OrderTerm{Expr: col, Desc: o.desc, Nulls: o.nulls}, nil
}

// Model is the mutable accumulation of one query: criteria, joins,
// ordering, projection, pagination, lock mode and hints.
//
// A Model has exactly one owner and must not be mutated concurrently.
// Clone it to reuse it as a template.
type Model struct {
	entity string
	root   Parent

	criteria []Criterion
	joins    []*Join
	orders   []Order

	projection Selection // set at most once
	fallback   Selection // the entity's own record

	offset     int
	maxResults int // 0 = unbounded
	lock       LockMode
	hints      []string
}

// NewModel creates an empty model over entity rooted at root. fallback is
// what the query selects when no projection is set.
func NewModel(entity string, root Parent, fallback Selection) *Model {
	return &Model{entity: entity, root: root, fallback: fallback}
}

// Clone returns an independent copy. Criteria, joins, orders and hints
// are copied; column, projection and Parent references are shared.
func (m *Model) Clone() *Model {
	cp := *m
	cp.criteria = append([]Criterion(nil), m.criteria...)
	cp.orders = append([]Order(nil), m.orders...)
	cp.hints = append([]string(nil), m.hints...)
	cp.joins = make([]*Join, len(m.joins))
	for i, j := range m.joins {
		cp.joins[i] = j.clone()
	}
	return &cp
}

func (m *Model) Entity() string        { return m.entity }
func (m *Model) Root() Parent          { return m.root }
func (m *Model) Criteria() []Criterion { return append([]Criterion(nil), m.criteria...) }
func (m *Model) Orders() []Order       { return append([]Order(nil), m.orders...) }
func (m *Model) Projection() Selection { return m.projection }
func (m *Model) Offset() int           { return m.offset }
func (m *Model) MaxResults() int       { return m.maxResults }
func (m *Model) Lock() LockMode        { return m.lock }
func (m *Model) Hints() []string       { return append([]string(nil), m.hints...) }

// Joins returns the registered joins in registration order.
func (m *Model) Joins() []*Join {
	return append([]*Join(nil), m.joins...)
}

// ContainsSubquery reports whether any criterion, on the query or on one
// of its joins, holds a correlated sub-query leaf.
func (m *Model) ContainsSubquery() bool {
	if ContainsSubquery(m.criteria...) {
		return true
	}
	for _, j := range m.joins {
		if ContainsSubquery(j.criteria...) {
			return true
		}
	}
	return false
}

// selection returns the projection, or the entity record when none is
// set.
func (m *Model) selection() Selection {
	if m.projection != nil {
		return m.projection
	}
	return m.fallback
}

// width is the number of columns the model selects.
func (m *Model) width() int {
	s := m.selection()
	if s == nil {
		return 0
	}
	return s.width()
}

func (m *Model) setProjection(p Selection) {
	if m.projection != nil {
		panic(ErrProjectionAlreadySet.New(m.entity))
	}
	m.projection = p
}

func (m *Model) addJoin(j *Join) {
	for _, existing := range m.joins {
		if existing.column == j.column {
			panic(ErrDuplicateJoin.New(j.column.Name()))
		}
	}
	m.joins = append(m.joins, j)
}
