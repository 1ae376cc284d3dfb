package query

import (
	"fmt"
	"reflect"

	"github.com/roach88/yawn/internal/queryir"
)

// Restriction is a node of the predicate tree.
//
// This is a sealed interface: every variant lives in this package, so the
// compilation and the sub-query walk can switch over all of them.
type Restriction interface {
	compile(ctx *Context) (queryir.Predicate, error)
}

// Criterion wraps exactly one Restriction. Criteria are kept in insertion
// order on queries and joins.
type Criterion struct {
	restriction Restriction
}

// Restriction returns the wrapped restriction.
func (c Criterion) Restriction() Restriction {
	return c.restriction
}

func (c Criterion) compile(ctx *Context) (queryir.Predicate, error) {
	if c.restriction == nil {
		return queryir.True, nil
	}
	return c.restriction.compile(ctx)
}

func criterion(r Restriction) Criterion {
	return Criterion{restriction: r}
}

// MatchMode controls where wildcards are placed around a like pattern.
type MatchMode int

const (
	MatchExact    MatchMode = iota // no wildcards added
	MatchStart                     // value%
	MatchEnd                       // %value
	MatchAnywhere                  // %value%
)

func (m MatchMode) apply(s string) string {
	switch m {
	case MatchStart:
		return s + "%"
	case MatchEnd:
		return "%" + s
	case MatchAnywhere:
		return "%" + s + "%"
	default:
		return s
	}
}

// param adapts v for column r and wraps it as a bound parameter.
func param(r Ref, v any) (queryir.Expr, error) {
	adapted, err := Adapt(r, v)
	if err != nil {
		return nil, err
	}
	return queryir.Param{Value: adapted}, nil
}

// isNil reports whether v is nil or a typed nil pointer, map, slice or
// interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// compareValue is <column> <op> <literal>.
type compareValue struct {
	op    queryir.CompareOp
	col   Ref
	value any
}

func (r *compareValue) compile(ctx *Context) (queryir.Predicate, error) {
	col, err := ctx.Column(r.col)
	if err != nil {
		return nil, err
	}
	val, err := Adapt(r.col, r.value)
	if err != nil {
		return nil, err
	}
	if isNil(val) {
		switch r.op {
		case queryir.OpEq:
			return queryir.IsNull{Expr: col}, nil
		case queryir.OpNe:
			return queryir.IsNull{Expr: col, Negate: true}, nil
		default:
			return nil, ErrUnsupported.New("ordering comparison of " + col.String() + " against NULL")
		}
	}
	return queryir.Compare{Left: col, Op: r.op, Right: queryir.Param{Value: val}}, nil
}

// compareColumn is <column> <op> <column>.
type compareColumn struct {
	op    queryir.CompareOp
	left  Ref
	right Ref
}

func (r *compareColumn) compile(ctx *Context) (queryir.Predicate, error) {
	left, err := ctx.Column(r.left)
	if err != nil {
		return nil, err
	}
	right, err := ctx.Column(r.right)
	if err != nil {
		return nil, err
	}
	return queryir.Compare{Left: left, Op: r.op, Right: right}, nil
}

// between is <column> BETWEEN <lo> AND <hi>.
type between struct {
	col Ref
	lo  any
	hi  any
}

func (r *between) compile(ctx *Context) (queryir.Predicate, error) {
	col, err := ctx.Column(r.col)
	if err != nil {
		return nil, err
	}
	lo, err := param(r.col, r.lo)
	if err != nil {
		return nil, err
	}
	hi, err := param(r.col, r.hi)
	if err != nil {
		return nil, err
	}
	return queryir.Between{Expr: col, Low: lo, High: hi}, nil
}

// like is a pattern match, optionally case-insensitive.
type like struct {
	col     Ref
	pattern string
	mode    MatchMode
	fold    bool
}

func (r *like) compile(ctx *Context) (queryir.Predicate, error) {
	col, err := ctx.Column(r.col)
	if err != nil {
		return nil, err
	}
	adapted, err := Adapt(r.col, r.pattern)
	if err != nil {
		return nil, err
	}
	pattern, ok := adapted.(string)
	if !ok {
		return nil, ErrUnsupported.New(fmt.Sprintf("like pattern on %s adapted to %T", r.col.Name(), adapted))
	}
	return queryir.Like{Expr: col, Pattern: r.mode.apply(pattern), CaseInsensitive: r.fold}, nil
}

// nullCheck is <column> IS [NOT] NULL.
type nullCheck struct {
	col    Ref
	negate bool
}

func (r *nullCheck) compile(ctx *Context) (queryir.Predicate, error) {
	col, err := ctx.Column(r.col)
	if err != nil {
		return nil, err
	}
	return queryir.IsNull{Expr: col, Negate: r.negate}, nil
}

// eqOrNull is <column> = <literal> OR <column> IS NULL.
type eqOrNull struct {
	col   Ref
	value any
}

func (r *eqOrNull) compile(ctx *Context) (queryir.Predicate, error) {
	col, err := ctx.Column(r.col)
	if err != nil {
		return nil, err
	}
	isNull := queryir.IsNull{Expr: col}
	val, err := Adapt(r.col, r.value)
	if err != nil {
		return nil, err
	}
	if isNil(val) {
		return isNull, nil
	}
	return queryir.Or{Predicates: []queryir.Predicate{
		queryir.Compare{Left: col, Op: queryir.OpEq, Right: queryir.Param{Value: val}},
		isNull,
	}}, nil
}

// inValues is <column> [NOT] IN (<literals>).
type inValues struct {
	col    Ref
	values []any
	negate bool
}

func (r *inValues) compile(ctx *Context) (queryir.Predicate, error) {
	// IN () is invalid in most backends: an empty IN matches nothing and an
	// empty NOT IN matches everything.
	if len(r.values) == 0 {
		if r.negate {
			return queryir.True, nil
		}
		return queryir.False, nil
	}
	col, err := ctx.Column(r.col)
	if err != nil {
		return nil, err
	}
	vals := make([]queryir.Expr, 0, len(r.values))
	for _, v := range r.values {
		val, err := param(r.col, v)
		if err != nil {
			return nil, err
		}
		vals = append(vals, val)
	}
	return queryir.In{Expr: col, Values: vals, Negate: r.negate}, nil
}

// emptiness tests whether a collection join has no rows. It compiles to a
// correlated [NOT] EXISTS over a fresh association of the join column.
type emptiness struct {
	join   Joinable
	negate bool // true for "is not empty"
}

func (r *emptiness) compile(ctx *Context) (queryir.Predicate, error) {
	spec := r.join.Spec()
	inner := NewAssociation(r.join)

	a, err := ctx.Alias(inner)
	if err != nil {
		return nil, err
	}
	local, err := ctx.Column(ColumnOf(r.join.Parent(), spec.Local))
	if err != nil {
		return nil, err
	}

	sub := &queryir.Select{
		From:    queryir.Table{Name: spec.Table, Alias: a},
		Columns: []queryir.Expr{queryir.Literal{Value: 1}},
		Where: queryir.Compare{
			Left:  queryir.Column{Qualifier: a, Name: spec.Remote},
			Op:    queryir.OpEq,
			Right: local,
		},
	}
	return queryir.Exists{Query: sub, Negate: !r.negate}, nil
}

// not negates one criterion.
type not struct {
	c Criterion
}

func (r *not) compile(ctx *Context) (queryir.Predicate, error) {
	p, err := r.c.compile(ctx)
	if err != nil {
		return nil, err
	}
	return queryir.Not{Predicate: p}, nil
}

// junction combines criteria with AND or OR. An empty AND is true and an
// empty OR is false.
type junction struct {
	or       bool
	criteria []Criterion
}

func (r *junction) compile(ctx *Context) (queryir.Predicate, error) {
	if len(r.criteria) == 0 {
		if r.or {
			return queryir.False, nil
		}
		return queryir.True, nil
	}
	preds := make([]queryir.Predicate, 0, len(r.criteria))
	for _, c := range r.criteria {
		p, err := c.compile(ctx)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if r.or {
		return queryir.Or{Predicates: preds}, nil
	}
	return queryir.And{Predicates: preds}, nil
}

// containsSubquery walks the whole tree, through NOT/AND/OR, looking for a
// leaf that compiles to a correlated sub-query.
func containsSubquery(c Criterion) bool {
	switch r := c.restriction.(type) {
	case *inSubquery, *exists, *quantified, *compareSubquery, *emptiness:
		return true
	case *not:
		return containsSubquery(r.c)
	case *junction:
		for _, child := range r.criteria {
			if containsSubquery(child) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ContainsSubquery reports whether any criterion carries a correlated
// sub-query leaf at any depth.
func ContainsSubquery(criteria ...Criterion) bool {
	for _, c := range criteria {
		if containsSubquery(c) {
			return true
		}
	}
	return false
}
