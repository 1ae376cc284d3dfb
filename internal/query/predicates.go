package query

import (
	"github.com/roach88/yawn/internal/queryir"
)

// Op is a comparison operator.
type Op = queryir.CompareOp

const (
	OpEq = queryir.OpEq
	OpNe = queryir.OpNe
	OpGt = queryir.OpGt
	OpGe = queryir.OpGe
	OpLt = queryir.OpLt
	OpLe = queryir.OpLe
)

// Compare is the untyped form of Eq, Ne, Gt, Ge, Lt and Le, for callers
// that only hold a Ref.
func Compare(op Op, c Ref, v any) Criterion {
	return criterion(&compareValue{op: op, col: c, value: v})
}

func CompareColumns(op Op, left, right Ref) Criterion {
	return criterion(&compareColumn{op: op, left: left, right: right})
}

// CompareSubquery compares c with the single value sub selects.
func CompareSubquery(op Op, c Ref, sub Detachable) Criterion {
	return criterion(&compareSubquery{col: c, op: op, sub: shaped(sub)})
}

// Eq matches rows where c equals v. A nil v matches NULL.
func Eq[V any](c *Column[V], v V) Criterion { return Compare(OpEq, c, v) }

// Ne matches rows where c differs from v. A nil v matches NOT NULL.
func Ne[V any](c *Column[V], v V) Criterion { return Compare(OpNe, c, v) }

func Gt[V any](c *Column[V], v V) Criterion { return Compare(OpGt, c, v) }
func Ge[V any](c *Column[V], v V) Criterion { return Compare(OpGe, c, v) }
func Lt[V any](c *Column[V], v V) Criterion { return Compare(OpLt, c, v) }
func Le[V any](c *Column[V], v V) Criterion { return Compare(OpLe, c, v) }

// EqColumn compares two columns of the same type.
func EqColumn[V any](left, right *Column[V]) Criterion { return CompareColumns(OpEq, left, right) }
func NeColumn[V any](left, right *Column[V]) Criterion { return CompareColumns(OpNe, left, right) }
func GtColumn[V any](left, right *Column[V]) Criterion { return CompareColumns(OpGt, left, right) }
func GeColumn[V any](left, right *Column[V]) Criterion { return CompareColumns(OpGe, left, right) }
func LtColumn[V any](left, right *Column[V]) Criterion { return CompareColumns(OpLt, left, right) }
func LeColumn[V any](left, right *Column[V]) Criterion { return CompareColumns(OpLe, left, right) }

// EqSub compares c against the single value a scalar sub-query selects.
// sub must select exactly one column.
func EqSub[V any](c *Column[V], sub Detachable) Criterion { return CompareSubquery(OpEq, c, sub) }
func NeSub[V any](c *Column[V], sub Detachable) Criterion { return CompareSubquery(OpNe, c, sub) }
func GtSub[V any](c *Column[V], sub Detachable) Criterion { return CompareSubquery(OpGt, c, sub) }
func GeSub[V any](c *Column[V], sub Detachable) Criterion { return CompareSubquery(OpGe, c, sub) }
func LtSub[V any](c *Column[V], sub Detachable) Criterion { return CompareSubquery(OpLt, c, sub) }
func LeSub[V any](c *Column[V], sub Detachable) Criterion { return CompareSubquery(OpLe, c, sub) }

// Between matches lo <= c <= hi.
func Between[V any](c *Column[V], lo, hi V) Criterion {
	return criterion(&between{col: c, lo: lo, hi: hi})
}

// BetweenOf is the untyped Between.
func BetweenOf(c Ref, lo, hi any) Criterion {
	return criterion(&between{col: c, lo: lo, hi: hi})
}

// Like matches c against pattern, with wildcards placed according to mode.
func Like(c Ref, pattern string, mode MatchMode) Criterion {
	return criterion(&like{col: c, pattern: pattern, mode: mode})
}

// ILike is the case-insensitive Like.
func ILike(c Ref, pattern string, mode MatchMode) Criterion {
	return criterion(&like{col: c, pattern: pattern, mode: mode, fold: true})
}

func IsNull(c Ref) Criterion    { return criterion(&nullCheck{col: c}) }
func IsNotNull(c Ref) Criterion { return criterion(&nullCheck{col: c, negate: true}) }

// EqOrNull matches rows where c equals v or c is NULL.
func EqOrNull[V any](c *Column[V], v V) Criterion {
	return criterion(&eqOrNull{col: c, value: v})
}

func EqOrNullOf(c Ref, v any) Criterion {
	return criterion(&eqOrNull{col: c, value: v})
}

// In matches rows where c is one of values. No values matches no rows.
func In[V any](c *Column[V], values ...V) Criterion {
	return criterion(&inValues{col: c, values: boxed(values)})
}

// NotIn matches rows where c is none of values. No values matches every
// row.
func NotIn[V any](c *Column[V], values ...V) Criterion {
	return criterion(&inValues{col: c, values: boxed(values), negate: true})
}

// InOf is the untyped In.
func InOf(c Ref, values ...any) Criterion {
	return criterion(&inValues{col: c, values: append([]any(nil), values...)})
}

// NotInOf is the untyped NotIn.
func NotInOf(c Ref, values ...any) Criterion {
	return criterion(&inValues{col: c, values: append([]any(nil), values...), negate: true})
}

// InSubquery matches rows where c is among the values sub selects.
func InSubquery(c Ref, sub Detachable) Criterion {
	return criterion(&inSubquery{col: c, sub: shaped(sub)})
}

func NotInSubquery(c Ref, sub Detachable) Criterion {
	return criterion(&inSubquery{col: c, sub: shaped(sub), negate: true})
}

// IsEmpty matches rows with no related rows through the collection join j.
// It panics with ErrNotCollection when j is not to-many.
func IsEmpty(j Joinable) Criterion { return criterion(&emptiness{join: collection(j)}) }

// IsNotEmpty matches rows with at least one related row through j.
func IsNotEmpty(j Joinable) Criterion {
	return criterion(&emptiness{join: collection(j), negate: true})
}

func collection(j Joinable) Joinable {
	if !j.Spec().Collection {
		panic(ErrNotCollection.New(j.Name()))
	}
	return j
}

// Exists matches when sub yields at least one row.
func Exists(sub Detachable) Criterion {
	return criterion(&exists{sub: sub.Model()})
}

func NotExists(sub Detachable) Criterion {
	return criterion(&exists{sub: sub.Model(), negate: true})
}

// All matches when c <op> v holds for every value v sub selects.
func All(c Ref, op Op, sub Detachable) Criterion {
	return criterion(&quantified{col: c, op: op, quant: queryir.QuantAll, sub: shaped(sub)})
}

// Some matches when c <op> v holds for at least one value v sub selects.
func Some(c Ref, op Op, sub Detachable) Criterion {
	return criterion(&quantified{col: c, op: op, quant: queryir.QuantSome, sub: shaped(sub)})
}

// Not negates c.
func Not(c Criterion) Criterion { return criterion(&not{c: c}) }

// And matches when every criterion matches; with none it matches all rows.
func And(cs ...Criterion) Criterion {
	return criterion(&junction{criteria: append([]Criterion(nil), cs...)})
}

// Or matches when any criterion matches; with none it matches no rows.
func Or(cs ...Criterion) Criterion {
	return criterion(&junction{or: true, criteria: append([]Criterion(nil), cs...)})
}

func boxed[V any](values []V) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
