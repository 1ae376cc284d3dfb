package query

import (
	"fmt"
)

// Entity describes a table the way generated definitions do: its name,
// and the record projection selecting a whole row under a given Parent.
type Entity[T any] interface {
	Table() string
	Record(p Parent) Projection[T]
}

// Query is a typed handle over a Model. Builder methods mutate the model
// in place and return the same handle for chaining.
//
// A Query has exactly one owner. Use Clone to reuse it as a template.
type Query[T any] struct {
	m        *Model
	compiler Compiler
	proj     Projection[T]
}

// From starts a query over e executed by c. Without a projection the
// query selects e's record.
func From[T any](c Compiler, e Entity[T]) *Query[T] {
	root := NewRoot(e.Table())
	rec := e.Record(root)
	return &Query[T]{
		m:        NewModel(e.Table(), root, rec),
		compiler: c,
		proj:     rec,
	}
}

// Detached starts a query over e meant to be embedded as a correlated
// sub-query. Its root is always aliased. A detached query cannot be
// executed on its own.
func Detached[T any](e Entity[T]) *Query[T] {
	root := NewSubqueryRoot(e.Table())
	rec := e.Record(root)
	return &Query[T]{
		m:    NewModel(e.Table(), root, rec),
		proj: rec,
	}
}

// Project sets the query's projection and returns a handle typed by it.
// A model takes one projection; a second call panics with
// ErrProjectionAlreadySet. The handle passed in must not be finalized
// afterwards.
func Project[T, R any](q *Query[T], p Projection[R]) *Query[R] {
	q.m.setProjection(p)
	return &Query[R]{m: q.m, compiler: q.compiler, proj: p}
}

// Root returns the query's root Parent; bind definitions to it to build
// criteria.
func (q *Query[T]) Root() Parent { return q.m.root }

// Model returns the underlying model.
func (q *Query[T]) Model() *Model { return q.m }

// Clone returns an independent copy of the query.
func (q *Query[T]) Clone() *Query[T] {
	return &Query[T]{m: q.m.Clone(), compiler: q.compiler, proj: q.proj}
}

func (q *Query[T]) String() string {
	return fmt.Sprintf("query(%s)", q.m.entity)
}

// Add appends criteria to the WHERE clause.
func (q *Query[T]) Add(cs ...Criterion) *Query[T] {
	q.m.criteria = append(q.m.criteria, cs...)
	return q
}

func (q *Query[T]) AddEq(c Ref, v any) *Query[T] { return q.Add(Compare(OpEq, c, v)) }
func (q *Query[T]) AddNe(c Ref, v any) *Query[T] { return q.Add(Compare(OpNe, c, v)) }
func (q *Query[T]) AddGt(c Ref, v any) *Query[T] { return q.Add(Compare(OpGt, c, v)) }
func (q *Query[T]) AddGe(c Ref, v any) *Query[T] { return q.Add(Compare(OpGe, c, v)) }
func (q *Query[T]) AddLt(c Ref, v any) *Query[T] { return q.Add(Compare(OpLt, c, v)) }
func (q *Query[T]) AddLe(c Ref, v any) *Query[T] { return q.Add(Compare(OpLe, c, v)) }

func (q *Query[T]) AddEqColumn(a, b Ref) *Query[T] { return q.Add(CompareColumns(OpEq, a, b)) }
func (q *Query[T]) AddNeColumn(a, b Ref) *Query[T] { return q.Add(CompareColumns(OpNe, a, b)) }
func (q *Query[T]) AddGtColumn(a, b Ref) *Query[T] { return q.Add(CompareColumns(OpGt, a, b)) }
func (q *Query[T]) AddGeColumn(a, b Ref) *Query[T] { return q.Add(CompareColumns(OpGe, a, b)) }
func (q *Query[T]) AddLtColumn(a, b Ref) *Query[T] { return q.Add(CompareColumns(OpLt, a, b)) }
func (q *Query[T]) AddLeColumn(a, b Ref) *Query[T] { return q.Add(CompareColumns(OpLe, a, b)) }

func (q *Query[T]) AddEqSubquery(c Ref, sub Detachable) *Query[T] {
	return q.Add(CompareSubquery(OpEq, c, sub))
}
func (q *Query[T]) AddNeSubquery(c Ref, sub Detachable) *Query[T] {
	return q.Add(CompareSubquery(OpNe, c, sub))
}
func (q *Query[T]) AddGtSubquery(c Ref, sub Detachable) *Query[T] {
	return q.Add(CompareSubquery(OpGt, c, sub))
}
func (q *Query[T]) AddGeSubquery(c Ref, sub Detachable) *Query[T] {
	return q.Add(CompareSubquery(OpGe, c, sub))
}
func (q *Query[T]) AddLtSubquery(c Ref, sub Detachable) *Query[T] {
	return q.Add(CompareSubquery(OpLt, c, sub))
}
func (q *Query[T]) AddLeSubquery(c Ref, sub Detachable) *Query[T] {
	return q.Add(CompareSubquery(OpLe, c, sub))
}

func (q *Query[T]) AddBetween(c Ref, lo, hi any) *Query[T] {
	return q.Add(BetweenOf(c, lo, hi))
}

func (q *Query[T]) AddLike(c Ref, pattern string, mode MatchMode) *Query[T] {
	return q.Add(Like(c, pattern, mode))
}

func (q *Query[T]) AddILike(c Ref, pattern string, mode MatchMode) *Query[T] {
	return q.Add(ILike(c, pattern, mode))
}

func (q *Query[T]) AddIsNull(c Ref) *Query[T]    { return q.Add(IsNull(c)) }
func (q *Query[T]) AddIsNotNull(c Ref) *Query[T] { return q.Add(IsNotNull(c)) }

func (q *Query[T]) AddEqOrIsNull(c Ref, v any) *Query[T] {
	return q.Add(EqOrNullOf(c, v))
}

// AddIn restricts c to values. No values matches no rows.
func (q *Query[T]) AddIn(c Ref, values ...any) *Query[T] {
	return q.Add(InOf(c, values...))
}

// AddNotIn excludes values from c. No values matches every row.
func (q *Query[T]) AddNotIn(c Ref, values ...any) *Query[T] {
	return q.Add(NotInOf(c, values...))
}

func (q *Query[T]) AddInSubquery(c Ref, sub Detachable) *Query[T] {
	return q.Add(InSubquery(c, sub))
}

func (q *Query[T]) AddNotInSubquery(c Ref, sub Detachable) *Query[T] {
	return q.Add(NotInSubquery(c, sub))
}

func (q *Query[T]) AddIsEmpty(j Joinable) *Query[T]    { return q.Add(IsEmpty(j)) }
func (q *Query[T]) AddIsNotEmpty(j Joinable) *Query[T] { return q.Add(IsNotEmpty(j)) }

func (q *Query[T]) AddExists(sub Detachable) *Query[T]    { return q.Add(Exists(sub)) }
func (q *Query[T]) AddNotExists(sub Detachable) *Query[T] { return q.Add(NotExists(sub)) }

func (q *Query[T]) AddAll(c Ref, op Op, sub Detachable) *Query[T]  { return q.Add(All(c, op, sub)) }
func (q *Query[T]) AddSome(c Ref, op Op, sub Detachable) *Query[T] { return q.Add(Some(c, op, sub)) }

// Join registers jc with criteria scoped to the join condition. Joining
// the same column twice panics with ErrDuplicateJoin.
func (q *Query[T]) Join(jc Joinable, kind JoinKind, criteria ...Criterion) *Query[T] {
	q.m.addJoin(&Join{
		column:   jc,
		parent:   jc.Association(),
		kind:     kind,
		criteria: append([]Criterion(nil), criteria...),
	})
	return q
}

// JoinWith registers jc on q. filter, which may be nil, is evaluated
// immediately against the join's target definition and its criteria are
// scoped to the join condition. The target definition is returned for
// use in further criteria, ordering and projections.
func JoinWith[T, D any](q *Query[T], jc *JoinColumn[D], kind JoinKind, filter func(D) []Criterion) D {
	child := jc.Child()
	var criteria []Criterion
	if filter != nil {
		criteria = filter(child)
	}
	q.Join(jc, kind, criteria...)
	return child
}

// OrderAsc appends ascending orderings.
func (q *Query[T]) OrderAsc(cs ...Ref) *Query[T] {
	for _, c := range cs {
		q.m.orders = append(q.m.orders, Asc(c))
	}
	return q
}

// OrderDesc appends descending orderings.
func (q *Query[T]) OrderDesc(cs ...Ref) *Query[T] {
	for _, c := range cs {
		q.m.orders = append(q.m.orders, Desc(c))
	}
	return q
}

// Order appends orderings.
func (q *Query[T]) Order(os ...Order) *Query[T] {
	q.m.orders = append(q.m.orders, os...)
	return q
}

// Offset skips the first n rows. n must not be negative.
func (q *Query[T]) Offset(n int) *Query[T] {
	if n < 0 {
		panic(ErrInvalidPagination.New(fmt.Sprintf("offset %d", n)))
	}
	q.m.offset = n
	return q
}

// MaxResults limits the query to n rows. n must be at least 1.
func (q *Query[T]) MaxResults(n int) *Query[T] {
	if n < 1 {
		panic(ErrInvalidPagination.New(fmt.Sprintf("max results %d", n)))
	}
	q.m.maxResults = n
	return q
}

// Paginate selects the zero-based page of the given size.
func (q *Query[T]) Paginate(page, size int) *Query[T] {
	if err := checkPage(page, size); err != nil {
		panic(err)
	}
	q.m.offset = page * size
	q.m.maxResults = size
	return q
}

// Lock sets the row lock mode.
func (q *Query[T]) Lock(mode LockMode) *Query[T] {
	q.m.lock = mode
	return q
}

// Hint appends an opaque backend hint.
func (q *Query[T]) Hint(h string) *Query[T] {
	q.m.hints = append(q.m.hints, h)
	return q
}

func checkPage(page, size int) error {
	if page < 0 {
		return ErrInvalidPagination.New(fmt.Sprintf("page %d", page))
	}
	if size < 1 {
		return ErrInvalidPagination.New(fmt.Sprintf("page size %d", size))
	}
	return nil
}
