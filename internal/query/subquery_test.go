package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/yawn/internal/query"
	"github.com/roach88/yawn/internal/queryir"
	"github.com/roach88/yawn/internal/testutil"
)

// highlyRated builds a detached query selecting the ids of books with a
// review rated at least min.
func highlyRated(min int64) *query.Query[int64] {
	sub := query.Detached(testutil.Reviews)
	r := testutil.NewReviewDef(sub.Root())
	sub.Add(query.Ge(r.Rating, min))
	return query.Project(sub, query.Field(r.BookID))
}

func TestContainsSubquery_NestedLeaf(t *testing.T) {
	_, q, b := bookQuery()
	nested := query.And(
		query.Eq(b.Pages, 100),
		query.Or(query.InSubquery(b.ID, highlyRated(5)), query.Eq(b.Pages, 200)),
	)
	assert.True(t, query.ContainsSubquery(nested))
	assert.False(t, query.ContainsSubquery(query.And(query.Eq(b.Pages, 1), query.Not(query.IsNull(b.Title)))))

	q.Add(nested)
	assert.True(t, q.Model().ContainsSubquery())
}

func TestContainsSubquery_JoinCriteria(t *testing.T) {
	_, q, b := bookQuery()
	query.JoinWith(q, b.Author, query.LeftJoin, func(a *testutil.AuthorDef) []query.Criterion {
		return []query.Criterion{query.IsNotEmpty(a.Books)}
	})
	assert.True(t, q.Model().ContainsSubquery())
}

func TestSubquery_AliasesRootAndSharesNamespace(t *testing.T) {
	rec, q, b := bookQuery()
	q.Add(query.And(
		query.Eq(b.Pages, 100),
		query.Or(query.InSubquery(b.ID, highlyRated(5)), query.Eq(b.Pages, 200)),
	))

	_, err := q.List(context.Background())
	require.NoError(t, err)
	sel := rec.Last()

	assert.Equal(t, queryir.Table{Name: "books", Alias: "b"}, sel.From)
	for _, c := range sel.Columns {
		assert.Equal(t, "b", c.(queryir.Column).Qualifier)
	}

	or := sel.Where.(queryir.And).Predicates[1].(queryir.Or)
	in := or.Predicates[0].(queryir.InSelect)
	assert.Equal(t, queryir.Column{Qualifier: "b", Name: "id"}, in.Expr)
	assert.Equal(t, queryir.Table{Name: "reviews", Alias: "r"}, in.Query.From)
	assert.Equal(t, []queryir.Expr{queryir.Column{Qualifier: "r", Name: "book_id"}}, in.Query.Columns)

	assert.True(t, queryir.Validate(sel).Valid, "%v", queryir.Validate(sel).Problems)
}

func TestSubquery_Correlated(t *testing.T) {
	rec, q, b := bookQuery()

	sub := query.Detached(testutil.Reviews)
	r := testutil.NewReviewDef(sub.Root())
	sub.Add(query.EqColumn(r.BookID, b.ID), query.Lt(r.Rating, 3))
	q.AddExists(sub)

	_, err := q.List(context.Background())
	require.NoError(t, err)

	ex := rec.Last().Where.(queryir.Exists)
	assert.False(t, ex.Negate)
	assert.Equal(t, queryir.And{Predicates: []queryir.Predicate{
		queryir.Compare{
			Left:  queryir.Column{Qualifier: "r", Name: "book_id"},
			Op:    queryir.OpEq,
			Right: queryir.Column{Qualifier: "b", Name: "id"},
		},
		queryir.Compare{
			Left:  queryir.Column{Qualifier: "r", Name: "rating"},
			Op:    queryir.OpLt,
			Right: queryir.Param{Value: int64(3)},
		},
	}}, ex.Query.Where)
}

func TestSubquery_SameEntityTwice(t *testing.T) {
	rec := testutil.NewRecorder()
	q := query.From(rec, testutil.Reviews)
	r := testutil.NewReviewDef(q.Root())
	q.AddInSubquery(r.BookID, highlyRated(5)).AddNotInSubquery(r.BookID, highlyRated(2))

	_, err := q.List(context.Background())
	require.NoError(t, err)

	sel := rec.Last()
	preds := sel.Where.(queryir.And).Predicates
	assert.Equal(t, "r", sel.From.Alias)
	assert.Equal(t, "r2", preds[0].(queryir.InSelect).Query.From.Alias)
	assert.Equal(t, "r3", preds[1].(queryir.InSelect).Query.From.Alias)
	assert.True(t, preds[1].(queryir.InSelect).Negate)
}

func TestSubquery_Quantified(t *testing.T) {
	rec := testutil.NewRecorder()
	q := query.From(rec, testutil.Reviews)
	r := testutil.NewReviewDef(q.Root())
	others := query.Detached(testutil.Reviews)
	q.AddAll(r.Rating, query.OpGe, query.Project(others, query.Field(testutil.NewReviewDef(others.Root()).Rating)))

	_, err := q.List(context.Background())
	require.NoError(t, err)

	got := rec.Last().Where.(queryir.Quantified)
	assert.Equal(t, queryir.QuantAll, got.Quantifier)
	assert.Equal(t, queryir.OpGe, got.Op)
	assert.Equal(t, queryir.Column{Qualifier: "r", Name: "rating"}, got.Left)
	assert.Equal(t, "r2", got.Query.From.Alias)
}

func TestSubquery_ScalarComparison(t *testing.T) {
	rec, q, b := bookQuery()
	longest := query.Detached(testutil.Books)
	inner := testutil.NewBookDef(longest.Root())
	q.Add(query.EqSub(b.Pages, query.Project(longest, query.Max(inner.Pages))))

	_, err := q.List(context.Background())
	require.NoError(t, err)

	got := rec.Last().Where.(queryir.Compare)
	sub := got.Right.(queryir.Subquery).Query
	assert.Equal(t, queryir.Table{Name: "books", Alias: "b2"}, sub.From)
	assert.Equal(t, []queryir.Expr{queryir.Aggregate{
		Func: queryir.AggMax,
		Arg:  queryir.Column{Qualifier: "b2", Name: "pages"},
	}}, sub.Columns)
}

func TestSubquery_ShapeCheckedAtConstruction(t *testing.T) {
	_, _, b := bookQuery()
	wide := query.Detached(testutil.Reviews) // selects the whole record

	assert.PanicsWithError(t, query.ErrSubqueryShape.New("reviews", 4).Error(), func() {
		query.InSubquery(b.ID, wide)
	})
	assert.Panics(t, func() { query.Some(b.ID, query.OpEq, wide) })
	assert.Panics(t, func() { query.EqSub(b.ID, wide) })

	// EXISTS accepts any shape
	assert.NotPanics(t, func() { query.Exists(wide) })
}

func TestSubquery_DetachedIsNotExecutable(t *testing.T) {
	_, err := highlyRated(4).List(context.Background())
	assert.True(t, query.ErrNotExecutable.Is(err))
}
