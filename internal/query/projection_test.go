package query_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/yawn/internal/query"
	"github.com/roach88/yawn/internal/queryir"
	"github.com/roach88/yawn/internal/testutil"
)

func TestProject_SecondProjectionFails(t *testing.T) {
	_, q, b := bookQuery()
	query.Project(q, query.Field(b.Title))

	assert.PanicsWithError(t, query.ErrProjectionAlreadySet.New("books").Error(), func() {
		query.Project(q, query.Field(b.Pages))
	})
}

func TestProject_StaleHandle(t *testing.T) {
	_, q, b := bookQuery()
	query.Project(q, query.Field(b.Title))

	_, err := q.List(context.Background())
	assert.True(t, query.ErrStaleQuery.Is(err))
}

func TestPair_ConversionIsPositional(t *testing.T) {
	_, q, b := bookQuery()
	a := query.JoinWith(q, b.Author, query.InnerJoin, nil)
	row := []any{"Mort", "Terry Pratchett"}

	titleFirst := query.PairOf(query.Field(b.Title), query.Field(a.Name))
	got, err := titleFirst.Convert(row)
	require.NoError(t, err)
	assert.Equal(t, query.Pair[string, string]{First: "Mort", Second: "Terry Pratchett"}, got)

	nameFirst := query.PairOf(query.Field(a.Name), query.Field(b.Title))
	got, err = nameFirst.Convert(row)
	require.NoError(t, err)
	assert.Equal(t, "Mort", got.First, "first slot always takes cell 0")
}

func TestPair_CompiledOrderMatchesDeclaration(t *testing.T) {
	rec, q, b := bookQuery()
	a := query.JoinWith(q, b.Author, query.InnerJoin, nil)
	_, err := query.Project(q, query.PairOf(query.Field(a.Name), query.Field(b.Title))).List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []queryir.Expr{
		queryir.Column{Qualifier: "a", Name: "name"},
		queryir.Column{Name: "title"},
	}, rec.Last().Columns)
}

func TestTriple_NestedWidths(t *testing.T) {
	_, _, b := bookQuery()
	p := query.TripleOf(
		query.PairOf(query.Field(b.ID), query.Field(b.Title)),
		query.Constant("fixed"),
		query.Nullable(b.Pages),
	)
	got, err := p.Convert([]any{int64(3), "Mort", "ignored", nil})
	require.NoError(t, err)
	assert.Equal(t, query.Pair[int64, string]{First: 3, Second: "Mort"}, got.First)
	assert.Equal(t, "fixed", got.Second)
	assert.False(t, got.Third.Valid)

	_, err = p.Convert([]any{int64(3)})
	assert.True(t, query.ErrRowShape.Is(err))
}

func TestTuple(t *testing.T) {
	_, _, b := bookQuery()
	p := query.Tuple(query.Field(b.Title), query.Count(b.ID), query.Field(b.Price))
	got, err := p.Convert([]any{"Mort", int64(2), 7.25})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Mort", got[0])
	assert.Equal(t, int64(2), got[1])
	assert.True(t, decimal.RequireFromString("7.25").Equal(got[2].(decimal.Decimal)))
}

func TestAggregates_Compile(t *testing.T) {
	rec, q, b := bookQuery()
	a := query.JoinWith(q, b.Author, query.InnerJoin, nil)
	p := query.Tuple(
		query.GroupBy(a.Name),
		query.RowCount(),
		query.CountDistinct(b.Pages),
		query.Sum(b.Pages),
		query.Avg(b.Pages),
		query.Min(b.Title),
	)
	_, err := query.Project(q, p).List(context.Background())
	require.NoError(t, err)

	sel := rec.Last()
	name := queryir.Column{Qualifier: "a", Name: "name"}
	pages := queryir.Column{Name: "pages"}
	assert.Equal(t, []queryir.Expr{
		name,
		queryir.Aggregate{Func: queryir.AggCount},
		queryir.Aggregate{Func: queryir.AggCount, Arg: pages, Distinct: true},
		queryir.Aggregate{Func: queryir.AggSum, Arg: pages},
		queryir.Aggregate{Func: queryir.AggAvg, Arg: pages},
		queryir.Aggregate{Func: queryir.AggMin, Arg: queryir.Column{Name: "title"}},
	}, sel.Columns)
	assert.Equal(t, []queryir.Expr{name}, sel.GroupBy)
}

func TestAggregates_NullResult(t *testing.T) {
	_, _, b := bookQuery()

	sum, err := query.Sum(b.Pages).Convert([]any{nil})
	require.NoError(t, err)
	assert.Equal(t, sql.Null[int64]{}, sum)

	avg, err := query.Avg(b.Pages).Convert([]any{float64(2.5)})
	require.NoError(t, err)
	assert.Equal(t, sql.Null[float64]{V: 2.5, Valid: true}, avg)

	total, err := query.Coalesce(query.Sum(b.Pages), -1).Convert([]any{nil})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), total)

	total, err = query.Coalesce(query.Sum(b.Pages), -1).Convert([]any{int64(42)})
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
}

func TestDistinct_WrapsInner(t *testing.T) {
	rec, q, b := bookQuery()
	rec.Respond([]any{"Mort"})
	got, err := query.Project(q, query.Distinct(query.Field(b.Title))).List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Mort"}, got)
	assert.True(t, rec.Last().Distinct)
	assert.Equal(t, []queryir.Expr{queryir.Column{Name: "title"}}, rec.Last().Columns)
}

func TestConstantAndNull(t *testing.T) {
	rec, q, _ := bookQuery()
	rec.Respond([]any{int64(99), "anything"})
	p := query.PairOf(query.Constant(int64(7)), query.Null[string]())
	got, err := query.Project(q, p).List(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].First)
	assert.False(t, got[0].Second.Valid)
	assert.Equal(t, []queryir.Expr{
		queryir.Literal{Value: int64(7)},
		queryir.Literal{Value: nil},
	}, rec.Last().Columns)
}

func TestField_Conversion(t *testing.T) {
	_, _, b := bookQuery()

	pages, err := query.Field(b.Pages).Convert([]any{"288"})
	require.NoError(t, err)
	assert.Equal(t, int64(288), pages)

	_, err = query.Field(b.Pages).Convert([]any{"many"})
	assert.True(t, query.ErrConversion.Is(err))

	published, err := query.Field(b.PublishedAt).Convert([]any{"1989-11-01T00:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, 1989, published.Year())
}

func TestRecord_Entity(t *testing.T) {
	rec, q, _ := bookQuery()
	rec.Respond([]any{int64(3), "Mort", int64(2), 7.25, int64(272), "1987-11-12T00:00:00Z"})

	got, err := q.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mort", got[0].Title)
	assert.Equal(t, int64(2), got[0].AuthorID)
	assert.True(t, decimal.RequireFromString("7.25").Equal(got[0].Price))
	assert.Equal(t, 1987, got[0].PublishedAt.Year())
}

func TestRecord_Nullables(t *testing.T) {
	rec := testutil.NewRecorder().Respond([]any{int64(3), "Anonymous", nil, nil})
	got, err := query.From(rec, testutil.Authors).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].BirthYear.Valid)
	assert.False(t, got[0].AddressID.Valid)
}
