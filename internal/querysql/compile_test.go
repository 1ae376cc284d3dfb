package querysql

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/yawn/internal/query"
	"github.com/roach88/yawn/internal/queryir"
	"github.com/roach88/yawn/internal/testutil"
)

func resolve[T any](t *testing.T, q *query.Query[T]) *queryir.Select {
	t.Helper()
	sel, err := query.Resolve(q.Model(), q.Root())
	require.NoError(t, err)
	require.True(t, queryir.Validate(sel).Valid, "%v", queryir.Validate(sel).Problems)
	return sel
}

func assertGolden(t *testing.T, name string, d Dialect, sel *queryir.Select) []any {
	t.Helper()
	sql, params, err := NewSQLCompiler(d).Compile(sel)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name+"_"+d.String(), []byte(sql+"\n"))
	return params
}

func TestCompile_Simple(t *testing.T) {
	q := query.From(nil, testutil.Books)
	b := testutil.NewBookDef(q.Root())
	q.Add(query.Gt(b.Pages, 300)).OrderAsc(b.Title).Paginate(1, 2)
	sel := resolve(t, q)

	for _, d := range []Dialect{SQLite, Postgres} {
		params := assertGolden(t, "simple", d, sel)
		assert.Equal(t, []any{int64(300)}, params)
	}
}

func TestCompile_Joins(t *testing.T) {
	q := query.From(nil, testutil.Reviews)
	r := testutil.NewReviewDef(q.Root())
	book := query.JoinWith(q, r.Book, query.InnerJoin, nil)
	author := query.JoinWith(q, book.Author, query.InnerJoin, func(a *testutil.AuthorDef) []query.Criterion {
		return []query.Criterion{query.ILike(a.Name, "terry", query.MatchStart)}
	})
	address := query.JoinWith(q, author.Address, query.LeftJoin, nil)
	q.Add(
		query.Ge(r.Rating, 4),
		query.Or(query.IsNull(address.City), query.Like(book.Title, "Guards", query.MatchAnywhere)),
	)
	p := query.PairOf(query.Field(book.Title), query.Field(r.Rating))
	sel := resolve(t, query.Project(q, p))

	for _, d := range []Dialect{SQLite, Postgres} {
		params := assertGolden(t, "joins", d, sel)
		assert.Equal(t, []any{"terry%", int64(4), "%Guards%"}, params)
	}
}

func TestCompile_Subqueries(t *testing.T) {
	q := query.From(nil, testutil.Books)
	b := testutil.NewBookDef(q.Root())

	rated := query.Detached(testutil.Reviews)
	r := testutil.NewReviewDef(rated.Root())
	rated.Add(query.EqColumn(r.BookID, b.ID))

	cheaper := query.Detached(testutil.Books)
	other := testutil.NewBookDef(cheaper.Root())
	cheaper.Add(query.EqColumn(other.AuthorID, b.AuthorID))

	q.Add(
		query.Exists(rated),
		query.All(b.Pages, query.OpGe, query.Project(cheaper, query.Field(other.Pages))),
	)
	sel := resolve(t, query.Project(q, query.Field(b.Title)))

	assertGolden(t, "subqueries", SQLite, sel)
	assertGolden(t, "subqueries", Postgres, sel)
}

func TestCompile_AggregatesAndOptions(t *testing.T) {
	q := query.From(nil, testutil.Books)
	b := testutil.NewBookDef(q.Root())
	q.Add(query.NotIn(b.ID, 4, 5)).
		Order(query.Desc(b.AuthorID).NullsLast()).
		Offset(1).
		Lock(query.LockWrite).
		Hint("INDEX(books idx_books_author)")
	p := query.Tuple(query.GroupBy(b.AuthorID), query.RowCount(), query.Sum(b.Pages), query.Constant(int64(1)))
	sel := resolve(t, query.Project(q, query.Distinct(p)))

	for _, d := range []Dialect{SQLite, Postgres} {
		params := assertGolden(t, "aggregates", d, sel)
		assert.Equal(t, []any{int64(4), int64(5)}, params)
	}
}

func TestCompile_EmptyIn(t *testing.T) {
	q := query.From(nil, testutil.Books)
	b := testutil.NewBookDef(q.Root())
	q.Add(query.In(b.ID), query.NotIn(b.ID))
	sel := resolve(t, query.Project(q, query.Field(b.ID)))

	sql, params, err := NewSQLCompiler(SQLite).Compile(sel)
	require.NoError(t, err)
	assert.Equal(t, "SELECT books.id FROM books WHERE 1 = 0 AND 1 = 1", sql)
	assert.Empty(t, params)
}

func TestCompile_ValuesNeverInterpolated(t *testing.T) {
	q := query.From(nil, testutil.Books)
	b := testutil.NewBookDef(q.Root())
	q.Add(query.Eq(b.Title, "'; DROP TABLE books; --"))
	sel := resolve(t, q)

	for _, d := range []Dialect{SQLite, Postgres} {
		sql, params, err := NewSQLCompiler(d).Compile(sel)
		require.NoError(t, err)
		assert.NotContains(t, sql, "DROP")
		assert.Equal(t, []any{"'; DROP TABLE books; --"}, params)
	}
}

func TestCompile_Errors(t *testing.T) {
	c := NewSQLCompiler(SQLite)

	_, _, err := c.Compile(nil)
	assert.Error(t, err)

	_, _, err = c.Compile(&queryir.Select{From: queryir.Table{Name: "books"}})
	assert.ErrorContains(t, err, "no columns")

	_, _, err = c.Compile(&queryir.Select{
		From:    queryir.Table{Name: "books"},
		Columns: []queryir.Expr{queryir.Column{Name: "id"}},
		Hints:   []string{"bad */ hint"},
	})
	assert.ErrorContains(t, err, "comment terminator")

	grouped := &queryir.Select{
		From:    queryir.Table{Name: "books", Alias: "b2"},
		Columns: []queryir.Expr{queryir.Aggregate{Func: queryir.AggMax, Arg: queryir.Column{Qualifier: "b2", Name: "pages"}}},
	}
	_, _, err = c.Compile(&queryir.Select{
		From:    queryir.Table{Name: "books", Alias: "b"},
		Columns: []queryir.Expr{queryir.Column{Qualifier: "b", Name: "id"}},
		Where: queryir.Quantified{
			Left:       queryir.Column{Qualifier: "b", Name: "pages"},
			Op:         queryir.OpGe,
			Quantifier: queryir.QuantSome,
			Query:      grouped,
		},
	})
	assert.ErrorContains(t, err, "aggregate")

	// postgres has native quantified comparisons
	_, _, err = NewSQLCompiler(Postgres).Compile(&queryir.Select{
		From:    queryir.Table{Name: "books", Alias: "b"},
		Columns: []queryir.Expr{queryir.Column{Qualifier: "b", Name: "id"}},
		Where: queryir.Quantified{
			Left:       queryir.Column{Qualifier: "b", Name: "pages"},
			Op:         queryir.OpGe,
			Quantifier: queryir.QuantSome,
			Query:      grouped,
		},
	})
	assert.NoError(t, err)
}

func TestParseDialect(t *testing.T) {
	for name, want := range map[string]Dialect{
		"sqlite": SQLite, "SQLite3": SQLite, "postgres": Postgres, "pg": Postgres,
	} {
		got, err := ParseDialect(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseDialect("oracle")
	assert.Error(t, err)
}
