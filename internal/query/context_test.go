package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_SameParentResolvesOnce(t *testing.T) {
	ctx := NewContext()
	p := NewSubqueryRoot("author")

	first, err := ctx.Alias(p)
	require.NoError(t, err)
	second, err := ctx.Alias(p)
	require.NoError(t, err)

	assert.Equal(t, "a", first)
	assert.Equal(t, first, second)
}

func TestContext_DistinctParentsSamePrefixAreNumbered(t *testing.T) {
	ctx := NewContext()
	var got []string
	for _, name := range []string{"author", "address", "award", "author"} {
		a, err := ctx.Alias(NewSubqueryRoot(name))
		require.NoError(t, err)
		got = append(got, a)
	}
	assert.Equal(t, []string{"a", "a2", "a3", "a4"}, got)
}

func TestContext_RoundsOfDistinctPrefixes(t *testing.T) {
	ctx := NewContext()
	var round1, round2 []string
	for _, name := range []string{"alpha", "beta", "gamma"} {
		a, err := ctx.Alias(NewSubqueryRoot(name))
		require.NoError(t, err)
		round1 = append(round1, a)
	}
	for _, name := range []string{"alpha", "beta", "gamma"} {
		a, err := ctx.Alias(NewSubqueryRoot(name))
		require.NoError(t, err)
		round2 = append(round2, a)
	}
	assert.Equal(t, []string{"a", "b", "g"}, round1)
	assert.Equal(t, []string{"a2", "b2", "g2"}, round2)
}

func TestContext_RootUnaliasedUnlessRequired(t *testing.T) {
	root := NewRoot("bookShelf")

	plain := NewContext()
	a, err := plain.Alias(root)
	require.NoError(t, err)
	assert.Empty(t, a)

	correlated := NewContext()
	correlated.RequireRootAlias()
	a, err = correlated.Alias(root)
	require.NoError(t, err)
	assert.Equal(t, "bs", a)
}

func TestContext_AssociationUsesJoinColumnPath(t *testing.T) {
	ctx := NewContext()
	root := NewRoot("books")
	author := NewAssociation(ColumnOf(root, "author"))
	address := NewAssociation(ColumnOf(author, "homeAddress"))

	a, err := ctx.Alias(author)
	require.NoError(t, err)
	assert.Equal(t, "a", a)

	// path is "a.homeAddress"; only the last segment feeds the prefix
	a, err = ctx.Alias(address)
	require.NoError(t, err)
	assert.Equal(t, "ha", a)

	path, err := ctx.Path(ColumnOf(address, "city"))
	require.NoError(t, err)
	assert.Equal(t, "ha.city", path)
}

func TestContext_AssociationsWithSamePathStayDistinct(t *testing.T) {
	ctx := NewContext()
	root := NewRoot("books")
	via := ColumnOf(root, "author")

	a1, err := ctx.Alias(NewAssociation(via))
	require.NoError(t, err)
	a2, err := ctx.Alias(NewAssociation(via))
	require.NoError(t, err)

	assert.Equal(t, "a", a1)
	assert.Equal(t, "a2", a2)
}

func TestContext_UnresolvableParents(t *testing.T) {
	cases := map[string]Parent{
		"empty subquery name":        NewSubqueryRoot(""),
		"association without column": NewAssociation(nil),
		"nil":                        nil,
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewContext().Alias(p)
			require.Error(t, err)
			assert.True(t, ErrAliasUnresolvable.Is(err), "got %v", err)
		})
	}
}

func TestContext_EmptyRootEntityFailsWhenAliased(t *testing.T) {
	ctx := NewContext()
	ctx.RequireRootAlias()
	_, err := ctx.Alias(NewRoot(""))
	assert.True(t, ErrAliasUnresolvable.Is(err))
}

func TestContext_EmptyJoinColumnName(t *testing.T) {
	// an empty segment has nothing to derive a prefix from
	ctx := NewContext()
	root := NewRoot("books")
	_, err := ctx.Alias(NewAssociation(ColumnOf(root, "")))
	assert.True(t, ErrAliasUnresolvable.Is(err))
}
