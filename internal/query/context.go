package query

import (
	"github.com/roach88/yawn/internal/alias"
	"github.com/roach88/yawn/internal/queryir"
)

// Context carries alias state through one compilation pass.
//
// A Context is single-use: create one per compilation and discard it
// afterwards. Within one Context the same Parent always resolves to the
// same alias, and no two Parents share an alias.
type Context struct {
	aliases   *alias.Manager
	memo      map[Parent]string
	rootAlias bool
}

// NewContext creates a fresh compilation context.
func NewContext() *Context {
	return &Context{
		aliases: alias.NewManager(),
		memo:    make(map[Parent]string),
	}
}

// RequireRootAlias marks the compilation as involving a correlated
// sub-query, so the query root is aliased too. It must be called before
// any alias is requested.
func (c *Context) RequireRootAlias() {
	c.rootAlias = true
}

// RequiresRootAlias reports whether the query root is aliased.
func (c *Context) RequiresRootAlias() bool {
	return c.rootAlias
}

// Alias returns the alias of p, assigning one on first request. An
// unaliased root yields "".
func (c *Context) Alias(p Parent) (string, error) {
	if p == nil {
		return "", ErrAliasUnresolvable.New("<nil parent>")
	}
	if a, ok := c.memo[p]; ok {
		return a, nil
	}

	base, ok, err := p.aliasBase(c)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}

	a, err := c.aliases.Register(base)
	if err != nil {
		return "", ErrAliasUnresolvable.Wrap(err, p)
	}
	c.memo[p] = a
	return a, nil
}

// Column resolves r to a qualified column.
func (c *Context) Column(r Ref) (queryir.Column, error) {
	qualifier, err := c.Alias(r.Parent())
	if err != nil {
		return queryir.Column{}, err
	}
	return queryir.Column{Qualifier: qualifier, Name: r.Name()}, nil
}

// Path resolves r to its dotted path ("alias.name", or "name" under an
// unaliased root).
func (c *Context) Path(r Ref) (string, error) {
	col, err := c.Column(r)
	if err != nil {
		return "", err
	}
	return col.String(), nil
}
