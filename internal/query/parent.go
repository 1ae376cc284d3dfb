package query

import "fmt"

// Parent identifies a node of the join tree: the query root, a detached
// sub-query root, or an association reached through a join column.
//
// Parents are compared by identity. Two parents reaching the same path
// through different registrations are different nodes and get different
// aliases.
type Parent interface {
	// aliasBase returns the string the alias prefix is derived from, or
	// ok=false when this parent compiles unaliased.
	aliasBase(ctx *Context) (base string, ok bool, err error)

	String() string
}

// Root is the query's own entity. It is aliased only when the compilation
// involves a correlated sub-query.
type Root struct {
	entity string
}

// NewRoot creates the root parent for a query over entity.
func NewRoot(entity string) *Root {
	return &Root{entity: entity}
}

// Entity returns the root's table name.
func (r *Root) Entity() string {
	return r.entity
}

func (r *Root) aliasBase(ctx *Context) (string, bool, error) {
	if !ctx.RequiresRootAlias() {
		return "", false, nil
	}
	if r.entity == "" {
		return "", false, ErrAliasUnresolvable.New(r)
	}
	return r.entity, true, nil
}

func (r *Root) String() string {
	return fmt.Sprintf("root(%s)", r.entity)
}

// SubqueryRoot is the root of a detached, correlated sub-query. It is
// always aliased.
type SubqueryRoot struct {
	name string
}

// NewSubqueryRoot creates the root parent of a detached query. name is
// the entity's display name and must not be empty.
func NewSubqueryRoot(name string) *SubqueryRoot {
	return &SubqueryRoot{name: name}
}

// Name returns the display name the alias is derived from.
func (r *SubqueryRoot) Name() string {
	return r.name
}

func (r *SubqueryRoot) aliasBase(*Context) (string, bool, error) {
	if r.name == "" {
		return "", false, ErrAliasUnresolvable.New(r)
	}
	return r.name, true, nil
}

func (r *SubqueryRoot) String() string {
	return fmt.Sprintf("subquery(%s)", r.name)
}

// Association is the node reached by following a join column. Its alias
// base is the resolved path of that join column, so only the column's own
// name feeds the prefix no matter how deep the association sits.
type Association struct {
	via Ref
}

// NewAssociation creates a node reached through via. Join columns create
// their association themselves; this is for definitions built by hand.
func NewAssociation(via Ref) *Association {
	return &Association{via: via}
}

// Via returns the join column that produced this association.
func (a *Association) Via() Ref {
	return a.via
}

func (a *Association) aliasBase(ctx *Context) (string, bool, error) {
	if a.via == nil {
		return "", false, ErrAliasUnresolvable.New(a)
	}
	path, err := ctx.Path(a.via)
	if err != nil {
		return "", false, err
	}
	return path, true, nil
}

func (a *Association) String() string {
	if a.via == nil {
		return "association(?)"
	}
	return fmt.Sprintf("association(%s)", a.via.Name())
}
