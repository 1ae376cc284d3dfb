package query

import (
	"sync"

	"github.com/roach88/yawn/internal/queryir"
)

// JoinKind selects inner, left or right join semantics.
type JoinKind = queryir.JoinKind

const (
	InnerJoin = queryir.JoinInner
	LeftJoin  = queryir.JoinLeft
	RightJoin = queryir.JoinRight
)

// JoinSpec describes how a join column connects its parent to the target
// table: parent.Local = target.Remote.
type JoinSpec struct {
	Table      string // target table
	Local      string // column on the parent side
	Remote     string // column on the target side
	Collection bool   // to-many association
}

// Joinable is the untyped view of a join column.
type Joinable interface {
	Ref
	Association() *Association
	Spec() JoinSpec
}

// JoinColumn is a relationship definition. D is the definition type of the
// target table, built lazily against the column's own Association so that
// columns reached through it share one join-tree node.
type JoinColumn[D any] struct {
	parent Parent
	name   string
	spec   JoinSpec
	assoc  *Association
	build  func(Parent) D

	once  sync.Once
	child D
}

// NewJoinColumn defines relationship name under parent. build produces the
// target definition for a given Parent.
func NewJoinColumn[D any](parent Parent, name string, spec JoinSpec, build func(Parent) D) *JoinColumn[D] {
	jc := &JoinColumn[D]{
		parent: parent,
		name:   name,
		spec:   spec,
		build:  build,
	}
	jc.assoc = NewAssociation(jc)
	return jc
}

// Parent returns the node the relationship starts from.
func (j *JoinColumn[D]) Parent() Parent { return j.parent }

// Name returns the relationship name.
func (j *JoinColumn[D]) Name() string { return j.name }

// Spec returns the join condition description.
func (j *JoinColumn[D]) Spec() JoinSpec { return j.spec }

// Association returns the node this relationship produces.
func (j *JoinColumn[D]) Association() *Association { return j.assoc }

// Child returns the target definition bound to this relationship's
// Association.
func (j *JoinColumn[D]) Child() D {
	j.once.Do(func() {
		j.child = j.build(j.assoc)
	})
	return j.child
}

// Path returns the relationship's dotted path under ctx.
func (j *JoinColumn[D]) Path(ctx *Context) (string, error) {
	return ctx.Path(j)
}

// Join is a registered join: the column followed, the association it
// produces, the join kind, and criteria scoped to the join condition.
type Join struct {
	column   Joinable
	parent   *Association
	kind     JoinKind
	criteria []Criterion
}

// Column returns the join column followed.
func (j *Join) Column() Joinable { return j.column }

// Association returns the node this join produces.
func (j *Join) Association() *Association { return j.parent }

// Kind returns the join kind.
func (j *Join) Kind() JoinKind { return j.kind }

// Criteria returns the join-scoped criteria.
func (j *Join) Criteria() []Criterion {
	return append([]Criterion(nil), j.criteria...)
}

func (j *Join) clone() *Join {
	cp := *j
	cp.criteria = append([]Criterion(nil), j.criteria...)
	return &cp
}

// resolve compiles the join against ctx.
func (j *Join) resolve(ctx *Context) (queryir.Join, error) {
	spec := j.column.Spec()

	a, err := ctx.Alias(j.parent)
	if err != nil {
		return queryir.Join{}, err
	}
	local, err := ctx.Column(ColumnOf(j.column.Parent(), spec.Local))
	if err != nil {
		return queryir.Join{}, err
	}

	on := []queryir.Predicate{queryir.Compare{
		Left:  local,
		Op:    queryir.OpEq,
		Right: queryir.Column{Qualifier: a, Name: spec.Remote},
	}}
	for _, c := range j.criteria {
		p, err := c.compile(ctx)
		if err != nil {
			return queryir.Join{}, err
		}
		on = append(on, p)
	}

	return queryir.Join{
		Kind:  j.kind,
		Table: queryir.Table{Name: spec.Table, Alias: a},
		On:    queryir.Conjoin(on...),
	}, nil
}

// orderJoins returns joins with every join placed after the join that
// produces its parent, keeping registration order otherwise.
func orderJoins(joins []*Join) []*Join {
	registered := make(map[*Association]bool, len(joins))
	for _, j := range joins {
		registered[j.parent] = true
	}

	emitted := make(map[*Association]bool, len(joins))
	out := make([]*Join, 0, len(joins))
	pending := joins
	for len(pending) > 0 {
		var deferred []*Join
		for _, j := range pending {
			if a, ok := j.column.Parent().(*Association); ok && registered[a] && !emitted[a] {
				deferred = append(deferred, j)
				continue
			}
			out = append(out, j)
			emitted[j.parent] = true
		}
		if len(deferred) == len(pending) {
			return append(out, deferred...)
		}
		pending = deferred
	}
	return out
}
