package queryir

import (
	"fmt"
)

// ValidationResult contains the structural analysis of a resolved query.
//
// A resolved query is valid when every column qualifier names an alias in
// scope, no alias shadows one declared by the same select or an enclosing
// one, and every sub-select used as a value selects exactly one column.
// Sibling sub-selects may reuse an alias.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems lists every violation found, in traversal order.
	Problems []string
}

// Validate checks that sel is fully alias-resolved.
//
// Backends call Validate before rendering so that a malformed tree fails
// loudly instead of producing SQL with dangling aliases.
//
// Validate is a pure function with no side effects.
func Validate(sel *Select) ValidationResult {
	v := &validator{problems: []string{}}
	if sel == nil {
		v.addProblem("nil select")
	} else {
		v.validateSelect(sel, nil, true)
	}

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// scope is the set of qualifiers visible to one select, chained to the
// enclosing select for correlated references.
type scope struct {
	names     map[string]bool
	unaliased bool // the select's own root is unaliased
	enclosing *scope
}

func (s *scope) visible(qualifier string) bool {
	for cur := s; cur != nil; cur = cur.enclosing {
		if qualifier == "" && cur.unaliased {
			return true
		}
		if qualifier != "" && cur.names[qualifier] {
			return true
		}
	}
	return false
}

// declared reports whether alias is taken by this select or an enclosing one.
func (s *scope) declared(alias string) bool {
	for cur := s; cur != nil; cur = cur.enclosing {
		if cur.names[alias] {
			return true
		}
	}
	return false
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

// addProblem appends a problem message.
func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

// declare registers alias in sc, reporting a clash with any alias visible
// from sc.
func (v *validator) declare(sc *scope, alias, table string) {
	if sc.declared(alias) {
		v.addProblem("alias %q declared twice (table %s)", alias, table)
	}
	sc.names[alias] = true
}

// validateSelect validates one select; top is true for the outermost one.
func (v *validator) validateSelect(sel *Select, enclosing *scope, top bool) {
	sc := &scope{names: make(map[string]bool), enclosing: enclosing}

	if sel.From.Name == "" {
		v.addProblem("select has no source table")
	}
	if sel.From.Alias == "" {
		if !top {
			v.addProblem("sub-select over %s has no alias", sel.From.Name)
		}
		sc.unaliased = true
	} else {
		v.declare(sc, sel.From.Alias, sel.From.Name)
	}

	for _, j := range sel.Joins {
		if j.Table.Alias == "" {
			v.addProblem("join of %s has no alias", j.Table.Name)
			continue
		}
		v.declare(sc, j.Table.Alias, j.Table.Name)
	}
	for _, j := range sel.Joins {
		if j.On == nil {
			v.addProblem("join of %s has no condition", j.Table.Name)
			continue
		}
		v.validatePredicate(j.On, sc)
	}

	if len(sel.Columns) == 0 {
		v.addProblem("select over %s has no columns", sel.From.Name)
	}
	for _, e := range sel.Columns {
		v.validateExpr(e, sc)
	}
	if sel.Where != nil {
		v.validatePredicate(sel.Where, sc)
	}
	for _, e := range sel.GroupBy {
		v.validateExpr(e, sc)
	}
	for _, o := range sel.OrderBy {
		v.validateExpr(o.Expr, sc)
	}
	if sel.Offset < 0 {
		v.addProblem("negative offset %d", sel.Offset)
	}
	if sel.Limit < 0 {
		v.addProblem("negative limit %d", sel.Limit)
	}
}

// validateValueSelect validates a sub-select used as a single value.
func (v *validator) validateValueSelect(sel *Select, sc *scope, what string) {
	if sel == nil {
		v.addProblem("%s without sub-select", what)
		return
	}
	if len(sel.Columns) != 1 {
		v.addProblem("%s sub-select must select exactly one column, got %d", what, len(sel.Columns))
	}
	v.validateSelect(sel, sc, false)
}

// validateExpr recursively validates an expression node.
func (v *validator) validateExpr(e Expr, sc *scope) {
	switch expr := e.(type) {
	case Column:
		if expr.Name == "" {
			v.addProblem("column without name")
		}
		if !sc.visible(expr.Qualifier) {
			v.addProblem("column %s references unknown alias %q", expr, expr.Qualifier)
		}
	case Param, Literal:
	case Aggregate:
		if expr.Arg != nil {
			v.validateExpr(expr.Arg, sc)
		}
	case Subquery:
		v.validateValueSelect(expr.Query, sc, "scalar")
	case nil:
		v.addProblem("nil expression")
	default:
		v.addProblem("unknown expression type: %T", e)
	}
}

// validatePredicate recursively validates a predicate node.
func (v *validator) validatePredicate(p Predicate, sc *scope) {
	switch pred := p.(type) {
	case Const:
	case Compare:
		v.validateExpr(pred.Left, sc)
		v.validateExpr(pred.Right, sc)
	case Between:
		v.validateExpr(pred.Expr, sc)
		v.validateExpr(pred.Low, sc)
		v.validateExpr(pred.High, sc)
	case Like:
		v.validateExpr(pred.Expr, sc)
	case IsNull:
		v.validateExpr(pred.Expr, sc)
	case In:
		if len(pred.Values) == 0 {
			v.addProblem("IN over an empty value list")
		}
		v.validateExpr(pred.Expr, sc)
		for _, e := range pred.Values {
			v.validateExpr(e, sc)
		}
	case InSelect:
		v.validateExpr(pred.Expr, sc)
		v.validateValueSelect(pred.Query, sc, "IN")
	case Exists:
		if pred.Query == nil {
			v.addProblem("EXISTS without sub-select")
			return
		}
		v.validateSelect(pred.Query, sc, false)
	case Quantified:
		v.validateExpr(pred.Left, sc)
		v.validateValueSelect(pred.Query, sc, string(pred.Quantifier))
	case Not:
		v.validatePredicate(pred.Predicate, sc)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub, sc)
		}
	case Or:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub, sc)
		}
	case nil:
		v.addProblem("nil predicate")
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}
