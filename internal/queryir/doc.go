// Package queryir provides the resolved query intermediate representation
// (IR) handed to execution backends.
//
// The IR is what a compilation pass over a query model produces: every
// table and join already carries its alias, every column reference is
// qualified by that alias (or left unqualified for an unaliased root), and
// every literal has already gone through value adaptation. Backends only
// render; they never resolve.
//
// ARCHITECTURE:
//
//	[query model] --Resolve--> [queryir.Select] --render--> [SQLite SQL]
//	                                            --render--> [PostgreSQL SQL]
//
// SEALED INTERFACES:
//
// Predicate and Expr are sealed interfaces using the marker method pattern.
// Only types in this package implement them, so backends can switch
// exhaustively:
//
//	switch p := pred.(type) {
//	case Compare:
//	    // left op right
//	case And:
//	    // conjunction
//	default:
//	    // impossible: every Predicate type is listed above
//	}
//
// NODE SET:
//
//	Predicates: Const, Compare, Between, Like, IsNull, In, InSelect,
//	            Exists, Quantified, Not, And, Or
//	Exprs:      Column, Param, Literal, Aggregate, Subquery
//
// Empty membership tests never reach the IR: an IN over no values is
// resolved to False and a NOT IN over no values to True, since "IN ()" is
// invalid in most backends.
package queryir
