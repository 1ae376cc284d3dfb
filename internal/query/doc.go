// Package query provides a composable, strongly-typed expression model for
// relational queries and the compilation pass that turns it into a
// resolved statement for an execution backend.
//
// # Building
//
// A Query accumulates criteria, joins, ordering, an optional projection,
// pagination bounds, a lock mode and backend hints through chained calls:
//
//	q := query.From(db, Books)
//	b := NewBookDef(q.Root())
//	author := query.JoinWith(q, b.Author, query.InnerJoin, nil)
//	q.Add(query.Like(author.Name, "Le Guin", query.MatchAnywhere)).OrderAsc(b.Title)
//	titles, err := query.Project(q, query.Field(b.Title)).List(ctx)
//
// Table, column and join-column definitions are produced outside this
// package (generated code, or a runtime catalog). This package only needs
// them to name a column relative to a Parent.
//
// # Compiling
//
// Every execution compiles the model once: a fresh Context is created, the
// root, joins, predicates, projection and ordering are walked in that order, and
// each Parent reached asks the Context for its alias. The result is a
// queryir.Select with every alias resolved and every value adapted, which
// a Compiler renders and executes.
//
// The root table is only aliased when the query carries a correlated
// sub-query somewhere in its predicate tree; otherwise it compiles
// unaliased.
//
// # Ownership
//
// A Query is mutable and owned by the code path that built it. It must not
// be mutated concurrently. Use Clone to reuse a query as a template: the
// clone copies criteria, joins and ordering and shares the immutable
// column and projection definitions.
//
// # Errors
//
// Misusing a chained builder call (a second projection, negative
// pagination, a sub-query of the wrong shape) panics with an error of one
// of the kinds declared in errors.go, at the call site. Compilation and
// execution failures are returned as errors.
package query
