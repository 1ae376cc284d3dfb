// Package querydoc builds queries from YAML documents against a catalog.
//
// A document names a root table, optional joins, a where list, a
// selection and paging:
//
//	from: books
//	joins:
//	  - path: author
//	    kind: left
//	where:
//	  - {column: pages, op: gt, value: 250}
//	  - or:
//	      - {column: author.name, op: like, value: Terry, match: start}
//	      - {column: reviews, op: empty}
//	select:
//	  - column: title
//	order:
//	  - {column: title}
//	limit: 10
//
// Column paths walk joins with dots ("author.address.city"); joins named
// in a path and not listed under joins are added as inner joins. Inside a
// sub document (the sub field of a condition) a "^." prefix resolves the
// rest of the path in the enclosing document.
package querydoc
