// Package catalog describes tables, their columns and their associations
// at runtime, loaded from CUE files.
//
// A catalog file declares tables under the top-level "table" field:
//
//	table: books: {
//		columns: {
//			id:    "int"
//			title: "string"
//			price: "decimal"
//			blurb: {type: "string", nullable: true}
//		}
//		joins: author: {table: "authors", local: "author_id", remote: "id"}
//	}
//
// Bind turns a table into column and join definitions under any
// query.Parent, so dynamic callers (query documents, the CLI) build the
// same query models as hand-written definitions do. Entity returns a
// query.Entity whose records are Row maps.
package catalog
