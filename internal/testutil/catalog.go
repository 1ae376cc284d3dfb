package testutil

// BookstoreCatalog describes the bookstore schema as a CUE catalog.
const BookstoreCatalog = `table: addresses: columns: {
	id:       "int"
	city:     "string"
	postcode: "string"
}

table: authors: {
	columns: {
		id:         "int"
		name:       "string"
		birth_year: {type: "int", nullable: true}
		address_id: {type: "int", nullable: true}
	}
	joins: {
		address: {table: "addresses", local: "address_id", remote: "id"}
		books: {table: "books", local: "id", remote: "author_id", collection: true}
	}
}

table: books: {
	columns: {
		id:           "int"
		title:        "string"
		author_id:    "int"
		price:        "decimal"
		pages:        "int"
		published_at: "time"
	}
	joins: {
		author: {table: "authors", local: "author_id", remote: "id"}
		reviews: {table: "reviews", local: "id", remote: "book_id", collection: true}
	}
}

table: reviews: {
	columns: {
		id:      "uuid"
		book_id: "int"
		rating:  "int"
		body:    {type: "string", nullable: true}
	}
	joins: book: {table: "books", local: "book_id", remote: "id"}
}
`
