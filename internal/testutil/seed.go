package testutil

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Schema creates the bookstore tables.
const Schema = `
CREATE TABLE addresses (
	id       INTEGER PRIMARY KEY,
	city     TEXT NOT NULL,
	postcode TEXT NOT NULL
);
CREATE TABLE authors (
	id         INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	birth_year INTEGER,
	address_id INTEGER REFERENCES addresses(id)
);
CREATE TABLE books (
	id           INTEGER PRIMARY KEY,
	title        TEXT NOT NULL,
	author_id    INTEGER NOT NULL REFERENCES authors(id),
	price        NUMERIC NOT NULL,
	pages        INTEGER NOT NULL,
	published_at TEXT NOT NULL
);
CREATE TABLE reviews (
	id      TEXT PRIMARY KEY,
	book_id INTEGER NOT NULL REFERENCES books(id),
	rating  INTEGER NOT NULL,
	body    TEXT
);
`

// Fixture rows. Books are numbered 1..6 in title order; author 3 has no
// books and book 6 has no reviews.
const fixture = `
INSERT INTO addresses (id, city, postcode) VALUES
	(1, 'Portland', '97201'),
	(2, 'London', 'N1 9GU');
INSERT INTO authors (id, name, birth_year, address_id) VALUES
	(1, 'Ursula K. Le Guin', 1929, 1),
	(2, 'Terry Pratchett', 1948, 2),
	(3, 'Anonymous', NULL, NULL);
INSERT INTO books (id, title, author_id, price, pages, published_at) VALUES
	(1, 'A Wizard of Earthsea', 1, 9.5, 183, '1968-11-01T00:00:00Z'),
	(2, 'Guards! Guards!', 2, 8, 288, '1989-11-01T00:00:00Z'),
	(3, 'Mort', 2, 7.25, 272, '1987-11-12T00:00:00Z'),
	(4, 'The Dispossessed', 1, 12, 387, '1974-05-01T00:00:00Z'),
	(5, 'The Left Hand of Darkness', 1, 11.5, 286, '1969-03-01T00:00:00Z'),
	(6, 'Thud!', 2, 10, 368, '2005-10-01T00:00:00Z');
INSERT INTO reviews (id, book_id, rating, body) VALUES
	('7f1d3a52-4c0e-4f51-9b57-0d2b1c3e9a01', 1, 5, 'Timeless'),
	('7f1d3a52-4c0e-4f51-9b57-0d2b1c3e9a02', 1, 4, NULL),
	('7f1d3a52-4c0e-4f51-9b57-0d2b1c3e9a03', 2, 5, 'Hilarious'),
	('7f1d3a52-4c0e-4f51-9b57-0d2b1c3e9a04', 3, 3, NULL),
	('7f1d3a52-4c0e-4f51-9b57-0d2b1c3e9a05', 4, 5, 'Ambiguous utopia'),
	('7f1d3a52-4c0e-4f51-9b57-0d2b1c3e9a06', 5, 2, NULL);
`

// SeedBookstore creates the bookstore schema in db and loads the fixture.
func SeedBookstore(t testing.TB, db *sql.DB) {
	t.Helper()
	Seed(t, func(stmt string) error {
		_, err := db.Exec(stmt)
		return err
	})
}

// Seed runs the schema and fixture one statement at a time through exec,
// for backends without multi-statement support.
func Seed(t testing.TB, exec func(stmt string) error) {
	t.Helper()
	for _, stmt := range statements(Schema + fixture) {
		require.NoError(t, exec(stmt), "seed bookstore: %s", stmt)
	}
}

func statements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
