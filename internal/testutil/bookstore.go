package testutil

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/roach88/yawn/internal/query"
)

// The definitions below are written the way generated table definitions
// look: one struct of column handles per table, bound to a Parent, and an
// Entity value producing the table's record projection.
//
// Schema:
//
//	addresses(id, city, postcode)
//	authors(id, name, birth_year NULL, address_id NULL)
//	books(id, title, author_id, price, pages, published_at)
//	reviews(id, book_id, rating, body NULL)

// Address is a row of addresses.
type Address struct {
	ID       int64
	City     string
	Postcode string
}

// Author is a row of authors.
type Author struct {
	ID        int64
	Name      string
	BirthYear sql.Null[int64]
	AddressID sql.Null[int64]
}

// Book is a row of books.
type Book struct {
	ID          int64
	Title       string
	AuthorID    int64
	Price       decimal.Decimal
	Pages       int64
	PublishedAt time.Time
}

// Review is a row of reviews.
type Review struct {
	ID     uuid.UUID
	BookID int64
	Rating int64
	Body   sql.Null[string]
}

// AddressDef holds the columns of addresses under one Parent.
type AddressDef struct {
	Parent   query.Parent
	ID       *query.Column[int64]
	City     *query.Column[string]
	Postcode *query.Column[string]
}

// NewAddressDef binds addresses to p.
func NewAddressDef(p query.Parent) *AddressDef {
	return &AddressDef{
		Parent:   p,
		ID:       query.NewColumn[int64](p, "id"),
		City:     query.NewColumn[string](p, "city"),
		Postcode: query.NewColumn[string](p, "postcode"),
	}
}

// AuthorDef holds the columns and relationships of authors under one
// Parent.
type AuthorDef struct {
	Parent    query.Parent
	ID        *query.Column[int64]
	Name      *query.Column[string]
	BirthYear *query.Column[int64]
	AddressID *query.Column[int64]
	Address   *query.JoinColumn[*AddressDef]
	Books     *query.JoinColumn[*BookDef]
}

// NewAuthorDef binds authors to p.
func NewAuthorDef(p query.Parent) *AuthorDef {
	return &AuthorDef{
		Parent:    p,
		ID:        query.NewColumn[int64](p, "id"),
		Name:      query.NewColumn[string](p, "name"),
		BirthYear: query.NewColumn[int64](p, "birth_year"),
		AddressID: query.NewColumn[int64](p, "address_id"),
		Address: query.NewJoinColumn(p, "address",
			query.JoinSpec{Table: "addresses", Local: "address_id", Remote: "id"},
			NewAddressDef),
		Books: query.NewJoinColumn(p, "books",
			query.JoinSpec{Table: "books", Local: "id", Remote: "author_id", Collection: true},
			NewBookDef),
	}
}

// BookDef holds the columns and relationships of books under one Parent.
type BookDef struct {
	Parent      query.Parent
	ID          *query.Column[int64]
	Title       *query.Column[string]
	AuthorID    *query.Column[int64]
	Price       *query.Column[decimal.Decimal]
	Pages       *query.Column[int64]
	PublishedAt *query.Column[time.Time]
	Author      *query.JoinColumn[*AuthorDef]
	Reviews     *query.JoinColumn[*ReviewDef]
}

// NewBookDef binds books to p.
func NewBookDef(p query.Parent) *BookDef {
	return &BookDef{
		Parent:      p,
		ID:          query.NewColumn[int64](p, "id"),
		Title:       query.NewColumn[string](p, "title"),
		AuthorID:    query.NewColumn[int64](p, "author_id"),
		Price:       query.NewColumn[decimal.Decimal](p, "price"),
		Pages:       query.NewColumn[int64](p, "pages"),
		PublishedAt: query.NewColumn[time.Time](p, "published_at").WithAdapter(utc),
		Author: query.NewJoinColumn(p, "author",
			query.JoinSpec{Table: "authors", Local: "author_id", Remote: "id"},
			NewAuthorDef),
		Reviews: query.NewJoinColumn(p, "reviews",
			query.JoinSpec{Table: "reviews", Local: "id", Remote: "book_id", Collection: true},
			NewReviewDef),
	}
}

// ReviewDef holds the columns and relationships of reviews under one
// Parent.
type ReviewDef struct {
	Parent query.Parent
	ID     *query.Column[uuid.UUID]
	BookID *query.Column[int64]
	Rating *query.Column[int64]
	Body   *query.Column[string]
	Book   *query.JoinColumn[*BookDef]
}

// NewReviewDef binds reviews to p.
func NewReviewDef(p query.Parent) *ReviewDef {
	return &ReviewDef{
		Parent: p,
		ID:     query.NewColumn[uuid.UUID](p, "id"),
		BookID: query.NewColumn[int64](p, "book_id"),
		Rating: query.NewColumn[int64](p, "rating"),
		Body:   query.NewColumn[string](p, "body"),
		Book: query.NewJoinColumn(p, "book",
			query.JoinSpec{Table: "books", Local: "book_id", Remote: "id"},
			NewBookDef),
	}
}

// utc stores timestamps in a single zone so text comparison in SQLite
// orders them correctly.
func utc(t time.Time) any {
	return t.UTC().Format(time.RFC3339)
}

type addresses struct{}

func (addresses) Table() string { return "addresses" }

func (addresses) Record(p query.Parent) query.Projection[Address] {
	d := NewAddressDef(p)
	return query.Record(func(v []any) (Address, error) {
		return Address{
			ID:       v[0].(int64),
			City:     v[1].(string),
			Postcode: v[2].(string),
		}, nil
	}, query.Field(d.ID), query.Field(d.City), query.Field(d.Postcode))
}

type authors struct{}

func (authors) Table() string { return "authors" }

func (authors) Record(p query.Parent) query.Projection[Author] {
	d := NewAuthorDef(p)
	return query.Record(func(v []any) (Author, error) {
		return Author{
			ID:        v[0].(int64),
			Name:      v[1].(string),
			BirthYear: v[2].(sql.Null[int64]),
			AddressID: v[3].(sql.Null[int64]),
		}, nil
	}, query.Field(d.ID), query.Field(d.Name), query.Nullable(d.BirthYear), query.Nullable(d.AddressID))
}

type books struct{}

func (books) Table() string { return "books" }

func (books) Record(p query.Parent) query.Projection[Book] {
	d := NewBookDef(p)
	return query.Record(func(v []any) (Book, error) {
		return Book{
			ID:          v[0].(int64),
			Title:       v[1].(string),
			AuthorID:    v[2].(int64),
			Price:       v[3].(decimal.Decimal),
			Pages:       v[4].(int64),
			PublishedAt: v[5].(time.Time),
		}, nil
	}, query.Field(d.ID), query.Field(d.Title), query.Field(d.AuthorID),
		query.Field(d.Price), query.Field(d.Pages), query.Field(d.PublishedAt))
}

type reviews struct{}

func (reviews) Table() string { return "reviews" }

func (reviews) Record(p query.Parent) query.Projection[Review] {
	d := NewReviewDef(p)
	return query.Record(func(v []any) (Review, error) {
		return Review{
			ID:     v[0].(uuid.UUID),
			BookID: v[1].(int64),
			Rating: v[2].(int64),
			Body:   v[3].(sql.Null[string]),
		}, nil
	}, query.Field(d.ID), query.Field(d.BookID), query.Field(d.Rating), query.Nullable(d.Body))
}

// Entities of the bookstore schema.
var (
	Addresses query.Entity[Address] = addresses{}
	Authors   query.Entity[Author]  = authors{}
	Books     query.Entity[Book]    = books{}
	Reviews   query.Entity[Review]  = reviews{}
)
