package query

import (
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrProjectionAlreadySet is raised when a second projection is set on
	// the same query model.
	ErrProjectionAlreadySet = errors.NewKind("projection already set on query over %s")

	// ErrInvalidPagination is raised for a negative offset or page number,
	// or a page size / row limit below one.
	ErrInvalidPagination = errors.NewKind("invalid pagination: %s")

	// ErrSubqueryShape is raised when a sub-query used as a value does not
	// select exactly one column.
	ErrSubqueryShape = errors.NewKind("sub-query over %s must select exactly one column, selects %d")

	// ErrDuplicateJoin is raised when a join column is registered twice on
	// one query.
	ErrDuplicateJoin = errors.NewKind("join %s registered twice")

	// ErrNotCollection is raised when an emptiness test is built over a
	// join that is not to-many.
	ErrNotCollection = errors.NewKind("join %s is not a collection")

	// ErrAliasUnresolvable is returned when a Parent has no base string to
	// derive an alias from.
	ErrAliasUnresolvable = errors.NewKind("cannot derive alias for %s")

	// ErrNonUniqueResult is returned by backends when a unique result was
	// requested and more than one row matched.
	ErrNonUniqueResult = errors.NewKind("expected at most one row, got %d")

	// ErrConversion is returned when a raw backend cell cannot be
	// converted to the projection's type.
	ErrConversion = errors.NewKind("cannot convert %T to %s")

	// ErrRowShape is returned when a raw row does not match the width of
	// the projection converting it.
	ErrRowShape = errors.NewKind("row has %d cells, projection expects %d")

	// ErrNotExecutable is returned when a detached query is executed on
	// its own.
	ErrNotExecutable = errors.NewKind("query over %s has no compiler")

	// ErrStaleQuery is returned when a query handle is used after its
	// model was given a different projection.
	ErrStaleQuery = errors.NewKind("query over %s was re-projected; use the handle returned by Project")

	// ErrUnsupported is returned for operand combinations that have no
	// meaningful compilation.
	ErrUnsupported = errors.NewKind("unsupported: %s")
)
