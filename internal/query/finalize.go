package query

import (
	"context"

	"github.com/mitchellh/hashstructure"
)

// compile hands the model to the backend.
func (q *Query[T]) compile() (Executable, error) {
	if q.compiler == nil {
		return nil, ErrNotExecutable.New(q.m.entity)
	}
	if q.m.projection != nil && Selection(q.proj) != q.m.projection {
		return nil, ErrStaleQuery.New(q.m.entity)
	}
	return q.compiler.Compile(q.m, q.m.root)
}

func (q *Query[T]) convertRows(rows [][]any) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := q.proj.Convert(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// List executes the query and returns every result.
func (q *Query[T]) List(ctx context.Context) ([]T, error) {
	exec, err := q.compile()
	if err != nil {
		return nil, err
	}
	rows, err := exec.List(ctx)
	if err != nil {
		return nil, err
	}
	return q.convertRows(rows)
}

// Set executes the query and returns its distinct results in the order
// they were first seen. Rows are compared as raw cells, after driver
// values are unwrapped, and only the kept rows are converted.
func (q *Query[T]) Set(ctx context.Context) ([]T, error) {
	exec, err := q.compile()
	if err != nil {
		return nil, err
	}
	rows, err := exec.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint64]struct{}, len(rows))
	kept := make([][]any, 0, len(rows))
	for _, row := range rows {
		h, err := rowHash(row)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		kept = append(kept, row)
	}
	return q.convertRows(kept)
}

func rowHash(row []any) (uint64, error) {
	cells := make([]any, len(row))
	for i, raw := range row {
		v, err := unwrap(raw)
		if err != nil {
			return 0, err
		}
		cells[i] = v
	}
	return hashstructure.Hash(cells, nil)
}

// UniqueResult executes the query expecting at most one row. ok is false
// when nothing matched.
func (q *Query[T]) UniqueResult(ctx context.Context) (v T, ok bool, err error) {
	exec, err := q.compile()
	if err != nil {
		return v, false, err
	}
	row, ok, err := exec.UniqueResult(ctx)
	if err != nil || !ok {
		return v, false, err
	}
	v, err = q.proj.Convert(row)
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}

// First returns the first result, leaving the query itself untouched.
func (q *Query[T]) First(ctx context.Context) (v T, ok bool, err error) {
	cp := q.Clone()
	cp.m.maxResults = 1
	all, err := cp.List(ctx)
	if err != nil || len(all) == 0 {
		return v, false, err
	}
	return all[0], true, nil
}

// Exists reports whether at least one row matches.
func (q *Query[T]) Exists(ctx context.Context) (bool, error) {
	cp := q.m.Clone()
	one := Constant[int64](1)
	cp.projection = one
	cp.orders = nil
	cp.maxResults = 1
	existence := &Query[int64]{m: cp, compiler: q.compiler, proj: one}
	rows, err := existence.List(ctx)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// RowCount counts the matching rows, ignoring ordering and pagination.
func (q *Query[T]) RowCount(ctx context.Context) (int64, error) {
	cp := q.m.Clone()
	count := RowCount()
	cp.projection = count
	cp.orders = nil
	cp.offset = 0
	cp.maxResults = 0
	counter := &Query[int64]{m: cp, compiler: q.compiler, proj: count}
	n, _, err := counter.UniqueResult(ctx)
	return n, err
}

// ListPaginated returns the zero-based page of the given size under
// orders, leaving the query itself untouched.
func (q *Query[T]) ListPaginated(ctx context.Context, page, size int, orders ...Order) ([]T, error) {
	if err := checkPage(page, size); err != nil {
		return nil, err
	}
	cp := q.Clone()
	cp.Order(orders...)
	cp.m.offset = page * size
	cp.m.maxResults = size
	return cp.List(ctx)
}

// DoPaginated walks every result page by page, calling fn once per
// non-empty page. orders are applied once; iteration stops after the first
// page shorter than size, or on the first error.
func (q *Query[T]) DoPaginated(ctx context.Context, size int, fn func(page []T) error, orders ...Order) error {
	if err := checkPage(0, size); err != nil {
		return err
	}
	cp := q.Clone()
	cp.Order(orders...)
	cp.m.maxResults = size
	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		cp.m.offset = page * size
		items, err := cp.List(ctx)
		if err != nil {
			return err
		}
		if len(items) > 0 {
			if err := fn(items); err != nil {
				return err
			}
		}
		if len(items) < size {
			return nil
		}
	}
}
