package query

// Pair is the value of a two-part projection.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is the value of a three-part projection.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// composite holds the parts of a positional projection. Part i occupies
// the cells after those of parts 0..i-1.
type composite struct {
	parts []Selection
}

func (c *composite) compileSelection(ctx *Context) (selection, error) {
	var out selection
	for _, p := range c.parts {
		s, err := p.compileSelection(ctx)
		if err != nil {
			return selection{}, err
		}
		out.merge(s)
	}
	return out, nil
}

func (c *composite) width() int {
	n := 0
	for _, p := range c.parts {
		n += p.width()
	}
	return n
}

// split converts row into one value per part.
func (c *composite) split(row []any) ([]any, error) {
	if err := checkWidth(row, c.width()); err != nil {
		return nil, err
	}
	out := make([]any, len(c.parts))
	at := 0
	for i, p := range c.parts {
		w := p.width()
		v, err := p.convertAny(row[at : at+w])
		if err != nil {
			return nil, err
		}
		out[i] = v
		at += w
	}
	return out, nil
}

type pair[A, B any] struct {
	composite
	first  Projection[A]
	second Projection[B]
}

// PairOf selects a then b.
func PairOf[A, B any](a Projection[A], b Projection[B]) Projection[Pair[A, B]] {
	return &pair[A, B]{composite: composite{parts: []Selection{a, b}}, first: a, second: b}
}

func (p *pair[A, B]) Convert(row []any) (Pair[A, B], error) {
	if err := checkWidth(row, p.width()); err != nil {
		return Pair[A, B]{}, err
	}
	wa := p.first.width()
	a, err := p.first.Convert(row[:wa])
	if err != nil {
		return Pair[A, B]{}, err
	}
	b, err := p.second.Convert(row[wa:])
	if err != nil {
		return Pair[A, B]{}, err
	}
	return Pair[A, B]{First: a, Second: b}, nil
}

func (p *pair[A, B]) convertAny(row []any) (any, error) { return p.Convert(row) }

type triple[A, B, C any] struct {
	composite
	first  Projection[A]
	second Projection[B]
	third  Projection[C]
}

// TripleOf selects a, b then c.
func TripleOf[A, B, C any](a Projection[A], b Projection[B], c Projection[C]) Projection[Triple[A, B, C]] {
	return &triple[A, B, C]{
		composite: composite{parts: []Selection{a, b, c}},
		first:     a,
		second:    b,
		third:     c,
	}
}

func (p *triple[A, B, C]) Convert(row []any) (Triple[A, B, C], error) {
	var out Triple[A, B, C]
	if err := checkWidth(row, p.width()); err != nil {
		return out, err
	}
	wa, wb := p.first.width(), p.second.width()
	var err error
	if out.First, err = p.first.Convert(row[:wa]); err != nil {
		return Triple[A, B, C]{}, err
	}
	if out.Second, err = p.second.Convert(row[wa : wa+wb]); err != nil {
		return Triple[A, B, C]{}, err
	}
	if out.Third, err = p.third.Convert(row[wa+wb:]); err != nil {
		return Triple[A, B, C]{}, err
	}
	return out, nil
}

func (p *triple[A, B, C]) convertAny(row []any) (any, error) { return p.Convert(row) }

type tuple struct {
	composite
}

// Tuple selects parts in order; each element of the result holds the
// converted value of the part at the same index.
func Tuple(parts ...Selection) Projection[[]any] {
	return &tuple{composite: composite{parts: append([]Selection(nil), parts...)}}
}

func (p *tuple) Convert(row []any) ([]any, error) { return p.split(row) }

func (p *tuple) convertAny(row []any) (any, error) { return p.Convert(row) }

type record[T any] struct {
	composite
	build func(values []any) (T, error)
}

// Record selects parts in order and hands their converted values, in the
// same order, to build. Generated entity and projection definitions use
// it to produce their record type.
func Record[T any](build func(values []any) (T, error), parts ...Selection) Projection[T] {
	return &record[T]{composite: composite{parts: append([]Selection(nil), parts...)}, build: build}
}

func (p *record[T]) Convert(row []any) (T, error) {
	values, err := p.split(row)
	if err != nil {
		var zero T
		return zero, err
	}
	return p.build(values)
}

func (p *record[T]) convertAny(row []any) (any, error) { return p.Convert(row) }
