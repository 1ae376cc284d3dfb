package querydoc

import (
	"fmt"

	"github.com/roach88/yawn/internal/catalog"
	"github.com/roach88/yawn/internal/query"
)

var compareOps = map[string]query.Op{
	"eq": query.OpEq,
	"ne": query.OpNe,
	"gt": query.OpGt,
	"ge": query.OpGe,
	"lt": query.OpLt,
	"le": query.OpLe,
}

var matchModes = map[string]query.MatchMode{
	"":         query.MatchExact,
	"exact":    query.MatchExact,
	"start":    query.MatchStart,
	"end":      query.MatchEnd,
	"anywhere": query.MatchAnywhere,
}

func (b *builder) cond(c Cond) (query.Criterion, error) {
	switch {
	case c.And != nil:
		cs, err := b.conds(c.And)
		if err != nil {
			return query.Criterion{}, fmt.Errorf("and: %w", err)
		}
		return query.And(cs...), nil
	case c.Or != nil:
		cs, err := b.conds(c.Or)
		if err != nil {
			return query.Criterion{}, fmt.Errorf("or: %w", err)
		}
		return query.Or(cs...), nil
	case c.Not != nil:
		inner, err := b.cond(*c.Not)
		if err != nil {
			return query.Criterion{}, fmt.Errorf("not: %w", err)
		}
		return query.Not(inner), nil
	}

	switch c.Op {
	case "empty", "not_empty":
		j, err := b.join(c.Column)
		if err != nil {
			return query.Criterion{}, err
		}
		if !j.Spec().Collection {
			return query.Criterion{}, fmt.Errorf("%s: %s needs a collection join", c.Column, c.Op)
		}
		if c.Op == "empty" {
			return query.IsEmpty(j), nil
		}
		return query.IsNotEmpty(j), nil
	case "exists", "not_exists":
		sub, err := b.sub(c.Sub, false)
		if err != nil {
			return query.Criterion{}, err
		}
		if c.Op == "exists" {
			return query.Exists(sub), nil
		}
		return query.NotExists(sub), nil
	}

	ref, col, err := b.column(c.Column)
	if err != nil {
		return query.Criterion{}, err
	}

	if op, ok := compareOps[c.Op]; ok {
		return b.compare(op, ref, col, c)
	}

	switch c.Op {
	case "between":
		lo, err := col.Coerce(c.Low)
		if err != nil {
			return query.Criterion{}, err
		}
		hi, err := col.Coerce(c.High)
		if err != nil {
			return query.Criterion{}, err
		}
		return query.BetweenOf(ref, lo, hi), nil
	case "like", "ilike":
		mode, ok := matchModes[c.Match]
		if !ok {
			return query.Criterion{}, fmt.Errorf("unknown match mode %q", c.Match)
		}
		pattern, ok := c.Value.(string)
		if !ok {
			return query.Criterion{}, fmt.Errorf("%s: value must be a string", c.Op)
		}
		if c.Op == "ilike" {
			return query.ILike(ref, pattern, mode), nil
		}
		return query.Like(ref, pattern, mode), nil
	case "null":
		return query.IsNull(ref), nil
	case "not_null":
		return query.IsNotNull(ref), nil
	case "eq_or_null":
		v, err := col.Coerce(c.Value)
		if err != nil {
			return query.Criterion{}, err
		}
		return query.EqOrNullOf(ref, v), nil
	case "in", "not_in":
		if c.Sub != nil {
			sub, err := b.sub(c.Sub, true)
			if err != nil {
				return query.Criterion{}, err
			}
			if c.Op == "in" {
				return query.InSubquery(ref, sub), nil
			}
			return query.NotInSubquery(ref, sub), nil
		}
		values, err := coerceAll(col, c.Values)
		if err != nil {
			return query.Criterion{}, err
		}
		if c.Op == "in" {
			return query.InOf(ref, values...), nil
		}
		return query.NotInOf(ref, values...), nil
	default:
		return query.Criterion{}, fmt.Errorf("unknown op %q", c.Op)
	}
}

func (b *builder) conds(cs []Cond) ([]query.Criterion, error) {
	out := make([]query.Criterion, 0, len(cs))
	for i, c := range cs {
		crit, err := b.cond(c)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, crit)
	}
	return out, nil
}

// compare builds a comparison against a value, another column or a sub
// document.
func (b *builder) compare(op query.Op, ref query.Ref, col catalog.Column, c Cond) (query.Criterion, error) {
	switch {
	case c.Sub != nil:
		sub, err := b.sub(c.Sub, true)
		if err != nil {
			return query.Criterion{}, err
		}
		switch c.Quantifier {
		case "all":
			return query.All(ref, op, sub), nil
		case "some":
			return query.Some(ref, op, sub), nil
		default:
			return query.CompareSubquery(op, ref, sub), nil
		}
	case c.Other != "":
		other, _, err := b.column(c.Other)
		if err != nil {
			return query.Criterion{}, err
		}
		return query.CompareColumns(op, ref, other), nil
	default:
		v, err := col.Coerce(c.Value)
		if err != nil {
			return query.Criterion{}, err
		}
		return query.Compare(op, ref, v), nil
	}
}

// sub builds a sub document as a detached query. single requires it to
// select exactly one expression.
func (b *builder) sub(doc *Document, single bool) (query.Detachable, error) {
	if doc == nil {
		return nil, fmt.Errorf("sub is required")
	}
	if single && len(doc.Select) != 1 {
		return nil, fmt.Errorf("sub: must select exactly one expression, got %d", len(doc.Select))
	}
	sb, err := newBuilder(b.cat, nil, doc.From, b)
	if err != nil {
		return nil, fmt.Errorf("sub: %w", err)
	}
	if err := sb.apply(doc); err != nil {
		return nil, fmt.Errorf("sub: %w", err)
	}
	if single {
		p, err := sb.selectItem(doc.Select[0])
		if err != nil {
			return nil, fmt.Errorf("sub: %w", err)
		}
		return query.Project(sb.q, query.Tuple(p)), nil
	}
	q, _, err := sb.project(doc)
	if err != nil {
		return nil, fmt.Errorf("sub: %w", err)
	}
	return q, nil
}

func coerceAll(col catalog.Column, values []any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		c, err := col.Coerce(v)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
