package querydoc

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/yawn/internal/catalog"
	"github.com/roach88/yawn/internal/query"
	"github.com/roach88/yawn/internal/queryir"
)

// Plan is a built document: a query whose rows are the selected values in
// Columns order.
type Plan struct {
	Columns []string
	q       *query.Query[[]any]
}

// Query returns the built query.
func (p *Plan) Query() *query.Query[[]any] { return p.q }

// Model returns the query model.
func (p *Plan) Model() *query.Model { return p.q.Model() }

// Root returns the root Parent of the query.
func (p *Plan) Root() query.Parent { return p.q.Root() }

// List executes the query.
func (p *Plan) List(ctx context.Context) ([][]any, error) { return p.q.List(ctx) }

// Build builds doc against cat. c executes the result; nil builds a query
// that can be resolved but not executed.
func Build(cat *catalog.Catalog, c query.Compiler, doc *Document) (plan *Plan, err error) {
	// builder misuse surfaces as a panic carrying a kind error
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok || !misuse(e) {
				panic(r)
			}
			plan, err = nil, e
		}
	}()

	b, err := newBuilder(cat, c, doc.From, nil)
	if err != nil {
		return nil, err
	}
	if err := b.apply(doc); err != nil {
		return nil, err
	}
	q, cols, err := b.project(doc)
	if err != nil {
		return nil, err
	}
	return &Plan{Columns: cols, q: q}, nil
}

func misuse(err error) bool {
	return query.ErrDuplicateJoin.Is(err) ||
		query.ErrSubqueryShape.Is(err) ||
		query.ErrInvalidPagination.Is(err) ||
		query.ErrProjectionAlreadySet.Is(err) ||
		query.ErrNotCollection.Is(err)
}

// builder builds one (sub) document.
type builder struct {
	cat    *catalog.Catalog
	q      *query.Query[catalog.Row]
	root   *catalog.Def
	joined map[string]*catalog.Def // registered join paths
	outer  *builder
	flat   bool // join criteria: no further joins
}

func newBuilder(cat *catalog.Catalog, c query.Compiler, table string, outer *builder) (*builder, error) {
	ent, err := cat.Entity(table)
	if err != nil {
		return nil, err
	}
	var q *query.Query[catalog.Row]
	if outer == nil {
		q = query.From(c, ent)
	} else {
		q = query.Detached(ent)
	}
	root, err := cat.Bind(table, q.Root())
	if err != nil {
		return nil, err
	}
	return &builder{cat: cat, q: q, root: root, joined: map[string]*catalog.Def{}, outer: outer}, nil
}

func (b *builder) apply(doc *Document) error {
	for i, j := range doc.Joins {
		if err := b.declareJoin(j); err != nil {
			return fmt.Errorf("joins[%d]: %w", i, err)
		}
	}
	for i, c := range doc.Where {
		crit, err := b.cond(c)
		if err != nil {
			return fmt.Errorf("where[%d]: %w", i, err)
		}
		b.q.Add(crit)
	}
	for i, o := range doc.Order {
		ref, _, err := b.column(o.Column)
		if err != nil {
			return fmt.Errorf("order[%d]: %w", i, err)
		}
		ord := query.Asc(ref)
		if o.Desc {
			ord = query.Desc(ref)
		}
		switch o.Nulls {
		case "first":
			ord = ord.NullsFirst()
		case "last":
			ord = ord.NullsLast()
		}
		b.q.Order(ord)
	}

	switch {
	case doc.Page != nil:
		b.q.Paginate(doc.Page.Number, doc.Page.Size)
	default:
		if doc.Offset > 0 {
			b.q.Offset(doc.Offset)
		}
		if doc.Limit > 0 {
			b.q.MaxResults(doc.Limit)
		}
	}
	switch doc.Lock {
	case "read":
		b.q.Lock(query.LockRead)
	case "write":
		b.q.Lock(query.LockWrite)
	}
	for _, h := range doc.Hints {
		b.q.Hint(h)
	}
	return nil
}

// project applies the selection. Without one, every root column is
// selected.
func (b *builder) project(doc *Document) (*query.Query[[]any], []string, error) {
	var (
		parts []query.Selection
		names []string
	)
	if len(doc.Select) == 0 {
		for _, col := range b.root.Table().Columns {
			f, err := b.root.Field(col.Name)
			if err != nil {
				return nil, nil, err
			}
			parts = append(parts, f)
			names = append(names, col.Name)
		}
	}
	for i, s := range doc.Select {
		p, err := b.selectItem(s)
		if err != nil {
			return nil, nil, fmt.Errorf("select[%d]: %w", i, err)
		}
		parts = append(parts, p)
		names = append(names, s.Name())
	}

	proj := query.Tuple(parts...)
	if doc.Distinct {
		proj = query.Distinct(proj)
	}
	return query.Project(b.q, proj), names, nil
}

func (b *builder) selectItem(s SelectItem) (query.Selection, error) {
	if s.Agg == "count" && s.Column == "" {
		return query.RowCount(), nil
	}
	def, name, err := b.walk(s.Column)
	if err != nil {
		return nil, err
	}
	ref, err := def.Column(name)
	if err != nil {
		return nil, err
	}
	switch s.Agg {
	case "":
		if s.Group {
			return query.GroupByOf(ref), nil
		}
		return def.Field(name)
	case "count":
		return query.Count(ref), nil
	case "count_distinct":
		return query.CountDistinct(ref), nil
	case "sum":
		return query.AggregateOf(queryir.AggSum, ref, false), nil
	case "avg":
		return query.AggregateOf(queryir.AggAvg, ref, false), nil
	case "min":
		return query.AggregateOf(queryir.AggMin, ref, false), nil
	case "max":
		return query.AggregateOf(queryir.AggMax, ref, false), nil
	default:
		return nil, fmt.Errorf("unknown aggregate %q", s.Agg)
	}
}

func (b *builder) declareJoin(j JoinItem) error {
	if _, ok := b.joined[j.Path]; ok {
		return fmt.Errorf("join %s declared twice", j.Path)
	}
	kind, err := joinKind(j.Kind)
	if err != nil {
		return err
	}
	parent, last := b.root, j.Path
	if i := strings.LastIndex(j.Path, "."); i >= 0 {
		if parent, err = b.joinPath(j.Path[:i]); err != nil {
			return err
		}
		last = j.Path[i+1:]
	}
	jc, err := parent.Join(last)
	if err != nil {
		return err
	}

	child := jc.Child()
	// join criteria see the joined table; "^." still reaches this document
	scope := &builder{cat: b.cat, q: b.q, root: child, outer: b, flat: true}
	var crit []query.Criterion
	for i, c := range j.Where {
		cr, err := scope.cond(c)
		if err != nil {
			return fmt.Errorf("where[%d]: %w", i, err)
		}
		crit = append(crit, cr)
	}
	b.q.Join(jc, kind, crit...)
	b.joined[j.Path] = child
	return nil
}

// joinPath returns the definition at a dotted join path, registering
// every join on the way that is not registered yet.
func (b *builder) joinPath(path string) (*catalog.Def, error) {
	if b.flat {
		return nil, fmt.Errorf("%s: join criteria only reference columns of the joined table", path)
	}
	def := b.root
	segs := strings.Split(path, ".")
	for i, seg := range segs {
		prefix := strings.Join(segs[:i+1], ".")
		if known, ok := b.joined[prefix]; ok {
			def = known
			continue
		}
		jc, err := def.Join(seg)
		if err != nil {
			return nil, err
		}
		b.q.Join(jc, query.InnerJoin)
		def = jc.Child()
		b.joined[prefix] = def
	}
	return def, nil
}

// walk splits a column path into its definition and column name.
func (b *builder) walk(path string) (*catalog.Def, string, error) {
	if rest, ok := strings.CutPrefix(path, "^."); ok {
		if b.outer == nil {
			return nil, "", fmt.Errorf("%s: no enclosing document", path)
		}
		return b.outer.walk(rest)
	}
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return b.root, path, nil
	}
	def, err := b.joinPath(path[:i])
	if err != nil {
		return nil, "", err
	}
	return def, path[i+1:], nil
}

// column resolves a column path to its reference and declaration.
func (b *builder) column(path string) (query.Ref, catalog.Column, error) {
	def, name, err := b.walk(path)
	if err != nil {
		return nil, catalog.Column{}, err
	}
	ref, err := def.Column(name)
	if err != nil {
		return nil, catalog.Column{}, err
	}
	col, _ := def.Table().Column(name)
	return ref, col, nil
}

// join resolves a path whose last segment names a join, without
// registering that last join.
func (b *builder) join(path string) (query.Joinable, error) {
	if rest, ok := strings.CutPrefix(path, "^."); ok {
		if b.outer == nil {
			return nil, fmt.Errorf("%s: no enclosing document", path)
		}
		return b.outer.join(rest)
	}
	def, last := b.root, path
	if i := strings.LastIndex(path, "."); i >= 0 {
		var err error
		if def, err = b.joinPath(path[:i]); err != nil {
			return nil, err
		}
		last = path[i+1:]
	}
	return def.Join(last)
}

func joinKind(s string) (query.JoinKind, error) {
	switch s {
	case "", "inner":
		return query.InnerJoin, nil
	case "left":
		return query.LeftJoin, nil
	case "right":
		return query.RightJoin, nil
	default:
		return 0, fmt.Errorf("unknown join kind %q", s)
	}
}
