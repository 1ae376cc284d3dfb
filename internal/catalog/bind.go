package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/roach88/yawn/internal/query"
)

// Row is one record of a catalog entity, keyed by column name. NULL
// cells are nil.
type Row map[string]any

// Def holds the columns and joins of one table bound to a Parent.
type Def struct {
	Parent query.Parent

	cat     *Catalog
	table   *Table
	columns map[string]bound
	joins   map[string]*query.JoinColumn[*Def]
}

type bound struct {
	ref  query.Ref
	proj query.Projection[any]
}

// Bind binds table to p.
func (c *Catalog) Bind(table string, p query.Parent) (*Def, error) {
	t, ok := c.tables[table]
	if !ok {
		return nil, &Error{Table: table, Message: "unknown table"}
	}
	return c.bind(t, p), nil
}

func (c *Catalog) bind(t *Table, p query.Parent) *Def {
	d := &Def{
		Parent:  p,
		cat:     c,
		table:   t,
		columns: make(map[string]bound, len(t.Columns)),
		joins:   make(map[string]*query.JoinColumn[*Def], len(t.Joins)),
	}
	for _, col := range t.Columns {
		d.columns[col.Name] = bindColumn(p, col)
	}
	for _, j := range t.Joins {
		// targets were checked at load time
		target := c.tables[j.Table]
		d.joins[j.Name] = query.NewJoinColumn(p, j.Name,
			query.JoinSpec{Table: j.Table, Local: j.Local, Remote: j.Remote, Collection: j.Collection},
			func(child query.Parent) *Def { return c.bind(target, child) })
	}
	return d
}

// Table returns the table d is bound from.
func (d *Def) Table() *Table { return d.table }

// Column returns the named column reference.
func (d *Def) Column(name string) (query.Ref, error) {
	b, ok := d.columns[name]
	if !ok {
		return nil, &Error{Table: d.table.Name, Field: name, Message: "unknown column"}
	}
	return b.ref, nil
}

// Field returns a projection of the named column. Nullable columns
// convert NULL to nil.
func (d *Def) Field(name string) (query.Projection[any], error) {
	b, ok := d.columns[name]
	if !ok {
		return nil, &Error{Table: d.table.Name, Field: name, Message: "unknown column"}
	}
	return b.proj, nil
}

// Join returns the named join column.
func (d *Def) Join(name string) (*query.JoinColumn[*Def], error) {
	j, ok := d.joins[name]
	if !ok {
		return nil, &Error{Table: d.table.Name, Field: name, Message: "unknown join"}
	}
	return j, nil
}

// Record projects every column of d into a Row.
func (d *Def) Record() query.Projection[Row] {
	parts := make([]query.Selection, len(d.table.Columns))
	for i, col := range d.table.Columns {
		parts[i] = d.columns[col.Name].proj
	}
	cols := d.table.Columns
	return query.Record(func(v []any) (Row, error) {
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col.Name] = v[i]
		}
		return row, nil
	}, parts...)
}

// Entity returns the named table as a query entity.
func (c *Catalog) Entity(table string) (query.Entity[Row], error) {
	t, ok := c.tables[table]
	if !ok {
		return nil, &Error{Table: table, Message: "unknown table"}
	}
	return entity{cat: c, table: t}, nil
}

type entity struct {
	cat   *Catalog
	table *Table
}

func (e entity) Table() string { return e.table.Name }

func (e entity) Record(p query.Parent) query.Projection[Row] {
	return e.cat.bind(e.table, p).Record()
}

func bindColumn(p query.Parent, col Column) bound {
	switch col.Type {
	case TypeInt:
		return typed[int64](p, col, nil)
	case TypeFloat:
		return typed[float64](p, col, nil)
	case TypeBool:
		return typed[bool](p, col, nil)
	case TypeDecimal:
		return typed[decimal.Decimal](p, col, nil)
	case TypeTime:
		return typed[time.Time](p, col, timeText)
	case TypeUUID:
		return typed[uuid.UUID](p, col, nil)
	case TypeBytes:
		return typed[[]byte](p, col, nil)
	default:
		return typed[string](p, col, nil)
	}
}

func typed[V any](p query.Parent, col Column, adapter func(V) any) bound {
	c := query.NewColumn[V](p, col.Name)
	if adapter != nil {
		c = c.WithAdapter(adapter)
	}
	if !col.Nullable {
		return bound{ref: c, proj: query.Record(func(v []any) (any, error) { return v[0], nil }, query.Field(c))}
	}
	return bound{ref: c, proj: query.Record(func(v []any) (any, error) {
		n := v[0].(sql.Null[V])
		if !n.Valid {
			return nil, nil
		}
		return n.V, nil
	}, query.Nullable(c))}
}

// timeText stores timestamps as UTC RFC 3339 text, which orders
// correctly under plain string comparison.
func timeText(t time.Time) any {
	return t.UTC().Format(time.RFC3339)
}

// String renders a column declaration the way it is written in CUE.
func (c Column) String() string {
	if c.Nullable {
		return fmt.Sprintf("%s: {type: %q, nullable: true}", c.Name, c.Type)
	}
	return fmt.Sprintf("%s: %q", c.Name, c.Type)
}
