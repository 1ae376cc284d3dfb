package catalog

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// Type is the value type of a column.
type Type string

// Column types.
const (
	TypeInt     Type = "int"
	TypeFloat   Type = "float"
	TypeString  Type = "string"
	TypeBool    Type = "bool"
	TypeDecimal Type = "decimal"
	TypeTime    Type = "time"
	TypeUUID    Type = "uuid"
	TypeBytes   Type = "bytes"
)

// Column describes one column of a table.
type Column struct {
	Name     string
	Type     Type
	Nullable bool
}

// Join describes an association from one table to another.
type Join struct {
	Name       string
	Table      string
	Local      string
	Remote     string
	Collection bool
}

// Table describes one table. Columns and joins keep declaration order.
type Table struct {
	Name    string
	Columns []Column
	Joins   []Join
	Pos     token.Pos
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Join returns the named join.
func (t *Table) Join(name string) (Join, bool) {
	for _, j := range t.Joins {
		if j.Name == name {
			return j, true
		}
	}
	return Join{}, false
}

// Catalog is an immutable set of tables.
type Catalog struct {
	tables map[string]*Table
	order  []string
}

// Table returns the named table.
func (c *Catalog) Table(name string) (*Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// Tables returns every table in declaration order.
func (c *Catalog) Tables() []*Table {
	out := make([]*Table, len(c.order))
	for i, name := range c.order {
		out[i] = c.tables[name]
	}
	return out
}

// Error is a catalog loading or lookup failure, positioned in the CUE
// source when the position is known.
type Error struct {
	Table   string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	where := e.Table
	if e.Field != "" {
		where += "." + e.Field
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), where, e.Message)
	}
	return fmt.Sprintf("%s: %s", where, e.Message)
}
