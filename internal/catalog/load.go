package catalog

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// schema constrains catalog files. Columns are either a bare type name or
// a struct with a nullable flag.
const schema = `
#Type: "int" | "float" | "string" | "bool" | "decimal" | "time" | "uuid" | "bytes"

#Table: {
	columns: [string]: #Type | {
		type:     #Type
		nullable: *false | bool
	}
	joins?: [string]: {
		table:      string
		local:      string
		remote:     string
		collection: *false | bool
	}
}

table: [string]: #Table
`

// Load reads every CUE file of the package in dir.
func Load(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances in %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	ctx := cuecontext.New()
	return fromValue(ctx, ctx.BuildInstance(inst))
}

// Parse reads a catalog from a single CUE source.
func Parse(filename string, src []byte) (*Catalog, error) {
	ctx := cuecontext.New()
	return fromValue(ctx, ctx.CompileBytes(src, cue.Filename(filename)))
}

func fromValue(ctx *cue.Context, v cue.Value) (*Catalog, error) {
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", err)
	}
	v = ctx.CompileString(schema).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	cat := &Catalog{tables: map[string]*Table{}}
	iter, err := v.LookupPath(cue.ParsePath("table")).Fields()
	if err != nil {
		return nil, fmt.Errorf("iterating tables: %w", err)
	}
	for iter.Next() {
		t, err := parseTable(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		cat.tables[t.Name] = t
		cat.order = append(cat.order, t.Name)
	}
	if len(cat.order) == 0 {
		return nil, &Error{Table: "table", Message: "no tables declared", Pos: v.Pos()}
	}

	if err := cat.check(); err != nil {
		return nil, err
	}
	return cat, nil
}

func parseTable(name string, v cue.Value) (*Table, error) {
	t := &Table{Name: name, Pos: v.Pos()}

	cols, err := v.LookupPath(cue.ParsePath("columns")).Fields()
	if err != nil {
		return nil, fmt.Errorf("table %s: columns: %w", name, err)
	}
	for cols.Next() {
		col, err := parseColumn(cols.Label(), cols.Value())
		if err != nil {
			return nil, &Error{Table: name, Field: cols.Label(), Message: err.Error(), Pos: cols.Value().Pos()}
		}
		t.Columns = append(t.Columns, col)
	}
	if len(t.Columns) == 0 {
		return nil, &Error{Table: name, Field: "columns", Message: "at least one column is required", Pos: v.Pos()}
	}

	joinsVal := v.LookupPath(cue.ParsePath("joins"))
	if !joinsVal.Exists() {
		return t, nil
	}
	joins, err := joinsVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("table %s: joins: %w", name, err)
	}
	for joins.Next() {
		var j struct {
			Table      string `json:"table"`
			Local      string `json:"local"`
			Remote     string `json:"remote"`
			Collection bool   `json:"collection"`
		}
		if err := joins.Value().Decode(&j); err != nil {
			return nil, &Error{Table: name, Field: joins.Label(), Message: err.Error(), Pos: joins.Value().Pos()}
		}
		t.Joins = append(t.Joins, Join{
			Name:       joins.Label(),
			Table:      j.Table,
			Local:      j.Local,
			Remote:     j.Remote,
			Collection: j.Collection,
		})
	}
	return t, nil
}

// parseColumn accepts either "type" or {type: "type", nullable: bool}.
func parseColumn(name string, v cue.Value) (Column, error) {
	if s, err := v.String(); err == nil {
		return Column{Name: name, Type: Type(s)}, nil
	}
	var c struct {
		Type     string `json:"type"`
		Nullable bool   `json:"nullable"`
	}
	if err := v.Decode(&c); err != nil {
		return Column{}, err
	}
	return Column{Name: name, Type: Type(c.Type), Nullable: c.Nullable}, nil
}

// check verifies that every join names a known table and existing
// columns on both sides.
func (c *Catalog) check() error {
	for _, t := range c.Tables() {
		for _, j := range t.Joins {
			target, ok := c.tables[j.Table]
			if !ok {
				return &Error{Table: t.Name, Field: j.Name, Message: fmt.Sprintf("unknown table %q", j.Table), Pos: t.Pos}
			}
			if _, ok := t.Column(j.Local); !ok {
				return &Error{Table: t.Name, Field: j.Name, Message: fmt.Sprintf("unknown local column %q", j.Local), Pos: t.Pos}
			}
			if _, ok := target.Column(j.Remote); !ok {
				return &Error{Table: t.Name, Field: j.Name, Message: fmt.Sprintf("unknown remote column %s.%s", j.Table, j.Remote), Pos: t.Pos}
			}
			if _, clash := t.Column(j.Name); clash {
				return &Error{Table: t.Name, Field: j.Name, Message: "join name shadows a column", Pos: t.Pos}
			}
		}
	}
	return nil
}
