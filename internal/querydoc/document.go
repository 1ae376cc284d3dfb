package querydoc

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is one query.
type Document struct {
	// From names the root table.
	From string `yaml:"from"`

	// Joins lists joins with an explicit kind or join criteria.
	Joins []JoinItem `yaml:"joins,omitempty"`

	// Where is conjoined in order.
	Where []Cond `yaml:"where,omitempty"`

	// Select lists the selected expressions. Empty selects every column
	// of the root table.
	Select   []SelectItem `yaml:"select,omitempty"`
	Distinct bool         `yaml:"distinct,omitempty"`

	Order  []OrderItem `yaml:"order,omitempty"`
	Offset int         `yaml:"offset,omitempty"`
	Limit  int         `yaml:"limit,omitempty"`

	// Page overrides Offset and Limit.
	Page *Page `yaml:"page,omitempty"`

	// Lock is "", "none", "read" or "write".
	Lock  string   `yaml:"lock,omitempty"`
	Hints []string `yaml:"hints,omitempty"`
}

// JoinItem registers the join at Path.
type JoinItem struct {
	Path string `yaml:"path"`
	// Kind is inner (default), left or right.
	Kind string `yaml:"kind,omitempty"`
	// Where is evaluated against the joined table.
	Where []Cond `yaml:"where,omitempty"`
}

// Cond is one condition. Exactly one of Op, And, Or and Not is set.
type Cond struct {
	Column string `yaml:"column,omitempty"`

	// Op is one of eq, ne, gt, ge, lt, le, between, like, ilike, null,
	// not_null, eq_or_null, in, not_in, empty, not_empty, exists,
	// not_exists. YAML reads a bare null as no value, so write 'null'.
	Op string `yaml:"op,omitempty"`

	Value  any    `yaml:"value,omitempty"`
	Values []any  `yaml:"values,omitempty"`
	Low    any    `yaml:"low,omitempty"`
	High   any    `yaml:"high,omitempty"`
	Other  string `yaml:"other,omitempty"` // compare against another column
	Match  string `yaml:"match,omitempty"` // exact, start, end, anywhere

	// Sub is a sub document for in, not_in, exists, not_exists and the
	// comparison operators.
	Sub *Document `yaml:"sub,omitempty"`
	// Quantifier is all or some; it turns a comparison against Sub into
	// a quantified comparison.
	Quantifier string `yaml:"quantifier,omitempty"`

	And []Cond `yaml:"and,omitempty"`
	Or  []Cond `yaml:"or,omitempty"`
	Not *Cond  `yaml:"not,omitempty"`
}

// SelectItem is one selected expression.
type SelectItem struct {
	Column string `yaml:"column,omitempty"`
	// Agg is count, count_distinct, sum, avg, min or max. count without
	// a column counts rows.
	Agg   string `yaml:"agg,omitempty"`
	Group bool   `yaml:"group,omitempty"`
	As    string `yaml:"as,omitempty"`
}

// Name returns the label of the item in result headers.
func (s SelectItem) Name() string {
	switch {
	case s.As != "":
		return s.As
	case s.Agg != "" && s.Column == "":
		return s.Agg
	case s.Agg != "":
		return fmt.Sprintf("%s(%s)", s.Agg, s.Column)
	default:
		return s.Column
	}
}

// OrderItem is one ordering term.
type OrderItem struct {
	Column string `yaml:"column"`
	Desc   bool   `yaml:"desc,omitempty"`
	Nulls  string `yaml:"nulls,omitempty"` // first or last
}

// Page selects page Number (zero-based) of Size rows.
type Page struct {
	Number int `yaml:"number"`
	Size   int `yaml:"size"`
}

// Load reads and parses a document file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query document: %w", err)
	}
	return Parse(data)
}

// Parse parses a document. Unknown fields are rejected.
func Parse(data []byte) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("invalid query document: %w", err)
	}
	return &doc, nil
}

// validate checks structure only; names are checked against the catalog
// by Build.
func (d *Document) validate() error {
	if d.From == "" {
		return fmt.Errorf("from is required")
	}
	if d.Offset < 0 {
		return fmt.Errorf("offset must be >= 0, got %d", d.Offset)
	}
	if d.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", d.Limit)
	}
	if d.Page != nil && (d.Page.Number < 0 || d.Page.Size < 1) {
		return fmt.Errorf("page: number must be >= 0 and size >= 1, got %d/%d", d.Page.Number, d.Page.Size)
	}
	switch d.Lock {
	case "", "none", "read", "write":
	default:
		return fmt.Errorf("lock: unknown mode %q", d.Lock)
	}
	for i, j := range d.Joins {
		if j.Path == "" {
			return fmt.Errorf("joins[%d]: path is required", i)
		}
		if _, err := joinKind(j.Kind); err != nil {
			return fmt.Errorf("joins[%d]: %w", i, err)
		}
		for k, c := range j.Where {
			if err := c.validate(); err != nil {
				return fmt.Errorf("joins[%d].where[%d]: %w", i, k, err)
			}
		}
	}
	for i, c := range d.Where {
		if err := c.validate(); err != nil {
			return fmt.Errorf("where[%d]: %w", i, err)
		}
	}
	for i, s := range d.Select {
		if s.Column == "" && s.Agg != "count" {
			return fmt.Errorf("select[%d]: column is required", i)
		}
	}
	for i, o := range d.Order {
		if o.Column == "" {
			return fmt.Errorf("order[%d]: column is required", i)
		}
		if o.Nulls != "" && o.Nulls != "first" && o.Nulls != "last" {
			return fmt.Errorf("order[%d]: nulls must be first or last", i)
		}
	}
	return nil
}

func (c *Cond) validate() error {
	set := 0
	for _, b := range []bool{c.Op != "", c.And != nil, c.Or != nil, c.Not != nil} {
		if b {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of op, and, or, not must be set")
	}
	for i := range c.And {
		if err := c.And[i].validate(); err != nil {
			return fmt.Errorf("and[%d]: %w", i, err)
		}
	}
	for i := range c.Or {
		if err := c.Or[i].validate(); err != nil {
			return fmt.Errorf("or[%d]: %w", i, err)
		}
	}
	if c.Not != nil {
		if err := c.Not.validate(); err != nil {
			return fmt.Errorf("not: %w", err)
		}
	}
	if c.Sub != nil {
		if err := c.Sub.validate(); err != nil {
			return fmt.Errorf("sub: %w", err)
		}
	}
	if c.Op == "" {
		return nil
	}
	if c.Column == "" && c.Op != "exists" && c.Op != "not_exists" {
		return fmt.Errorf("op %s: column is required", c.Op)
	}
	if c.Quantifier != "" && c.Quantifier != "all" && c.Quantifier != "some" {
		return fmt.Errorf("quantifier must be all or some, got %q", c.Quantifier)
	}
	return nil
}
