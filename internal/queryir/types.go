package queryir

import "strings"

// Predicate represents a filter condition.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Expr represents a value-producing expression: a column, a bound
// parameter, a literal, an aggregate or a scalar sub-select.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// LockMode selects row locking for a statement.
type LockMode int

const (
	LockNone  LockMode = iota // no locking
	LockRead                  // shared lock (FOR SHARE)
	LockWrite                 // exclusive lock (FOR UPDATE)
)

func (m LockMode) String() string {
	switch m {
	case LockRead:
		return "read"
	case LockWrite:
		return "write"
	default:
		return "none"
	}
}

// JoinKind selects the join flavour.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
)

func (k JoinKind) String() string {
	switch k {
	case JoinLeft:
		return "LEFT"
	case JoinRight:
		return "RIGHT"
	default:
		return "INNER"
	}
}

// NullOrder places NULLs within an ordering.
type NullOrder int

const (
	NullsDefault NullOrder = iota // backend default
	NullsFirst
	NullsLast
)

// Select is a fully alias-resolved query.
//
// Semantics:
//
//	SELECT [DISTINCT] <Columns> FROM <From> <Joins>
//	WHERE <Where> GROUP BY <GroupBy> ORDER BY <OrderBy>
//	LIMIT <Limit> OFFSET <Offset>
//
// Sub-selects embedded in predicates (InSelect, Exists, Quantified) and
// expressions (Subquery) see the aliases of every enclosing Select and may
// not redeclare them. Sibling sub-selects are separate scopes and may
// reuse an alias.
type Select struct {
	From     Table
	Joins    []Join
	Where    Predicate // nil = no filter
	Columns  []Expr    // never empty for a resolved statement
	Distinct bool
	GroupBy  []Expr
	OrderBy  []OrderTerm
	Offset   int // 0 = from the first row
	Limit    int // 0 = unbounded
	Lock     LockMode
	Hints    []string // opaque backend hints, in registration order
}

// Table names a source table and the alias it is known by.
// An empty Alias means the table is referenced by its name.
type Table struct {
	Name  string
	Alias string
}

// Ref returns the identifier columns of this table are qualified with.
func (t Table) Ref() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// Join attaches Table to the statement. On holds the association
// condition followed by any join-scoped criteria.
type Join struct {
	Kind  JoinKind
	Table Table
	On    Predicate
}

// OrderTerm is one ORDER BY entry.
type OrderTerm struct {
	Expr  Expr
	Desc  bool
	Nulls NullOrder
}

// Column references a column, qualified by a table alias.
// An empty Qualifier refers to the unaliased root table.
type Column struct {
	Qualifier string
	Name      string
}

func (Column) exprNode() {}

// String returns the dotted path of the column ("alias.name" or "name").
func (c Column) String() string {
	if c.Qualifier == "" {
		return c.Name
	}
	return c.Qualifier + "." + c.Name
}

// ParseColumn splits a dotted path produced by Column.String.
func ParseColumn(path string) Column {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return Column{Qualifier: path[:i], Name: path[i+1:]}
	}
	return Column{Name: path}
}

// Param is a bound parameter. Backends must never interpolate Value.
type Param struct {
	Value any
}

func (Param) exprNode() {}

// Literal is a constant selected as-is (constant projections).
type Literal struct {
	Value any
}

func (Literal) exprNode() {}

// AggFunc names an aggregate function.
type AggFunc string

const (
	AggCount AggFunc = "COUNT"
	AggSum   AggFunc = "SUM"
	AggAvg   AggFunc = "AVG"
	AggMin   AggFunc = "MIN"
	AggMax   AggFunc = "MAX"
)

// Aggregate applies Func to Arg. A nil Arg means "*" (row count).
type Aggregate struct {
	Func     AggFunc
	Arg      Expr
	Distinct bool
}

func (Aggregate) exprNode() {}

// Subquery is a scalar sub-select used as a value.
type Subquery struct {
	Query *Select
}

func (Subquery) exprNode() {}

// CompareOp is a binary comparison operator.
type CompareOp string

const (
	OpEq CompareOp = "="
	OpNe CompareOp = "<>"
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
)

// Negate returns the complementary operator.
func (op CompareOp) Negate() CompareOp {
	switch op {
	case OpEq:
		return OpNe
	case OpNe:
		return OpEq
	case OpGt:
		return OpLe
	case OpGe:
		return OpLt
	case OpLt:
		return OpGe
	case OpLe:
		return OpGt
	default:
		return op
	}
}

// Quantifier qualifies a comparison against a sub-select.
type Quantifier string

const (
	QuantAll  Quantifier = "ALL"
	QuantSome Quantifier = "ANY"
)

// Const is an unconditional predicate.
type Const struct {
	Value bool
}

func (Const) predicateNode() {}

// True and False are the unconditional predicates.
var (
	True  = Const{Value: true}
	False = Const{Value: false}
)

// Compare is <Left> <Op> <Right>.
type Compare struct {
	Left  Expr
	Op    CompareOp
	Right Expr
}

func (Compare) predicateNode() {}

// Between is <Expr> BETWEEN <Low> AND <High>.
type Between struct {
	Expr Expr
	Low  Expr
	High Expr
}

func (Between) predicateNode() {}

// Like is a pattern match. Pattern already contains its wildcards.
type Like struct {
	Expr            Expr
	Pattern         string
	CaseInsensitive bool
}

func (Like) predicateNode() {}

// IsNull is <Expr> IS [NOT] NULL.
type IsNull struct {
	Expr   Expr
	Negate bool
}

func (IsNull) predicateNode() {}

// In is <Expr> [NOT] IN (<Values>). Values is never empty.
type In struct {
	Expr   Expr
	Values []Expr
	Negate bool
}

func (In) predicateNode() {}

// InSelect is <Expr> [NOT] IN (<Query>). Query selects exactly one column.
type InSelect struct {
	Expr   Expr
	Query  *Select
	Negate bool
}

func (InSelect) predicateNode() {}

// Exists is [NOT] EXISTS (<Query>).
type Exists struct {
	Query  *Select
	Negate bool
}

func (Exists) predicateNode() {}

// Quantified is <Left> <Op> ALL|ANY (<Query>). Query selects exactly one
// column.
type Quantified struct {
	Left       Expr
	Op         CompareOp
	Quantifier Quantifier
	Query      *Select
}

func (Quantified) predicateNode() {}

// Not negates Predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// And is a conjunction. Empty means "always true".
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or is a disjunction. Empty means "always false".
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Conjoin combines preds with AND, dropping nils and flattening the
// trivial cases.
func Conjoin(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}
