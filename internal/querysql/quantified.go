package querysql

import (
	"fmt"

	"github.com/roach88/yawn/internal/queryir"
)

// quantified writes <left> <op> ALL|ANY (<sub>).
//
// SQLite has no quantified comparisons, so there the sub-select is
// rewritten into a correlated EXISTS over the same rows:
//
//	x op ANY (SELECT c FROM t WHERE w)  =>  EXISTS (SELECT 1 FROM t WHERE w AND x op c)
//	x op ALL (SELECT c FROM t WHERE w)  =>  NOT EXISTS (SELECT 1 FROM t WHERE w AND NOT (x op c))
//
// The rewrite differs from ALL/ANY only when c yields NULLs.
func (w *writer) quantified(q *queryir.Select, x queryir.Quantified) error {
	if w.dialect == Postgres {
		if err := w.expr(q, x.Left); err != nil {
			return err
		}
		w.write(" ", string(x.Op), " ", string(x.Quantifier), " (")
		if err := w.selectStmt(x.Query, false); err != nil {
			return err
		}
		w.write(")")
		return nil
	}

	rewritten, err := rewriteQuantified(x)
	if err != nil {
		return err
	}
	return w.predicate(q, rewritten, false)
}

func rewriteQuantified(x queryir.Quantified) (queryir.Predicate, error) {
	sub := x.Query
	if sub == nil || len(sub.Columns) != 1 {
		return nil, fmt.Errorf("quantified comparison needs a single-column sub-select")
	}
	if len(sub.GroupBy) > 0 || sub.Limit > 0 || sub.Offset > 0 {
		return nil, fmt.Errorf("cannot rewrite %s over a grouped or bounded sub-select for sqlite", x.Quantifier)
	}
	if _, ok := sub.Columns[0].(queryir.Aggregate); ok {
		return nil, fmt.Errorf("cannot rewrite %s over an aggregate sub-select for sqlite", x.Quantifier)
	}

	var cond queryir.Predicate = queryir.Compare{Left: x.Left, Op: x.Op, Right: sub.Columns[0]}
	negate := false
	if x.Quantifier == queryir.QuantAll {
		cond = queryir.Not{Predicate: cond}
		negate = true
	}

	witness := *sub
	witness.Columns = []queryir.Expr{queryir.Literal{Value: 1}}
	witness.Distinct = false
	witness.OrderBy = nil
	witness.Where = queryir.Conjoin(sub.Where, cond)
	return queryir.Exists{Query: &witness, Negate: negate}, nil
}
