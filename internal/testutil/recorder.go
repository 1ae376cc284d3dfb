package testutil

import (
	"context"
	"sync"

	"github.com/roach88/yawn/internal/query"
	"github.com/roach88/yawn/internal/queryir"
)

// Recorder is a query.Compiler that resolves every model it is given,
// records the resolved statement, and answers with queued rows.
//
// Unlike the real backends, Recorder never renders SQL. Tests use it to
// observe what the query layer hands to a backend.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Recorder struct {
	mu         sync.Mutex
	statements []*queryir.Select
	responses  [][][]any
}

// NewRecorder creates a recorder with no queued responses. Executions
// without a queued response return no rows.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Respond queues the rows returned by the next execution.
func (r *Recorder) Respond(rows ...[]any) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, rows)
	return r
}

// Compile implements query.Compiler.
func (r *Recorder) Compile(m *query.Model, root query.Parent) (query.Executable, error) {
	sel, err := query.Resolve(m, root)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, sel)

	var rows [][]any
	if len(r.responses) > 0 {
		rows = r.responses[0]
		r.responses = r.responses[1:]
	}
	return NewFixedRows(rows...), nil
}

// Statements returns every resolved statement in compile order.
func (r *Recorder) Statements() []*queryir.Select {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*queryir.Select(nil), r.statements...)
}

// Last returns the most recently resolved statement, or nil.
func (r *Recorder) Last() *queryir.Select {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statements) == 0 {
		return nil
	}
	return r.statements[len(r.statements)-1]
}

// Reset forgets recorded statements and queued responses.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = nil
	r.responses = nil
}

// FixedRows is a query.Executable that returns the same rows every time.
//
// Thread-safety: FixedRows is immutable and safe for concurrent use.
type FixedRows struct {
	rows [][]any
}

// NewFixedRows creates an executable answering with rows.
func NewFixedRows(rows ...[]any) *FixedRows {
	return &FixedRows{rows: rows}
}

// List implements query.Executable.
func (f *FixedRows) List(context.Context) ([][]any, error) {
	return f.rows, nil
}

// UniqueResult implements query.Executable.
func (f *FixedRows) UniqueResult(context.Context) ([]any, bool, error) {
	switch len(f.rows) {
	case 0:
		return nil, false, nil
	case 1:
		return f.rows[0], true, nil
	default:
		return nil, false, query.ErrNonUniqueResult.New(len(f.rows))
	}
}
