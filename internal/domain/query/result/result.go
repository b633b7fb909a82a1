package result

import "time"

// Result is the uniform query result envelope.
type Result struct {
	rows    []map[string]any
	columns []string
	elapsed time.Duration
}

// New creates a query result.
func New(rows []map[string]any, columns []string, elapsed time.Duration) Result {
	return Result{rows: rows, columns: columns, elapsed: elapsed}
}

// Rows returns the matching records in store order.
func (r Result) Rows() []map[string]any { return r.rows }

// Columns returns the resolved field names (best-effort).
func (r Result) Columns() []string { return r.columns }

// Count returns the number of rows returned.
func (r Result) Count() int { return len(r.rows) }

// Elapsed returns the wall-clock execution time.
func (r Result) Elapsed() time.Duration { return r.elapsed }
