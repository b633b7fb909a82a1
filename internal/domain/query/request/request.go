// Package request validates, clamps and sanitizes raw query requests.
package request

import (
	"fmt"
	"sort"
	"time"

	"github.com/pagegrid/storelens/internal/domain"
	"github.com/pagegrid/storelens/internal/domain/query/filter"
	"github.com/pagegrid/storelens/internal/domain/query/operation"
	"github.com/pagegrid/storelens/internal/domain/query/pipeline"
)

// Default query bounds.
const (
	DefaultMaxRows           = 1000
	DefaultLimit             = 100
	DefaultMaxTimeoutSeconds = 30
	DefaultTimeoutSeconds    = 10
)

// Limits carries the configured query bounds.
type Limits struct {
	MaxRows               int64
	DefaultLimit          int64
	MaxTimeoutSeconds     int64
	DefaultTimeoutSeconds int64
}

// DefaultLimits returns the stock bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxRows:               DefaultMaxRows,
		DefaultLimit:          DefaultLimit,
		MaxTimeoutSeconds:     DefaultMaxTimeoutSeconds,
		DefaultTimeoutSeconds: DefaultTimeoutSeconds,
	}
}

// normalize fills zero values so partially configured limits stay usable.
func (l Limits) normalize() Limits {
	if l.MaxRows <= 0 {
		l.MaxRows = DefaultMaxRows
	}
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = DefaultLimit
	}
	if l.DefaultLimit > l.MaxRows {
		l.DefaultLimit = l.MaxRows
	}
	if l.MaxTimeoutSeconds <= 0 {
		l.MaxTimeoutSeconds = DefaultMaxTimeoutSeconds
	}
	if l.DefaultTimeoutSeconds <= 0 {
		l.DefaultTimeoutSeconds = DefaultTimeoutSeconds
	}
	if l.DefaultTimeoutSeconds > l.MaxTimeoutSeconds {
		l.DefaultTimeoutSeconds = l.MaxTimeoutSeconds
	}
	return l
}

// SortKey is one ordered sort term.
type SortKey struct {
	Field string
	Order int // 1 ascending, -1 descending
}

// Input carries raw, caller-supplied query parameters. Limit and
// TimeoutSeconds are pointers so an omitted value (take the default) is
// distinguishable from an explicit zero (out of range).
type Input struct {
	Collection     string
	Operation      string
	Filter         map[string]any
	Projection     map[string]int
	Sort           map[string]int
	Limit          *int64
	Skip           *int64
	TimeoutSeconds *int64
	Keyword        string
	Pipeline       []map[string]any
	Field          string
}

// Request is a validated query: bounds clamped, filter and pipeline
// sanitized. Only sanitized expressions are reachable from a Request.
type Request struct {
	collection string
	op         operation.Operation
	expr       filter.Expr
	projection map[string]int
	sortKeys   []SortKey
	skip       int64
	limit      int64
	timeoutSec int64
	keyword    string
	stages     []pipeline.Stage
	field      string
}

// New validates and normalizes a raw query request against the bounds.
// Explicit out-of-range limit, timeout or skip values are rejected;
// values above the maximum clamp down silently; omitted values take the
// configured defaults.
func New(in Input, lim Limits) (Request, error) {
	lim = lim.normalize()

	op := operation.Operation(in.Operation)
	if op == "" {
		op = operation.Find
	}
	if !op.IsValid() {
		return Request{}, domain.NewUnsupportedOperation(in.Operation)
	}

	if in.Collection == "" {
		return Request{}, domain.NewMissingField(string(op), "collection")
	}

	limit := lim.DefaultLimit
	if in.Limit != nil {
		limit = *in.Limit
		if limit <= 0 {
			return Request{}, domain.NewRangeError("limit", 1, lim.MaxRows, limit)
		}
		if limit > lim.MaxRows {
			limit = lim.MaxRows
		}
	}

	timeoutSec := lim.DefaultTimeoutSeconds
	if in.TimeoutSeconds != nil {
		timeoutSec = *in.TimeoutSeconds
		if timeoutSec <= 0 {
			return Request{}, domain.NewRangeError("timeout_seconds", 1, lim.MaxTimeoutSeconds, timeoutSec)
		}
		if timeoutSec > lim.MaxTimeoutSeconds {
			timeoutSec = lim.MaxTimeoutSeconds
		}
	}

	var skip int64
	if in.Skip != nil {
		skip = *in.Skip
		if skip < 0 {
			return Request{}, domain.NewRangeError("skip", 0, 0, skip)
		}
	}

	expr, err := filter.Parse(in.Filter)
	if err != nil {
		return Request{}, err
	}

	projection, err := copyProjection(in.Projection)
	if err != nil {
		return Request{}, err
	}

	sortKeys, err := sortKeysFrom(in.Sort)
	if err != nil {
		return Request{}, err
	}

	var stages []pipeline.Stage
	if op == operation.Aggregate {
		if len(in.Pipeline) == 0 {
			return Request{}, domain.NewMissingField(string(op), "pipeline")
		}
		stages, err = pipeline.Sanitize(in.Pipeline)
		if err != nil {
			return Request{}, err
		}
		stages = pipeline.EnsureLimit(stages, limit)
	}

	if op == operation.Distinct && in.Field == "" {
		return Request{}, domain.NewMissingField(string(op), "field")
	}

	return Request{
		collection: in.Collection,
		op:         op,
		expr:       expr,
		projection: projection,
		sortKeys:   sortKeys,
		skip:       skip,
		limit:      limit,
		timeoutSec: timeoutSec,
		keyword:    in.Keyword,
		stages:     stages,
		field:      in.Field,
	}, nil
}

// copyProjection validates include/exclude markers and copies the map.
func copyProjection(raw map[string]int) (map[string]int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]int, len(raw))
	for field, v := range raw {
		if v != 0 && v != 1 {
			return nil, domain.NewMalformedQuery(
				fmt.Sprintf("projection value for %q must be 0 or 1", field))
		}
		out[field] = v
	}
	return out, nil
}

// sortKeysFrom orders the sort document deterministically. JSON objects do
// not preserve key order, so fields sort lexicographically.
func sortKeysFrom(raw map[string]int) ([]SortKey, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	fields := make([]string, 0, len(raw))
	for f := range raw {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	keys := make([]SortKey, 0, len(fields))
	for _, f := range fields {
		order := raw[f]
		if order != 1 && order != -1 {
			return nil, domain.NewMalformedQuery(
				fmt.Sprintf("sort value for %q must be 1 or -1", f))
		}
		keys = append(keys, SortKey{Field: f, Order: order})
	}
	return keys, nil
}

// Collection returns the target collection name.
func (r Request) Collection() string { return r.collection }

// Operation returns the query operation kind.
func (r Request) Operation() operation.Operation { return r.op }

// Filter returns the sanitized filter expression (nil matches everything).
func (r Request) Filter() filter.Expr { return r.expr }

// WithFilter returns a copy of the request carrying a replacement filter.
func (r Request) WithFilter(expr filter.Expr) Request {
	r.expr = expr
	return r
}

// Projection returns the include/exclude projection document.
func (r Request) Projection() map[string]int { return r.projection }

// IncludedProjection returns the projected include-list, sorted.
func (r Request) IncludedProjection() []string {
	var fields []string
	for f, v := range r.projection {
		if v == 1 {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)
	return fields
}

// SortKeys returns the deterministic sort order.
func (r Request) SortKeys() []SortKey { return r.sortKeys }

// Skip returns the number of records to skip.
func (r Request) Skip() int64 { return r.skip }

// Limit returns the clamped record limit.
func (r Request) Limit() int64 { return r.limit }

// TimeoutSeconds returns the clamped execution-time ceiling in seconds.
func (r Request) TimeoutSeconds() int64 { return r.timeoutSec }

// Timeout returns the execution-time ceiling as a duration.
func (r Request) Timeout() time.Duration {
	return time.Duration(r.timeoutSec) * time.Second
}

// Keyword returns the free-text search term, if any.
func (r Request) Keyword() string { return r.keyword }

// Stages returns the sanitized pipeline (aggregate only).
func (r Request) Stages() []pipeline.Stage { return r.stages }

// Field returns the target field (distinct only).
func (r Request) Field() string { return r.field }
