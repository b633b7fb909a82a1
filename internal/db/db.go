package db

import (
	"context"
	"time"

	"github.com/pagegrid/storelens/internal/domain/query/filter"
	"github.com/pagegrid/storelens/internal/domain/query/pipeline"
)

// Document is one store document decoded into plain Go values.
type Document = map[string]any

// Store is the document store facade.
type Store interface {
	Querier
	Pinger
	Close(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Querier runs read-only queries against store collections. Filters and
// pipelines arrive as sanitized trees, never as raw request documents.
type Querier interface {
	Find(ctx context.Context, collection string, q FindQuery) ([]Document, error)
	FindOne(ctx context.Context, collection string, q FindQuery) (Document, error)
	Aggregate(ctx context.Context, collection string, q AggregateQuery) ([]Document, error)
	Count(ctx context.Context, collection string, q CountQuery) (int64, error)
	Distinct(ctx context.Context, collection string, q DistinctQuery) ([]any, error)
	EstimatedCount(ctx context.Context, collection string) (int64, error)
}

// SortKey is one sort criterion. Order is 1 for ascending, -1 for descending.
type SortKey struct {
	Field string
	Order int
}

// FindQuery carries the parameters for Find and FindOne. FindOne ignores
// Limit.
type FindQuery struct {
	Filter     filter.Expr
	Projection map[string]int
	Sort       []SortKey
	Skip       int64
	Limit      int64
	MaxTime    time.Duration
}

// AggregateQuery carries a sanitized pipeline.
type AggregateQuery struct {
	Pipeline []pipeline.Stage
	MaxTime  time.Duration
}

// CountQuery counts documents matching a filter.
type CountQuery struct {
	Filter  filter.Expr
	MaxTime time.Duration
}

// DistinctQuery collects the distinct values of one field.
type DistinctQuery struct {
	Field   string
	Filter  filter.Expr
	MaxTime time.Duration
}
