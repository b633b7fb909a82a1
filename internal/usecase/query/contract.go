package query

import (
	"context"

	"github.com/pagegrid/storelens/internal/db"
)

// Allowlist is the registry surface the executor consults before any store
// access.
type Allowlist interface {
	IsAllowed(name string) bool
	SearchableFields(name string) ([]string, error)
}

// Store runs sanitized queries against the document store.
type Store interface {
	Find(ctx context.Context, collection string, q db.FindQuery) ([]db.Document, error)
	FindOne(ctx context.Context, collection string, q db.FindQuery) (db.Document, error)
	Aggregate(ctx context.Context, collection string, q db.AggregateQuery) ([]db.Document, error)
	Count(ctx context.Context, collection string, q db.CountQuery) (int64, error)
	Distinct(ctx context.Context, collection string, q db.DistinctQuery) ([]any, error)
}
