package schema

import (
	"context"

	"github.com/pagegrid/storelens/internal/registry"
)

// Catalog is the registry surface introspection reads.
type Catalog interface {
	Get(name string) (registry.Entry, error)
	List() []registry.Entry
}

// Counter estimates collection row counts.
type Counter interface {
	EstimatedCount(ctx context.Context, collection string) (int64, error)
}
