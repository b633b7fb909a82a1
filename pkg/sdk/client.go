package storelens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pagegrid/storelens/internal/catalog"
	"github.com/pagegrid/storelens/internal/db"
	"github.com/pagegrid/storelens/internal/db/mongo"
	"github.com/pagegrid/storelens/internal/domain/query/operation"
	"github.com/pagegrid/storelens/internal/domain/query/request"
	"github.com/pagegrid/storelens/internal/domain/query/result"
	"github.com/pagegrid/storelens/internal/registry"
	healthuc "github.com/pagegrid/storelens/internal/usecase/health"
	queryuc "github.com/pagegrid/storelens/internal/usecase/query"
	schemauc "github.com/pagegrid/storelens/internal/usecase/schema"
)

const defaultReadinessTimeout = 10 * time.Second

// Narrow internal interfaces so tests can substitute the services.
type queryUseCase interface {
	Execute(ctx context.Context, in request.Input) (result.Result, error)
}

type schemaUseCase interface {
	List(ctx context.Context) []schemauc.CollectionSummary
	Detail(ctx context.Context, name string) (schemauc.CollectionDetail, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the storelens SDK entry point.
type Client struct {
	store  db.Store
	query  queryUseCase
	schema schemaUseCase
	health healthUseCase
	obs    *observer
}

// New creates a storelens Client and connects to the store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.uri == "" {
		return nil, errors.New("storelens: mongo URI required (use WithMongo)")
	}

	reg, err := buildRegistry(cfg.collections)
	if err != nil {
		return nil, fmt.Errorf("storelens: build catalog: %w", err)
	}

	store, err := mongo.NewStore(ctx, mongo.Config{
		URI:            cfg.uri,
		Database:       cfg.database,
		ConnectTimeout: cfg.connectTimeout,
		MaxPoolSize:    cfg.maxPoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("storelens: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("storelens: store not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	limits := request.Limits{
		MaxRows:               cfg.limits.MaxRows,
		DefaultLimit:          cfg.limits.DefaultLimit,
		MaxTimeoutSeconds:     cfg.limits.MaxTimeoutSeconds,
		DefaultTimeoutSeconds: cfg.limits.DefaultTimeoutSeconds,
	}

	return &Client{
		store:  store,
		query:  queryuc.New(reg, store, limits),
		schema: schemauc.New(reg, store),
		health: healthuc.New(store),
		obs:    obs,
	}, nil
}

func buildRegistry(cols []Collection) (*registry.Registry, error) {
	if len(cols) == 0 {
		return catalog.New()
	}
	entries, err := toEntries(cols)
	if err != nil {
		return nil, err
	}
	return registry.New(entries)
}

// Close releases the store connection.
func (c *Client) Close(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Close(ctx); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Collections lists the declared collections with best-effort row
// counts. A nil RowCount means the live count was unavailable.
func (c *Client) Collections(ctx context.Context) []CollectionSummary {
	start := time.Now()
	defer func() { c.obs.observe("collections.list", start, nil) }()

	summaries := c.schema.List(ctx)
	out := make([]CollectionSummary, len(summaries))
	for i, s := range summaries {
		out[i] = fromSummary(s)
	}
	return out
}

// Describe introspects one collection: fields with semantic types,
// relationships and indexes. Never touches the store.
func (c *Client) Describe(ctx context.Context, name string) (_ CollectionDetail, err error) {
	start := time.Now()
	defer func() { c.obs.observe("collections.describe", start, err) }()

	d, err := c.schema.Detail(ctx, name)
	if err != nil {
		return CollectionDetail{}, fmt.Errorf("describe: %w", err)
	}
	return fromDetail(d), nil
}

// Query runs one guarded read-only query.
func (c *Client) Query(ctx context.Context, req QueryRequest) (_ QueryResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("query."+opLabel(req.Operation), start, err) }()

	res, err := c.query.Execute(ctx, toInput(req))
	if err != nil {
		return QueryResult{}, fmt.Errorf("query: %w", err)
	}
	return fromResult(res), nil
}

// Find is shorthand for a find query with the default bounds.
func (c *Client) Find(ctx context.Context, collection string, filter map[string]any) (QueryResult, error) {
	return c.Query(ctx, QueryRequest{Collection: collection, Filter: filter})
}

// Count returns the number of documents matching the filter.
func (c *Client) Count(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	res, err := c.Query(ctx, QueryRequest{
		Collection: collection,
		Operation:  string(operation.Count),
		Filter:     filter,
	})
	if err != nil {
		return 0, err
	}
	if len(res.Rows) == 0 {
		return 0, nil
	}
	n, _ := res.Rows[0]["count"].(int64)
	return n, nil
}

// Distinct returns the distinct values of a field across matching
// documents, truncated to the configured row cap.
func (c *Client) Distinct(ctx context.Context, collection, field string, filter map[string]any) ([]any, error) {
	res, err := c.Query(ctx, QueryRequest{
		Collection: collection,
		Operation:  string(operation.Distinct),
		Field:      field,
		Filter:     filter,
	})
	if err != nil {
		return nil, err
	}
	values := make([]any, 0, len(res.Rows))
	for _, row := range res.Rows {
		values = append(values, row[field])
	}
	return values, nil
}

// Health checks the health of the store connection.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// opLabel keeps the metric label bounded for arbitrary operation names.
func opLabel(op string) string {
	o := operation.Operation(op)
	if op == "" {
		o = operation.Find
	}
	if !o.IsValid() {
		return "invalid"
	}
	return string(o)
}
