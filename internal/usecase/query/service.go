// Package query validates, sanitizes and executes queries against the
// document store. Every gate runs in-process before the store is touched,
// so disallowed requests cost the store nothing.
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pagegrid/storelens/internal/db"
	"github.com/pagegrid/storelens/internal/domain"
	"github.com/pagegrid/storelens/internal/domain/model"
	"github.com/pagegrid/storelens/internal/domain/query/filter"
	"github.com/pagegrid/storelens/internal/domain/query/operation"
	"github.com/pagegrid/storelens/internal/domain/query/request"
	"github.com/pagegrid/storelens/internal/domain/query/result"
)

// Service executes queries for allowlisted collections.
type Service struct {
	allow  Allowlist
	store  Store
	limits request.Limits
}

// New creates a query service.
func New(allow Allowlist, store Store, limits request.Limits) *Service {
	return &Service{allow: allow, store: store, limits: limits}
}

// Execute runs one query request: allowlist check, bounds clamping,
// sanitization, keyword compilation, then dispatch. Execution time covers
// the store round-trip only.
func (s *Service) Execute(ctx context.Context, in request.Input) (result.Result, error) {
	if in.Collection != "" && !s.allow.IsAllowed(in.Collection) {
		return result.Result{}, domain.NewCollectionNotAllowed(in.Collection)
	}

	req, err := request.New(in, s.limits)
	if err != nil {
		return result.Result{}, err
	}

	if req.Keyword() != "" {
		req, err = s.compileKeyword(req)
		if err != nil {
			return result.Result{}, err
		}
	}

	started := time.Now()
	var (
		rows    []map[string]any
		columns []string
	)
	switch req.Operation() {
	case operation.Find:
		rows, columns, err = s.find(ctx, req)
	case operation.FindOne:
		rows, columns, err = s.findOne(ctx, req)
	case operation.Aggregate:
		rows, columns, err = s.aggregate(ctx, req)
	case operation.Count:
		rows, columns, err = s.count(ctx, req)
	case operation.Distinct:
		rows, columns, err = s.distinct(ctx, req)
	default:
		return result.Result{}, domain.NewUnsupportedOperation(string(req.Operation()))
	}
	if err != nil {
		return result.Result{}, err
	}

	return result.New(rows, columns, time.Since(started)), nil
}

// compileKeyword builds the pattern-match conditions for the collection's
// searchable fields and ANDs them with the explicit filter. The merged
// tree goes back through sanitization like any caller-supplied filter.
func (s *Service) compileKeyword(req request.Request) (request.Request, error) {
	fields, err := s.allow.SearchableFields(req.Collection())
	if err != nil {
		return request.Request{}, fmt.Errorf("compile keyword: %w", err)
	}

	merged := filter.Merge(req.Filter(), filter.Keyword(req.Keyword(), fields))
	clean, err := filter.Parse(filter.Encode(merged))
	if err != nil {
		return request.Request{}, fmt.Errorf("compile keyword: %w", err)
	}
	return req.WithFilter(clean), nil
}

func (s *Service) find(ctx context.Context, req request.Request) ([]map[string]any, []string, error) {
	docs, err := s.store.Find(ctx, req.Collection(), db.FindQuery{
		Filter:     req.Filter(),
		Projection: req.Projection(),
		Sort:       storeSortKeys(req.SortKeys()),
		Skip:       req.Skip(),
		Limit:      req.Limit(),
		MaxTime:    req.Timeout(),
	})
	if err != nil {
		return nil, nil, storeFailure(err)
	}
	return docs, columnsFor(req, docs), nil
}

func (s *Service) findOne(ctx context.Context, req request.Request) ([]map[string]any, []string, error) {
	doc, err := s.store.FindOne(ctx, req.Collection(), db.FindQuery{
		Filter:     req.Filter(),
		Projection: req.Projection(),
		Sort:       storeSortKeys(req.SortKeys()),
		Skip:       req.Skip(),
		MaxTime:    req.Timeout(),
	})
	if err != nil {
		return nil, nil, storeFailure(err)
	}
	if doc == nil {
		return []map[string]any{}, nil, nil
	}
	return []map[string]any{doc}, columnsFor(req, []db.Document{doc}), nil
}

func (s *Service) aggregate(ctx context.Context, req request.Request) ([]map[string]any, []string, error) {
	docs, err := s.store.Aggregate(ctx, req.Collection(), db.AggregateQuery{
		Pipeline: req.Stages(),
		MaxTime:  req.Timeout(),
	})
	if err != nil {
		return nil, nil, storeFailure(err)
	}
	var columns []string
	if len(docs) > 0 {
		columns = fieldNames(docs[0])
	}
	return docs, columns, nil
}

func (s *Service) count(ctx context.Context, req request.Request) ([]map[string]any, []string, error) {
	n, err := s.store.Count(ctx, req.Collection(), db.CountQuery{
		Filter:  req.Filter(),
		MaxTime: req.Timeout(),
	})
	if err != nil {
		return nil, nil, storeFailure(err)
	}
	return []map[string]any{{"count": n}}, []string{"count"}, nil
}

func (s *Service) distinct(ctx context.Context, req request.Request) ([]map[string]any, []string, error) {
	values, err := s.store.Distinct(ctx, req.Collection(), db.DistinctQuery{
		Field:   req.Field(),
		Filter:  req.Filter(),
		MaxTime: req.Timeout(),
	})
	if err != nil {
		return nil, nil, storeFailure(err)
	}
	if int64(len(values)) > req.Limit() {
		values = values[:req.Limit()]
	}
	rows := make([]map[string]any, len(values))
	for i, v := range values {
		rows[i] = map[string]any{req.Field(): v}
	}
	return rows, []string{req.Field()}, nil
}

func storeSortKeys(keys []request.SortKey) []db.SortKey {
	if len(keys) == 0 {
		return nil
	}
	out := make([]db.SortKey, len(keys))
	for i, k := range keys {
		out[i] = db.SortKey{Field: k.Field, Order: k.Order}
	}
	return out
}

// columnsFor resolves result columns: the projection's include-list when
// present, else the first row's field names.
func columnsFor(req request.Request, rows []db.Document) []string {
	if included := req.IncludedProjection(); len(included) > 0 {
		return included
	}
	if len(rows) == 0 {
		return nil
	}
	return fieldNames(rows[0])
}

// fieldNames lists a row's fields with the identity field first and the
// rest sorted, since decoded documents do not preserve store order.
func fieldNames(row map[string]any) []string {
	names := make([]string, 0, len(row))
	hasID := false
	for name := range row {
		if name == model.IdentityField {
			hasID = true
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if hasID {
		return append([]string{model.IdentityField}, names...)
	}
	return names
}

// storeFailure maps driver failures onto the store error taxonomy. The
// driver's message is carried verbatim, prefixed with the store command.
func storeFailure(err error) error {
	switch {
	case errors.Is(err, db.ErrUnavailable):
		return domain.NewStoreUnavailable(err.Error())
	case errors.Is(err, db.ErrTimeout):
		return domain.NewStoreTimeout(err.Error())
	default:
		return domain.NewStoreError(err.Error())
	}
}
