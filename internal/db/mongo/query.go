package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pagegrid/storelens/internal/db"
)

// Find returns matching documents.
func (s *Store) Find(ctx context.Context, collection string, q db.FindQuery) ([]db.Document, error) {
	opts := options.Find()
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if len(q.Sort) > 0 {
		opts.SetSort(sortDoc(q.Sort))
	}
	if len(q.Projection) > 0 {
		opts.SetProjection(projectionDoc(q.Projection))
	}
	if q.MaxTime > 0 {
		opts.SetMaxTime(q.MaxTime)
	}

	cur, err := s.collection(collection).Find(ctx, filterDoc(q.Filter), opts)
	if err != nil {
		return nil, wrapError(db.OpFind, err)
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, wrapError(db.OpFind, err)
	}
	return normalizeAll(raw), nil
}

// FindOne returns the first matching document, nil when nothing matches.
func (s *Store) FindOne(ctx context.Context, collection string, q db.FindQuery) (db.Document, error) {
	opts := options.FindOne()
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if len(q.Sort) > 0 {
		opts.SetSort(sortDoc(q.Sort))
	}
	if len(q.Projection) > 0 {
		opts.SetProjection(projectionDoc(q.Projection))
	}
	if q.MaxTime > 0 {
		opts.SetMaxTime(q.MaxTime)
	}

	var raw bson.M
	err := s.collection(collection).FindOne(ctx, filterDoc(q.Filter), opts).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(db.OpFindOne, err)
	}
	return normalizeDocument(raw), nil
}

// Aggregate runs a sanitized pipeline.
func (s *Store) Aggregate(ctx context.Context, collection string, q db.AggregateQuery) ([]db.Document, error) {
	opts := options.Aggregate()
	if q.MaxTime > 0 {
		opts.SetMaxTime(q.MaxTime)
	}

	cur, err := s.collection(collection).Aggregate(ctx, pipelineDoc(q.Pipeline), opts)
	if err != nil {
		return nil, wrapError(db.OpAggregate, err)
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, wrapError(db.OpAggregate, err)
	}
	return normalizeAll(raw), nil
}

// Count counts documents matching the filter.
func (s *Store) Count(ctx context.Context, collection string, q db.CountQuery) (int64, error) {
	opts := options.Count()
	if q.MaxTime > 0 {
		opts.SetMaxTime(q.MaxTime)
	}

	n, err := s.collection(collection).CountDocuments(ctx, filterDoc(q.Filter), opts)
	if err != nil {
		return 0, wrapError(db.OpCount, err)
	}
	return n, nil
}

// Distinct collects the distinct values of one field.
func (s *Store) Distinct(ctx context.Context, collection string, q db.DistinctQuery) ([]any, error) {
	opts := options.Distinct()
	if q.MaxTime > 0 {
		opts.SetMaxTime(q.MaxTime)
	}

	values, err := s.collection(collection).Distinct(ctx, q.Field, filterDoc(q.Filter), opts)
	if err != nil {
		return nil, wrapError(db.OpDistinct, err)
	}
	normalized := make([]any, len(values))
	for i, v := range values {
		normalized[i] = normalizeValue(v)
	}
	return normalized, nil
}

// EstimatedCount returns the collection's estimated document count from
// metadata, without scanning.
func (s *Store) EstimatedCount(ctx context.Context, collection string) (int64, error) {
	n, err := s.collection(collection).EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, wrapError(db.OpEstimatedCount, err)
	}
	return n, nil
}
