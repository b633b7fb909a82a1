// Package schema derives structural descriptions of allowlisted
// collections from their declared models, without touching stored data.
package schema

import (
	"context"
	"fmt"

	"github.com/pagegrid/storelens/internal/domain"
	"github.com/pagegrid/storelens/internal/domain/model"
	"github.com/pagegrid/storelens/internal/domain/model/field"
)

// Service handles collection listing and introspection.
type Service struct {
	catalog Catalog
	counter Counter
}

// New creates a schema service.
func New(catalog Catalog, counter Counter) *Service {
	return &Service{catalog: catalog, counter: counter}
}

// List returns a summary of every allowlisted collection in registration
// order. Row counts are computed per call, never cached, and omitted when
// the store cannot answer.
func (s *Service) List(ctx context.Context) []CollectionSummary {
	entries := s.catalog.List()
	out := make([]CollectionSummary, 0, len(entries))
	for _, e := range entries {
		summary := CollectionSummary{
			Name:        e.Name(),
			DisplayName: e.DisplayName(),
			Description: e.Description(),
		}
		if m, ok := e.Model(); ok {
			// The revision field stays internal.
			summary.FieldCount = len(m.Fields()) - 1
		}
		if n, err := s.counter.EstimatedCount(ctx, e.Name()); err == nil {
			count := n
			summary.RowCount = &count
		}
		out = append(out, summary)
	}
	return out
}

// Detail returns the full structural description of one collection. It
// fails with a not-found error when the collection is unknown or has no
// registered model, before any store access.
func (s *Service) Detail(_ context.Context, name string) (CollectionDetail, error) {
	e, err := s.catalog.Get(name)
	if err != nil {
		return CollectionDetail{}, fmt.Errorf("describe collection: %w", err)
	}
	m, ok := e.Model()
	if !ok {
		return CollectionDetail{}, fmt.Errorf("describe collection: %w", domain.NewModelNotFound(name))
	}

	return CollectionDetail{
		Name:             e.Name(),
		DisplayName:      e.DisplayName(),
		Description:      e.Description(),
		SearchableFields: e.SearchableFields(),
		Fields:           describeFields(m),
		Relationships:    describeRelationships(m),
		Indexes:          describeIndexes(m),
	}, nil
}

// describeFields walks the model declaration in order, skipping the
// internal revision field.
func describeFields(m model.Model) []FieldDescriptor {
	fields := m.Fields()
	out := make([]FieldDescriptor, 0, len(fields))
	for _, f := range fields {
		if f.Name() == model.RevisionField {
			continue
		}
		d := FieldDescriptor{
			Name:         f.Name(),
			SemanticType: semanticType(f.FieldType()),
			IsPrimaryKey: f.Name() == model.IdentityField,
			IsNullable:   !f.IsRequired(),
			Default:      f.Default(),
		}
		if f.FieldType() == field.TypeReference {
			d.ForeignKey = f.Ref() + "." + model.IdentityField
		}
		out = append(out, d)
	}
	return out
}

func describeRelationships(m model.Model) []RelationshipDescriptor {
	var out []RelationshipDescriptor
	for _, f := range m.Fields() {
		if f.FieldType() != field.TypeReference {
			continue
		}
		out = append(out, RelationshipDescriptor{
			Field:            f.Name(),
			TargetCollection: f.Ref(),
			Kind:             KindManyToOne,
		})
	}
	return out
}

func describeIndexes(m model.Model) []IndexDescriptor {
	indexes := m.Indexes()
	out := make([]IndexDescriptor, 0, len(indexes))
	for i, idx := range indexes {
		out = append(out, IndexDescriptor{
			Name:   fmt.Sprintf("index_%d", i),
			Fields: idx.Fields(),
		})
	}
	return out
}

// semanticType maps native model types onto the reported vocabulary.
func semanticType(t field.Type) string {
	switch t {
	case field.TypeString:
		return SemanticString
	case field.TypeInt, field.TypeFloat:
		return SemanticNumber
	case field.TypeBool:
		return SemanticBoolean
	case field.TypeDateTime:
		return SemanticDateTime
	case field.TypeObjectID, field.TypeReference:
		return SemanticIdentifier
	case field.TypeList:
		return SemanticArray
	case field.TypeMap:
		return SemanticObject
	case field.TypeBinary:
		return SemanticBinary
	case field.TypeDecimal:
		return SemanticDecimal
	default:
		return SemanticUnknown
	}
}
