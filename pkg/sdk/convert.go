package storelens

import (
	"fmt"

	"github.com/pagegrid/storelens/internal/domain/model"
	"github.com/pagegrid/storelens/internal/domain/model/field"
	"github.com/pagegrid/storelens/internal/domain/query/request"
	"github.com/pagegrid/storelens/internal/domain/query/result"
	"github.com/pagegrid/storelens/internal/registry"
	schemauc "github.com/pagegrid/storelens/internal/usecase/schema"
)

func toEntries(cols []Collection) ([]registry.Entry, error) {
	entries := make([]registry.Entry, 0, len(cols))
	for _, col := range cols {
		entry := registry.NewEntry(col.Name, col.DisplayName, col.Description)

		if len(col.Fields) > 0 {
			fields := make([]field.Field, 0, len(col.Fields))
			for _, f := range col.Fields {
				fld, err := toInternalField(f)
				if err != nil {
					return nil, fmt.Errorf("collection %q: %w", col.Name, err)
				}
				fields = append(fields, fld)
			}

			indexes := make([]model.Index, 0, len(col.Indexes))
			for _, idx := range col.Indexes {
				indexes = append(indexes, model.NewIndex(idx...))
			}

			m, err := model.New(col.Name, fields, indexes...)
			if err != nil {
				return nil, fmt.Errorf("collection %q: %w", col.Name, err)
			}
			entry = entry.WithModel(m)
		}

		if len(col.SearchableFields) > 0 {
			entry = entry.WithSearchableFields(col.SearchableFields...)
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

func toInternalField(f Field) (field.Field, error) {
	var fld field.Field
	switch f.Type {
	case FieldString:
		fld = field.String(f.Name)
	case FieldInt:
		fld = field.Int(f.Name)
	case FieldFloat:
		fld = field.Float(f.Name)
	case FieldBool:
		fld = field.Bool(f.Name)
	case FieldDateTime:
		fld = field.DateTime(f.Name)
	case FieldObjectID:
		fld = field.ObjectID(f.Name)
	case FieldList:
		fld = field.List(f.Name)
	case FieldMap:
		fld = field.Map(f.Name)
	case FieldBinary:
		fld = field.Binary(f.Name)
	case FieldDecimal:
		fld = field.Decimal(f.Name)
	case FieldReference:
		fld = field.Reference(f.Name, f.Ref)
	default:
		return field.Field{}, fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
	}

	if f.Required {
		fld = fld.Required()
	}
	if f.Default != nil {
		fld = fld.WithDefault(f.Default)
	}
	return fld, nil
}

func toInput(req QueryRequest) request.Input {
	return request.Input{
		Collection:     req.Collection,
		Operation:      req.Operation,
		Filter:         req.Filter,
		Projection:     req.Projection,
		Sort:           req.Sort,
		Limit:          optInt64(req.Limit),
		Skip:           optInt64(req.Skip),
		TimeoutSeconds: optInt64(req.TimeoutSeconds),
		Keyword:        req.Keyword,
		Pipeline:       req.Pipeline,
		Field:          req.Field,
	}
}

// optInt64 maps the zero value to "not set" so defaults apply; negative
// values pass through and fail range validation.
func optInt64(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

func fromResult(res result.Result) QueryResult {
	return QueryResult{
		Rows:    res.Rows(),
		Columns: res.Columns(),
		Count:   res.Count(),
		Elapsed: res.Elapsed(),
	}
}

func fromSummary(s schemauc.CollectionSummary) CollectionSummary {
	return CollectionSummary{
		Name:        s.Name,
		DisplayName: s.DisplayName,
		Description: s.Description,
		FieldCount:  s.FieldCount,
		RowCount:    s.RowCount,
	}
}

func fromDetail(d schemauc.CollectionDetail) CollectionDetail {
	fields := make([]FieldInfo, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = FieldInfo{
			Name:       f.Name,
			Type:       f.SemanticType,
			PrimaryKey: f.IsPrimaryKey,
			Nullable:   f.IsNullable,
			ForeignKey: f.ForeignKey,
			Default:    f.Default,
		}
	}

	rels := make([]Relationship, len(d.Relationships))
	for i, r := range d.Relationships {
		rels[i] = Relationship{
			Field:            r.Field,
			TargetCollection: r.TargetCollection,
			Kind:             r.Kind,
		}
	}

	indexes := make([]IndexInfo, len(d.Indexes))
	for i, idx := range d.Indexes {
		indexes[i] = IndexInfo{
			Name:   idx.Name,
			Fields: idx.Fields,
		}
	}

	return CollectionDetail{
		Name:             d.Name,
		DisplayName:      d.DisplayName,
		Description:      d.Description,
		SearchableFields: d.SearchableFields,
		Fields:           fields,
		Relationships:    rels,
		Indexes:          indexes,
	}
}
