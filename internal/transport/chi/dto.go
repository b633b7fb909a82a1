package chi

import (
	"github.com/pagegrid/storelens/internal/domain/query/result"
	schemauc "github.com/pagegrid/storelens/internal/usecase/schema"
)

// queryRequest is the POST /api/v1/query body. Limit, Skip and
// TimeoutSeconds are pointers so "omitted" and "zero" stay distinct.
type queryRequest struct {
	Collection     string           `json:"collection"`
	Operation      string           `json:"operation,omitempty"`
	Filter         map[string]any   `json:"filter,omitempty"`
	Projection     map[string]int   `json:"projection,omitempty"`
	Sort           map[string]int   `json:"sort,omitempty"`
	Limit          *int64           `json:"limit,omitempty"`
	Skip           *int64           `json:"skip,omitempty"`
	TimeoutSeconds *int64           `json:"timeout_seconds,omitempty"`
	Keyword        string           `json:"keyword,omitempty"`
	Pipeline       []map[string]any `json:"pipeline,omitempty"`
	Field          string           `json:"field,omitempty"`
}

type queryResponse struct {
	Success         bool             `json:"success"`
	Rows            []map[string]any `json:"rows"`
	Columns         []string         `json:"columns"`
	Count           int              `json:"count"`
	ExecutionTimeMS float64          `json:"execution_time_ms"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type collectionListResponse struct {
	Items []collectionItem `json:"items"`
}

type collectionItem struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	FieldCount  int    `json:"field_count"`
	RowCount    *int64 `json:"row_count,omitempty"`
}

type collectionDetailResponse struct {
	Name             string             `json:"name"`
	DisplayName      string             `json:"display_name"`
	Description      string             `json:"description,omitempty"`
	SearchableFields []string           `json:"searchable_fields"`
	Fields           []fieldDescriptor  `json:"fields"`
	Relationships    []relationshipItem `json:"relationships"`
	Indexes          []indexItem        `json:"indexes"`
}

type fieldDescriptor struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primary_key"`
	Nullable   bool   `json:"nullable"`
	ForeignKey string `json:"foreign_key,omitempty"`
	Default    any    `json:"default,omitempty"`
}

type relationshipItem struct {
	Field            string `json:"field"`
	TargetCollection string `json:"target_collection"`
	Kind             string `json:"kind"`
}

type indexItem struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func queryResultToResponse(res result.Result) queryResponse {
	rows := res.Rows()
	if rows == nil {
		rows = []map[string]any{}
	}
	columns := res.Columns()
	if columns == nil {
		columns = []string{}
	}
	return queryResponse{
		Success:         true,
		Rows:            rows,
		Columns:         columns,
		Count:           res.Count(),
		ExecutionTimeMS: float64(res.Elapsed().Microseconds()) / 1000.0,
	}
}

func summaryToItem(s schemauc.CollectionSummary) collectionItem {
	return collectionItem{
		Name:        s.Name,
		DisplayName: s.DisplayName,
		Description: s.Description,
		FieldCount:  s.FieldCount,
		RowCount:    s.RowCount,
	}
}

func detailToResponse(d schemauc.CollectionDetail) collectionDetailResponse {
	fields := make([]fieldDescriptor, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = fieldDescriptor{
			Name:       f.Name,
			Type:       f.SemanticType,
			PrimaryKey: f.IsPrimaryKey,
			Nullable:   f.IsNullable,
			ForeignKey: f.ForeignKey,
			Default:    f.Default,
		}
	}

	rels := make([]relationshipItem, len(d.Relationships))
	for i, rel := range d.Relationships {
		rels[i] = relationshipItem{
			Field:            rel.Field,
			TargetCollection: rel.TargetCollection,
			Kind:             rel.Kind,
		}
	}

	indexes := make([]indexItem, len(d.Indexes))
	for i, idx := range d.Indexes {
		indexes[i] = indexItem{
			Name:   idx.Name,
			Fields: idx.Fields,
		}
	}

	searchable := d.SearchableFields
	if searchable == nil {
		searchable = []string{}
	}

	return collectionDetailResponse{
		Name:             d.Name,
		DisplayName:      d.DisplayName,
		Description:      d.Description,
		SearchableFields: searchable,
		Fields:           fields,
		Relationships:    rels,
		Indexes:          indexes,
	}
}
