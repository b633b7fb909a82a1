package storelens

import "time"

// FieldType names a declared field's storage type.
type FieldType string

// Declarable field types.
const (
	FieldString    FieldType = "string"
	FieldInt       FieldType = "int"
	FieldFloat     FieldType = "float"
	FieldBool      FieldType = "bool"
	FieldDateTime  FieldType = "datetime"
	FieldObjectID  FieldType = "object_id"
	FieldList      FieldType = "list"
	FieldMap       FieldType = "map"
	FieldBinary    FieldType = "binary"
	FieldDecimal   FieldType = "decimal"
	FieldReference FieldType = "reference"
)

// Field declares one collection field. Ref names the referenced
// collection and is required for FieldReference fields.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Ref      string
	Default  any
}

// Collection declares one allowlisted collection and its field model.
// A collection with no Fields is allowlisted for querying but cannot be
// introspected. Indexes list the indexed field tuples.
type Collection struct {
	Name             string
	DisplayName      string
	Description      string
	Fields           []Field
	SearchableFields []string
	Indexes          [][]string
}

// Limits bounds what a single query may request.
type Limits struct {
	MaxRows               int64
	DefaultLimit          int64
	MaxTimeoutSeconds     int64
	DefaultTimeoutSeconds int64
}

// QueryRequest is one read-only query. Zero Limit, Skip and
// TimeoutSeconds take the configured defaults; negative values are
// rejected as out of range.
type QueryRequest struct {
	Collection     string
	Operation      string // find (default), find_one, aggregate, count, distinct
	Filter         map[string]any
	Projection     map[string]int
	Sort           map[string]int
	Limit          int64
	Skip           int64
	TimeoutSeconds int64
	Keyword        string
	Pipeline       []map[string]any
	Field          string
}

// QueryResult carries the rows of a successful query.
type QueryResult struct {
	Rows    []map[string]any
	Columns []string
	Count   int
	Elapsed time.Duration
}

// CollectionSummary is one catalog listing entry.
type CollectionSummary struct {
	Name        string
	DisplayName string
	Description string
	FieldCount  int
	RowCount    *int64 // nil when the best-effort live count failed
}

// FieldInfo describes one field of an introspected collection.
type FieldInfo struct {
	Name       string
	Type       string // semantic type: string, number, datetime, identifier, ...
	PrimaryKey bool
	Nullable   bool
	ForeignKey string
	Default    any
}

// Relationship describes a foreign-key edge derived from a reference
// field.
type Relationship struct {
	Field            string
	TargetCollection string
	Kind             string
}

// IndexInfo describes one declared index.
type IndexInfo struct {
	Name   string
	Fields []string
}

// CollectionDetail is the full introspection result for one collection.
type CollectionDetail struct {
	Name             string
	DisplayName      string
	Description      string
	SearchableFields []string
	Fields           []FieldInfo
	Relationships    []Relationship
	Indexes          []IndexInfo
}

// HealthStatus represents the aggregated client health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component -> "ok"/"error"
}
