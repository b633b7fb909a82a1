package schema

// Semantic field types reported by introspection.
const (
	SemanticString     = "string"
	SemanticNumber     = "number"
	SemanticBoolean    = "boolean"
	SemanticDateTime   = "datetime"
	SemanticIdentifier = "identifier"
	SemanticArray      = "array"
	SemanticObject     = "object"
	SemanticBinary     = "binary"
	SemanticDecimal    = "decimal"
	SemanticUnknown    = "unknown"
)

// KindManyToOne is the only relationship kind derivable from a single-field
// reference.
const KindManyToOne = "many-to-one"

// CollectionSummary is one allowlisted collection in a listing. RowCount is
// estimated on demand and nil when the store could not answer.
type CollectionSummary struct {
	Name        string
	DisplayName string
	Description string
	FieldCount  int
	RowCount    *int64
}

// FieldDescriptor describes one queryable field of a collection.
type FieldDescriptor struct {
	Name         string
	SemanticType string
	IsPrimaryKey bool
	IsNullable   bool
	ForeignKey   string
	Default      any
}

// RelationshipDescriptor links a reference field to its target collection.
type RelationshipDescriptor struct {
	Field            string
	TargetCollection string
	Kind             string
}

// IndexDescriptor names an index and its key fields in order. Names are
// synthetic since the store does not name indexes at the model level.
type IndexDescriptor struct {
	Name   string
	Fields []string
}

// CollectionDetail is the full structural description of one collection.
type CollectionDetail struct {
	Name             string
	DisplayName      string
	Description      string
	SearchableFields []string
	Fields           []FieldDescriptor
	Relationships    []RelationshipDescriptor
	Indexes          []IndexDescriptor
}
