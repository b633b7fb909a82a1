package operation

// Operation is the query operation kind.
type Operation string

// Operation constants.
const (
	// Find returns all records matching the filter, up to the limit.
	Find    Operation = "find"
	FindOne Operation = "find_one"
	// Aggregate runs a sanitized aggregation pipeline.
	Aggregate Operation = "aggregate"
	Count     Operation = "count"
	Distinct  Operation = "distinct"
)

// IsValid checks if the operation is one of the supported kinds.
func (o Operation) IsValid() bool {
	return o == Find || o == FindOne || o == Aggregate || o == Count || o == Distinct
}
