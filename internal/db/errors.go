package db

import "errors"

// Sentinel errors classifying store failures.
var (
	ErrUnavailable = errors.New("db: store unavailable")
	ErrTimeout     = errors.New("db: operation timed out")
)

// Op constants map to store command names for error context.
const (
	OpFind           = "find"
	OpFindOne        = "findOne"
	OpAggregate      = "aggregate"
	OpCount          = "countDocuments"
	OpDistinct       = "distinct"
	OpEstimatedCount = "estimatedDocumentCount"
	OpPing           = "ping"
	OpDisconnect     = "disconnect"
)

// Error wraps an underlying store error with the operation name. Kind
// carries the classification sentinel when the failure is recognizably a
// connectivity or timeout problem; the wrapped error keeps its original
// message either way.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Is matches the classification sentinel, so errors.Is(err, ErrTimeout)
// works without flattening the original error message.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && errors.Is(e.Kind, target)
}
