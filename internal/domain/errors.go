package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCollectionNotAllowed signals a query against a collection outside the allowlist.
	ErrCollectionNotAllowed = errors.New("collection not allowed")
	// ErrOperatorNotAllowed signals a filter operator outside the allowed set.
	ErrOperatorNotAllowed = errors.New("operator not allowed")
	// ErrStageNotAllowed signals a blocked aggregation pipeline stage.
	ErrStageNotAllowed = errors.New("pipeline stage not allowed")
	// ErrMissingField signals a request missing a field the operation requires.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidRange signals a numeric parameter outside its valid range.
	ErrInvalidRange = errors.New("value out of range")
	// ErrMalformedQuery signals a structurally invalid filter, pipeline, sort or projection.
	ErrMalformedQuery = errors.New("malformed query expression")
	// ErrCollectionNotFound signals an introspection request for an unknown collection.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrModelNotFound signals a collection without a registered field model.
	ErrModelNotFound = errors.New("field model not registered")
	// ErrUnsupportedOperation signals an unrecognized query operation name.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrStoreUnavailable signals an unreachable document store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStoreTimeout signals a store-side abort on the execution-time ceiling.
	ErrStoreTimeout = errors.New("store timeout")
	// ErrStore signals any other store failure.
	ErrStore = errors.New("store error")
)

// CollectionNotAllowedError wraps ErrCollectionNotAllowed with the collection name.
type CollectionNotAllowedError struct {
	Collection string
}

func (e *CollectionNotAllowedError) Error() string {
	return fmt.Sprintf("%s: %q", ErrCollectionNotAllowed.Error(), e.Collection)
}

func (e *CollectionNotAllowedError) Unwrap() error { return ErrCollectionNotAllowed }

// NewCollectionNotAllowed creates a policy rejection for a collection name.
func NewCollectionNotAllowed(collection string) error {
	return &CollectionNotAllowedError{Collection: collection}
}

// OperatorNotAllowedError wraps ErrOperatorNotAllowed with the offending operator.
type OperatorNotAllowedError struct {
	Operator string
}

func (e *OperatorNotAllowedError) Error() string {
	return fmt.Sprintf("%s: %q", ErrOperatorNotAllowed.Error(), e.Operator)
}

func (e *OperatorNotAllowedError) Unwrap() error { return ErrOperatorNotAllowed }

// NewOperatorNotAllowed creates a rejection naming the offending operator.
func NewOperatorNotAllowed(operator string) error {
	return &OperatorNotAllowedError{Operator: operator}
}

// StageNotAllowedError wraps ErrStageNotAllowed with the offending stage name.
type StageNotAllowedError struct {
	Stage string
}

func (e *StageNotAllowedError) Error() string {
	return fmt.Sprintf("%s: %q", ErrStageNotAllowed.Error(), e.Stage)
}

func (e *StageNotAllowedError) Unwrap() error { return ErrStageNotAllowed }

// NewStageNotAllowed creates a rejection naming the blocked pipeline stage.
func NewStageNotAllowed(stage string) error {
	return &StageNotAllowedError{Stage: stage}
}

// MissingFieldError wraps ErrMissingField with the operation that required it.
type MissingFieldError struct {
	Operation string
	Field     string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %q is required for %s", ErrMissingField.Error(), e.Field, e.Operation)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// NewMissingField creates an error for a field the operation requires.
func NewMissingField(operation, field string) error {
	return &MissingFieldError{Operation: operation, Field: field}
}

// RangeError wraps ErrInvalidRange with the parameter and its bounds.
type RangeError struct {
	Parameter string
	Min       int64
	Max       int64
	Got       int64
}

func (e *RangeError) Error() string {
	if e.Max <= 0 {
		return fmt.Sprintf("%s: %s must be at least %d, got %d",
			ErrInvalidRange.Error(), e.Parameter, e.Min, e.Got)
	}
	return fmt.Sprintf("%s: %s must be between %d and %d, got %d",
		ErrInvalidRange.Error(), e.Parameter, e.Min, e.Max, e.Got)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// NewRangeError creates an error for a parameter outside [min, max].
// A max of 0 means the parameter has no upper bound.
func NewRangeError(parameter string, min, max, got int64) error {
	return &RangeError{Parameter: parameter, Min: min, Max: max, Got: got}
}

// MalformedQueryError wraps ErrMalformedQuery with a description of the defect.
type MalformedQueryError struct {
	Detail string
}

func (e *MalformedQueryError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedQuery.Error(), e.Detail)
}

func (e *MalformedQueryError) Unwrap() error { return ErrMalformedQuery }

// NewMalformedQuery creates an error for a structurally invalid query expression.
func NewMalformedQuery(detail string) error {
	return &MalformedQueryError{Detail: detail}
}

// CollectionNotFoundError wraps ErrCollectionNotFound with the collection name.
type CollectionNotFoundError struct {
	Collection string
}

func (e *CollectionNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrCollectionNotFound.Error(), e.Collection)
}

func (e *CollectionNotFoundError) Unwrap() error { return ErrCollectionNotFound }

// NewCollectionNotFound creates a lookup failure for a collection name.
func NewCollectionNotFound(collection string) error {
	return &CollectionNotFoundError{Collection: collection}
}

// ModelNotFoundError wraps ErrModelNotFound with the collection name.
type ModelNotFoundError struct {
	Collection string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrModelNotFound.Error(), e.Collection)
}

func (e *ModelNotFoundError) Unwrap() error { return ErrModelNotFound }

// NewModelNotFound creates an error for a collection without a field model.
func NewModelNotFound(collection string) error {
	return &ModelNotFoundError{Collection: collection}
}

// UnsupportedOperationError wraps ErrUnsupportedOperation with the operation name.
type UnsupportedOperationError struct {
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedOperation.Error(), e.Operation)
}

func (e *UnsupportedOperationError) Unwrap() error { return ErrUnsupportedOperation }

// NewUnsupportedOperation creates an error for an unrecognized operation name.
func NewUnsupportedOperation(operation string) error {
	return &UnsupportedOperationError{Operation: operation}
}

// StoreError carries a store failure through to the caller with the
// driver's message kept verbatim. Kind is one of ErrStoreUnavailable,
// ErrStoreTimeout or ErrStore.
type StoreError struct {
	Kind    error
	Message string
}

func (e *StoreError) Error() string { return e.Message }

func (e *StoreError) Unwrap() error { return e.Kind }

// NewStoreUnavailable marks a failure to reach the store.
func NewStoreUnavailable(message string) error {
	return &StoreError{Kind: ErrStoreUnavailable, Message: message}
}

// NewStoreTimeout marks a store-side abort on the execution-time ceiling.
func NewStoreTimeout(message string) error {
	return &StoreError{Kind: ErrStoreTimeout, Message: message}
}

// NewStoreError marks any other store failure.
func NewStoreError(message string) error {
	return &StoreError{Kind: ErrStore, Message: message}
}
