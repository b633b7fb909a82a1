package storelens

import "github.com/pagegrid/storelens/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrCollectionNotAllowed = domain.ErrCollectionNotAllowed
	ErrOperatorNotAllowed   = domain.ErrOperatorNotAllowed
	ErrStageNotAllowed      = domain.ErrStageNotAllowed
	ErrMissingField         = domain.ErrMissingField
	ErrInvalidRange         = domain.ErrInvalidRange
	ErrMalformedQuery       = domain.ErrMalformedQuery
	ErrCollectionNotFound   = domain.ErrCollectionNotFound
	ErrModelNotFound        = domain.ErrModelNotFound
	ErrUnsupportedOperation = domain.ErrUnsupportedOperation
	ErrStoreUnavailable     = domain.ErrStoreUnavailable
	ErrStoreTimeout         = domain.ErrStoreTimeout
	ErrStore                = domain.ErrStore
)
