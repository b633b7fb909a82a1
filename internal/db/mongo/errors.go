package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pagegrid/storelens/internal/db"
)

// maxTimeMSExpired is the server error code for an exceeded time limit.
const maxTimeMSExpired = 50

// wrapError attaches the operation name and classifies connectivity and
// timeout failures. The original driver message is preserved verbatim.
func wrapError(op string, err error) error {
	return &db.Error{Op: op, Kind: classify(err), Err: err}
}

func classify(err error) error {
	switch {
	case isUnavailable(err):
		return db.ErrUnavailable
	case isTimeout(err):
		return db.ErrTimeout
	default:
		return nil
	}
}

// isUnavailable runs before isTimeout: a server selection timeout means no
// reachable server, not a slow query.
func isUnavailable(err error) bool {
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	if mongo.IsNetworkError(err) {
		return true
	}
	return strings.Contains(err.Error(), "server selection")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if mongo.IsTimeout(err) {
		return true
	}
	var cmdErr mongo.CommandError
	return errors.As(err, &cmdErr) && cmdErr.Code == maxTimeMSExpired
}
