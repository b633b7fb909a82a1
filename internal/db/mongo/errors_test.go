package mongo

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pagegrid/storelens/internal/db"
)

func TestWrapError_ClassifiesTimeouts(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"context deadline", context.DeadlineExceeded},
		{"max time expired", mongo.CommandError{Code: maxTimeMSExpired, Name: "MaxTimeMSExpired", Message: "operation exceeded time limit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapError(db.OpFind, tt.err)
			if !errors.Is(err, db.ErrTimeout) {
				t.Errorf("expected ErrTimeout classification, got %v", err)
			}
			if errors.Is(err, db.ErrUnavailable) {
				t.Errorf("did not expect ErrUnavailable classification")
			}
		})
	}
}

func TestWrapError_ClassifiesUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"client disconnected", mongo.ErrClientDisconnected},
		{"server selection", errors.New("server selection error: context deadline exceeded, current topology: { Type: Unknown }")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapError(db.OpPing, tt.err)
			if !errors.Is(err, db.ErrUnavailable) {
				t.Errorf("expected ErrUnavailable classification, got %v", err)
			}
			if errors.Is(err, db.ErrTimeout) {
				t.Errorf("did not expect ErrTimeout classification")
			}
		})
	}
}

func TestWrapError_KeepsOriginalMessage(t *testing.T) {
	orig := errors.New("(BadValue) unknown top level operator: $foo")
	err := wrapError(db.OpFind, orig)

	if want := "find: (BadValue) unknown top level operator: $foo"; err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
	if errors.Is(err, db.ErrTimeout) || errors.Is(err, db.ErrUnavailable) {
		t.Error("generic failure should carry no classification")
	}

	var storeErr *db.Error
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected db.Error, got %T", err)
	}
	if storeErr.Op != db.OpFind {
		t.Errorf("expected op %q, got %q", db.OpFind, storeErr.Op)
	}
	if !errors.Is(err, orig) {
		t.Error("expected wrapped error to match the original")
	}
}
