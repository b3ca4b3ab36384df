// Package sink defines the append-only persistence contract shared by every
// storage backend and fans writes out across them.
package sink

import (
	"context"
	"fmt"

	"realflow/internal/models"
)

// Record kinds, used in logs, metrics and errors.
const (
	KindCall            = "call"
	KindHotLead         = "hot_lead"
	KindCallback        = "callback"
	KindPropertyRequest = "property_request"
)

// Sink durably appends records. Implementations must be safe for concurrent use.
type Sink interface {
	Name() string
	AppendCall(ctx context.Context, call models.CallRecord) (string, error)
	AppendHotLead(ctx context.Context, lead models.HotLead) (string, error)
	AppendCallback(ctx context.Context, cb models.Callback) (string, error)
	AppendPropertyRequest(ctx context.Context, req models.PropertyRequest) (string, error)
}

// StorageError reports a write a sink could not complete.
type StorageError struct {
	Sink string
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: failed to %s: %v", e.Sink, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Wrap returns err as a *StorageError for sink, or nil when err is nil.
func Wrap(sink, op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Sink: sink, Op: op, Err: err}
}
