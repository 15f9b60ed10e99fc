package session

import (
	"context"
	"errors"
)

// ErrStorageUnavailable wraps failures of the underlying storage backend.
var ErrStorageUnavailable = errors.New("session storage unavailable")

// Storage is durable key/value storage for session values.
//
// Get reports ok=false for a missing key. Delete of a missing key is not an error.
// Implementations must be safe for concurrent use.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
