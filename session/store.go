package session

import (
	"context"
	"errors"
	"fmt"
)

// Store is the typed view of a [Storage] used by the Engine.
type Store struct {
	backend Storage
}

// NewStore wraps backend. A nil backend selects a fresh [MemoryStorage].
func NewStore(backend Storage) *Store {
	if backend == nil {
		backend = NewMemoryStorage()
	}
	return &Store{backend: backend}
}

// Backend returns the wrapped storage.
func (s *Store) Backend() Storage {
	return s.backend
}

// Token returns the stored bearer token, or "" when none is stored.
func (s *Store) Token(ctx context.Context) (string, error) {
	v, ok, err := s.backend.Get(ctx, KeyToken)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}

// SetToken persists token. An empty token deletes the key.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.backend.Delete(ctx, KeyToken)
	}
	return s.backend.Set(ctx, KeyToken, token)
}

// Permissions returns the cached permission codes. ok is false when no cache exists.
// A corrupt cache returns ok=false and [ErrCorruptPermissionCache].
func (s *Store) Permissions(ctx context.Context) ([]string, bool, error) {
	raw, ok, err := s.backend.Get(ctx, KeyPermissions)
	if err != nil || !ok {
		return nil, false, err
	}
	codes, err := decodePermissions(raw)
	if err != nil {
		return nil, false, err
	}
	return codes, true, nil
}

// SetPermissions replaces the cached permission codes with a flat JSON array.
func (s *Store) SetPermissions(ctx context.Context, codes []string) error {
	raw, err := encodePermissions(codes)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	return s.backend.Set(ctx, KeyPermissions, raw)
}

// MarkLoading writes the in-flight resolution marker.
func (s *Store) MarkLoading(ctx context.Context) error {
	return s.backend.Set(ctx, KeyLoadingUserInfo, loadingValue)
}

// ClearLoading removes the in-flight resolution marker.
func (s *Store) ClearLoading(ctx context.Context) error {
	return s.backend.Delete(ctx, KeyLoadingUserInfo)
}

// Loading reports whether the in-flight marker is present.
func (s *Store) Loading(ctx context.Context) (bool, error) {
	v, ok, err := s.backend.Get(ctx, KeyLoadingUserInfo)
	if err != nil {
		return false, err
	}
	return ok && v == loadingValue, nil
}

// Clear removes the token, the permission cache and the marker together.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Delete(ctx, KeyToken, KeyPermissions, KeyLoadingUserInfo)
}

// ClearDerived removes the permission cache and the marker but keeps the token.
func (s *Store) ClearDerived(ctx context.Context) error {
	return s.backend.Delete(ctx, KeyPermissions, KeyLoadingUserInfo)
}

// Load reads every durable value at once. A corrupt permission cache is reported as
// absent rather than failing the whole load.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	token, err := s.Token(ctx)
	if err != nil {
		return snap, err
	}
	snap.Token = token

	codes, ok, err := s.Permissions(ctx)
	switch {
	case errors.Is(err, ErrCorruptPermissionCache):
	case err != nil:
		return snap, err
	default:
		snap.Permissions = codes
		snap.HasCache = ok
	}

	loading, err := s.Loading(ctx)
	if err != nil {
		return snap, err
	}
	snap.Loading = loading

	return snap, nil
}
