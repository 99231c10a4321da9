package store

import (
	"context"
	"strings"
)

// ScopedStore wraps a Store with a name prefix for multi-tenant isolation.
// This is useful when several users or projects share one Redis or MongoDB
// backend and need separate scene namespaces.
//
// Example usage:
//
//	// Scenes for team "design" live under "design." in the shared backend
//	teamStore := NewScoped(redisStore, "design.")
type ScopedStore struct {
	inner  Store
	prefix string
}

// NewScoped creates a store that prepends prefix to every name.
// An empty prefix returns inner unchanged.
func NewScoped(inner Store, prefix string) Store {
	if prefix == "" {
		return inner
	}
	return &ScopedStore{inner: inner, prefix: prefix}
}

// Get reads name from the scoped namespace.
func (s *ScopedStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+name)
}

// Put writes name into the scoped namespace.
func (s *ScopedStore) Put(ctx context.Context, name string, data []byte) error {
	return s.inner.Put(ctx, s.prefix+name, data)
}

// Delete removes name from the scoped namespace.
func (s *ScopedStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, s.prefix+name)
}

// List returns the names inside the scope with the prefix stripped.
func (s *ScopedStore) List(ctx context.Context) ([]string, error) {
	all, err := s.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, n := range all {
		if rest, ok := strings.CutPrefix(n, s.prefix); ok && rest != "" {
			names = append(names, rest)
		}
	}
	return names, nil
}

// Close closes the wrapped store.
func (s *ScopedStore) Close() error {
	return s.inner.Close()
}

var _ Store = (*ScopedStore)(nil)
