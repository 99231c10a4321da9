package store

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUStore is an in-process read-through cache in front of a slower backend.
// Writes go through to the backend before the cached copy is updated.
type LRUStore struct {
	inner Store
	cache *lru.Cache[string, []byte]
}

// NewLRU wraps inner with an LRU cache holding up to size documents.
// A size of zero or less returns inner unchanged.
func NewLRU(inner Store, size int) (Store, error) {
	if size <= 0 {
		return inner, nil
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &LRUStore{inner: inner, cache: c}, nil
}

// Get serves name from the cache, falling back to the backend on a miss.
func (s *LRUStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	if data, ok := s.cache.Get(name); ok {
		return data, true, nil
	}
	data, hit, err := s.inner.Get(ctx, name)
	if err != nil || !hit {
		return data, hit, err
	}
	s.cache.Add(name, data)
	return data, true, nil
}

// Put writes through to the backend and then caches data.
func (s *LRUStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.inner.Put(ctx, name, data); err != nil {
		s.cache.Remove(name)
		return err
	}
	s.cache.Add(name, data)
	return nil
}

// Delete removes name from the backend, then from the cache. Evicting last
// drops any copy a concurrent Get cached while the backend delete ran.
func (s *LRUStore) Delete(ctx context.Context, name string) error {
	err := s.inner.Delete(ctx, name)
	s.cache.Remove(name)
	return err
}

// List always asks the backend; the cache holds documents, not the index.
func (s *LRUStore) List(ctx context.Context) ([]string, error) {
	return s.inner.List(ctx)
}

// Len reports how many documents are currently cached.
func (s *LRUStore) Len() int { return s.cache.Len() }

// Close purges the cache and closes the backend.
func (s *LRUStore) Close() error {
	s.cache.Purge()
	return s.inner.Close()
}

var _ Store = (*LRUStore)(nil)
