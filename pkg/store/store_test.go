package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nerrors "github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/observability"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(dir)
	require.NoError(t, err)
	defer s.Close()

	_, hit, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, s.Put(ctx, "alpha", []byte(`{"camera":[1,0,0,1,0,0],"nodes":[]}`)))
	require.NoError(t, s.Put(ctx, "beta", []byte(`{}`)))

	data, hit, err := s.Get(ctx, "alpha")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.JSONEq(t, `{"camera":[1,0,0,1,0,0],"nodes":[]}`, string(data))

	// Stored as a plain file under the scene name.
	_, err = os.Stat(filepath.Join(dir, "alpha.json"))
	assert.NoError(t, err)

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	require.NoError(t, s.Put(ctx, "alpha", []byte(`{"v":2}`)))
	data, _, _ = s.Get(ctx, "alpha")
	assert.Equal(t, `{"v":2}`, string(data))

	require.NoError(t, s.Delete(ctx, "alpha"))
	require.NoError(t, s.Delete(ctx, "alpha"), "deleting twice is not an error")
	_, hit, _ = s.Get(ctx, "alpha")
	assert.False(t, hit)
}

func TestFileStoreRejectsBadNames(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../escape", "a/b", ".hidden"} {
		t.Run(name, func(t *testing.T) {
			err := s.Put(ctx, name, []byte("{}"))
			require.Error(t, err)
			assert.Equal(t, nerrors.ErrCodeInvalidName, nerrors.GetCode(err))
		})
	}
}

func TestFileStoreListSkipsForeignFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))
	require.NoError(t, s.Put(ctx, "scene", []byte("{}")))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"scene"}, names)
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()

	require.NoError(t, s.Put(ctx, "a", []byte("x")))
	_, hit, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, hit)

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.NoError(t, s.Delete(ctx, "a"))
	assert.NoError(t, s.Close())
}

// memStore is an in-memory Store used to observe wrapper behavior.
type memStore struct {
	docs     map[string][]byte
	gets     int
	putErr   error
	onDelete func(name string) // runs before the document is removed
}

func newMemStore() *memStore { return &memStore{docs: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, name string) ([]byte, bool, error) {
	m.gets++
	d, ok := m.docs[name]
	return d, ok, nil
}

func (m *memStore) Put(_ context.Context, name string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.docs[name] = data
	return nil
}

func (m *memStore) Delete(_ context.Context, name string) error {
	if m.onDelete != nil {
		m.onDelete(name)
	}
	delete(m.docs, name)
	return nil
}

func (m *memStore) List(context.Context) ([]string, error) {
	var names []string
	for n := range m.docs {
		names = append(names, n)
	}
	return names, nil
}

func (m *memStore) Close() error { return nil }

func TestLRUStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := newMemStore()
	inner.docs["a"] = []byte("A")

	s, err := NewLRU(inner, 2)
	require.NoError(t, err)
	lru := s.(*LRUStore)

	for i := 0; i < 3; i++ {
		data, hit, err := s.Get(ctx, "a")
		require.NoError(t, err)
		require.True(t, hit)
		assert.Equal(t, "A", string(data))
	}
	assert.Equal(t, 1, inner.gets, "only the first read reaches the backend")
	assert.Equal(t, 1, lru.Len())

	_, hit, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, lru.Len(), "misses are not cached")
}

func TestLRUStoreWriteThrough(t *testing.T) {
	ctx := context.Background()
	inner := newMemStore()
	s, err := NewLRU(inner, 4)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "a", []byte("1")))
	assert.Equal(t, "1", string(inner.docs["a"]))

	inner.putErr = errors.New("disk full")
	require.Error(t, s.Put(ctx, "a", []byte("2")))

	// A failed write must not leave a stale cached copy.
	inner.putErr = nil
	data, _, _ := s.Get(ctx, "a")
	assert.Equal(t, "1", string(data))

	require.NoError(t, s.Delete(ctx, "a"))
	_, hit, _ := s.Get(ctx, "a")
	assert.False(t, hit)
}

func TestLRUStoreDeleteDropsReadDuringDelete(t *testing.T) {
	ctx := context.Background()
	inner := newMemStore()
	inner.docs["a"] = []byte("A")
	s, err := NewLRU(inner, 4)
	require.NoError(t, err)

	// A read landing while the backend delete is in flight re-caches the
	// document; it must not survive the delete.
	inner.onDelete = func(name string) {
		data, hit, err := s.Get(ctx, name)
		require.NoError(t, err)
		require.True(t, hit)
		assert.Equal(t, "A", string(data))
	}
	require.NoError(t, s.Delete(ctx, "a"))
	inner.onDelete = nil

	_, hit, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, hit, "deleted document is still served from the cache")
	assert.Equal(t, 0, s.(*LRUStore).Len())
}

func TestNewLRUDisabled(t *testing.T) {
	inner := newMemStore()
	s, err := NewLRU(inner, 0)
	require.NoError(t, err)
	assert.Same(t, inner, s)
}

func TestScopedStore(t *testing.T) {
	ctx := context.Background()
	inner := newMemStore()
	inner.docs["other"] = []byte("x")

	s := NewScoped(inner, "team.")
	require.NoError(t, s.Put(ctx, "board", []byte("B")))
	assert.Contains(t, inner.docs, "team.board")

	data, hit, err := s.Get(ctx, "board")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "B", string(data))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"board"}, names)

	require.NoError(t, s.Delete(ctx, "board"))
	assert.NotContains(t, inner.docs, "team.board")
}

func TestNewScopedEmptyPrefix(t *testing.T) {
	inner := newMemStore()
	assert.Same(t, Store(inner), NewScoped(inner, ""))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"file", Options{Backend: BackendFile, Dir: t.TempDir()}, false},
		{"default is file", Options{Dir: t.TempDir()}, false},
		{"null", Options{Backend: BackendNull}, false},
		{"file with lru and namespace", Options{Dir: t.TempDir(), LRUSize: 8, Namespace: "x."}, false},
		{"file without dir", Options{Backend: BackendFile}, true},
		{"redis without url", Options{Backend: BackendRedis}, true},
		{"mongo without uri", Options{Backend: BackendMongo}, true},
		{"redis bad url", Options{Backend: BackendRedis, RedisURL: "not-a-url://"}, true},
		{"unknown", Options{Backend: "etcd"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Close()
			require.NoError(t, s.Put(ctx, "scene", []byte("{}")))
		})
	}
}

func TestOpenConfigErrorsAreCoded(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "etcd"})
	require.Error(t, err)
	assert.Equal(t, nerrors.ErrCodeInvalidConfig, nerrors.GetCode(err))
}

func TestOpenReportsHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	hooks := &countingStoreHooks{}
	observability.SetStoreHooks(hooks)

	ctx := context.Background()
	s, err := Open(ctx, Options{Dir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "a", []byte("12345")))
	_, _, _ = s.Get(ctx, "a")
	_, _, _ = s.Get(ctx, "b")

	assert.Equal(t, 5, hooks.putBytes)
	assert.Equal(t, 1, hooks.hits)
	assert.Equal(t, 1, hooks.misses)
	assert.Equal(t, BackendFile, hooks.backend)
}

type countingStoreHooks struct {
	observability.NoopStoreHooks
	hits, misses, putBytes int
	backend                string
}

func (h *countingStoreHooks) OnStoreGet(_ context.Context, backend string, hit bool) {
	h.backend = backend
	if hit {
		h.hits++
	} else {
		h.misses++
	}
}

func (h *countingStoreHooks) OnStorePut(_ context.Context, _ string, size int) {
	h.putBytes += size
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()

	ctx := context.Background()

	t.Run("retries retryable errors", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 3 {
				return Retryable(errors.New("transient"))
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent errors", func(t *testing.T) {
		calls := 0
		perm := errors.New("permanent")
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return perm
		})
		assert.ErrorIs(t, err, perm)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after three attempts", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return Retryable(errors.New("down"))
		})
		assert.True(t, IsRetryable(err))
		assert.Equal(t, 3, calls)
	})

	t.Run("honors cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := RetryWithBackoff(cctx, func() error {
			return Retryable(errors.New("down"))
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRetryableNil(t *testing.T) {
	assert.NoError(t, Retryable(nil))
}

func TestHash(t *testing.T) {
	h := Hash([]byte("scene"))
	assert.Len(t, h, 64)
	assert.Equal(t, h, Hash([]byte("scene")))
	assert.NotEqual(t, h, Hash([]byte("scene2")))
}
