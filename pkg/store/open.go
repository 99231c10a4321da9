package store

import (
	"context"
	"fmt"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/observability"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNull  = "null"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	Dir string // file

	RedisURL string // redis

	MongoURI        string // mongo
	MongoDatabase   string
	MongoCollection string

	// LRUSize enables an in-process read-through cache when positive.
	LRUSize int
	// Namespace prefixes every scene name when non-empty.
	Namespace string
}

// Open builds the configured backend and applies the LRU, namespace and
// observability wrappers.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Backend {
	case BackendFile, "":
		if opts.Dir == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "file store requires a directory")
		}
		s, err = NewFileStore(opts.Dir)
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "redis store requires redis_url")
		}
		s, err = NewRedisStore(ctx, opts.RedisURL)
	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo store requires mongo_uri")
		}
		s, err = NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
	case BackendNull:
		s = NewNullStore()
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", opts.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", backendName(opts.Backend), err)
	}

	backend := backendName(opts.Backend)
	s = instrument(s, backend)
	if s, err = NewLRU(s, opts.LRUSize); err != nil {
		return nil, err
	}
	return NewScoped(s, opts.Namespace), nil
}

func backendName(b string) string {
	if b == "" {
		return BackendFile
	}
	return b
}

// instrumented reports reads and writes to the registered store hooks.
type instrumented struct {
	Store
	backend string
}

func instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

func (s *instrumented) Get(ctx context.Context, name string) ([]byte, bool, error) {
	data, hit, err := s.Store.Get(ctx, name)
	if err == nil {
		observability.Store().OnStoreGet(ctx, s.backend, hit)
	}
	return data, hit, err
}

func (s *instrumented) Put(ctx context.Context, name string, data []byte) error {
	if err := s.Store.Put(ctx, name, data); err != nil {
		return err
	}
	observability.Store().OnStorePut(ctx, s.backend, len(data))
	return nil
}
