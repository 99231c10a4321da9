package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces scene keys in a shared Redis database.
const DefaultRedisPrefix = "nodecanvas:scene:"

// RedisStore keeps one string key per scene.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the Redis server at url (redis://host:port/db)
// and verifies the connection with PING.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: connect to redis: %v", ErrBackend, err)
	}
	return NewRedisStoreFromClient(client), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: DefaultRedisPrefix}
}

// Get reads the document stored under name.
func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		b, err := s.client.Get(ctx, s.prefix+name).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return Retryable(err)
		}
		data = b
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: redis get %s: %v", ErrBackend, name, err)
	}
	return data, true, nil
}

// Put stores data under name without expiry.
func (s *RedisStore) Put(ctx context.Context, name string, data []byte) error {
	err := RetryWithBackoff(ctx, func() error {
		return Retryable(s.client.Set(ctx, s.prefix+name, data, 0).Err())
	})
	if err != nil {
		return fmt.Errorf("%w: redis set %s: %v", ErrBackend, name, err)
	}
	return nil
}

// Delete removes name.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.prefix+name).Err(); err != nil {
		return fmt.Errorf("%w: redis del %s: %v", ErrBackend, name, err)
	}
	return nil
}

// List scans the key space under the store prefix.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: redis scan: %v", ErrBackend, err)
	}
	sort.Strings(names)
	return names, nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
