// Package cache keeps recently read records by id in front of a repository.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"
)

// Backend stores encoded records under string keys.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Close() error
}

// MemoryBackend is an in-process ristretto cache.
type MemoryBackend struct {
	cache *ristretto.Cache
}

// NewMemoryBackend creates a cache holding up to maxCost bytes of values.
func NewMemoryBackend(maxCost int64) (*MemoryBackend, error) {
	if maxCost <= 0 {
		maxCost = 64 << 20
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxCost / 100, // ~10x the expected number of entries
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}

	return &MemoryBackend{cache: cache}, nil
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, found := m.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	b, ok := value.([]byte)
	return b, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.cache.SetWithTTL(key, value, int64(len(value)), ttl)
	// sets are buffered; a later Del must not be overtaken by this write
	m.cache.Wait()
	return nil
}

func (m *MemoryBackend) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.cache.Del(key)
	}
	m.cache.Wait()
	return nil
}

func (m *MemoryBackend) Close() error {
	m.cache.Close()
	return nil
}

// RedisBackend shares cached records between instances.
type RedisBackend struct {
	rdb    *redis.Client
	prefix string
}

type RedisOption func(*RedisBackend)

func WithRedisPrefix(prefix string) RedisOption {
	return func(r *RedisBackend) { r.prefix = strings.Trim(prefix, ":") }
}

func NewRedisBackend(rdb *redis.Client, opts ...RedisOption) *RedisBackend {
	r := &RedisBackend{rdb: rdb, prefix: "cadastro"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisBackend) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = r.key(key)
	}
	if err := r.rdb.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return r.rdb.Close()
}
