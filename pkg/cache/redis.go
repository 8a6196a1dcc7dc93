package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores responses in Redis.
type RedisBackend struct {
	redis  *redis.Client
	prefix string
	owned  bool
}

// NewRedisBackend creates a backend on an existing client. The caller
// keeps ownership of the client.
func NewRedisBackend(redisClient *redis.Client, prefix string) *RedisBackend {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisBackend{
		redis:  redisClient,
		prefix: prefix,
	}
}

// OpenRedis dials addr and verifies the connection. The backend owns the
// client and closes it in Close.
func OpenRedis(ctx context.Context, addr string, db int, prefix string) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	b := NewRedisBackend(client, prefix)
	b.owned = true
	return b, nil
}

// Name implements Backend.
func (b *RedisBackend) Name() string { return "redis" }

// Get retrieves an entry.
// Returns ErrCacheMiss if the key doesn't exist or has expired.
func (b *RedisBackend) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := b.redis.Get(ctx, b.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	entry, err := decodeEntry(data)
	if err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, err
	}
	return entry, nil
}

// Set stores an entry. Redis removes it when ttl elapses.
func (b *RedisBackend) Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	data, err := encodeEntry(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return err
	}

	// redis treats 0 as "no expiry"
	if err := b.redis.Set(ctx, b.key(key), data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes an entry.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.redis.Del(ctx, b.key(key)).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the client if the backend opened it.
func (b *RedisBackend) Close() error {
	if !b.owned {
		return nil
	}
	return b.redis.Close()
}

func (b *RedisBackend) key(k string) string {
	return StorageKey(b.prefix, "", k)
}
