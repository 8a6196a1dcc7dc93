package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")

	// ErrUnknownBackend indicates a cache name or backend kind that is not configured
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// Backend is a key-value store for rendered responses.
// A ttl of zero stores the entry without expiry.
type Backend interface {
	// Name is the backend kind, used as a metric label.
	Name() string

	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
