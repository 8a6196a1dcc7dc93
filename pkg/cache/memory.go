package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// DefaultMaxCost bounds the memory backend when settings give no size.
const DefaultMaxCost = 64 << 20

// MemoryBackend keeps encoded entries in an in-process ristretto cache.
// The cost of an entry is its encoded size in bytes.
type MemoryBackend struct {
	cache *ristretto.Cache
}

// NewMemoryBackend creates a memory backend holding about maxCost bytes.
func NewMemoryBackend(maxCost int64) (*MemoryBackend, error) {
	if maxCost <= 0 {
		maxCost = DefaultMaxCost
	}
	counters := maxCost / 100
	if counters < 1000 {
		counters = 1000
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		// ristretto recommends 10x the expected number of items
		NumCounters: counters,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &MemoryBackend{cache: c}, nil
}

// Name implements Backend.
func (b *MemoryBackend) Name() string { return "memory" }

// Get implements Backend.
func (b *MemoryBackend) Get(_ context.Context, key string) (*Entry, error) {
	v, ok := b.cache.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	data, ok := v.([]byte)
	if !ok {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: unexpected value type %T", ErrInvalidEntry, v)
	}
	return decodeEntry(data)
}

// Set implements Backend. The write is visible to the next Get.
func (b *MemoryBackend) Set(_ context.Context, key string, entry *Entry, ttl time.Duration) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	data, err := encodeEntry(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return err
	}
	if !b.cache.SetWithTTL(key, data, int64(len(data)), ttl) {
		// dropped by admission policy or contention; the next miss retries
		CacheErrors.WithLabelValues("set").Inc()
	}
	b.cache.Wait()
	return nil
}

// Delete implements Backend.
func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.cache.Del(key)
	return nil
}

// Close implements Backend.
func (b *MemoryBackend) Close() error {
	b.cache.Close()
	return nil
}
