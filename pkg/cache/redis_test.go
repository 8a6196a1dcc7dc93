package cache

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a Redis client on a local server for testing.
// Integration tests start a real server with testcontainers-go instead.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewRedisBackend(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	b := NewRedisBackend(client, "restext:test")
	if b.redis != client {
		t.Error("backend redis client not set correctly")
	}
	if got := b.key("abc"); got != "restext:test:abc" {
		t.Errorf("key() = %q", got)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close on a borrowed client: %v", err)
	}
}

func TestNewRedisBackend_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedisBackend should panic with nil redis client")
		}
	}()
	NewRedisBackend(nil, "")
}

func TestRedisBackend(t *testing.T) {
	client := setupTestRedis(t)
	b := NewRedisBackend(client, "restext:test")

	testBackendContract(t, b)

	ttl, err := client.TTL(context.Background(), "restext:test:forever").Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl != -1 {
		t.Errorf("ttl 0 entry has redis TTL %v, want none", ttl)
	}
}
