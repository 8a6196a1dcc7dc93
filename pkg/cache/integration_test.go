//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/restext/pkg/settings"
)

// setupRedis starts a Redis container and returns its address.
func setupRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	t.Cleanup(func() { container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}
	return host + ":" + port.Port()
}

func TestRedisBackend_Integration(t *testing.T) {
	addr := setupRedis(t)

	s := settings.Default()
	s.Caches["shared"] = settings.CacheConfig{Backend: settings.BackendRedis, Address: addr}
	reg := NewRegistry(s)
	t.Cleanup(func() { reg.Close() })

	b, err := reg.Get("shared")
	if err != nil {
		t.Fatalf("open redis backend: %v", err)
	}
	testBackendContract(t, b)

	ctx := context.Background()
	if err := b.Set(ctx, "short", sampleEntry(), time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(1500 * time.Millisecond)
	if _, err := b.Get(ctx, "short"); err != ErrCacheMiss {
		t.Errorf("Get after TTL error = %v, want ErrCacheMiss", err)
	}
}
