package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/restext/pkg/logging"
	"github.com/Sternrassler/restext/pkg/settings"
)

// dialTimeout bounds the connection check of network backends.
const dialTimeout = 5 * time.Second

// Registry opens named backends on first use and shares them.
type Registry struct {
	mu       sync.Mutex
	caches   map[string]settings.CacheConfig
	backends map[string]Backend
	prefix   string
	logger   zerolog.Logger
}

// NewRegistry creates a registry for the caches configured in s.
func NewRegistry(s settings.Settings) *Registry {
	return &Registry{
		caches:   s.Caches,
		backends: make(map[string]Backend),
		prefix:   DefaultKeyPrefix,
		logger:   logging.NewLogger("cache"),
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry is the process-wide registry over settings.Default().
// Processors built without WithRegistry use it.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(settings.Default())
	})
	return defaultRegistry
}

// Register installs b under name, replacing any configuration.
func (r *Registry) Register(name string, b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = b
}

// Get returns the backend named name, opening it if needed.
func (r *Registry) Get(name string) (Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.backends[name]; ok {
		return b, nil
	}
	cfg, ok := r.caches[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not configured", ErrUnknownBackend, name)
	}

	b, err := r.open(name, cfg)
	if err != nil {
		CacheErrors.WithLabelValues("open").Inc()
		return nil, err
	}
	r.backends[name] = b
	r.logger.Info().Str("cache", name).Str("backend", b.Name()).Msg("cache backend opened")
	return b, nil
}

func (r *Registry) open(name string, cfg settings.CacheConfig) (Backend, error) {
	switch cfg.Backend {
	case settings.BackendMemory:
		return NewMemoryBackend(cfg.MaxCost)
	case settings.BackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()
		return OpenRedis(ctx, cfg.Address, cfg.DB, StorageKey(r.prefix, name, ""))
	case settings.BackendBadger:
		return OpenBadger(cfg.Path, StorageKey(r.prefix, name, ""))
	default:
		return nil, fmt.Errorf("%w: cache %q has kind %q", ErrUnknownBackend, name, cfg.Backend)
	}
}

// Close closes every opened backend.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, b := range r.backends {
		if err := b.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache %q: %w", name, err))
		}
		delete(r.backends, name)
	}
	return errors.Join(errs...)
}
