package cache

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/restext/pkg/logging"
	"github.com/Sternrassler/restext/pkg/render"
	"github.com/Sternrassler/restext/pkg/response"
	"github.com/Sternrassler/restext/pkg/settings"
	"github.com/Sternrassler/restext/pkg/view"
)

// Processor is the response cache wrapper of one view method.
type Processor struct {
	keyFunc view.KeyFunc

	settings    settings.Settings
	timeout     view.Timeout
	cacheName   string
	cacheErrors *bool
	registry    *Registry
	logger      zerolog.Logger

	mu      sync.Mutex
	backend Backend
}

// Option configures a Processor.
type Option func(*Processor)

// WithTimeout sets the TTL source. Defaults to the settings timeout.
func WithTimeout(t view.Timeout) Option {
	return func(p *Processor) { p.timeout = t }
}

// WithCache selects the backend by name. Defaults to the settings cache.
func WithCache(name string) Option {
	return func(p *Processor) { p.cacheName = name }
}

// WithCacheErrors controls whether responses with status >= 400 are stored.
func WithCacheErrors(cacheErrors bool) Option {
	return func(p *Processor) { p.cacheErrors = &cacheErrors }
}

// WithRegistry sets the registry backends are resolved from.
func WithRegistry(r *Registry) Option {
	return func(p *Processor) { p.registry = r }
}

// WithSettings sets the record the defaults are taken from.
func WithSettings(s settings.Settings) Option {
	return func(p *Processor) { p.settings = s }
}

// WithLogger replaces the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Processor) { p.logger = logger }
}

// NewProcessor returns a processor keyed by keyFunc.
func NewProcessor(keyFunc view.KeyFunc, opts ...Option) *Processor {
	p := &Processor{
		keyFunc:  keyFunc,
		settings: settings.Default(),
		logger:   logging.NewLogger("cache"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.timeout == nil {
		p.timeout = view.Fixed(p.settings.DefaultCacheResponseTimeout)
	}
	if p.cacheName == "" {
		p.cacheName = p.settings.DefaultUseCache
	}
	if p.cacheErrors == nil {
		cacheErrors := p.settings.DefaultCacheErrors
		p.cacheErrors = &cacheErrors
	}
	if p.registry == nil {
		p.registry = DefaultRegistry()
	}
	return p
}

// Backend resolves the backend on first use and returns the same handle
// afterwards. A failed resolution is retried on the next call.
func (p *Processor) Backend() (Backend, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.backend != nil {
		return p.backend, nil
	}
	b, err := p.registry.Get(p.cacheName)
	if err != nil {
		return nil, err
	}
	p.backend = b
	return b, nil
}

// Wrap returns next behind the response cache.
func (p *Processor) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.ForRequest(p.logger, r)
		call := view.CallFrom(r.Context())
		if call == nil {
			call = &view.Call{Request: r}
		}

		key, err := p.keyFunc.Key(call)
		if err != nil {
			logger.Error().Err(err).Msg("compute cache key")
			render.WriteError(w, err)
			return
		}
		ttl, err := p.timeout.Resolve(call)
		if err != nil {
			logger.Error().Err(err).Msg("resolve cache timeout")
			render.WriteError(w, err)
			return
		}
		backend, err := p.Backend()
		if err != nil {
			logger.Error().Err(err).Str("cache", p.cacheName).Msg("resolve cache backend")
			render.WriteError(w, err)
			return
		}

		entry, err := backend.Get(r.Context(), key)
		switch {
		case err == nil:
			CacheHits.WithLabelValues(backend.Name()).Inc()
			logger.Debug().Str("key", key).Dur("age", entry.Age()).Msg("cache hit")
			if err := entry.WriteTo(w); err != nil {
				logger.Debug().Err(err).Msg("write cached response")
			}
			return
		case errors.Is(err, ErrInvalidEntry):
			logger.Warn().Err(err).Str("key", key).Msg("discarding invalid cache entry")
		case !errors.Is(err, ErrCacheMiss):
			logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
			render.WriteError(w, err)
			return
		}

		CacheMisses.WithLabelValues(backend.Name()).Inc()
		rec := response.NewRecorder()
		next.ServeHTTP(rec, r)
		rec.Finalize()

		if err := p.store(r, backend, key, rec, ttl, logger); err != nil {
			render.WriteError(w, err)
			return
		}
		if err := rec.WriteTo(w); err != nil {
			logger.Debug().Err(err).Msg("write response")
		}
	})
}

func (p *Processor) store(r *http.Request, backend Backend, key string, rec *response.Recorder, ttl time.Duration, logger zerolog.Logger) error {
	if rec.Status() >= http.StatusBadRequest && !*p.cacheErrors {
		CacheSkippedErrors.Inc()
		logger.Debug().Str("key", key).Int("status", rec.Status()).Msg("error response not cached")
		return nil
	}
	if err := backend.Set(r.Context(), key, EntryFromRecorder(rec), ttl); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
		return err
	}
	CacheStores.WithLabelValues(backend.Name()).Inc()
	logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("response cached")
	return nil
}
