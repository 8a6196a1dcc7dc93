// Package settings holds the configuration record shared by every restext
// component. A Settings value is built once at process start (defaults,
// then an optional YAML file, then environment overrides) and passed
// explicitly to the routers, processors and key constructors.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend kinds accepted in CacheConfig.Backend.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "RESTEXT_"

// ErrInvalidSettings is returned by Validate.
var ErrInvalidSettings = errors.New("invalid settings")

// CacheConfig describes one named response cache backend.
type CacheConfig struct {
	// Backend is one of memory, redis or badger.
	Backend string `yaml:"backend"`

	// Address is the Redis address (host:port).
	Address string `yaml:"address,omitempty"`

	// DB is the Redis logical database.
	DB int `yaml:"db,omitempty"`

	// Path is the badger directory. Empty runs badger in memory.
	Path string `yaml:"path,omitempty"`

	// MaxCost bounds the in-process cache size in bytes.
	MaxCost int64 `yaml:"max_cost,omitempty"`
}

// LoggingConfig mirrors logging.Config in a serialisable form.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Settings is the process-wide configuration record.
type Settings struct {
	// DefaultCacheResponseTimeout is the TTL for stored responses.
	DefaultCacheResponseTimeout time.Duration `yaml:"default_cache_response_timeout"`

	// DefaultCacheErrors controls whether responses with status >= 400 are stored.
	DefaultCacheErrors bool `yaml:"default_cache_errors"`

	// DefaultUseCache names the backend used when a processor names none.
	DefaultUseCache string `yaml:"default_use_cache"`

	// DefaultKeyConstructorMemoizeForRequest is the memoization default
	// for key constructors built without an explicit choice.
	DefaultKeyConstructorMemoizeForRequest bool `yaml:"default_key_constructor_memoize_for_request"`

	// DefaultParentLookupKwargNamePrefix prefixes nested route captures.
	DefaultParentLookupKwargNamePrefix string `yaml:"default_parent_lookup_kwarg_name_prefix"`

	// DefaultBulkOperationHeaderName is required on destructive list operations.
	DefaultBulkOperationHeaderName string `yaml:"default_bulk_operation_header_name"`

	// Languages are the supported language tags; the first one is the fallback.
	Languages []string `yaml:"languages"`

	// Caches maps backend names to their configuration.
	Caches map[string]CacheConfig `yaml:"caches"`

	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() Settings {
	return Settings{
		DefaultCacheResponseTimeout:            15 * time.Minute,
		DefaultCacheErrors:                     true,
		DefaultUseCache:                        "default",
		DefaultKeyConstructorMemoizeForRequest: false,
		DefaultParentLookupKwargNamePrefix:     "parent_lookup",
		DefaultBulkOperationHeaderName:         "X-Bulk-Operation",
		Languages:                              []string{"en"},
		Caches: map[string]CacheConfig{
			"default": {Backend: BackendMemory},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML file on top of the defaults. Keys absent from the
// file keep their default value.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode settings file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// FromEnv applies RESTEXT_* environment overrides to base.
func FromEnv(base Settings) (Settings, error) {
	s := base

	if v := getEnv("DEFAULT_CACHE_RESPONSE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return s, fmt.Errorf("parse %sDEFAULT_CACHE_RESPONSE_TIMEOUT: %w", EnvPrefix, err)
		}
		s.DefaultCacheResponseTimeout = d
	}
	if v := getEnv("DEFAULT_CACHE_ERRORS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, fmt.Errorf("parse %sDEFAULT_CACHE_ERRORS: %w", EnvPrefix, err)
		}
		s.DefaultCacheErrors = b
	}
	if v := getEnv("DEFAULT_USE_CACHE"); v != "" {
		s.DefaultUseCache = v
	}
	if v := getEnv("DEFAULT_KEY_CONSTRUCTOR_MEMOIZE_FOR_REQUEST"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, fmt.Errorf("parse %sDEFAULT_KEY_CONSTRUCTOR_MEMOIZE_FOR_REQUEST: %w", EnvPrefix, err)
		}
		s.DefaultKeyConstructorMemoizeForRequest = b
	}
	if v := getEnv("DEFAULT_PARENT_LOOKUP_KWARG_NAME_PREFIX"); v != "" {
		s.DefaultParentLookupKwargNamePrefix = v
	}
	if v := getEnv("DEFAULT_BULK_OPERATION_HEADER_NAME"); v != "" {
		s.DefaultBulkOperationHeaderName = v
	}
	if v := getEnv("LANGUAGES"); v != "" {
		s.Languages = splitList(v)
	}
	if v := getEnv("REDIS_URL"); v != "" {
		caches := make(map[string]CacheConfig, len(s.Caches)+1)
		for name, cfg := range s.Caches {
			caches[name] = cfg
		}
		caches[BackendRedis] = CacheConfig{Backend: BackendRedis, Address: v}
		s.Caches = caches
	}
	if v := getEnv("LOG_LEVEL"); v != "" {
		s.Logging.Level = v
	}
	if v := getEnv("LOG_PRETTY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, fmt.Errorf("parse %sLOG_PRETTY: %w", EnvPrefix, err)
		}
		s.Logging.Pretty = b
	}

	return s, s.Validate()
}

// Validate checks internal consistency.
func (s Settings) Validate() error {
	if s.DefaultCacheResponseTimeout < 0 {
		return fmt.Errorf("%w: negative default_cache_response_timeout", ErrInvalidSettings)
	}
	if s.DefaultUseCache == "" {
		return fmt.Errorf("%w: default_use_cache is empty", ErrInvalidSettings)
	}
	if _, ok := s.Caches[s.DefaultUseCache]; !ok {
		return fmt.Errorf("%w: default cache %q is not configured", ErrInvalidSettings, s.DefaultUseCache)
	}
	for name, cfg := range s.Caches {
		if name == "" {
			return fmt.Errorf("%w: empty cache name", ErrInvalidSettings)
		}
		switch cfg.Backend {
		case BackendMemory, BackendBadger:
		case BackendRedis:
			if cfg.Address == "" {
				return fmt.Errorf("%w: cache %q: redis backend needs an address", ErrInvalidSettings, name)
			}
		default:
			return fmt.Errorf("%w: cache %q: unknown backend %q", ErrInvalidSettings, name, cfg.Backend)
		}
	}
	if len(s.Languages) == 0 {
		return fmt.Errorf("%w: at least one language is required", ErrInvalidSettings)
	}
	return nil
}

// ParentLookupKwargName composes the URL capture name for a parent query lookup.
func (s Settings) ParentLookupKwargName(lookup string) string {
	prefix := s.DefaultParentLookupKwargNamePrefix
	if prefix != "" && !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return prefix + lookup
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
