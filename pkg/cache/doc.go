// Package cache stores rendered responses and replays them.
//
// A Processor wraps a view method: it computes the cache key for the call,
// looks the key up in a named Backend and either replays the stored
// response byte for byte or runs the handler, stores what it rendered and
// sends it on.
//
// # Backends
//
// Three backends are available, selected per cache name in settings:
//
//   - memory: in-process ristretto cache
//   - redis: shared Redis server (go-redis)
//   - badger: embedded badger store, on disk or in memory
//
// Backends are opened lazily by a Registry the first time a processor
// needs them and are shared by every processor using that registry.
//
// # Basic Usage
//
//	reg := cache.NewRegistry(s)
//	defer reg.Close()
//
//	p := cache.NewProcessor(defaults.ListCacheKeyFunc,
//		cache.WithRegistry(reg),
//		cache.WithSettings(s),
//		cache.WithTimeout(view.Fixed(time.Minute)),
//	)
//	mux.Handle("/books/", p.Wrap(listBooks))
//
// # Error Responses
//
// Responses with status >= 400 are stored only when cache errors is
// enabled (the default). Backend failures are not swallowed: they are
// rendered as a 500 response.
//
// # Metrics
//
//   - restext_cache_hits_total{backend}
//   - restext_cache_misses_total{backend}
//   - restext_cache_stores_total{backend}
//   - restext_cache_skipped_errors_total
//   - restext_cache_errors_total{operation}
package cache
