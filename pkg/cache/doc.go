// Package cache provides the response caching engine with a Redis backend.
//
// The engine stores one HTTP response per cache key with the following features:
//
// - Deterministic cache keys (query parameter order does not matter)
// - Two-level storage: outer key "prefix:cacheKey", field = content type, value = body
// - Sliding expiration (every hit re-applies the TTL)
// - Prefix namespacing and bulk clean at start-up
// - Swappable storage backends (Redis, in-memory)
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache engine
//	engine, err := cache.NewEngine(cache.NewRedisStore(redisClient), cache.DefaultEngineConfig(), logger)
//
//	// Derive cache key from a request
//	key := cache.RequestKey(req) // "/r?p=1&q=2"
//
//	// Get from cache
//	entry, err := engine.Lookup(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - run the handler
//	}
//
//	// Store in cache
//	if err := engine.Store(ctx, key, "application/json", body); err != nil {
//		return err
//	}
//
// # Failure Semantics
//
// Lookup returns ErrCacheMiss for absent entries and a wrapped error when the
// store cannot be reached. Callers should serve both the same way: run the
// real handler. Store errors should be logged and dropped; caching never
// decides whether a request succeeds.
//
// # Metrics
//
// The engine exports Prometheus metrics:
//
//   - webcache_hits_total{prefix} - Cache hits
//   - webcache_misses_total{prefix} - Cache misses
//   - webcache_stores_total{prefix} - Responses written
//   - webcache_stored_bytes{prefix} - Size of written bodies
//   - webcache_cleaned_keys_total{prefix} - Keys removed by a clean start
//   - webcache_errors_total{operation} - Storage errors
package cache
