package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultTTL is the sliding expiration applied when none is configured
	DefaultTTL = 24 * time.Hour

	// DefaultPrefix namespaces all keys written by an Engine
	DefaultPrefix = "web-cache"

	// deleteBatchSize bounds the number of keys per DEL during Clean
	deleteBatchSize = 500
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidConfig indicates a configuration value that cannot be used
	ErrInvalidConfig = errors.New("invalid cache configuration")
)

// EngineConfig holds the engine configuration.
type EngineConfig struct {
	// Prefix namespaces every outer key as "prefix:cacheKey". Must not be empty.
	Prefix string

	// TTL is applied to the outer key on every write and every successful read.
	TTL time.Duration
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Prefix: DefaultPrefix,
		TTL:    DefaultTTL,
	}
}

// Validate checks the configuration.
func (c EngineConfig) Validate() error {
	if c.Prefix == "" {
		return fmt.Errorf("%w: prefix must not be empty", ErrInvalidConfig)
	}
	if c.TTL < time.Second {
		return fmt.Errorf("%w: ttl must be at least one second (got %s)", ErrInvalidConfig, c.TTL)
	}
	return nil
}

// Engine reads and writes cached responses through a Store.
//
// Each entry lives under the outer key "prefix:cacheKey" with a single field
// named after the response content type whose value is the body.
type Engine struct {
	store  Store
	config EngineConfig
	logger zerolog.Logger
}

// NewEngine creates a new cache engine.
func NewEngine(store Store, cfg EngineConfig, logger zerolog.Logger) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		store:  store,
		config: cfg,
		logger: logger,
	}, nil
}

// Prefix returns the namespace of this engine.
func (e *Engine) Prefix() string {
	return e.config.Prefix
}

// TTL returns the sliding expiration of this engine.
func (e *Engine) TTL() time.Duration {
	return e.config.TTL
}

// Key returns the namespaced outer key for a cache key.
func (e *Engine) Key(cacheKey string) string {
	return e.config.Prefix + ":" + cacheKey
}

// Lookup retrieves a cached entry.
// Returns ErrCacheMiss if nothing is stored under cacheKey. Any other error
// means the store could not be queried; callers should treat it as a miss.
//
// A hit rewrites the stored value and re-applies the TTL, so entries that
// keep being read never expire.
func (e *Engine) Lookup(ctx context.Context, cacheKey string) (*Entry, error) {
	key := e.Key(cacheKey)

	field, value, err := e.store.GetAnyField(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			CacheMisses.WithLabelValues(e.config.Prefix).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("lookup").Inc()
		return nil, fmt.Errorf("lookup %s: %w", key, err)
	}

	// A failed refresh only shortens the entry's life; the value is still good.
	if err := e.refresh(ctx, key, field, value); err != nil {
		CacheErrors.WithLabelValues("refresh").Inc()
		e.logger.Warn().Err(err).Str("key", key).Msg("Cache refresh failed")
	}

	CacheHits.WithLabelValues(e.config.Prefix).Inc()
	e.logger.Debug().
		Str("key", key).
		Str("content_type", field).
		Int("size", len(value)).
		Msg("Cache hit")

	return &Entry{
		Key:         cacheKey,
		ContentType: field,
		Body:        []byte(value),
	}, nil
}

// refresh re-writes the field and slides the TTL forward.
func (e *Engine) refresh(ctx context.Context, key, field, value string) error {
	if err := e.store.SetField(ctx, key, field, value); err != nil {
		return err
	}
	return e.store.Expire(ctx, key, e.config.TTL)
}

// Store writes body under cacheKey with the given content type and applies
// the TTL. Any variant previously stored under cacheKey is replaced.
// Empty bodies are not stored.
func (e *Engine) Store(ctx context.Context, cacheKey, contentType string, body []byte) error {
	if len(body) == 0 {
		return nil
	}

	key := e.Key(cacheKey)
	if err := e.store.ReplaceField(ctx, key, contentType, string(body), e.config.TTL); err != nil {
		CacheErrors.WithLabelValues("store").Inc()
		return fmt.Errorf("store %s: %w", key, err)
	}

	CacheStores.WithLabelValues(e.config.Prefix).Inc()
	CacheStoredBytes.WithLabelValues(e.config.Prefix).Observe(float64(len(body)))
	e.logger.Debug().
		Str("key", key).
		Str("content_type", contentType).
		Int("size", len(body)).
		Dur("ttl", e.config.TTL).
		Msg("Cached response")

	return nil
}

// Clean deletes every key under this engine's prefix and returns how many
// were removed.
func (e *Engine) Clean(ctx context.Context) (int, error) {
	pattern := escapeGlob(e.config.Prefix) + ":*"

	keys, err := e.store.Keys(ctx, pattern)
	if err != nil {
		CacheErrors.WithLabelValues("clean").Inc()
		return 0, fmt.Errorf("list keys %s: %w", pattern, err)
	}

	deleted := 0
	for batch := range slices.Chunk(keys, deleteBatchSize) {
		if err := e.store.Delete(ctx, batch...); err != nil {
			CacheErrors.WithLabelValues("clean").Inc()
			return deleted, fmt.Errorf("delete keys: %w", err)
		}
		deleted += len(batch)
	}

	CacheCleaned.WithLabelValues(e.config.Prefix).Add(float64(deleted))
	e.logger.Info().
		Str("prefix", e.config.Prefix).
		Int("deleted", deleted).
		Msg("Cache cleaned")

	return deleted, nil
}
