package httpcache

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/webcache/pkg/cache"
)

// ErrInvalidConfig is returned by New for unusable options.
var ErrInvalidConfig = cache.ErrInvalidConfig

// DefaultStoreTimeout bounds the write-through after a handler finishes.
const DefaultStoreTimeout = 2 * time.Second

// KeyFunc derives a cache key from a request. Its output is used verbatim.
type KeyFunc func(r *http.Request) string

// StoreFunc is called after every write-through attempt with the cache key
// and the store error, if any.
type StoreFunc func(key string, err error)

// Options configures a Middleware. The value is copied by New; changing it
// afterwards has no effect on the middleware.
type Options struct {
	// Path is the inclusion pattern (see ParsePattern). Empty matches every path.
	Path string

	// Exclude lists patterns that bypass the cache even when Path matches.
	Exclude []string

	// Methods restricts caching to these HTTP methods. Empty allows every
	// method; only the path takes part in matching and key derivation then.
	Methods []string

	// Prefix namespaces all keys in the store. Required.
	Prefix string

	// Expire is the sliding TTL of every entry. Zero means cache.DefaultTTL.
	Expire time.Duration

	// Clean deletes every key under Prefix when the middleware is created.
	Clean bool

	// KeyFunc overrides the default URL normalization when non-nil.
	KeyFunc KeyFunc

	// OnStore is called after each write-through when non-nil.
	OnStore StoreFunc

	// StoreTimeout bounds each write-through. Zero means DefaultStoreTimeout.
	StoreTimeout time.Duration

	// MaxBodySize skips caching of responses larger than this many bytes.
	// Zero means no limit.
	MaxBodySize int64

	// DisableSingleFlight lets concurrent misses for one key each run the handler.
	DisableSingleFlight bool

	// Logger overrides the component logger when non-nil.
	Logger *zerolog.Logger
}

// DefaultOptions returns the default middleware options.
func DefaultOptions() Options {
	return Options{
		Prefix:       cache.DefaultPrefix,
		Expire:       cache.DefaultTTL,
		StoreTimeout: DefaultStoreTimeout,
	}
}

// Validate checks the options without touching the store.
func (o Options) Validate() error {
	if o.Prefix == "" {
		return fmt.Errorf("%w: prefix must not be empty", ErrInvalidConfig)
	}
	if o.Expire != 0 && o.Expire < time.Second {
		return fmt.Errorf("%w: expire must be at least one second (got %s)", ErrInvalidConfig, o.Expire)
	}
	if o.StoreTimeout < 0 {
		return fmt.Errorf("%w: store timeout must not be negative", ErrInvalidConfig)
	}
	if o.MaxBodySize < 0 {
		return fmt.Errorf("%w: max body size must not be negative", ErrInvalidConfig)
	}
	return nil
}
