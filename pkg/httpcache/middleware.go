// Package httpcache provides net/http middleware that serves repeated
// requests from a shared response cache.
//
// On a hit the stored content type and body are written directly and the
// wrapped handler is not invoked. On a miss the handler runs against an
// interceptor that forwards everything to the client and captures the
// response; successful non-empty responses are written through to the cache.
// Storage failures never change a response: lookups fall back to the handler
// and failed writes are logged and dropped.
//
//	mw, err := httpcache.New(ctx, cache.NewRedisStore(redisClient), httpcache.Options{
//		Path:    "/api",
//		Exclude: []string{"/api/session"},
//		Prefix:  "api-cache",
//		Expire:  time.Hour,
//	})
//	if err != nil {
//		return err
//	}
//	http.Handle("/", mw.Handler(apiHandler))
package httpcache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Sternrassler/webcache/pkg/cache"
	"github.com/Sternrassler/webcache/pkg/logging"
)

// Middleware caches handler responses in a cache.Engine.
type Middleware struct {
	engine       *cache.Engine
	matcher      *Matcher
	keyFunc      KeyFunc
	onStore      StoreFunc
	storeTimeout time.Duration
	maxBody      int64
	singleFlight bool
	group        singleflight.Group
	logger       zerolog.Logger
}

// New creates a caching middleware on top of store.
// When opts.Clean is set, every key under opts.Prefix is deleted before New returns.
func New(ctx context.Context, store cache.Store, opts Options) (*Middleware, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	matcher, err := NewMatcher(opts.Path, opts.Exclude, opts.Methods)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger("httpcache")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("prefix", opts.Prefix).Logger()

	ttl := opts.Expire
	if ttl == 0 {
		ttl = cache.DefaultTTL
	}

	engine, err := cache.NewEngine(store, cache.EngineConfig{
		Prefix: opts.Prefix,
		TTL:    ttl,
	}, logger)
	if err != nil {
		return nil, err
	}

	storeTimeout := opts.StoreTimeout
	if storeTimeout == 0 {
		storeTimeout = DefaultStoreTimeout
	}

	m := &Middleware{
		engine:       engine,
		matcher:      matcher,
		keyFunc:      opts.KeyFunc,
		onStore:      opts.OnStore,
		storeTimeout: storeTimeout,
		maxBody:      opts.MaxBodySize,
		singleFlight: !opts.DisableSingleFlight,
		logger:       logger,
	}

	if opts.Clean {
		if _, err := engine.Clean(ctx); err != nil {
			return nil, fmt.Errorf("clean cache: %w", err)
		}
	}

	return m, nil
}

// Engine returns the underlying cache engine.
func (m *Middleware) Engine() *cache.Engine {
	return m.engine
}

// Handler wraps next with the response cache.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.matcher.AllowsMethod(r.Method) {
			requestsBypassed.WithLabelValues(m.engine.Prefix(), "method").Inc()
			next.ServeHTTP(w, r)
			return
		}
		if !m.matcher.Cacheable(r.URL.Path) {
			requestsBypassed.WithLabelValues(m.engine.Prefix(), "path").Inc()
			next.ServeHTTP(w, r)
			return
		}

		key := m.cacheKey(r)

		entry, err := m.engine.Lookup(r.Context(), key)
		if err == nil {
			writeEntry(w, entry.ContentType, entry.Body)
			return
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			m.logger.Warn().Err(err).Str("key", key).Msg("Cache lookup failed, serving uncached")
		}

		if !m.singleFlight {
			m.serve(w, r, next, key)
			return
		}
		m.serveShared(w, r, next, key)
	})
}

// cacheKey derives the cache key, preferring the custom KeyFunc.
func (m *Middleware) cacheKey(r *http.Request) string {
	if m.keyFunc != nil {
		return m.keyFunc(r)
	}
	return cache.RequestKey(r)
}

// serve runs the handler behind a fresh interceptor and writes the captured
// response through to the cache when eligible.
func (m *Middleware) serve(w http.ResponseWriter, r *http.Request, next http.Handler, key string) *capture {
	ic := newInterceptor(w, m.maxBody)
	next.ServeHTTP(ic, r)

	res, ok := ic.finish()
	if !ok {
		return nil
	}

	// The client went away before the handler finished.
	if r.Context().Err() != nil {
		responsesUncacheable.WithLabelValues(m.engine.Prefix(), "aborted").Inc()
		return nil
	}

	switch {
	case res.status != http.StatusOK:
		responsesUncacheable.WithLabelValues(m.engine.Prefix(), "status").Inc()
	case len(res.body) == 0:
		responsesUncacheable.WithLabelValues(m.engine.Prefix(), "empty").Inc()
	default:
		m.store(r.Context(), key, res)
	}
	return res
}

// leaderPanic carries a handler panic out of the single-flight call so that
// it resurfaces in the request that caused it.
type leaderPanic struct {
	value any
}

var (
	errLeaderPanicked = errors.New("handler panicked")
	errLeaderGone     = errors.New("leading request went away")
)

// States of one request's single-flight closure. A request leads only if its
// closure moves from callPending to callRunning; a request whose context ends
// first moves it to callAbandoned so it can never touch the writer later.
const (
	callPending int32 = iota
	callRunning
	callAbandoned
)

// serveShared collapses concurrent misses for key into one handler run.
// Followers replay the leader's response when it was cacheable and run the
// handler themselves otherwise. A follower whose request ends while waiting
// returns without writing.
func (m *Middleware) serveShared(w http.ResponseWriter, r *http.Request, next http.Handler, key string) {
	var (
		state    atomic.Int32
		panicked *leaderPanic
	)

	ch := m.group.DoChan(key, func() (res any, err error) {
		if !state.CompareAndSwap(callPending, callRunning) {
			return nil, errLeaderGone
		}
		defer func() {
			if rec := recover(); rec != nil {
				panicked = &leaderPanic{value: rec}
				res, err = nil, errLeaderPanicked
			}
		}()
		return m.serve(w, r, next, key), nil
	})

	var result singleflight.Result
	select {
	case result = <-ch:
	case <-r.Context().Done():
		if state.CompareAndSwap(callPending, callAbandoned) {
			requestsAbandoned.WithLabelValues(m.engine.Prefix()).Inc()
			return
		}
		// This request leads and its handler is running with w.
		result = <-ch
	}

	if state.Load() == callRunning {
		if panicked != nil {
			panic(panicked.value)
		}
		return
	}

	if result.Err == nil {
		if res, _ := result.Val.(*capture); res.cacheable() {
			responsesShared.WithLabelValues(m.engine.Prefix()).Inc()
			writeEntry(w, res.contentType, res.body)
			return
		}
	}

	m.serve(w, r, next, key)
}

// store writes res through to the cache. Errors are logged and reported to
// OnStore but never reach the client.
func (m *Middleware) store(ctx context.Context, key string, res *capture) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.storeTimeout)
	defer cancel()

	err := m.engine.Store(ctx, key, res.contentType, res.body)
	if err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("Cache store failed")
	}
	if m.onStore != nil {
		m.onStore(key, err)
	}
}

// writeEntry serves a cached response.
func writeEntry(w http.ResponseWriter, contentType string, body []byte) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
