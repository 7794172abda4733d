package main

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/webcache/pkg/httpcache"
	"github.com/Sternrassler/webcache/pkg/logging"
	"github.com/Sternrassler/webcache/pkg/metrics"
)

// ReadyChecker reports whether the cache backend is reachable.
type ReadyChecker func(ctx context.Context) error

// Deps holds the dependencies of the demo router.
type Deps struct {
	Cache      *httpcache.Middleware
	ReadyCheck ReadyChecker // nil = always ready
	Logger     zerolog.Logger
}

// newRouter wires system endpoints outside the cache and the demo
// endpoints behind it.
func newRouter(deps Deps) http.Handler {
	app := &demoApp{}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(logging.AccessLog(deps.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(deps.ReadyCheck))
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(deps.Cache.Handler)
		r.Get("/count", app.count)
		r.Get("/count2", app.count)
		r.Get("/pages", app.page)
		r.Get("/err500", app.fail)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func readyHandler(check ReadyChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if check != nil {
			if err := check(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprint(w, "cache backend unavailable")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

// demoApp counts handler invocations so cache hits are visible to clients.
type demoApp struct {
	calls atomic.Int64
}

func (a *demoApp) count(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	fmt.Fprintf(w, `{"value":%d}`, a.calls.Add(1))
}

func (a *demoApp) page(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!doctype html><html><body><h1>Page %d</h1></body></html>", a.calls.Add(1))
}

func (a *demoApp) fail(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, `{"error":"Error%d"}`, a.calls.Add(1))
}
