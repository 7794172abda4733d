// Package testutil provides testing utilities for the response cache.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// MockResponse defines the behavior for a mock origin response.
// The body may contain a single %d verb, replaced by the per-path call count.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockOrigin is a configurable origin handler that counts invocations per path.
type MockOrigin struct {
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	counts   map[string]int
	total    int
}

// NewMockOrigin creates a new mock origin.
func NewMockOrigin() *MockOrigin {
	return &MockOrigin{
		handlers: make(map[string]http.HandlerFunc),
		counts:   make(map[string]int),
	}
}

// ServeHTTP implements http.Handler.
func (m *MockOrigin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.total++
	m.counts[r.URL.Path]++
	handler, exists := m.handlers[r.URL.Path]
	m.mu.Unlock()

	if !exists {
		http.NotFound(w, r)
		return
	}
	handler(w, r)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockOrigin) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockOrigin) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		switch {
		case strings.Contains(resp.Body, "%d"):
			fmt.Fprintf(w, resp.Body, m.Count(path))
		case resp.Body != "":
			io.WriteString(w, resp.Body)
		}
	})
}

// Count returns the number of requests served for path.
func (m *MockOrigin) Count(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[path]
}

// Total returns the number of requests served for all paths.
func (m *MockOrigin) Total() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total
}

// NewCounterResponse returns a JSON body carrying the call count: {"value":N}.
func NewCounterResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"value":%d}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewHTMLResponse returns an HTML page carrying the call count.
func NewHTMLResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       "<html><body>%d</body></html>",
		Headers: map[string]string{
			"Content-Type": "text/html; charset=utf-8",
		},
	}
}

// NewServerErrorResponse returns a 500 with a distinct body per call.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":"Error%d"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewEmptyResponse returns a 200 without a body.
func NewEmptyResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
	}
}

// NewRedis starts an in-process Redis server and returns it with a connected client.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr:       mr.Addr(),
		MaxRetries: -1,
	})
	t.Cleanup(func() {
		client.Close()
	})
	return mr, client
}
