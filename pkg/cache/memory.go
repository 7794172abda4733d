package cache

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

// DefaultMemorySize is the default maximum number of outer keys kept by a MemoryStore.
const DefaultMemorySize = 5000

// hash is an immutable snapshot of the fields stored under one key.
type hash struct {
	fields    map[string]string
	expiresAt time.Time // zero means no expiry
}

func (h hash) expired(now time.Time) bool {
	return !h.expiresAt.IsZero() && !now.Before(h.expiresAt)
}

// MemoryStore is an in-process Store backed by an otter W-TinyLFU cache.
// It is meant for single-instance deployments and tests.
type MemoryStore struct {
	cache *otter.Cache[string, hash]
	now   func() time.Time

	// mu serializes read-modify-write of a hash
	mu sync.Mutex
}

// NewMemoryStore creates an in-memory store holding at most maxSize keys.
func NewMemoryStore(maxSize int) (*MemoryStore, error) {
	return NewMemoryStoreWithTimeFunc(maxSize, time.Now)
}

// NewMemoryStoreWithTimeFunc creates an in-memory store using now as its clock.
func NewMemoryStoreWithTimeFunc(maxSize int, now func() time.Time) (*MemoryStore, error) {
	if maxSize <= 0 {
		maxSize = DefaultMemorySize
	}
	c, err := otter.New[string, hash](&otter.Options[string, hash]{
		MaximumSize: maxSize,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory store: %w", err)
	}
	return &MemoryStore{cache: c, now: now}, nil
}

// peek returns the live hash at key. Expired hashes are reported missing but
// left in place; only writers holding mu remove them.
func (m *MemoryStore) peek(key string) (hash, bool) {
	h, ok := m.cache.GetIfPresent(key)
	if !ok || h.expired(m.now()) {
		return hash{}, false
	}
	return h, true
}

// load is peek for writers: it drops an expired hash. Callers must hold mu.
func (m *MemoryStore) load(key string) (hash, bool) {
	h, ok := m.cache.GetIfPresent(key)
	if !ok {
		return hash{}, false
	}
	if h.expired(m.now()) {
		m.cache.Invalidate(key)
		return hash{}, false
	}
	return h, true
}

// GetField retrieves a single field.
func (m *MemoryStore) GetField(_ context.Context, key, field string) (string, error) {
	h, ok := m.peek(key)
	if !ok {
		return "", ErrNotFound
	}
	val, ok := h.fields[field]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

// GetAnyField retrieves the lexically smallest field under key.
func (m *MemoryStore) GetAnyField(_ context.Context, key string) (string, string, error) {
	h, ok := m.peek(key)
	if !ok || len(h.fields) == 0 {
		return "", "", ErrNotFound
	}
	names := slices.Sorted(maps.Keys(h.fields))
	return names[0], h.fields[names[0]], nil
}

// SetField sets a single field, keeping the other fields and the TTL.
func (m *MemoryStore) SetField(_ context.Context, key, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, _ := m.load(key)
	fields := make(map[string]string, len(h.fields)+1)
	maps.Copy(fields, h.fields)
	fields[field] = value

	m.cache.Set(key, hash{fields: fields, expiresAt: h.expiresAt})
	return nil
}

// ReplaceField swaps the whole hash in one Set.
func (m *MemoryStore) ReplaceField(_ context.Context, key, field, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := hash{fields: map[string]string{field: value}}
	if ttl > 0 {
		h.expiresAt = m.now().Add(ttl)
	}
	m.cache.Set(key, h)
	return nil
}

// Expire sets the TTL of key. A missing key is ignored, as in Redis.
func (m *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.load(key)
	if !ok {
		return nil
	}
	if ttl <= 0 {
		m.cache.Invalidate(key)
		return nil
	}
	m.cache.Set(key, hash{fields: h.fields, expiresAt: m.now().Add(ttl)})
	return nil
}

// Keys lists live keys matching a glob pattern.
func (m *MemoryStore) Keys(_ context.Context, pattern string) ([]string, error) {
	re, err := globRegexp(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	now := m.now()
	var keys []string
	for key, h := range m.cache.All() {
		if h.expired(now) {
			continue
		}
		if re.MatchString(key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Delete removes keys.
func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.cache.Invalidate(key)
	}
	return nil
}

// globRegexp compiles a Redis-style glob. Unlike path.Match, '*' also
// matches '/', which appears in every URL-derived key.
func globRegexp(pattern string) (*regexp.Regexp, error) {
	runes := []rune(pattern)
	var b strings.Builder
	b.WriteString("^")
	inClass := false
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\\' && i+1 < len(runes):
			i++
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		case inClass:
			if c == ']' {
				inClass = false
			}
			b.WriteRune(c)
		case c == '*':
			b.WriteString("(?s:.*)")
		case c == '?':
			b.WriteString("(?s:.)")
		case c == '[':
			inClass = true
			b.WriteRune(c)
			if i+1 < len(runes) && runes[i+1] == '^' {
				i++
				b.WriteRune('^')
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
