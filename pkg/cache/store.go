package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by a Store when the requested key or field does not exist.
var ErrNotFound = errors.New("not found")

// Store is a hash-oriented key/value backend.
//
// Each outer key holds a set of fields; expiration applies to the outer key
// as a whole. Implementations report transport failures as errors and never
// panic on them.
type Store interface {
	// GetField returns the value of field under key.
	GetField(ctx context.Context, key, field string) (string, error)

	// GetAnyField returns a field and its value under key, for callers that
	// do not know which field exists.
	GetAnyField(ctx context.Context, key string) (field, value string, err error)

	// SetField sets field under key to value.
	SetField(ctx context.Context, key, field, value string) error

	// ReplaceField atomically replaces every field under key with the single
	// field/value pair and sets the key's TTL.
	ReplaceField(ctx context.Context, key, field, value string, ttl time.Duration) error

	// Expire sets the TTL of key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Keys lists keys matching a glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}

// escapeGlob quotes glob metacharacters so s matches itself literally.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
