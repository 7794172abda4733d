package cache

import (
	"net/http/httptest"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		query string
		want  string
	}{
		{
			name: "path without query",
			path: "/count",
			want: "/count",
		},
		{
			name:  "single parameter",
			path:  "/r",
			query: "p=1",
			want:  "/r?p=1",
		},
		{
			name:  "already sorted",
			path:  "/r",
			query: "p=1&q=2",
			want:  "/r?p=1&q=2",
		},
		{
			name:  "reversed order",
			path:  "/r",
			query: "q=2&p=1",
			want:  "/r?p=1&q=2",
		},
		{
			name:  "semicolon delimiter",
			path:  "/r",
			query: "q=2;p=1",
			want:  "/r?p=1&q=2",
		},
		{
			name:  "mixed delimiters",
			path:  "/r",
			query: "z=9;a=1&m=5",
			want:  "/r?a=1&m=5&z=9",
		},
		{
			name:  "pairs compared as whole strings",
			path:  "/r",
			query: "a=2&a=10",
			want:  "/r?a=10&a=2",
		},
		{
			name:  "empty segments dropped",
			path:  "/r",
			query: "q=2&&p=1&",
			want:  "/r?p=1&q=2",
		},
		{
			name:  "only delimiters",
			path:  "/r",
			query: "&;&",
			want:  "/r",
		},
		{
			name:  "valueless flag",
			path:  "/r",
			query: "verbose&id=3",
			want:  "/r?id=3&verbose",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.path, tt.query); got != tt.want {
				t.Errorf("Normalize(%q, %q) = %q, want %q", tt.path, tt.query, got, tt.want)
			}
		})
	}
}

// TestNormalize_OrderIndependent ensures permutations collapse to one key.
func TestNormalize_OrderIndependent(t *testing.T) {
	permutations := []string{
		"a=1&b=2&c=3",
		"a=1&c=3&b=2",
		"b=2&a=1&c=3",
		"b=2&c=3&a=1",
		"c=3&a=1&b=2",
		"c=3&b=2&a=1",
	}

	first := Normalize("/items", permutations[0])
	for _, q := range permutations[1:] {
		if got := Normalize("/items", q); got != first {
			t.Errorf("Normalize(%q) = %q, want %q", q, got, first)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	key := Normalize("/r", "q=2&p=1")
	again := Normalize("/r", key[len("/r?"):])
	if again != key {
		t.Errorf("normalizing twice = %q, want %q", again, key)
	}
}

func TestRequestKey(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.com/r?q=2&p=1", nil)
	if got, want := RequestKey(req), "/r?p=1&q=2"; got != want {
		t.Errorf("RequestKey() = %q, want %q", got, want)
	}
}
