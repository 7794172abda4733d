package cache

import (
	"net/http"
	"sort"
	"strings"
)

// Normalize generates a deterministic cache key from a request path and its
// raw query string.
//
// Query parameters are split on '&' or ';' and sorted as opaque strings, so
// requests that differ only in parameter order share a key:
//
//	Normalize("/r", "q=2&p=1") == Normalize("/r", "p=1&q=2") == "/r?p=1&q=2"
//
// A request without a query string is keyed by its path alone.
func Normalize(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}

	params := strings.FieldsFunc(rawQuery, func(r rune) bool {
		return r == '&' || r == ';'
	})
	if len(params) == 0 {
		return path
	}

	// Pairs are compared as whole strings, not by parsed key/value.
	sort.Strings(params)

	return path + "?" + strings.Join(params, "&")
}

// RequestKey returns the normalized cache key for an HTTP request.
func RequestKey(r *http.Request) string {
	return Normalize(r.URL.Path, r.URL.RawQuery)
}
