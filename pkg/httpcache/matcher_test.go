package httpcache

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefix_WordBoundary(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   bool
	}{
		{"/foo", "/foo", true},
		{"/foo", "/foo/bar", true},
		{"/foo", "/foo?x=1", true},
		{"/foo", "/foo.json", true},
		{"/foo", "/foobar", false},
		{"/foo", "/foo_bar", false},
		{"/foo", "/bar/foo", false},
		{"/api/", "/api/users", true},
		{"/api/", "/api", false},
		{"/", "/anything", true},
		{"/v1.0", "/v1.0/x", true},
		{"/v1.0", "/v1x0", false},
	}

	for _, tt := range tests {
		t.Run(tt.prefix+" "+tt.path, func(t *testing.T) {
			p, err := Prefix(tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Match(tt.path))
		})
	}
}

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern(`~^/items/\d+$`)
	require.NoError(t, err)
	assert.True(t, p.Match("/items/42"))
	assert.False(t, p.Match("/items/abc"))
	assert.Equal(t, `~^/items/\d+$`, p.String())

	p, err = ParsePattern("/items")
	require.NoError(t, err)
	assert.True(t, p.Match("/items/42"))
	assert.Equal(t, "/items", p.String())

	_, err = ParsePattern("~(")
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	assert.Panics(t, func() { MustParsePattern("~[") })
}

func TestPattern_ZeroValue(t *testing.T) {
	var p Pattern
	assert.False(t, p.Match("/"))
}

func TestMatcher_Cacheable(t *testing.T) {
	m, err := NewMatcher("/api", []string{"/api/session", `~/private$`}, nil)
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"/api", true},
		{"/api/users", true},
		{"/api/session", false},
		{"/api/session/new", false},
		{"/api/sessions", true},
		{"/api/users/private", false},
		{"/apiv2", false},
		{"/other", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Cacheable(tt.path))
		})
	}
}

func TestMatcher_EmptyIncludeMatchesAll(t *testing.T) {
	m, err := NewMatcher("", []string{"/health"}, nil)
	require.NoError(t, err)

	assert.True(t, m.Cacheable("/"))
	assert.True(t, m.Cacheable("/anything/at/all"))
	assert.False(t, m.Cacheable("/health"))
}

func TestMatcher_Methods(t *testing.T) {
	all, err := NewMatcher("", nil, nil)
	require.NoError(t, err)
	assert.True(t, all.AllowsMethod(http.MethodPost))
	assert.True(t, all.AllowsMethod(http.MethodDelete))

	ro, err := NewMatcher("", nil, ReadOnlyMethods())
	require.NoError(t, err)
	assert.True(t, ro.AllowsMethod(http.MethodGet))
	assert.True(t, ro.AllowsMethod(http.MethodHead))
	assert.False(t, ro.AllowsMethod(http.MethodPost))

	lower, err := NewMatcher("", nil, []string{" get "})
	require.NoError(t, err)
	assert.True(t, lower.AllowsMethod(http.MethodGet))

	_, err = NewMatcher("", nil, []string{""})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewMatcher_InvalidPatterns(t *testing.T) {
	_, err := NewMatcher("~(", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewMatcher("/ok", []string{"~[z-a]"}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestReadOnlyMethods_Copy(t *testing.T) {
	methods := ReadOnlyMethods()
	methods[0] = "PATCH"
	assert.Equal(t, http.MethodGet, ReadOnlyMethods()[0])
}
