package httpcache

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"
)

// regexpMarker introduces a custom regular expression in ParsePattern.
const regexpMarker = "~"

// Pattern matches request paths.
type Pattern struct {
	re     *regexp.Regexp
	source string
}

// Prefix returns a pattern matching paths that start with s followed by a
// word boundary: "/foo" matches "/foo" and "/foo/bar" but not "/foobar".
// When s ends in a non-word character (e.g. "/api/") it is a plain prefix.
func Prefix(s string) (Pattern, error) {
	expr := "^" + regexp.QuoteMeta(s)
	if last, _ := utf8.DecodeLastRuneInString(s); isWordChar(last) {
		expr += `\b`
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: prefix %q: %v", ErrInvalidConfig, s, err)
	}
	return Pattern{re: re, source: s}, nil
}

// Regexp returns a pattern using expr as-is.
func Regexp(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: pattern %q: %v", ErrInvalidConfig, expr, err)
	}
	return Pattern{re: re, source: regexpMarker + expr}, nil
}

// ParsePattern parses the textual form used in configuration:
// "~expr" is a regular expression, anything else is a Prefix.
func ParsePattern(s string) (Pattern, error) {
	if expr, ok := strings.CutPrefix(s, regexpMarker); ok {
		return Regexp(expr)
	}
	return Prefix(s)
}

// MustParsePattern is like ParsePattern but panics on error.
func MustParsePattern(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether path matches the pattern.
func (p Pattern) Match(path string) bool {
	return p.re != nil && p.re.MatchString(path)
}

// String returns the textual form of the pattern.
func (p Pattern) String() string {
	return p.source
}

func isWordChar(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}

// Matcher decides per request whether the cache applies.
// Only the path is inspected unless a method allow-list is configured.
type Matcher struct {
	include *Pattern // nil matches every path
	exclude []Pattern
	methods map[string]struct{} // empty allows every method
}

// NewMatcher builds a matcher from textual patterns.
// An empty include pattern matches every path.
func NewMatcher(include string, exclude, methods []string) (*Matcher, error) {
	m := &Matcher{}

	if include != "" {
		p, err := ParsePattern(include)
		if err != nil {
			return nil, err
		}
		m.include = &p
	}

	for _, s := range exclude {
		p, err := ParsePattern(s)
		if err != nil {
			return nil, err
		}
		m.exclude = append(m.exclude, p)
	}

	if len(methods) > 0 {
		m.methods = make(map[string]struct{}, len(methods))
		for _, method := range methods {
			method = strings.ToUpper(strings.TrimSpace(method))
			if method == "" {
				return nil, fmt.Errorf("%w: empty method", ErrInvalidConfig)
			}
			m.methods[method] = struct{}{}
		}
	}

	return m, nil
}

// Cacheable reports whether path matches the inclusion pattern and none of
// the exclusion patterns.
func (m *Matcher) Cacheable(path string) bool {
	if m.include != nil && !m.include.Match(path) {
		return false
	}
	for _, p := range m.exclude {
		if p.Match(path) {
			return false
		}
	}
	return true
}

// AllowsMethod reports whether requests with method may use the cache.
func (m *Matcher) AllowsMethod(method string) bool {
	if len(m.methods) == 0 {
		return true
	}
	_, ok := m.methods[method]
	return ok
}

// defaultMethods is a convenience allow-list for read-only traffic.
var defaultMethods = []string{http.MethodGet, http.MethodHead}

// ReadOnlyMethods returns the GET/HEAD allow-list.
func ReadOnlyMethods() []string {
	return append([]string(nil), defaultMethods...)
}
