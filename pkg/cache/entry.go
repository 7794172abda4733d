package cache

import (
	"mime"
	"strings"
)

// Entry represents a cached response.
type Entry struct {
	// Key is the cache key (without the namespace prefix)
	Key string

	// ContentType is the short media type of the response (e.g. "application/json").
	// Empty when the response declared none or an unparsable one.
	ContentType string

	// Body is the full response payload
	Body []byte
}

// Size returns the payload size in bytes.
func (e *Entry) Size() int {
	return len(e.Body)
}

// ParseContentType extracts the "type/subtype" token from a Content-Type
// header value. Parameters such as charset are dropped.
// Returns an empty string if the header is empty or malformed.
func ParseContentType(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		// A broken parameter list still leaves a usable media type.
		if err != mime.ErrInvalidMediaParameter {
			return ""
		}
	}

	typ, sub, ok := strings.Cut(mediaType, "/")
	if !ok || typ == "" || sub == "" {
		return ""
	}
	return mediaType
}
