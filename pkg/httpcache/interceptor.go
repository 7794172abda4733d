package httpcache

import (
	"bytes"
	"net/http"

	"github.com/Sternrassler/webcache/pkg/cache"
)

// interceptState tracks whether the handler's response has been finalized.
type interceptState int

const (
	statePending interceptState = iota
	stateFinished
)

// capture is a finalized response as observed by the interceptor.
type capture struct {
	status      int
	contentType string
	body        []byte
}

// cacheable reports whether the response may be stored.
func (c *capture) cacheable() bool {
	return c != nil && c.status == http.StatusOK && len(c.body) > 0
}

// interceptor wraps ResponseWriter for one request. Every write reaches the
// client unchanged and successful bodies are also teed into a buffer.
// WriteHeader records only the first final status code, matching net/http.
type interceptor struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
	maxBody     int64 // 0 means unlimited
	overflow    bool
	state       interceptState
}

func newInterceptor(w http.ResponseWriter, maxBody int64) *interceptor {
	return &interceptor{
		ResponseWriter: w,
		status:         http.StatusOK,
		maxBody:        maxBody,
	}
}

func (ic *interceptor) WriteHeader(code int) {
	// 1xx informational responses (except 101) precede the final status.
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		ic.ResponseWriter.WriteHeader(code)
		return
	}
	if !ic.wroteHeader {
		ic.status = code
		ic.wroteHeader = true
	}
	ic.ResponseWriter.WriteHeader(code)
}

func (ic *interceptor) Write(b []byte) (int, error) {
	if !ic.wroteHeader {
		// Sniff the same way net/http would, but into the header map we can read back.
		if _, ok := ic.Header()["Content-Type"]; !ok && len(b) > 0 {
			ic.Header().Set("Content-Type", http.DetectContentType(b))
		}
		ic.WriteHeader(http.StatusOK)
	}

	n, err := ic.ResponseWriter.Write(b)
	if ic.status == http.StatusOK && !ic.overflow {
		if ic.maxBody > 0 && int64(ic.body.Len()+n) > ic.maxBody {
			ic.overflow = true
			ic.body.Reset()
		} else {
			ic.body.Write(b[:n])
		}
	}
	return n, err
}

// Flush delegates to the underlying ResponseWriter if it implements http.Flusher.
func (ic *interceptor) Flush() {
	if !ic.wroteHeader {
		ic.WriteHeader(http.StatusOK)
	}
	if f, ok := ic.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter, allowing http.ResponseController
// and similar utilities to find interface implementations.
func (ic *interceptor) Unwrap() http.ResponseWriter {
	return ic.ResponseWriter
}

// finish moves the interceptor to the finished state and returns the
// captured response. Only the first call reports ok; later calls return nil.
func (ic *interceptor) finish() (*capture, bool) {
	if ic.state == stateFinished {
		return nil, false
	}
	ic.state = stateFinished

	c := &capture{
		status:      ic.status,
		contentType: cache.ParseContentType(ic.Header().Get("Content-Type")),
	}
	if !ic.overflow {
		c.body = ic.body.Bytes()
	}
	return c, true
}
