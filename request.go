package resolve

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// Request carries the facts the resolver needs from an incoming request:
// method, path, headers, parsed query multimap, cookies, and body access.
// The body is read in exactly one of four modes (JSON, text, binary,
// stream), at most once, driven by the route's body parameter declaration.
type Request struct {
	method     string
	path       string
	header     http.Header
	query      url.Values
	rawCookie  string
	remoteAddr string
	body       io.ReadCloser

	cookieOnce sync.Once
	cookies    map[string]string
}

// NewRequest adapts a *http.Request into the engine's request model.
func NewRequest(r *http.Request) *Request {
	return &Request{
		method:     r.Method,
		path:       r.URL.Path,
		header:     r.Header,
		query:      r.URL.Query(),
		rawCookie:  r.Header.Get("Cookie"),
		remoteAddr: r.RemoteAddr,
		body:       r.Body,
	}
}

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// Path returns the request path.
func (r *Request) Path() string { return r.path }

// Header returns the request headers.
func (r *Request) Header() http.Header { return r.header }

// Query returns the parsed query multimap. Multiple occurrences of the same
// key are preserved in order.
func (r *Request) Query() url.Values { return r.query }

// RemoteAddr returns the client address, when known.
func (r *Request) RemoteAddr() string { return r.remoteAddr }

// Cookies returns the parsed cookie map. Parsing happens once, on first use.
func (r *Request) Cookies() map[string]string {
	r.cookieOnce.Do(func() {
		r.cookies = parseCookies(r.rawCookie)
	})
	return r.cookies
}

// Cookie returns the named cookie value and whether it was present.
func (r *Request) Cookie(name string) (string, bool) {
	v, ok := r.Cookies()[name]
	return v, ok
}

// JSONBody reads the request body and parses it as JSON.
func (r *Request) JSONBody() (any, error) {
	data, err := r.BytesBody()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// TextBody reads the request body as text.
func (r *Request) TextBody() (string, error) {
	data, err := r.BytesBody()
	return string(data), err
}

// BytesBody reads the request body as raw bytes.
func (r *Request) BytesBody() ([]byte, error) {
	if r.body == nil {
		return nil, nil
	}
	defer r.body.Close() //nolint:errcheck // best-effort close after read
	return io.ReadAll(r.body)
}

// StreamBody returns the unread request body stream. The caller owns
// reading and closing it.
func (r *Request) StreamBody() io.ReadCloser {
	if r.body == nil {
		return http.NoBody
	}
	return r.body
}
