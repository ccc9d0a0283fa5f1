package resolve

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Response is the engine's response model: a status code, headers, and a
// fully materialized body. Middleware may inspect and rewrite any of the
// three on the way out.
//
// Response implements error so that a handler or dependency can return one
// as its error value to short-circuit the request: the dispatcher uses it
// as the final response directly, bypassing the error handler.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewResponse creates a response with the given status and body.
func NewResponse(status int, body []byte) *Response {
	return &Response{Status: status, Header: make(http.Header), Body: body}
}

// Error implements error, enabling response-as-signal short-circuiting.
func (r *Response) Error() string {
	return fmt.Sprintf("response with status %d", r.Status)
}

// ResponseWrapper coerces a plain handler return value into a response with
// the given status code. A *Response returned by a handler bypasses the
// wrapper entirely.
type ResponseWrapper func(v any, status int) (*Response, error)

// JSONWrapper encodes the value as JSON. It is the default response wrapper.
func JSONWrapper(v any, status int) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	resp := NewResponse(status, body)
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

// TextWrapper renders the value with fmt and a text/plain content type.
func TextWrapper(v any, status int) (*Response, error) {
	resp := NewResponse(status, fmt.Appendf(nil, "%v", v))
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return resp, nil
}

// JSONResponse builds a JSON response, panicking on encoding failure. Meant
// for response-as-signal values built from known-good data:
//
//	return nil, resolve.JSONResponse(map[string]string{"detail": "forbidden"}, 403)
func JSONResponse(v any, status int) *Response {
	resp, err := JSONWrapper(v, status)
	if err != nil {
		panic(err)
	}
	return resp
}

// TextResponse builds a plain text response.
func TextResponse(s string, status int) *Response {
	resp := NewResponse(status, []byte(s))
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return resp
}

func notFoundResponse() *Response {
	return JSONResponse(map[string]string{"detail": "Not Found"}, http.StatusNotFound)
}

func methodNotAllowedResponse(allowed []string) *Response {
	resp := JSONResponse(map[string]string{"detail": "Method Not Allowed"}, http.StatusMethodNotAllowed)
	resp.Header.Set("Allow", strings.Join(allowed, ", "))
	return resp
}

// validationErrorResponse renders the aggregated error list as a 422.
func validationErrorResponse(errs []FieldError) *Response {
	return JSONResponse(map[string]any{"errors": errs}, http.StatusUnprocessableEntity)
}

// writeResponse writes a Response to an http.ResponseWriter.
func writeResponse(w http.ResponseWriter, resp *Response) {
	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.Status)
	w.Write(resp.Body) //nolint:errcheck // best-effort after WriteHeader
}
