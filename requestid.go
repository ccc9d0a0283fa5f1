package resolve

import "github.com/google/uuid"

const requestIDHeader = "X-Request-ID"

// RequestIDConfig configures the RequestID middleware.
type RequestIDConfig struct {
	Header    string        // default: "X-Request-ID"
	Generator func() string // default: UUIDv4
}

// RequestID returns middleware that assigns a unique request ID to each
// request. The ID is read from the request header (if present) or
// generated, and set on the response header.
func RequestID(cfg ...RequestIDConfig) Middleware {
	c := RequestIDConfig{
		Header:    requestIDHeader,
		Generator: uuid.NewString,
	}
	if len(cfg) > 0 {
		if cfg[0].Header != "" {
			c.Header = cfg[0].Header
		}
		if cfg[0].Generator != nil {
			c.Generator = cfg[0].Generator
		}
	}

	return Middleware{
		Name: "request_id",
		Handle: func(ctx *Context, next Next) (*Response, error) {
			id := ctx.Request().Header().Get(c.Header)
			if id == "" {
				id = c.Generator()
			}

			resp, err := next()
			if resp != nil {
				resp.Header.Set(c.Header, id)
			}
			return resp, err
		},
	}
}
