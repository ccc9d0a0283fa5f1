package resolve

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"
)

// Next is the continuation a middleware calls to pass control inward. The
// innermost continuation is the route-handling pipeline itself. Calling
// next more than once is caller error; the chain does not guard against it.
type Next func() (*Response, error)

// Middleware intercepts a request. It receives the request context and the
// continuation for the remaining chain; it may mutate the returned response
// on the way out, or return its own response without calling next to
// short-circuit.
type Middleware struct {
	Name   string
	Handle func(c *Context, next Next) (*Response, error)
}

// MiddlewareFunc wraps a bare function as an unnamed Middleware.
func MiddlewareFunc(h func(c *Context, next Next) (*Response, error)) Middleware {
	return Middleware{Handle: h}
}

// chainMiddleware composes an outermost-first middleware list around a
// terminal continuation into a single callable.
func chainMiddleware(mws []Middleware, c *Context, terminal Next) Next {
	next := terminal
	for i := len(mws) - 1; i >= 0; i-- {
		mw := mws[i]
		inner := next
		next = func() (*Response, error) {
			return mw.Handle(c, inner)
		}
	}
	return next
}

// Recovery returns middleware that converts panics in inner layers into a
// 500 response, logging the panic and stack.
func Recovery() Middleware {
	return Middleware{
		Name: "recovery",
		Handle: func(c *Context, next Next) (resp *Response, err error) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						"panic", rec,
						"stack", string(debug.Stack()),
						"method", c.Request().Method(),
						"path", c.Request().Path(),
					)
					resp = TextResponse(http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					err = nil
				}
			}()
			return next()
		},
	}
}

// Logger returns middleware that logs each request using the provided
// slog.Logger.
func Logger(logger *slog.Logger) Middleware {
	return Middleware{
		Name: "logger",
		Handle: func(c *Context, next Next) (*Response, error) {
			start := time.Now()
			resp, err := next()

			status := 0
			if resp != nil {
				status = resp.Status
			}
			attrs := []slog.Attr{
				slog.String("method", c.Request().Method()),
				slog.String("path", c.Request().Path()),
				slog.Int("status", status),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote", c.Request().RemoteAddr()),
			}
			if resp != nil {
				if id := resp.Header.Get(requestIDHeader); id != "" {
					attrs = append(attrs, slog.String("request_id", id))
				}
			}
			logger.LogAttrs(c.Context(), slog.LevelInfo, "request", attrs...)

			return resp, err
		},
	}
}
