package resolve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ErrorHandler turns an unhandled error from a handler, dependency, or
// middleware into a response. It must not return nil.
type ErrorHandler func(c *Context, err error) *Response

// Router is the central type: it holds the route tree, application-level
// middleware and parameter declarations, and spec metadata. Registration
// happens during setup, before serving; the request path reads only.
//
// Router implements http.Handler.
type Router struct {
	trie   *trie
	routes []*Route

	middleware []Middleware
	params     Params

	title    string
	version  string
	rootPath string

	securitySchemes map[string]SecurityScheme

	wrapper      ResponseWrapper
	errorHandler ErrorHandler
	logger       *slog.Logger

	specOnce sync.Once
	spec     *OpenAPISpec

	mu sync.Mutex
}

// Option configures a Router.
type Option func(*Router)

// WithTitle sets the API title (used in the generated spec).
func WithTitle(title string) Option {
	return func(r *Router) {
		r.title = title
	}
}

// WithVersion sets the API version (used in the generated spec).
func WithVersion(version string) Option {
	return func(r *Router) {
		r.version = version
	}
}

// WithRootPath prefixes every registered route path.
func WithRootPath(prefix string) Option {
	return func(r *Router) {
		r.rootPath = normalizePath(prefix)
	}
}

// WithSecurityScheme registers a named security scheme for the generated
// spec.
func WithSecurityScheme(name string, scheme SecurityScheme) Option {
	return func(r *Router) {
		if r.securitySchemes == nil {
			r.securitySchemes = make(map[string]SecurityScheme)
		}
		r.securitySchemes[name] = scheme
	}
}

// WithResponseWrapper sets the default response wrapper for all routes.
func WithResponseWrapper(w ResponseWrapper) Option {
	return func(r *Router) {
		r.wrapper = w
	}
}

// WithErrorHandler overrides the handler for unhandled errors.
func WithErrorHandler(h ErrorHandler) Option {
	return func(r *Router) {
		r.errorHandler = h
	}
}

// WithRouterParams declares router-level parameters merged into every
// route's declarations. Route-level declarations take precedence.
func WithRouterParams(params Params) Option {
	return func(r *Router) {
		r.params = params
	}
}

// WithLogger sets the logger used by the default error handler.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// New creates a Router with the given options.
func New(opts ...Option) *Router {
	r := &Router{
		trie:    newTrie(),
		wrapper: JSONWrapper,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use appends application-level middleware, the outermost layers of every
// route's chain. Middleware runs in the order added.
func (r *Router) Use(mws ...Middleware) {
	r.middleware = append(r.middleware, mws...)
	r.trie.setMiddleware("", r.middleware)
}

// Handle registers a route for an arbitrary method.
func (r *Router) Handle(method, path string, params Params, h HandlerFunc, opts ...RouteOption) {
	r.addRoute(method, path, mergeParams(r.params, params), h, opts...)
}

// Get registers a GET route.
func (r *Router) Get(path string, params Params, h HandlerFunc, opts ...RouteOption) {
	r.Handle(http.MethodGet, path, params, h, opts...)
}

// Post registers a POST route.
func (r *Router) Post(path string, params Params, h HandlerFunc, opts ...RouteOption) {
	r.Handle(http.MethodPost, path, params, h, opts...)
}

// Put registers a PUT route.
func (r *Router) Put(path string, params Params, h HandlerFunc, opts ...RouteOption) {
	r.Handle(http.MethodPut, path, params, h, opts...)
}

// Patch registers a PATCH route.
func (r *Router) Patch(path string, params Params, h HandlerFunc, opts ...RouteOption) {
	r.Handle(http.MethodPatch, path, params, h, opts...)
}

// Delete registers a DELETE route.
func (r *Router) Delete(path string, params Params, h HandlerFunc, opts ...RouteOption) {
	r.Handle(http.MethodDelete, path, params, h, opts...)
}

// addRoute builds the Route, applies options, and stores it in the tree.
// Parameter layering (router < group < route) has already happened.
func (r *Router) addRoute(method, path string, params Params, h HandlerFunc, opts ...RouteOption) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt := &Route{
		method:   method,
		path:     normalizePath(r.rootPath + normalizePath(path)),
		params:   params,
		handler:  h,
		status:   http.StatusOK,
		wrapper:  r.wrapper,
		inSchema: true,
	}
	for _, opt := range opts {
		opt(rt)
	}

	r.trie.register(rt)
	r.routes = append(r.routes, rt)
}

// Dispatch resolves a request into a response: match, build the terminal
// continuation, run the middleware chain, catch response-as-signal errors,
// delegate the rest to the error handler, and fire deferred callbacks once
// the response is known.
func (r *Router) Dispatch(ctx context.Context, req *Request) *Response {
	m := r.trie.match(req.Method(), req.Path())
	c := newContext(ctx, req, m.params)

	var terminal Next
	switch m.kind {
	case matchNotFound:
		terminal = func() (*Response, error) {
			return notFoundResponse(), nil
		}
	case matchNoMethod:
		terminal = func() (*Response, error) {
			return methodNotAllowedResponse(m.allowed), nil
		}
	default:
		terminal = r.terminalFor(m.route, c)
	}

	resp, err := chainMiddleware(m.middleware, c, terminal)()
	if err != nil {
		var signal *Response
		if errors.As(err, &signal) {
			resp = signal
		} else {
			resp = r.handleError(c, err)
		}
	}
	if resp == nil {
		resp = TextResponse(http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}

	c.deferred.run(resp)
	return resp
}

// terminalFor builds the innermost continuation for a matched route:
// resolve arguments, invoke the handler, coerce the result.
func (r *Router) terminalFor(rt *Route, c *Context) Next {
	return func() (*Response, error) {
		args, ferrs, err := resolveArgs(rt.params, c, make(depCache))
		if err != nil {
			return nil, err
		}
		if len(ferrs) > 0 {
			return validationErrorResponse(ferrs), nil
		}

		c.args = args
		out, err := rt.handler(c)
		if err != nil {
			return nil, err
		}
		if resp, ok := out.(*Response); ok {
			return resp, nil
		}
		return rt.wrapper(out, rt.status)
	}
}

func (r *Router) handleError(c *Context, err error) *Response {
	if r.errorHandler != nil {
		return r.errorHandler(c, err)
	}
	r.logger.Error("unhandled error",
		"err", err,
		"method", c.Request().Method(),
		"path", c.Request().Path(),
	)
	return JSONResponse(map[string]string{"detail": "Internal Server Error"}, http.StatusInternalServerError)
}

// ServeHTTP implements http.Handler by adapting net/http's request and
// response types to the engine's models.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	writeResponse(w, r.Dispatch(req.Context(), NewRequest(req)))
}

// ListenAndServe starts an HTTP server on the given address. It blocks
// until the context is cancelled, then shuts down gracefully.
func (r *Router) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
