package resolve

import "net/http"

// Group is a collection of routes under a shared path prefix with shared
// middleware, parameter declarations, and tags. Group middleware is
// attached to the tree node at the prefix, so the matcher's accumulation
// order yields application middleware, then group middleware, then route
// middleware.
type Group struct {
	router     *Router
	prefix     string
	params     Params
	middleware []Middleware
	tags       []string
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithGroupMiddleware attaches middleware to the group's prefix node.
func WithGroupMiddleware(mws ...Middleware) GroupOption {
	return func(g *Group) {
		g.middleware = append(g.middleware, mws...)
	}
}

// WithGroupParams declares group-level parameters merged into every route
// registered on the group. Route-level declarations take precedence.
func WithGroupParams(params Params) GroupOption {
	return func(g *Group) {
		g.params = params
	}
}

// WithGroupTags adds default spec tags to all routes registered on the
// group.
func WithGroupTags(tags ...string) GroupOption {
	return func(g *Group) {
		g.tags = append(g.tags, tags...)
	}
}

// Group creates a route group under the given prefix.
func (r *Router) Group(prefix string, opts ...GroupOption) *Group {
	g := &Group{
		router: r,
		prefix: normalizePath(prefix),
	}
	for _, opt := range opts {
		opt(g)
	}
	if len(g.middleware) > 0 {
		r.trie.setMiddleware(normalizePath(r.rootPath+g.prefix), g.middleware)
	}
	return g
}

// Handle registers a route on the group for an arbitrary method. Parameter
// precedence is route over group over router, merged once here.
func (g *Group) Handle(method, path string, params Params, h HandlerFunc, opts ...RouteOption) {
	merged := mergeParams(g.router.params, g.params, params)
	if len(g.tags) > 0 {
		opts = append([]RouteOption{WithTags(g.tags...)}, opts...)
	}
	g.router.addRoute(method, g.prefix+normalizePath(path), merged, h, opts...)
}

// Get registers a GET route on the group.
func (g *Group) Get(path string, params Params, h HandlerFunc, opts ...RouteOption) {
	g.Handle(http.MethodGet, path, params, h, opts...)
}

// Post registers a POST route on the group.
func (g *Group) Post(path string, params Params, h HandlerFunc, opts ...RouteOption) {
	g.Handle(http.MethodPost, path, params, h, opts...)
}

// Put registers a PUT route on the group.
func (g *Group) Put(path string, params Params, h HandlerFunc, opts ...RouteOption) {
	g.Handle(http.MethodPut, path, params, h, opts...)
}

// Patch registers a PATCH route on the group.
func (g *Group) Patch(path string, params Params, h HandlerFunc, opts ...RouteOption) {
	g.Handle(http.MethodPatch, path, params, h, opts...)
}

// Delete registers a DELETE route on the group.
func (g *Group) Delete(path string, params Params, h HandlerFunc, opts ...RouteOption) {
	g.Handle(http.MethodDelete, path, params, h, opts...)
}
