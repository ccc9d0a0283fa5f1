package resolve

// Route binds a (method, path) pair to a handler and its parameter
// declarations. The path may contain {name} placeholder segments; every
// placeholder must be covered by a path-location parameter reachable from
// the route's (possibly dependency-nested) declarations.
type Route struct {
	method     string
	path       string
	params     Params
	middleware []Middleware
	handler    HandlerFunc

	status   int
	wrapper  ResponseWrapper
	summary  string
	desc     string
	tags     []string
	inSchema bool
}

// RouteOption configures a route at registration time.
type RouteOption func(*Route)

// WithStatus sets the status code used when wrapping a plain handler
// return value. Defaults to 200.
func WithStatus(code int) RouteOption {
	return func(rt *Route) {
		rt.status = code
	}
}

// WithMiddleware attaches route-level middleware, the innermost layer of
// the effective chain.
func WithMiddleware(mws ...Middleware) RouteOption {
	return func(rt *Route) {
		rt.middleware = append(rt.middleware, mws...)
	}
}

// WithWrapper overrides the route's response wrapper.
func WithWrapper(w ResponseWrapper) RouteOption {
	return func(rt *Route) {
		rt.wrapper = w
	}
}

// WithSummary sets the spec summary for the route.
func WithSummary(s string) RouteOption {
	return func(rt *Route) {
		rt.summary = s
	}
}

// WithDescription sets the spec description for the route.
func WithDescription(d string) RouteOption {
	return func(rt *Route) {
		rt.desc = d
	}
}

// WithTags adds spec tags to the route.
func WithTags(tags ...string) RouteOption {
	return func(rt *Route) {
		rt.tags = append(rt.tags, tags...)
	}
}

// ExcludeFromDocs hides the route from the generated spec.
func ExcludeFromDocs() RouteOption {
	return func(rt *Route) {
		rt.inSchema = false
	}
}
