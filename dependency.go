package resolve

// HandlerFunc is the signature shared by route handlers and dependency
// handlers. The return value is coerced into a response (routes) or bound
// into the argument bag (dependencies). Returning a *Response as the error
// short-circuits the request with that response.
type HandlerFunc func(c *Context) (any, error)

// Dependency is a named, cacheable computation with its own parameter
// declarations. It can be referenced from routes or from other dependencies
// via Depends. The per-request cache keys on pointer identity, so two
// dependencies with identical declarations are still cached independently.
//
// Dependencies are created once at setup time and never mutated.
type Dependency struct {
	name     string
	useCache bool
	params   Params
	handle   HandlerFunc
}

// DependencyOption configures a Dependency at construction time.
type DependencyOption func(*Dependency)

// WithDependencyName names the dependency, for diagnostics and the
// generated spec.
func WithDependencyName(name string) DependencyOption {
	return func(d *Dependency) {
		d.name = name
	}
}

// WithoutCache disables per-request caching: the handler runs once for
// every reference instead of once per request.
func WithoutCache() DependencyOption {
	return func(d *Dependency) {
		d.useCache = false
	}
}

// NewDependency creates a dependency with the given parameter declarations
// and handler. Caching is enabled by default.
func NewDependency(params Params, handle HandlerFunc, opts ...DependencyOption) *Dependency {
	d := &Dependency{
		useCache: true,
		params:   params,
		handle:   handle,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the dependency's name, if one was set.
func (d *Dependency) Name() string { return d.name }

// depEntry is a cached dependency result: the handler's return value plus
// the resolved sub-arguments, kept so later references can re-flatten them.
type depEntry struct {
	value any
	args  Args
}

// depCache is the per-request dependency cache, keyed by identity. Created
// fresh for each request and discarded after.
type depCache map[*Dependency]depEntry
