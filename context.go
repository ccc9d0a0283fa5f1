package resolve

import (
	"context"
	"sync"
)

// Args is the resolved argument bag handed to handlers: validated parameter
// values, dependency results, and flattened dependency sub-parameters, all
// keyed by declared name.
type Args map[string]any

// Context carries per-request state through resolution, handlers, and
// middleware: the request facts, matched path parameters, the resolved
// argument bag, and the deferred-callback queue. A fresh Context is built
// for every request and never shared across requests.
type Context struct {
	ctx        context.Context
	req        *Request
	pathParams map[string]string
	args       Args
	deferred   *deferredQueue
}

func newContext(ctx context.Context, req *Request, pathParams map[string]string) *Context {
	return &Context{
		ctx:        ctx,
		req:        req,
		pathParams: pathParams,
		deferred:   &deferredQueue{},
	}
}

// withArgs returns a Context sharing all request-scoped state but carrying
// its own argument bag. Used to hand a dependency its own resolved
// parameters, pre-flattening.
func (c *Context) withArgs(args Args) *Context {
	child := *c
	child.args = args
	return &child
}

// Context returns the request's context.Context.
func (c *Context) Context() context.Context { return c.ctx }

// Request returns the request facts.
func (c *Context) Request() *Request { return c.req }

// Args returns the resolved argument bag.
func (c *Context) Args() Args { return c.args }

// Arg returns a single resolved argument, or nil when absent.
func (c *Context) Arg(name string) any { return c.args[name] }

// PathValue returns the raw value of a matched path placeholder.
func (c *Context) PathValue(name string) string { return c.pathParams[name] }

// Later registers a callback to run after the final response for this
// request has been determined. Callbacks run in registration order, in the
// background; the response is never delayed waiting for them.
func (c *Context) Later(cb func(*Response)) {
	c.deferred.add(cb)
}

// deferredQueue collects callbacks registered during resolution and fires
// them once the response is known.
type deferredQueue struct {
	mu  sync.Mutex
	cbs []func(*Response)
}

func (q *deferredQueue) add(cb func(*Response)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cbs = append(q.cbs, cb)
}

// run fires the registered callbacks with the final response, in
// registration order, on a background goroutine.
func (q *deferredQueue) run(resp *Response) {
	q.mu.Lock()
	cbs := q.cbs
	q.cbs = nil
	q.mu.Unlock()

	if len(cbs) == 0 {
		return
	}
	go func() {
		for _, cb := range cbs {
			cb(resp)
		}
	}()
}
