// Package resolve is a declarative request-routing and parameter-resolution
// engine for HTTP services. Routes declare their parameters once (path
// segments, query strings, headers, cookies, and bodies) and the framework
// handles matching, parsing, validation, dependency injection with
// per-request caching, and OpenAPI 3.1 spec generation.
//
// Routes are registered on a Router with an explicit parameter map:
//
//	r := resolve.New(resolve.WithTitle("My API"), resolve.WithVersion("1.0.0"))
//	r.Get("/items/{itemId}", resolve.Params{
//	    "itemId": resolve.Path(resolve.Int{}),
//	    "q":      resolve.Query(resolve.Optional{Of: resolve.String{}}),
//	}, func(c *resolve.Context) (any, error) {
//	    return map[string]any{"id": c.Arg("itemId"), "q": c.Arg("q")}, nil
//	})
//
// Reusable computations are expressed as dependencies. A dependency declares
// its own parameters, runs at most once per request (unless caching is
// disabled), and its result and sub-parameters are flattened into the
// argument bag of whatever declares it:
//
//	user := resolve.NewDependency(resolve.Params{
//	    "token": resolve.Header(resolve.String{}),
//	}, lookupUser, resolve.WithDependencyName("current_user"))
//
//	r.Get("/me", resolve.Params{"user": resolve.Depends(user)}, me)
//
// Middleware wraps the whole pipeline as a continuation chain:
//
//	r.Use(resolve.Recovery(), resolve.Logger(slog.Default()))
//
// Validation failures never abort resolution early; every declared parameter
// is attempted and the client receives the aggregated error list as a 422
// response. A handler or dependency can short-circuit the request by
// returning a *Response as its error; the response is used as-is.
//
// OpenAPI 3.1 specs are generated from registered routes:
//
//	r.ServeSpec("/openapi.json")
package resolve
