package resolve

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resolverContext builds a request context for exercising resolveArgs
// directly, outside the dispatch pipeline.
func resolverContext(target string, pathParams map[string]string, mutate func(r *Request)) *Context {
	req := NewRequest(httptest.NewRequest("GET", target, nil))
	if mutate != nil {
		mutate(req)
	}
	return newContext(context.Background(), req, pathParams)
}

func TestResolveArgs_locations(t *testing.T) {
	t.Parallel()

	c := resolverContext("/items/7?q=hello&tag=a&tag=b", map[string]string{"id": "7"}, func(r *Request) {
		r.header.Set("X-Token", "secret")
		r.rawCookie = "session=abc123"
	})

	params := Params{
		"id":      Path(Int{}),
		"q":       Query(String{}),
		"tag":     Query(List{Of: String{}}),
		"x_token": Header(String{}),
		"session": Cookie(String{}),
	}

	args, ferrs, err := resolveArgs(params, c, make(depCache))
	require.NoError(t, err)
	require.Empty(t, ferrs)

	assert.Equal(t, int64(7), args["id"])
	assert.Equal(t, "hello", args["q"])
	assert.Equal(t, []any{"a", "b"}, args["tag"])
	assert.Equal(t, "secret", args["x_token"])
	assert.Equal(t, "abc123", args["session"])
}

func TestResolveArgs_queryCollapsesMultiValue(t *testing.T) {
	t.Parallel()

	c := resolverContext("/?v=first&v=second", nil, nil)

	args, ferrs, err := resolveArgs(Params{"v": Query(String{})}, c, make(depCache))
	require.NoError(t, err)
	require.Empty(t, ferrs)
	assert.Equal(t, "first", args["v"])
}

func TestResolveArgs_headerNameDefaulting(t *testing.T) {
	t.Parallel()

	c := resolverContext("/", nil, func(r *Request) {
		r.header.Set("Api-Key", "k1")
		r.header.Set("X-Custom", "k2")
	})

	params := Params{
		"api_key": Header(String{}),
		"custom":  Header(String{}, WithAlias("X-Custom")),
	}

	args, ferrs, err := resolveArgs(params, c, make(depCache))
	require.NoError(t, err)
	require.Empty(t, ferrs)
	assert.Equal(t, "k1", args["api_key"])
	assert.Equal(t, "k2", args["custom"])
}

func TestResolveArgs_preprocessor(t *testing.T) {
	t.Parallel()

	c := resolverContext("/?flag=true", nil, nil)

	params := Params{
		"flag": Query(Bool{}, WithPreprocess(CoercePrimitive)),
	}

	args, ferrs, err := resolveArgs(params, c, make(depCache))
	require.NoError(t, err)
	require.Empty(t, ferrs)
	assert.Equal(t, true, args["flag"])
}

// Aggregation: K independently failing parameters produce exactly K error
// entries, no matter how deeply they nest inside dependencies.
func TestResolveArgs_errorAggregation(t *testing.T) {
	t.Parallel()

	inner := NewDependency(Params{
		"missing_header": Header(String{}),
	}, func(c *Context) (any, error) {
		return "inner", nil
	})

	c := resolverContext("/?n=notanumber", nil, nil)

	params := Params{
		"n":       Query(Int{}),
		"absent":  Query(String{}),
		"nested":  Depends(inner),
		"present": Query(Default{Of: String{}, Value: "d"}),
	}

	args, ferrs, err := resolveArgs(params, c, make(depCache))
	require.NoError(t, err)
	assert.Len(t, ferrs, 3)
	assert.NotContains(t, args, "n")
	assert.Equal(t, "d", args["present"])

	locations := make(map[Location]int)
	for _, fe := range ferrs {
		locations[fe.Location]++
	}
	assert.Equal(t, 2, locations[LocationQuery])
	assert.Equal(t, 1, locations[LocationHeader])
}

// Cache-once: a cached dependency referenced from several branches of the
// same resolution executes exactly once.
func TestResolveArgs_dependencyCachedOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	counter := NewDependency(nil, func(c *Context) (any, error) {
		calls++
		return calls, nil
	})

	wrapper := NewDependency(Params{
		"count": Depends(counter),
	}, func(c *Context) (any, error) {
		return c.Arg("count"), nil
	})

	c := resolverContext("/", nil, nil)

	params := Params{
		"direct":  Depends(counter),
		"wrapped": Depends(wrapper),
	}

	args, ferrs, err := resolveArgs(params, c, make(depCache))
	require.NoError(t, err)
	require.Empty(t, ferrs)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, args["direct"])
	assert.Equal(t, 1, args["wrapped"])
	assert.Equal(t, 1, args["count"])
}

// Cache-off: with caching disabled the handler runs once per reference.
func TestResolveArgs_dependencyUncachedRunsPerReference(t *testing.T) {
	t.Parallel()

	calls := 0
	counter := NewDependency(nil, func(c *Context) (any, error) {
		calls++
		return calls, nil
	}, WithoutCache())

	c := resolverContext("/", nil, nil)

	params := Params{
		"a": Depends(counter),
		"b": Depends(counter),
		"c": Depends(counter),
	}

	_, ferrs, err := resolveArgs(params, c, make(depCache))
	require.NoError(t, err)
	require.Empty(t, ferrs)
	assert.Equal(t, 3, calls)
}

// Identity-keyed caching: two dependencies with identical declarations are
// cached independently.
func TestResolveArgs_cacheKeyedByIdentity(t *testing.T) {
	t.Parallel()

	calls := 0
	handler := func(c *Context) (any, error) {
		calls++
		return calls, nil
	}
	first := NewDependency(nil, handler)
	second := NewDependency(nil, handler)

	c := resolverContext("/", nil, nil)

	args, ferrs, err := resolveArgs(Params{
		"a": Depends(first),
		"b": Depends(second),
	}, c, make(depCache))
	require.NoError(t, err)
	require.Empty(t, ferrs)

	assert.Equal(t, 2, calls)
	assert.NotEqual(t, args["a"], args["b"])
}

// First writer wins: two sibling branches resolving the same inner name
// keep the value from the branch processed first; no collision error.
func TestResolveArgs_flattenFirstWriterWins(t *testing.T) {
	t.Parallel()

	left := NewDependency(Params{
		"shared": Query(Default{Of: String{}, Value: "from-left"}),
	}, func(c *Context) (any, error) {
		return "left", nil
	}, WithoutCache())

	right := NewDependency(Params{
		"shared": Query(Default{Of: String{}, Value: "from-right"}),
	}, func(c *Context) (any, error) {
		return "right", nil
	}, WithoutCache())

	// Sibling dependencies both surface "shared"; names resolve in sorted
	// order, so "a" (left) runs first.
	c := resolverContext("/", nil, nil)

	args, ferrs, err := resolveArgs(Params{
		"a": Depends(left),
		"b": Depends(right),
	}, c, make(depCache))
	require.NoError(t, err)
	require.Empty(t, ferrs)

	assert.Equal(t, "left", args["a"])
	assert.Equal(t, "right", args["b"])
	assert.Equal(t, "from-left", args["shared"])
}

// The full flattening scenario: three nested dependencies and a route-level
// path parameter all surface at the top level.
func TestResolveArgs_nestedFlattening(t *testing.T) {
	t.Parallel()

	d1 := NewDependency(Params{
		"token":   Header(String{}),
		"tracker": Cookie(String{}),
	}, func(c *Context) (any, error) {
		return "d1:" + c.Arg("token").(string), nil
	}, WithDependencyName("d1"))

	d2 := NewDependency(Params{
		"q":     Query(String{}),
		"d1val": Depends(d1),
	}, func(c *Context) (any, error) {
		return "d2:" + c.Arg("q").(string), nil
	}, WithDependencyName("d2"))

	d3 := NewDependency(Params{
		"session": Cookie(String{}),
		"d2val":   Depends(d2),
	}, func(c *Context) (any, error) {
		return "d3:" + c.Arg("session").(string), nil
	}, WithDependencyName("d3"))

	c := resolverContext("/things/9?q=search", map[string]string{"thing": "9"}, func(r *Request) {
		r.header.Set("Token", "tok")
		r.rawCookie = "tracker=tr1; session=sess1"
	})

	args, ferrs, err := resolveArgs(Params{
		"d3val": Depends(d3),
		"thing": Path(Int{}),
	}, c, make(depCache))
	require.NoError(t, err)
	require.Empty(t, ferrs)

	assert.Equal(t, Args{
		"thing":   int64(9),
		"d3val":   "d3:sess1",
		"d2val":   "d2:search",
		"d1val":   "d1:tok",
		"session": "sess1",
		"q":       "search",
		"token":   "tok",
		"tracker": "tr1",
	}, args)
}

// A dependency handler sees only its own declared parameters,
// pre-flattening.
func TestResolveArgs_dependencyScopedArgs(t *testing.T) {
	t.Parallel()

	inner := NewDependency(Params{
		"a": Query(String{}),
	}, func(c *Context) (any, error) {
		assert.Equal(t, Args{"a": "1"}, c.Args())
		return "ok", nil
	})

	outer := NewDependency(Params{
		"b":   Query(String{}),
		"dep": Depends(inner),
	}, func(c *Context) (any, error) {
		// Flattened: own params plus inner's surfaced params and value.
		assert.Equal(t, "1", c.Arg("a"))
		assert.Equal(t, "2", c.Arg("b"))
		assert.Equal(t, "ok", c.Arg("dep"))
		return "outer", nil
	})

	c := resolverContext("/?a=1&b=2", nil, nil)

	_, ferrs, err := resolveArgs(Params{"o": Depends(outer)}, c, make(depCache))
	require.NoError(t, err)
	require.Empty(t, ferrs)
}

func TestResolveArgs_bodyJSON(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"widget","qty":3}`))
	c := newContext(context.Background(), NewRequest(req), nil)

	params := Params{
		"payload": Body(Object{
			Fields:   map[string]Validator{"name": String{MinLen: 1}, "qty": Int{}},
			Required: []string{"name"},
		}),
	}

	args, ferrs, err := resolveArgs(params, c, make(depCache))
	require.NoError(t, err)
	require.Empty(t, ferrs)
	assert.Equal(t, map[string]any{"name": "widget", "qty": int64(3)}, args["payload"])
}

func TestResolveArgs_bodyInvalidJSON(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "/?ok=yes", strings.NewReader(`{not json`))
	c := newContext(context.Background(), NewRequest(req), nil)

	params := Params{
		"payload": Body(Any{}),
		"ok":      Query(String{}),
	}

	args, ferrs, err := resolveArgs(params, c, make(depCache))
	require.NoError(t, err)
	require.Len(t, ferrs, 1)
	assert.Equal(t, LocationBody, ferrs[0].Location)
	assert.Equal(t, IssueInvalidJSON, ferrs[0].Issues[0].Code)

	// Body-parse failure does not abort resolution of sibling parameters.
	assert.Equal(t, "yes", args["ok"])
}

func TestResolveArgs_bodyText(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "/", strings.NewReader("hello, text"))
	c := newContext(context.Background(), NewRequest(req), nil)

	args, ferrs, err := resolveArgs(Params{"raw": TextBody()}, c, make(depCache))
	require.NoError(t, err)
	require.Empty(t, ferrs)
	assert.Equal(t, "hello, text", args["raw"])
}

func TestResolveArgs_earlyResponseFromDependency(t *testing.T) {
	t.Parallel()

	reject := NewDependency(nil, func(c *Context) (any, error) {
		return nil, JSONResponse(map[string]string{"detail": "forbidden"}, 403)
	})

	c := resolverContext("/", nil, nil)

	_, _, err := resolveArgs(Params{"auth": Depends(reject)}, c, make(depCache))
	require.Error(t, err)

	var resp *Response
	require.ErrorAs(t, err, &resp)
	assert.Equal(t, 403, resp.Status)
}
