package resolve_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/resolve"
)

func petstore() *resolve.Router {
	auth := resolve.NewDependency(resolve.Params{
		"api_key": resolve.Header(resolve.String{}, resolve.WithParamDescription("caller credential")),
	}, func(c *resolve.Context) (any, error) {
		return c.Arg("api_key"), nil
	})

	r := resolve.New(
		resolve.WithTitle("Petstore"),
		resolve.WithVersion("1.2.3"),
		resolve.WithSecurityScheme("bearer", resolve.SecurityScheme{
			Type:   "http",
			Scheme: "bearer",
		}),
	)

	r.Get("/pets/{id}", resolve.Params{
		"id":      resolve.Path(resolve.Int{}),
		"verbose": resolve.Query(resolve.Optional{Of: resolve.Bool{}}),
		"debug":   resolve.Query(resolve.Optional{Of: resolve.Bool{}}, resolve.ExcludeFromSchema()),
		"caller":  resolve.Depends(auth),
	}, func(c *resolve.Context) (any, error) {
		return nil, nil
	}, resolve.WithSummary("Fetch a pet"), resolve.WithTags("pets"))

	r.Post("/pets", resolve.Params{
		"pet": resolve.Body(resolve.Object{
			Fields:   map[string]resolve.Validator{"name": resolve.String{MinLen: 1}},
			Required: []string{"name"},
		}),
	}, func(c *resolve.Context) (any, error) {
		return nil, nil
	}, resolve.WithStatus(http.StatusCreated))

	r.Get("/internal/health", nil, func(c *resolve.Context) (any, error) {
		return "ok", nil
	}, resolve.ExcludeFromDocs())

	return r
}

func TestSpec_document(t *testing.T) {
	t.Parallel()

	spec := petstore().Spec()

	assert.Equal(t, "3.1.0", spec.OpenAPI)
	assert.Equal(t, "Petstore", spec.Info.Title)
	assert.Equal(t, "1.2.3", spec.Info.Version)

	require.Contains(t, spec.Paths, "/pets/{id}")
	require.Contains(t, spec.Paths, "/pets")
	assert.NotContains(t, spec.Paths, "/internal/health")

	require.NotNil(t, spec.Components)
	assert.Contains(t, spec.Components.SecuritySchemes, "bearer")
}

func TestSpec_flattensDependencyParams(t *testing.T) {
	t.Parallel()

	op, ok := petstore().Spec().Paths["/pets/{id}"]["get"]
	require.True(t, ok)

	assert.Equal(t, "Fetch a pet", op.Summary)
	assert.Equal(t, []string{"pets"}, op.Tags)

	byName := make(map[string]resolve.Parameter)
	for _, p := range op.Parameters {
		byName[p.Name] = p
	}
	require.Len(t, byName, 3)
	assert.NotContains(t, byName, "debug")

	// The dependency's header parameter surfaces as an operation parameter;
	// the dependency binding itself does not.
	key, ok := byName["api-key"]
	require.True(t, ok)
	assert.Equal(t, "header", key.In)
	assert.Equal(t, "caller credential", key.Description)
	assert.True(t, key.Required)
	assert.NotContains(t, byName, "caller")

	id := byName["id"]
	assert.Equal(t, "path", id.In)
	assert.True(t, id.Required)
	assert.Equal(t, "integer", id.Schema.Type)

	verbose := byName["verbose"]
	assert.Equal(t, "query", verbose.In)
	assert.False(t, verbose.Required)
	assert.Equal(t, "boolean", verbose.Schema.Type)
}

func TestSpec_requestBodyAndStatus(t *testing.T) {
	t.Parallel()

	op, ok := petstore().Spec().Paths["/pets"]["post"]
	require.True(t, ok)

	require.NotNil(t, op.RequestBody)
	assert.True(t, op.RequestBody.Required)
	media, ok := op.RequestBody.Content["application/json"]
	require.True(t, ok)
	require.NotNil(t, media.Schema)
	assert.Equal(t, "object", media.Schema.Type)
	assert.Equal(t, []string{"name"}, media.Schema.Required)

	assert.Contains(t, op.Responses, "201")
	assert.Contains(t, op.Responses, "422")
	assert.NotContains(t, op.Responses, "200")
}

func TestSpec_memoized(t *testing.T) {
	t.Parallel()

	r := petstore()
	assert.Same(t, r.Spec(), r.Spec())
}

func TestServeSpec(t *testing.T) {
	t.Parallel()

	r := petstore()
	r.ServeSpec("/openapi.json")

	srv := httptest.NewServer(r)
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodGet, "/openapi.json", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	doc := decodeJSON[map[string]any](t, resp.Body)
	assert.Equal(t, "3.1.0", doc["openapi"])

	// The spec route itself stays out of the document.
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, paths, "/openapi.json")
}

func TestServeSpecYAML(t *testing.T) {
	t.Parallel()

	r := petstore()
	r.ServeSpecYAML("/openapi.yaml")

	srv := httptest.NewServer(r)
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodGet, "/openapi.yaml", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))

	var doc struct {
		OpenAPI string `yaml:"openapi"`
		Info    struct {
			Title string `yaml:"title"`
		} `yaml:"info"`
	}
	require.NoError(t, yaml.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "3.1.0", doc.OpenAPI)
	assert.Equal(t, "Petstore", doc.Info.Title)
}

func TestWriteSpec(t *testing.T) {
	t.Parallel()

	r := petstore()

	var jsonBuf bytes.Buffer
	require.NoError(t, r.WriteSpec(&jsonBuf))
	assert.Contains(t, jsonBuf.String(), `"Petstore"`)

	var yamlBuf bytes.Buffer
	require.NoError(t, r.WriteSpecYAML(&yamlBuf))
	assert.Contains(t, yamlBuf.String(), "title: Petstore")
}
