package resolvetest_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/resolve"
	"github.com/bjaus/resolve/resolvetest"
)

type widget struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func widgetRouter() *resolve.Router {
	r := resolve.New()
	r.Get("/widgets/{id}", resolve.Params{
		"id":      resolve.Path(resolve.Int{}),
		"api_key": resolve.Header(resolve.String{}),
	}, func(c *resolve.Context) (any, error) {
		return widget{ID: c.Arg("id").(int64), Name: "gear"}, nil
	})
	r.Post("/widgets", resolve.Params{
		"body": resolve.Body(resolve.Object{
			Fields:   map[string]resolve.Validator{"name": resolve.String{MinLen: 1}},
			Required: []string{"name"},
		}),
	}, func(c *resolve.Context) (any, error) {
		body := c.Arg("body").(map[string]any)
		return widget{ID: 1, Name: body["name"].(string)}, nil
	}, resolve.WithStatus(http.StatusCreated))
	return r
}

func TestClient_typedGet(t *testing.T) {
	t.Parallel()

	c := resolvetest.NewClient(t, widgetRouter())

	resp := resolvetest.Get[widget](t, c, "/widgets/7", resolvetest.WithHeader("Api-Key", "k1"))
	require.Equal(t, http.StatusOK, resp.Status)
	require.NotNil(t, resp.Body)
	assert.Equal(t, widget{ID: 7, Name: "gear"}, *resp.Body)
}

func TestClient_typedPost(t *testing.T) {
	t.Parallel()

	c := resolvetest.NewClient(t, widgetRouter())

	resp := resolvetest.Post[widget, widget](t, c, "/widgets", &widget{Name: "sprocket"})
	require.Equal(t, http.StatusCreated, resp.Status)
	require.NotNil(t, resp.Body)
	assert.Equal(t, "sprocket", resp.Body.Name)
}

func TestClient_validationErrors(t *testing.T) {
	t.Parallel()

	c := resolvetest.NewClient(t, widgetRouter())

	// Missing header and non-integer path value.
	resp := resolvetest.Get[widget](t, c, "/widgets/abc")
	require.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	require.Len(t, resp.Errors, 2)

	locations := make(map[resolve.Location]bool)
	for _, fe := range resp.Errors {
		locations[fe.Location] = true
	}
	assert.True(t, locations[resolve.LocationPath])
	assert.True(t, locations[resolve.LocationHeader])
}
