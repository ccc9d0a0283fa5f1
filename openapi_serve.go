package resolve

import (
	"encoding/json"
	"io"
	"net/http"

	"gopkg.in/yaml.v3"
)

// ServeSpec registers a GET route at the given path that serves the
// OpenAPI spec as JSON. The route itself is excluded from the spec.
func (r *Router) ServeSpec(path string) {
	r.Get(path, nil, func(_ *Context) (any, error) {
		return r.Spec(), nil
	}, ExcludeFromDocs())
}

// ServeSpecYAML registers a GET route at the given path that serves the
// OpenAPI spec as YAML. The route itself is excluded from the spec.
func (r *Router) ServeSpecYAML(path string) {
	r.Get(path, nil, func(_ *Context) (any, error) {
		body, err := yaml.Marshal(r.Spec())
		if err != nil {
			return nil, err
		}
		resp := NewResponse(http.StatusOK, body)
		resp.Header.Set("Content-Type", "application/yaml")
		return resp, nil
	}, ExcludeFromDocs())
}

// WriteSpec writes the OpenAPI spec as indented JSON to w.
func (r *Router) WriteSpec(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Spec())
}

// WriteSpecYAML writes the OpenAPI spec as YAML to w.
func (r *Router) WriteSpecYAML(w io.Writer) error {
	return yaml.NewEncoder(w).Encode(r.Spec())
}
