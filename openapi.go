package resolve

import (
	"net/http"
	"strconv"
	"strings"
)

// OpenAPISpec is the top-level OpenAPI 3.1 document.
type OpenAPISpec struct {
	OpenAPI    string              `json:"openapi" yaml:"openapi"`
	Info       OpenAPIInfo         `json:"info" yaml:"info"`
	Paths      map[string]PathItem `json:"paths" yaml:"paths"`
	Components *Components         `json:"components,omitempty" yaml:"components,omitempty"`
}

// OpenAPIInfo holds API metadata.
type OpenAPIInfo struct {
	Title   string `json:"title" yaml:"title"`
	Version string `json:"version" yaml:"version"`
}

// Components holds reusable objects, currently security schemes only.
type Components struct {
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes,omitempty" yaml:"securitySchemes,omitempty"`
}

// SecurityScheme describes an OpenAPI security scheme.
type SecurityScheme struct {
	Type         string `json:"type" yaml:"type"`
	Scheme       string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	BearerFormat string `json:"bearerFormat,omitempty" yaml:"bearerFormat,omitempty"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	In           string `json:"in,omitempty" yaml:"in,omitempty"`
}

// PathItem maps HTTP methods to operations.
type PathItem map[string]Operation

// Operation describes a single API operation on a path.
type Operation struct {
	Summary     string        `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	Parameters  []Parameter   `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *RequestBody  `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   OperationResp `json:"responses" yaml:"responses"`
}

// Parameter describes a single operation parameter.
type Parameter struct {
	Name        string     `json:"name" yaml:"name"`
	In          string     `json:"in" yaml:"in"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool       `json:"required,omitempty" yaml:"required,omitempty"`
	Schema      JSONSchema `json:"schema" yaml:"schema"`
}

// RequestBody describes the request body.
type RequestBody struct {
	Required bool                `json:"required" yaml:"required"`
	Content  map[string]MediaObj `json:"content" yaml:"content"`
}

// MediaObj is a media type object with an optional schema.
type MediaObj struct {
	Schema *JSONSchema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// OperationResp maps HTTP status codes to response objects.
type OperationResp map[string]ResponseObj

// ResponseObj describes a single response.
type ResponseObj struct {
	Description string `json:"description" yaml:"description"`
}

// Spec generates the OpenAPI 3.1 specification from registered routes. The
// document is computed once, on first use, and cached on the router.
func (r *Router) Spec() *OpenAPISpec {
	r.specOnce.Do(func() {
		r.spec = r.buildSpec()
	})
	return r.spec
}

func (r *Router) buildSpec() *OpenAPISpec {
	spec := &OpenAPISpec{
		OpenAPI: "3.1.0",
		Info: OpenAPIInfo{
			Title:   r.title,
			Version: r.version,
		},
		Paths: make(map[string]PathItem),
	}

	if len(r.securitySchemes) > 0 {
		spec.Components = &Components{SecuritySchemes: r.securitySchemes}
	}

	for _, rt := range r.routes {
		if !rt.inSchema {
			continue
		}
		if spec.Paths[rt.path] == nil {
			spec.Paths[rt.path] = make(PathItem)
		}
		spec.Paths[rt.path][strings.ToLower(rt.method)] = buildOperation(rt)
	}

	return spec
}

// buildOperation creates an Operation from a route. Dependency parameters
// are flattened into the operation the same way the resolver flattens them
// at request time: sorted name order, first writer wins.
func buildOperation(rt *Route) Operation {
	op := Operation{
		Summary:     rt.summary,
		Description: rt.desc,
		Tags:        rt.tags,
		Responses:   make(OperationResp),
	}

	flat := make(map[string]*Param)
	flattenParams(rt.params, flat)

	for _, name := range sortedKeys(flat) {
		p := flat[name]
		if !p.inSchema {
			continue
		}
		if p.location == LocationBody {
			op.RequestBody = buildRequestBody(p)
			continue
		}
		op.Parameters = append(op.Parameters, Parameter{
			Name:        p.wireName(name),
			In:          string(p.location),
			Description: p.description,
			Required:    p.location == LocationPath || !isOptional(p.validator),
			Schema:      schemaOf(p.validator),
		})
	}

	status := rt.status
	if status == 0 {
		status = http.StatusOK
	}
	op.Responses[strconv.Itoa(status)] = ResponseObj{Description: "Successful response"}
	op.Responses[strconv.Itoa(http.StatusUnprocessableEntity)] = ResponseObj{Description: "Validation error"}

	return op
}

// flattenParams surfaces dependency sub-parameters into a single map,
// mirroring the resolver's first-writer-wins rule.
func flattenParams(params Params, out map[string]*Param) {
	for _, name := range sortedKeys(params) {
		p := params[name]
		if p.location == LocationDepends {
			flattenParams(p.dependency.params, out)
			continue
		}
		if _, ok := out[name]; !ok {
			out[name] = p
		}
	}
}

func buildRequestBody(p *Param) *RequestBody {
	switch p.body {
	case bodyText:
		return &RequestBody{Required: true, Content: map[string]MediaObj{"text/plain": {}}}
	case bodyBinary, bodyStream:
		return &RequestBody{Required: true, Content: map[string]MediaObj{"application/octet-stream": {}}}
	default:
		schema := schemaOf(p.validator)
		return &RequestBody{
			Required: !isOptional(p.validator),
			Content:  map[string]MediaObj{"application/json": {Schema: &schema}},
		}
	}
}
