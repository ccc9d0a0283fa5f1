package resolve

import "strings"

// Location identifies where a parameter's raw value comes from.
type Location string

// Parameter locations.
const (
	LocationPath    Location = "path"
	LocationQuery   Location = "query"
	LocationHeader  Location = "header"
	LocationCookie  Location = "cookie"
	LocationBody    Location = "body"
	LocationDepends Location = "depends"
)

// bodyKind selects how a body parameter reads the request body.
type bodyKind int

const (
	bodyNone   bodyKind = iota
	bodyJSON            // parse as JSON, then validate
	bodyText            // raw text, no validation
	bodyBinary          // raw bytes, no validation
	bodyStream          // raw byte stream, no validation
)

// Preprocessor is applied to a raw string or string-slice input before
// validation. It must return its input unchanged for values it cannot
// coerce.
type Preprocessor func(raw any) any

// Param declares a single named input: where it comes from, how it is
// validated, and how it appears in the generated spec. Params are immutable
// after construction and owned by whichever route or dependency declares
// them.
type Param struct {
	location    Location
	validator   Validator
	dependency  *Dependency
	body        bodyKind
	alias       string
	description string
	preprocess  Preprocessor
	inSchema    bool
}

// Params maps declared parameter names to their declarations. The resolver
// walks names in sorted order, so error aggregation and flattening are
// deterministic.
type Params map[string]*Param

// ParamOption configures a parameter declaration.
type ParamOption func(*Param)

// WithAlias sets an alternate wire name for the parameter. For header
// parameters the alias is used verbatim; without one, underscores in the
// declared name are replaced with hyphens.
func WithAlias(name string) ParamOption {
	return func(p *Param) {
		p.alias = name
	}
}

// WithParamDescription sets the parameter description for the generated spec.
func WithParamDescription(desc string) ParamOption {
	return func(p *Param) {
		p.description = desc
	}
}

// WithPreprocess attaches a preprocessor applied to the raw value before
// validation.
func WithPreprocess(f Preprocessor) ParamOption {
	return func(p *Param) {
		p.preprocess = f
	}
}

// ExcludeFromSchema hides the parameter from the generated spec.
func ExcludeFromSchema() ParamOption {
	return func(p *Param) {
		p.inSchema = false
	}
}

func newParam(loc Location, v Validator, opts ...ParamOption) *Param {
	p := &Param{location: loc, validator: v, inSchema: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Path declares a parameter bound to a path placeholder segment.
func Path(v Validator, opts ...ParamOption) *Param {
	return newParam(LocationPath, v, opts...)
}

// Query declares a parameter bound to the query string. Multi-value
// occurrences are collapsed to the first value unless the validator is
// list-shaped.
func Query(v Validator, opts ...ParamOption) *Param {
	return newParam(LocationQuery, v, opts...)
}

// Header declares a parameter bound to a request header.
func Header(v Validator, opts ...ParamOption) *Param {
	return newParam(LocationHeader, v, opts...)
}

// Cookie declares a parameter bound to a request cookie.
func Cookie(v Validator, opts ...ParamOption) *Param {
	return newParam(LocationCookie, v, opts...)
}

// Body declares a parameter bound to the JSON request body, validated
// against the given validator.
func Body(v Validator, opts ...ParamOption) *Param {
	p := newParam(LocationBody, v, opts...)
	p.body = bodyJSON
	return p
}

// TextBody declares a parameter bound to the raw request body as text.
// No validation is applied.
func TextBody(opts ...ParamOption) *Param {
	p := newParam(LocationBody, nil, opts...)
	p.body = bodyText
	return p
}

// BinaryBody declares a parameter bound to the raw request body as bytes.
// No validation is applied.
func BinaryBody(opts ...ParamOption) *Param {
	p := newParam(LocationBody, nil, opts...)
	p.body = bodyBinary
	return p
}

// StreamBody declares a parameter bound to the request body as an unread
// byte stream. No validation is applied.
func StreamBody(opts ...ParamOption) *Param {
	p := newParam(LocationBody, nil, opts...)
	p.body = bodyStream
	return p
}

// Depends declares a parameter resolved by running a dependency. The
// dependency's return value is bound to the parameter's name and its
// resolved sub-parameters are flattened into the enclosing argument bag.
func Depends(d *Dependency, opts ...ParamOption) *Param {
	p := newParam(LocationDepends, nil, opts...)
	p.dependency = d
	return p
}

// wireName returns the name used to look up the raw value.
func (p *Param) wireName(declared string) string {
	if p.alias != "" {
		return p.alias
	}
	if p.location == LocationHeader {
		return strings.ReplaceAll(declared, "_", "-")
	}
	return declared
}

// mergeParams merges parameter maps with later maps taking precedence.
// Used once at registration time: router-level, then group-level, then
// route-level declarations.
func mergeParams(layers ...Params) Params {
	merged := make(Params)
	for _, layer := range layers {
		for name, p := range layer {
			merged[name] = p
		}
	}
	return merged
}
