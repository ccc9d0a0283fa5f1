package resolve

// JSONSchema represents a JSON Schema object (subset for OpenAPI 3.1).
type JSONSchema struct {
	Type       string                `json:"type,omitempty" yaml:"type,omitempty"`
	Format     string                `json:"format,omitempty" yaml:"format,omitempty"`
	Properties map[string]JSONSchema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items      *JSONSchema           `json:"items,omitempty" yaml:"items,omitempty"`
	Required   []string              `json:"required,omitempty" yaml:"required,omitempty"`
	Enum       []string              `json:"enum,omitempty" yaml:"enum,omitempty"`
	Minimum    *int64                `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum    *int64                `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	MinLength  int                   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength  int                   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Default    any                   `json:"default,omitempty" yaml:"default,omitempty"`
}

// Schemaer is optionally implemented by validators that can describe
// themselves for the generated spec. Validators without it appear as
// untyped schemas.
type Schemaer interface {
	Schema() JSONSchema
}

// schemaOf returns the validator's schema, or an empty schema when the
// validator cannot describe itself.
func schemaOf(v Validator) JSONSchema {
	if s, ok := v.(Schemaer); ok {
		return s.Schema()
	}
	return JSONSchema{}
}
