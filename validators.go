package resolve

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Validator checks and converts a raw input value. A nil raw value means the
// input was absent; validators decide whether that is an error, a default,
// or an acceptable empty value. The returned issues list is empty on
// success.
//
// The core treats validators opaquely. Any implementation works, including
// ones backed by external schema libraries.
type Validator interface {
	Validate(raw any) (any, []Issue)
}

// MultiValued is implemented by validators whose accepted shape is a list.
// Query parameters validated by a multi-valued validator receive every
// occurrence of the key instead of just the first.
type MultiValued interface {
	MultiValued() bool
}

// optionalValidator marks validators that tolerate absent input. Used only
// for the required flag in the generated spec.
type optionalValidator interface {
	optionalValue()
}

// CoercePrimitive is a Preprocessor that coerces primitive-looking strings
// ("42", "true", "null") into their JSON value. Inputs that fail to parse
// are returned unchanged.
func CoercePrimitive(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return raw
	}
	return v
}

// String validates string input with optional length bounds. MaxLen of zero
// means no upper bound.
type String struct {
	MinLen int
	MaxLen int
}

// Validate implements Validator.
func (v String) Validate(raw any) (any, []Issue) {
	if raw == nil {
		return nil, []Issue{{Code: IssueRequired, Message: "value is required"}}
	}
	s, ok := raw.(string)
	if !ok {
		return nil, []Issue{{Code: IssueType, Message: fmt.Sprintf("expected string, got %T", raw)}}
	}
	if len(s) < v.MinLen {
		return nil, []Issue{{Code: IssueTooShort, Message: fmt.Sprintf("length %d is less than minimum %d", len(s), v.MinLen)}}
	}
	if v.MaxLen > 0 && len(s) > v.MaxLen {
		return nil, []Issue{{Code: IssueTooLong, Message: fmt.Sprintf("length %d exceeds maximum %d", len(s), v.MaxLen)}}
	}
	return s, nil
}

// Schema implements Schemaer.
func (v String) Schema() JSONSchema {
	s := JSONSchema{Type: "string"}
	if v.MinLen > 0 {
		s.MinLength = v.MinLen
	}
	if v.MaxLen > 0 {
		s.MaxLength = v.MaxLen
	}
	return s
}

// Int validates integer input with optional bounds. String input is parsed;
// JSON numbers must be integral.
type Int struct {
	Min *int64
	Max *int64
}

// Validate implements Validator.
func (v Int) Validate(raw any) (any, []Issue) {
	if raw == nil {
		return nil, []Issue{{Code: IssueRequired, Message: "value is required"}}
	}

	var n int64
	switch x := raw.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case float64:
		n = int64(x)
		if float64(n) != x {
			return nil, []Issue{{Code: IssueType, Message: fmt.Sprintf("%v is not an integer", x)}}
		}
	case string:
		parsed, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return nil, []Issue{{Code: IssueType, Message: fmt.Sprintf("%q is not a valid integer", x)}}
		}
		n = parsed
	default:
		return nil, []Issue{{Code: IssueType, Message: fmt.Sprintf("expected integer, got %T", raw)}}
	}

	if v.Min != nil && n < *v.Min {
		return nil, []Issue{{Code: IssueMin, Message: fmt.Sprintf("%d is less than minimum %d", n, *v.Min)}}
	}
	if v.Max != nil && n > *v.Max {
		return nil, []Issue{{Code: IssueMax, Message: fmt.Sprintf("%d exceeds maximum %d", n, *v.Max)}}
	}
	return n, nil
}

// Schema implements Schemaer.
func (v Int) Schema() JSONSchema {
	s := JSONSchema{Type: "integer"}
	s.Minimum = v.Min
	if v.Max != nil {
		m := *v.Max
		s.Maximum = &m
	}
	return s
}

// Float validates numeric input with optional bounds. String input is parsed.
type Float struct {
	Min *float64
	Max *float64
}

// Validate implements Validator.
func (v Float) Validate(raw any) (any, []Issue) {
	if raw == nil {
		return nil, []Issue{{Code: IssueRequired, Message: "value is required"}}
	}

	var f float64
	switch x := raw.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil, []Issue{{Code: IssueType, Message: fmt.Sprintf("%q is not a valid number", x)}}
		}
		f = parsed
	default:
		return nil, []Issue{{Code: IssueType, Message: fmt.Sprintf("expected number, got %T", raw)}}
	}

	if v.Min != nil && f < *v.Min {
		return nil, []Issue{{Code: IssueMin, Message: fmt.Sprintf("%v is less than minimum %v", f, *v.Min)}}
	}
	if v.Max != nil && f > *v.Max {
		return nil, []Issue{{Code: IssueMax, Message: fmt.Sprintf("%v exceeds maximum %v", f, *v.Max)}}
	}
	return f, nil
}

// Schema implements Schemaer.
func (v Float) Schema() JSONSchema {
	return JSONSchema{Type: "number"}
}

// Bool validates boolean input. String input is parsed with the usual
// strconv forms ("true", "1", "f", ...).
type Bool struct{}

// Validate implements Validator.
func (v Bool) Validate(raw any) (any, []Issue) {
	if raw == nil {
		return nil, []Issue{{Code: IssueRequired, Message: "value is required"}}
	}
	switch x := raw.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return nil, []Issue{{Code: IssueType, Message: fmt.Sprintf("%q is not a valid boolean", x)}}
		}
		return b, nil
	default:
		return nil, []Issue{{Code: IssueType, Message: fmt.Sprintf("expected boolean, got %T", raw)}}
	}
}

// Schema implements Schemaer.
func (v Bool) Schema() JSONSchema {
	return JSONSchema{Type: "boolean"}
}

// Enum validates that the input is one of a fixed set of strings.
type Enum struct {
	Values []string
}

// Validate implements Validator.
func (v Enum) Validate(raw any) (any, []Issue) {
	if raw == nil {
		return nil, []Issue{{Code: IssueRequired, Message: "value is required"}}
	}
	s, ok := raw.(string)
	if !ok {
		return nil, []Issue{{Code: IssueType, Message: fmt.Sprintf("expected string, got %T", raw)}}
	}
	if !slices.Contains(v.Values, s) {
		return nil, []Issue{{Code: IssueEnum, Message: fmt.Sprintf("%q is not one of %v", s, v.Values)}}
	}
	return s, nil
}

// Schema implements Schemaer.
func (v Enum) Schema() JSONSchema {
	return JSONSchema{Type: "string", Enum: v.Values}
}

// Any accepts every input, including absent ones. Useful for free-form JSON
// bodies.
type Any struct{}

// Validate implements Validator.
func (v Any) Validate(raw any) (any, []Issue) {
	return raw, nil
}

func (v Any) optionalValue() {}

// Schema implements Schemaer.
func (v Any) Schema() JSONSchema {
	return JSONSchema{}
}

// Optional wraps a validator so that absent input resolves to nil instead of
// a required error.
type Optional struct {
	Of Validator
}

// Validate implements Validator.
func (v Optional) Validate(raw any) (any, []Issue) {
	if raw == nil {
		return nil, nil
	}
	return v.Of.Validate(raw)
}

func (v Optional) optionalValue() {}

// MultiValued implements MultiValued by delegating to the wrapped validator.
func (v Optional) MultiValued() bool {
	return isMultiValued(v.Of)
}

// Schema implements Schemaer.
func (v Optional) Schema() JSONSchema {
	return schemaOf(v.Of)
}

// Default wraps a validator so that absent input resolves to a fixed value.
type Default struct {
	Of    Validator
	Value any
}

// Validate implements Validator.
func (v Default) Validate(raw any) (any, []Issue) {
	if raw == nil {
		return v.Value, nil
	}
	return v.Of.Validate(raw)
}

func (v Default) optionalValue() {}

// MultiValued implements MultiValued by delegating to the wrapped validator.
func (v Default) MultiValued() bool {
	return isMultiValued(v.Of)
}

// Schema implements Schemaer.
func (v Default) Schema() JSONSchema {
	s := schemaOf(v.Of)
	s.Default = v.Value
	return s
}

// List validates each element of a list input with the element validator.
// A single raw string is treated as a one-element list.
type List struct {
	Of Validator
}

// MultiValued implements MultiValued.
func (v List) MultiValued() bool { return true }

// Validate implements Validator.
func (v List) Validate(raw any) (any, []Issue) {
	if raw == nil {
		return nil, []Issue{{Code: IssueRequired, Message: "value is required"}}
	}

	var elems []any
	switch x := raw.(type) {
	case []string:
		elems = make([]any, len(x))
		for i, s := range x {
			elems[i] = s
		}
	case []any:
		elems = x
	case string:
		elems = []any{x}
	default:
		return nil, []Issue{{Code: IssueType, Message: fmt.Sprintf("expected list, got %T", raw)}}
	}

	out := make([]any, 0, len(elems))
	var issues []Issue
	for i, e := range elems {
		val, elemIssues := v.Of.Validate(e)
		for _, iss := range elemIssues {
			issues = append(issues, Issue{Code: iss.Code, Message: fmt.Sprintf("element %d: %s", i, iss.Message)})
		}
		if len(elemIssues) == 0 {
			out = append(out, val)
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return out, nil
}

// Schema implements Schemaer.
func (v List) Schema() JSONSchema {
	elem := schemaOf(v.Of)
	return JSONSchema{Type: "array", Items: &elem}
}

// Object validates a JSON object field-by-field. Fields not declared pass
// through untouched; declared fields are validated and replaced with their
// validated values, and absent optional fields may be filled in by a Default
// validator. Required lists field names that must be present.
type Object struct {
	Fields   map[string]Validator
	Required []string
}

// Validate implements Validator.
func (v Object) Validate(raw any) (any, []Issue) {
	if raw == nil {
		return nil, []Issue{{Code: IssueRequired, Message: "value is required"}}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, []Issue{{Code: IssueType, Message: fmt.Sprintf("expected object, got %T", raw)}}
	}

	out := make(map[string]any, len(m))
	for k, val := range m {
		out[k] = val
	}

	var issues []Issue
	for _, name := range sortedKeys(v.Fields) {
		fv := v.Fields[name]
		raw, present := m[name]
		if !present {
			if slices.Contains(v.Required, name) {
				issues = append(issues, Issue{Code: IssueRequired, Message: fmt.Sprintf("field %q is required", name)})
				continue
			}
			// Absent optional fields still get a chance to produce a
			// default value.
			if isOptional(fv) {
				if val, absIssues := fv.Validate(nil); len(absIssues) == 0 && val != nil {
					out[name] = val
				}
			}
			continue
		}
		val, fieldIssues := fv.Validate(raw)
		for _, iss := range fieldIssues {
			issues = append(issues, Issue{Code: iss.Code, Message: fmt.Sprintf("field %q: %s", name, iss.Message)})
		}
		if len(fieldIssues) == 0 {
			out[name] = val
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return out, nil
}

// Schema implements Schemaer.
func (v Object) Schema() JSONSchema {
	props := make(map[string]JSONSchema, len(v.Fields))
	for name, fv := range v.Fields {
		props[name] = schemaOf(fv)
	}
	return JSONSchema{Type: "object", Properties: props, Required: v.Required}
}

func isMultiValued(v Validator) bool {
	mv, ok := v.(MultiValued)
	return ok && mv.MultiValued()
}

func isOptional(v Validator) bool {
	_, ok := v.(optionalValidator)
	return ok
}
