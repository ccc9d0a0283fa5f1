package resolve

// Issue codes produced by the built-in validators and the resolver.
const (
	IssueRequired    = "required"
	IssueType        = "type"
	IssueMin         = "min"
	IssueMax         = "max"
	IssueTooShort    = "too_short"
	IssueTooLong     = "too_long"
	IssueEnum        = "enum"
	IssueInvalidJSON = "invalid_json"
)

// Issue describes a single validation problem with a raw input value.
// Validators produce issues; the core passes them through untouched.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FieldError is one entry of the aggregated validation error list: where the
// parameter came from, its wire name, and the validator's native issues.
// Errors from nested dependencies are flattened into the same top-level list.
type FieldError struct {
	Location Location `json:"location"`
	Name     string   `json:"name"`
	Issues   []Issue  `json:"issues"`
}

// Error returns a short description of the failed field.
func (e FieldError) Error() string {
	return string(e.Location) + " parameter " + e.Name + " is invalid"
}
