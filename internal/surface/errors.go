package surface

import (
	"errors"
	"strings"
)

var (
	// ErrMalformed means the body was not a JSON object.
	ErrMalformed = errors.New("malformed request body")
	// ErrUnsupported means the surface does not expose the resource.
	ErrUnsupported = errors.New("resource not available on this surface")
)

// FieldError names one canonical field and the rule it failed.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError lists the canonical fields that failed after translation.
// Field names are never the external ones.
type ValidationError struct {
	Resource string
	Fields   []FieldError
}

// Error lists the failing canonical fields.
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Names(), ", ")
}

// Names returns the failing canonical field names in order.
func (e *ValidationError) Names() []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Field)
	}
	return out
}

// ByField groups rules per field, the shape both envelopes render.
func (e *ValidationError) ByField() map[string][]string {
	out := make(map[string][]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = append(out[f.Field], f.Rule)
	}
	return out
}
