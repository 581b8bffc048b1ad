package surface

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report canonical (json) names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode reads an external JSON object, translates it and unmarshals the
// canonical fields into out (a pointer to an internal/model struct), then
// runs the struct's validate rules. Every rule failure is reported as a
// *ValidationError with canonical names. *out is zeroed first, so the result
// never depends on what it held before.
func (a *Adapter) Decode(s Surface, resource string, body []byte, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode %s: out must be a non-nil pointer, got %T", resource, out)
	}
	rv.Elem().SetZero()

	external := map[string]any{}
	if len(bytes.TrimSpace(body)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&external); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	tr, err := a.ToInternal(s, resource, external)
	if err != nil {
		return err
	}

	canonical, err := json.Marshal(tr.Fields)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := json.Unmarshal(canonical, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ValidationError{Resource: resource, Fields: []FieldError{{Field: typeErr.Field, Rule: "type"}}}
		}
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if err := a.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		ve := &ValidationError{Resource: resource}
		for _, fe := range verrs {
			ve.Fields = append(ve.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
		return ve
	}
	return nil
}

// Encode renders v (an internal/model value) in the surface's vocabulary.
func (a *Adapter) Encode(s Surface, resource string, v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", resource, err)
	}
	internal := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&internal); err != nil {
		return nil, fmt.Errorf("encode %s: %w", resource, err)
	}
	return a.ToExternal(s, resource, internal)
}

// EncodeList renders each element of items.
func EncodeList[T any](a *Adapter, s Surface, resource string, items []T) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		m, err := a.Encode(s, resource, it)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
