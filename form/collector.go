package form

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Values holds collected inputs keyed by field name. Choice fields already
// carry their model code.
type Values map[string]float64

// FieldError is a rejected input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected input of a submission.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// ByField indexes messages by field name.
func (e *ValidationError) ByField() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

// Defaults returns the value every control shows before user input.
func Defaults() Values {
	values := make(Values, len(fields))
	for _, f := range fields {
		values[f.Name] = f.Default
	}
	return values
}

// ParseField parses and range-checks one raw input.
func ParseField(field Field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	switch field.Kind {
	case KindInteger:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("%q is not a whole number", raw)
		}
		return checkRange(field, float64(n))
	case KindFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%q is not a number", raw)
		}
		return checkRange(field, v)
	case KindChoice:
		if code, ok := choiceMapping.Code(field.Name, raw); ok {
			return float64(code), nil
		}
		if n, err := strconv.Atoi(raw); err == nil {
			for _, c := range field.Choices {
				if c.Code == n {
					return float64(n), nil
				}
			}
		}
		return 0, fmt.Errorf("%q is not one of %s", raw, strings.Join(choiceLabels(field), ", "))
	default:
		return 0, fmt.Errorf("unknown field kind %q", field.Kind)
	}
}

func checkRange(field Field, v float64) (float64, error) {
	if v < field.Min || v > field.Max {
		return 0, fmt.Errorf("must be between %s and %s", formatBound(field, field.Min), formatBound(field, field.Max))
	}
	return v, nil
}

func formatBound(field Field, v float64) string {
	if field.Kind == KindFloat {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func choiceLabels(field Field) []string {
	labels := make([]string, len(field.Choices))
	for i, c := range field.Choices {
		labels[i] = strconv.Quote(c.Label)
	}
	return labels
}

// Collect validates a submission of raw strings. Absent fields take their
// default; unknown names and out-of-domain values are rejected.
func Collect(raw map[string]string) (Values, error) {
	values := Defaults()
	var errs []FieldError

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := fieldIndex[name]; !ok {
			errs = append(errs, FieldError{Field: name, Message: "unknown field"})
		}
	}

	for _, f := range fields {
		input, ok := raw[f.Name]
		if !ok {
			continue
		}
		v, err := ParseField(f, input)
		if err != nil {
			errs = append(errs, FieldError{Field: f.Name, Message: err.Error()})
			continue
		}
		values[f.Name] = v
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return values, nil
}

// CollectForm validates an HTML form post.
func CollectForm(form url.Values) (Values, error) {
	raw := make(map[string]string, len(form))
	for name, vs := range form {
		if len(vs) == 0 {
			continue
		}
		raw[name] = vs[0]
	}
	return Collect(raw)
}

// CollectJSON validates a decoded JSON object. Numbers and strings are
// accepted for every field.
func CollectJSON(body map[string]interface{}) (Values, error) {
	raw := make(map[string]string, len(body))
	var errs []FieldError
	for name, v := range body {
		switch typed := v.(type) {
		case string:
			raw[name] = typed
		case float64:
			raw[name] = strconv.FormatFloat(typed, 'f', -1, 64)
		default:
			errs = append(errs, FieldError{Field: name, Message: fmt.Sprintf("unsupported value %v", v)})
		}
	}
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
		return nil, &ValidationError{Errors: errs}
	}
	return Collect(raw)
}

// IsValidationError reports whether err carries rejected inputs.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
