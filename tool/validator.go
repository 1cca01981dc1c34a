package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// ViolationKind classifies a schema violation.
type ViolationKind string

const (
	MissingRequired  ViolationKind = "missing_required"
	WrongType        ViolationKind = "wrong_type"
	UnknownField     ViolationKind = "unknown_field"
	ConstraintFailed ViolationKind = "constraint_failed"
)

// Violation reports one schema violation for a tool call.
type Violation struct {
	Field   string        `json:"field"`
	Kind    ViolationKind `json:"kind"`
	Message string        `json:"message"`
}

// Validate checks a call's parameters against the definition's schema.
// The returned slice is empty iff the parameters exactly satisfy the schema.
//
// Ordering is deterministic: declared fields in declaration order (missing
// before type before constraint violations per field), then unknown fields
// in sorted name order. Unknown fields are reported but do not block repair
// eligibility; they are candidates for alias resolution.
func Validate(call Call, def *Definition) []Violation {
	var violations []Violation

	params := call.Parameters
	if params == nil {
		params = map[string]any{}
	}

	for _, field := range def.Schema.Fields {
		value, present := params[field.Name]
		if !present {
			if field.Required {
				violations = append(violations, Violation{
					Field:   field.Name,
					Kind:    MissingRequired,
					Message: fmt.Sprintf("required field %q is missing", field.Name),
				})
			}
			continue
		}

		if !typeMatches(value, field.Type) {
			violations = append(violations, Violation{
				Field:   field.Name,
				Kind:    WrongType,
				Message: fmt.Sprintf("field %q: expected %s, got %s", field.Name, field.Type, jsonTypeName(value)),
			})
			continue
		}

		if msg := checkConstraints(value, &field); msg != "" {
			violations = append(violations, Violation{
				Field:   field.Name,
				Kind:    ConstraintFailed,
				Message: fmt.Sprintf("field %q: %s", field.Name, msg),
			})
		}
	}

	// Unknown fields last, in sorted order for determinism.
	var unknown []string
	for name := range params {
		if _, ok := def.Schema.Field(name); !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		violations = append(violations, Violation{
			Field:   name,
			Kind:    UnknownField,
			Message: fmt.Sprintf("field %q is not declared by tool %q", name, def.Name),
		})
	}

	return violations
}

// checkConstraints enforces declared value constraints beyond type.
func checkConstraints(value any, field *Field) string {
	if len(field.Enum) > 0 {
		s, ok := value.(string)
		if !ok {
			return "enum constraint on non-string value"
		}
		for _, allowed := range field.Enum {
			if s == allowed {
				return ""
			}
		}
		return fmt.Sprintf("value %q not in %v", s, field.Enum)
	}
	return ""
}

// typeMatches reports whether a decoded JSON value satisfies the declared type.
func typeMatches(value any, expected ParamType) bool {
	switch expected {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		return isNumber(value)
	case TypeInteger:
		return isInteger(value)
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeArray:
		_, ok := value.([]any)
		return ok
	case TypeObject:
		_, ok := value.(map[string]any)
		return ok
	default:
		return false
	}
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case float32, float64:
		return true
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	}
	return false
}

// isInteger accepts integral floats since encoding/json decodes all numbers
// as float64.
func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return math.Trunc(float64(v)) == float64(v)
	case float64:
		return math.Trunc(v) == v
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}

// jsonTypeName names a decoded JSON value's type for violation messages.
func jsonTypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
