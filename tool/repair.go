package tool

import (
	"fmt"
	"strconv"
	"strings"
)

// RepairAction records one correction applied to a call's parameters.
type RepairAction struct {
	Field  string `json:"field"`
	Action string `json:"action"` // "renamed_field", "coerced_type", "filled_default"
	Detail string `json:"detail"`
}

// minPrefixMatch is the shortest normalized prefix accepted as a fuzzy
// field-name match during alias resolution.
const minPrefixMatch = 4

// Repair attempts best-effort corrections for the given violations: alias
// resolution for unknown fields, lossless type coercion, and default filling
// for missing required fields. It re-validates after each pass and returns
// the repaired call together with the remaining violations.
//
// Repair never fabricates values: it only resolves name and shape mismatches
// from the existing parameters or schema defaults. Lossy coercions (such as
// truncating a fractional number to an integer) are never applied.
func Repair(call Call, violations []Violation, def *Definition) (Call, []RepairAction, []Violation) {
	if len(violations) == 0 {
		return call, nil, nil
	}

	repaired := call
	repaired.Parameters = make(map[string]any, len(call.Parameters))
	for k, v := range call.Parameters {
		repaired.Parameters[k] = v
	}

	var actions []RepairAction

	// Pass 1: alias resolution.
	for _, v := range violations {
		if v.Kind != UnknownField {
			continue
		}
		target := resolveAlias(v.Field, &def.Schema)
		if target == "" || target == v.Field {
			continue
		}
		if _, taken := repaired.Parameters[target]; taken {
			// Canonical name already populated; dropping or overwriting
			// would lose a value, so leave the unknown field as-is.
			continue
		}
		repaired.Parameters[target] = repaired.Parameters[v.Field]
		delete(repaired.Parameters, v.Field)
		actions = append(actions, RepairAction{
			Field:  target,
			Action: "renamed_field",
			Detail: fmt.Sprintf("renamed %q to %q", v.Field, target),
		})
	}
	violations = Validate(repaired, def)

	// Pass 2: lossless type coercion.
	for _, v := range violations {
		if v.Kind != WrongType {
			continue
		}
		field, ok := def.Schema.Field(v.Field)
		if !ok {
			continue
		}
		coerced, ok := coerceLossless(repaired.Parameters[v.Field], field.Type)
		if !ok {
			continue
		}
		repaired.Parameters[v.Field] = coerced
		actions = append(actions, RepairAction{
			Field:  v.Field,
			Action: "coerced_type",
			Detail: fmt.Sprintf("coerced %q to %s", v.Field, field.Type),
		})
	}
	violations = Validate(repaired, def)

	// Pass 3: default filling.
	for _, v := range violations {
		if v.Kind != MissingRequired {
			continue
		}
		field, ok := def.Schema.Field(v.Field)
		if !ok || field.Default == nil {
			continue
		}
		repaired.Parameters[v.Field] = field.Default
		actions = append(actions, RepairAction{
			Field:  v.Field,
			Action: "filled_default",
			Detail: fmt.Sprintf("filled %q with schema default", v.Field),
		})
	}
	violations = Validate(repaired, def)

	return repaired, actions, violations
}

// resolveAlias maps an unknown field name to a declared field via its alias
// set or a normalized similarity match. Returns "" when no unique match is
// found above the threshold.
func resolveAlias(name string, schema *Schema) string {
	norm := normalizeFieldName(name)

	// Exact alias or normalized-name match first.
	var exact []string
	for _, f := range schema.Fields {
		if normalizeFieldName(f.Name) == norm {
			exact = append(exact, f.Name)
			continue
		}
		for _, alias := range f.Aliases {
			if normalizeFieldName(alias) == norm {
				exact = append(exact, f.Name)
				break
			}
		}
	}
	if len(exact) == 1 {
		return exact[0]
	}
	if len(exact) > 1 {
		return "" // Ambiguous; leave unresolved.
	}

	// Fall back to prefix similarity on the normalized forms.
	if len(norm) < minPrefixMatch {
		return ""
	}
	var fuzzy []string
	for _, f := range schema.Fields {
		candidate := normalizeFieldName(f.Name)
		if strings.HasPrefix(candidate, norm) || strings.HasPrefix(norm, candidate) {
			fuzzy = append(fuzzy, f.Name)
		}
	}
	if len(fuzzy) == 1 {
		return fuzzy[0]
	}
	return ""
}

// normalizeFieldName lowercases and strips underscores and hyphens so that
// "filePath", "file_path" and "file-path" all compare equal.
func normalizeFieldName(name string) string {
	lower := strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return -1
		}
		return r
	}, lower)
}

// coerceLossless converts a value to the expected type only when no
// information is lost. Returns (converted, true) on success.
func coerceLossless(value any, expected ParamType) (any, bool) {
	switch expected {
	case TypeNumber:
		if s, ok := value.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f, true
			}
		}
	case TypeInteger:
		if s, ok := value.(string); ok {
			if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
				return float64(i), true
			}
			// Float-looking strings stay wrong_type: truncation is lossy.
		}
	case TypeBoolean:
		if s, ok := value.(string); ok {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "true":
				return true, true
			case "false":
				return false, true
			}
		}
	case TypeArray:
		// Scalar to single-element array. Objects and nil stay violations:
		// wrapping them would change shape, not just type.
		switch value.(type) {
		case string, bool, float64, float32, int, int64:
			return []any{value}, true
		}
	case TypeString:
		// No coercion into strings: stringifying numbers or objects
		// would mask model mistakes.
	}
	return nil, false
}
