package tool

import (
	"fmt"
	"strings"
)

// FormatViolations renders a violation list as corrective feedback for the
// LLM. Returns "" when there is nothing to report.
func FormatViolations(toolName string, violations []Violation) string {
	if len(violations) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "The call to %q did not match its parameter schema:\n", toolName)
	for _, v := range violations {
		fmt.Fprintf(&sb, "- %s\n", v.Message)
	}
	sb.WriteString("Correct the parameters and call the tool again.\n")
	return sb.String()
}

// FormatUsage renders a definition's schema as a usage line for the system
// prompt, e.g. `file_read(path: string) - Read the contents of a file`.
func FormatUsage(def *Definition) string {
	var params []string
	for _, f := range def.Schema.Fields {
		p := fmt.Sprintf("%s: %s", f.Name, f.Type)
		if !f.Required {
			p += "?"
		}
		params = append(params, p)
	}
	usage := fmt.Sprintf("%s(%s)", def.Name, strings.Join(params, ", "))
	if def.Description != "" {
		usage += " - " + def.Description
	}
	return usage
}
