package coordinator

import (
	"fmt"
	"strings"

	"github.com/qhy991/vagent/tool"
)

// callFormat is the envelope the extraction pipeline parses most reliably.
// Corrective messages restate it verbatim.
const callFormat = "```json\n" +
	`{"tool_calls": [{"tool_name": "<name>", "parameters": {"<param>": "<value>"}}]}` +
	"\n```"

// systemPrompt assembles the system message for one iteration. It declares
// only the tools that are actually resolvable through the router, so the
// advertised capability set cannot drift from what is executable.
func systemPrompt(router *tool.Router, taskDescription string) string {
	var sb strings.Builder

	sb.WriteString("You are an autonomous engineering agent. ")
	sb.WriteString("You accomplish the task below by calling tools.\n\n")

	fmt.Fprintf(&sb, "Task:\n%s\n\n", taskDescription)

	sb.WriteString("Available tools:\n")
	for _, def := range router.Definitions() {
		fmt.Fprintf(&sb, "- %s\n", tool.FormatUsage(def))
	}

	sb.WriteString("\nTo call a tool, reply with exactly this JSON format:\n")
	sb.WriteString(callFormat)
	sb.WriteString("\n\nYou may request several tool calls in one reply. ")
	sb.WriteString("Tool results will be returned to you before your next turn.\n")

	return sb.String()
}

// correctiveMessage restates the expected format after a reply produced no
// parseable tool call.
func correctiveMessage() string {
	return "Your previous reply contained no parseable tool call. " +
		"Reply with a tool call in exactly this format:\n" + callFormat
}

// formatResultContent renders a tool result as feedback text for the LLM.
func formatResultContent(result tool.Result) string {
	if result.Success {
		return fmt.Sprintf("Tool %s succeeded: %v", result.ToolName, result.Output)
	}
	msg := fmt.Sprintf("Tool %s failed (%s): %s", result.ToolName, result.Error.Kind, result.Error.Message)
	if violations, ok := result.Error.Detail.([]tool.Violation); ok {
		msg += "\n" + tool.FormatViolations(result.ToolName, violations)
	}
	return msg
}
