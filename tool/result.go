package tool

// Error kind constants for failed tool results.
const (
	ErrKindNotFound   = "tool_not_found"
	ErrKindValidation = "validation_failure"
	ErrKindHandler    = "handler_exception"
	ErrKindTimeout    = "timeout"
)

// ResultError describes why a tool call failed.
type ResultError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`

	// Detail carries structured diagnostics, e.g. the remaining
	// violations for a validation failure.
	Detail any `json:"detail,omitempty"`
}

// Result is the outcome of executing one tool call. Created once, immutable.
type Result struct {
	// CallID matches the originating call.
	CallID string `json:"call_id"`

	// ToolName is the resolved tool name, for diagnostics.
	ToolName string `json:"tool_name,omitempty"`

	// Success reports whether the handler completed without error.
	Success bool `json:"success"`

	// Output is the handler's payload on success.
	Output any `json:"output,omitempty"`

	// Error is set when Success is false.
	Error *ResultError `json:"error,omitempty"`
}

// failedResult builds a failure Result for a call.
func failedResult(call Call, kind, message string, detail any) Result {
	return Result{
		CallID:   call.ID,
		ToolName: call.Name,
		Success:  false,
		Error: &ResultError{
			Kind:    kind,
			Message: message,
			Detail:  detail,
		},
	}
}
