package tool

import (
	"context"
	"time"
)

// Call is a candidate or resolved tool invocation extracted from an LLM reply.
type Call struct {
	// ID uniquely identifies this invocation attempt.
	ID string `json:"call_id"`

	// Name is the tool name to resolve against the router.
	Name string `json:"tool_name"`

	// Parameters holds the extracted argument values. They may be
	// partially malformed until validated and repaired.
	Parameters map[string]any `json:"parameters"`

	// ExtractionMethod records which pipeline strategy produced the call.
	ExtractionMethod string `json:"extraction_method,omitempty"`
}

// Handler executes a validated tool call. Implementations receive the final
// parameter mapping after validation and repair. A returned error or a panic
// is converted by the router into a failed Result; it never propagates.
type Handler func(ctx context.Context, params map[string]any) (any, error)

// Definition is a registry entry: a named schema plus its handler.
type Definition struct {
	// Name is the unique registry key.
	Name string

	// Description is surfaced to the LLM in the system prompt.
	Description string

	// Schema declares the accepted parameters.
	Schema Schema

	// Handler is invoked with validated parameters.
	Handler Handler

	// Timeout bounds a single handler invocation. Zero means the router
	// default applies.
	Timeout time.Duration
}
