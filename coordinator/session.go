package coordinator

import (
	"github.com/google/uuid"
)

// Status is the lifecycle state of a coordination session.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusExhausted Status = "exhausted"
)

// Termination reasons recorded in the session diagnostic.
const (
	ReasonCompleted  = "completed"
	ReasonNoToolCall = "no_tool_call_threshold"
	ReasonExhausted  = "exhausted"
	ReasonCancelled  = "cancelled"
)

// session is the per-task state owned exclusively by one Run invocation.
// The history is append-only; messages are never mutated after creation.
type session struct {
	id            string
	history       []TaskMessage
	iteration     int
	maxIterations int
	status        Status
}

func newSession(maxIterations int) *session {
	return &session{
		id:            uuid.New().String(),
		maxIterations: maxIterations,
		status:        StatusRunning,
	}
}

// append adds a message to the history and returns it, so callers can chain
// parent references.
func (s *session) append(msg TaskMessage) TaskMessage {
	s.history = append(s.history, msg)
	return msg
}

// lastID returns the ID of the most recent message, or "".
func (s *session) lastID() string {
	if len(s.history) == 0 {
		return ""
	}
	return s.history[len(s.history)-1].ID
}

// Diagnostic summarizes how a session terminated.
type Diagnostic struct {
	// Iterations is the number of loop iterations that ran.
	Iterations int `json:"iterations"`

	// Reason is one of the termination reason constants.
	Reason string `json:"reason"`

	// LastError describes the final failure when the session did not
	// succeed.
	LastError string `json:"last_error,omitempty"`
}

// Outcome is returned to the caller at session termination. Terminal states
// are reported here, never raised as errors out of the loop.
type Outcome struct {
	// SessionID identifies the session for log correlation.
	SessionID string `json:"session_id"`

	// Status is the terminal status: succeeded, failed or exhausted.
	Status Status `json:"status"`

	// History is the full ordered conversation.
	History []TaskMessage `json:"history"`

	// Diagnostic carries iteration count and failure reason.
	Diagnostic Diagnostic `json:"diagnostic"`
}
