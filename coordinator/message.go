package coordinator

import (
	"time"

	"github.com/google/uuid"

	"github.com/qhy991/vagent/tool"
)

// Role identifies the origin of a task message.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool_result"
	RoleSystem     Role = "system"
)

// TaskMessage is one unit of communication in the coordination loop.
// Messages are created once, appended to the session history, and never
// mutated afterwards.
type TaskMessage struct {
	// ID is assigned at creation and immutable.
	ID string `json:"id"`

	// Role is the message origin.
	Role Role `json:"role"`

	// Content is the raw text for user, assistant and system messages.
	Content string `json:"content,omitempty"`

	// ToolResult is the structured payload for tool_result messages.
	ToolResult *tool.Result `json:"tool_result,omitempty"`

	// Timestamp is the creation time.
	Timestamp time.Time `json:"timestamp"`

	// ParentID references the message that prompted this one, when known.
	ParentID string `json:"parent_id,omitempty"`
}

// newMessage creates a text message.
func newMessage(role Role, content, parentID string) TaskMessage {
	return TaskMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		ParentID:  parentID,
	}
}

// newResultMessage creates a tool_result message.
func newResultMessage(result tool.Result, parentID string) TaskMessage {
	return TaskMessage{
		ID:         uuid.New().String(),
		Role:       RoleToolResult,
		ToolResult: &result,
		Timestamp:  time.Now(),
		ParentID:   parentID,
	}
}
