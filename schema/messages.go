package schema

import "time"

// ThinkingMessageID is the placeholder id the server reuses while it is
// composing an answer. A message with this id is updated in place instead of
// appended.
const ThinkingMessageID MessageID = "thinking"

// MessageRole names the author of a conversational message.
type MessageRole string

const (
	// RoleUser marks a message written by the user.
	RoleUser MessageRole = "user"
	// RoleAssistant marks a message written by the generation engine.
	RoleAssistant MessageRole = "assistant"
	// RoleSystem marks an advisory produced by the client itself.
	RoleSystem MessageRole = "system"
)

// ToolStatus describes the progress of an inline tool call.
type ToolStatus string

const (
	// ToolStart marks the beginning of a tool call.
	ToolStart ToolStatus = "start"
	// ToolSuccess marks a successful tool call.
	ToolSuccess ToolStatus = "success"
	// ToolError marks a failed tool call.
	ToolError ToolStatus = "error"
)

// ToolEvent is one tool call rendered inline with a message.
type ToolEvent struct {
	Name      string     `json:"name"`
	Status    ToolStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
}

// ConversationMessage is one entry in the ordered conversational log.
type ConversationMessage struct {
	ID        MessageID   `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
	Tools     []ToolEvent `json:"tools,omitempty"`
}
