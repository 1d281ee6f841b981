package core

import "github.com/google/uuid"

// Role identifies the author of a conversational turn.
type Role string

const (
	// RoleSystem marks instructions supplied by the agent configuration.
	RoleSystem Role = "system"
	// RoleUser marks requests and hints authored as if by the user.
	RoleUser Role = "user"
	// RoleAssistant marks model output (content and/or tool call requests).
	RoleAssistant Role = "assistant"
	// RoleTool marks the observation produced by a tool call.
	RoleTool Role = "tool"
)

// ToolCall describes a tool invocation request issued by the model.
type ToolCall struct {
	ID        string `json:"id"`                  // Correlates the request with its tool message
	Name      string `json:"name"`                // Tool name
	Arguments string `json:"arguments,omitempty"` // Serialized argument payload (JSON)
}

// Message is a single conversational turn. Messages are treated as immutable
// once appended to memory; use the constructors below to build them.
type Message struct {
	ID         string     `json:"id"`
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // Assistant turns only
	ToolCallID string     `json:"tool_call_id,omitempty"` // Tool turns only
	Name       string     `json:"name,omitempty"`         // Tool name for tool turns
	Media      string     `json:"media,omitempty"`        // Base64 encoded image attached by a tool
}

// SystemMessage creates a system turn.
func SystemMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleSystem, Content: content}
}

// UserMessage creates a user turn.
func UserMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleUser, Content: content}
}

// AssistantMessage creates a plain assistant turn.
func AssistantMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleAssistant, Content: content}
}

// ToolCallsMessage creates an assistant turn recording the requested tool
// calls. Content may be empty.
func ToolCallsMessage(content string, calls []ToolCall) Message {
	cp := make([]ToolCall, len(calls))
	copy(cp, calls)
	return Message{ID: NewID(), Role: RoleAssistant, Content: content, ToolCalls: cp}
}

// ToolMessage creates the tool turn answering the call identified by callID.
func ToolMessage(content, callID, name, media string) Message {
	return Message{
		ID:         NewID(),
		Role:       RoleTool,
		Content:    content,
		ToolCallID: callID,
		Name:       name,
		Media:      media,
	}
}

// HasToolCalls reports whether the message carries tool call requests.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// Clone returns a copy that does not share the ToolCalls backing array.
func (m Message) Clone() Message {
	if m.ToolCalls != nil {
		calls := make([]ToolCall, len(m.ToolCalls))
		copy(calls, m.ToolCalls)
		m.ToolCalls = calls
	}
	return m
}

// NewID generates a new unique identifier for messages and synthesized tool
// call ids.
func NewID() string { return uuid.NewString() }
