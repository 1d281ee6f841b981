package testutil

import (
	"github.com/hupe1980/agentrelay/core"
)

// ConversationBuilder provides a fluent helper for constructing message
// histories in tests.
// Example:
//
//	msgs := NewConversationBuilder().User("hi").Calls("", Call("c1", "terminate", `{"status":"success"}`)).
//		Tool("done", "c1", "terminate").Build()
type ConversationBuilder struct {
	msgs []core.Message
}

// NewConversationBuilder creates an empty builder.
func NewConversationBuilder() *ConversationBuilder { return &ConversationBuilder{} }

// System appends a system turn (chainable).
func (b *ConversationBuilder) System(t string) *ConversationBuilder {
	b.msgs = append(b.msgs, core.SystemMessage(t))
	return b
}

// User appends a user turn (chainable).
func (b *ConversationBuilder) User(t string) *ConversationBuilder {
	b.msgs = append(b.msgs, core.UserMessage(t))
	return b
}

// UserWithImage appends a user turn carrying a base64 image (chainable).
func (b *ConversationBuilder) UserWithImage(t, media string) *ConversationBuilder {
	m := core.UserMessage(t)
	m.Media = media
	b.msgs = append(b.msgs, m)
	return b
}

// Assistant appends a plain assistant turn (chainable).
func (b *ConversationBuilder) Assistant(t string) *ConversationBuilder {
	b.msgs = append(b.msgs, core.AssistantMessage(t))
	return b
}

// Calls appends an assistant turn requesting tool calls (chainable).
func (b *ConversationBuilder) Calls(content string, calls ...core.ToolCall) *ConversationBuilder {
	b.msgs = append(b.msgs, core.ToolCallsMessage(content, calls))
	return b
}

// Tool appends a tool observation answering callID (chainable).
func (b *ConversationBuilder) Tool(content, callID, name string) *ConversationBuilder {
	b.msgs = append(b.msgs, core.ToolMessage(content, callID, name, ""))
	return b
}

// Build returns the accumulated messages.
func (b *ConversationBuilder) Build() []core.Message {
	out := make([]core.Message, len(b.msgs))
	copy(out, b.msgs)
	return out
}

// Call is shorthand for a core.ToolCall literal.
func Call(id, name, arguments string) core.ToolCall {
	return core.ToolCall{ID: id, Name: name, Arguments: arguments}
}
