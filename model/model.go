package model

import (
	"context"

	"github.com/hupe1980/agentrelay/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request is a plain ask: the model answers with text only.
type Request struct {
	Messages []core.Message `json:"messages"`
	System   []core.Message `json:"system,omitempty"`
}

// ToolRequest is an ask offering tools under a tool-choice policy.
type ToolRequest struct {
	Messages   []core.Message   `json:"messages"`
	System     []core.Message   `json:"system,omitempty"`
	Tools      []ToolDefinition `json:"tools,omitempty"`
	ToolChoice core.ToolChoice  `json:"tool_choice,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response carries optional text and optional tool call requests.
type Response struct {
	Content      string          `json:"content"`
	ToolCalls    []core.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string          `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage     `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "ollama", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the LM client consumed by the agent loop.
//
// Both operations return an error wrapping ErrContextBudgetExceeded when the
// provider reports that the input exceeded its working context; every other
// error is treated as a generic failure.
type Model interface {
	// Ask requests a plain text completion.
	Ask(ctx context.Context, req Request) (string, error)

	// AskTool requests a completion that may contain tool calls.
	AskTool(ctx context.Context, req ToolRequest) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}
