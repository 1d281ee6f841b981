package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentrelay/core"
)

// Reply configures one scripted model turn. Exactly one of Response or Err is
// normally set; a Reply with neither yields a nil response, which the agent
// loop treats as "no response received".
type Reply struct {
	Response *Response
	Err      error
}

// Text returns a Reply with plain content.
func Text(content string) Reply { return Reply{Response: &Response{Content: content, FinishReason: "stop"}} }

// Calls returns a Reply requesting the given tool calls with optional content.
func Calls(content string, calls ...core.ToolCall) Reply {
	return Reply{Response: &Response{Content: content, ToolCalls: calls, FinishReason: "tool_calls"}}
}

// Fail returns a Reply that fails with err.
func Fail(err error) Reply { return Reply{Err: err} }

// ScriptedModel is a deterministic in‑memory Model for tests and examples. It
// serves replies in order across Ask and AskTool calls and records every
// request it received.
type ScriptedModel struct {
	mu           sync.Mutex
	info         Info
	replies      []Reply
	index        int
	fallback     *Reply
	asks         []Request
	toolRequests []ToolRequest
}

// NewScriptedModel constructs a ScriptedModel serving replies in order.
func NewScriptedModel(replies ...Reply) *ScriptedModel {
	cloned := make([]Reply, len(replies))
	copy(cloned, replies)
	return &ScriptedModel{
		info:    Info{Name: "scripted", Provider: "test", SupportsTools: true},
		replies: cloned,
	}
}

// WithFallback sets the reply served once the script is exhausted.
func (m *ScriptedModel) WithFallback(r Reply) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &r
	return m
}

// Enqueue appends replies to the script.
func (m *ScriptedModel) Enqueue(replies ...Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, replies...)
}

func (m *ScriptedModel) next() (Reply, error) {
	if m.index < len(m.replies) {
		r := m.replies[m.index]
		m.index++
		return r, nil
	}
	if m.fallback != nil {
		m.index++
		return *m.fallback, nil
	}
	return Reply{}, fmt.Errorf("script exhausted at call %d", m.index+1)
}

// Ask implements Model.
func (m *ScriptedModel) Ask(_ context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.asks = append(m.asks, req)
	r, err := m.next()
	if err != nil {
		return "", err
	}
	if r.Err != nil {
		return "", r.Err
	}
	if r.Response == nil {
		return "", nil
	}
	return r.Response.Content, nil
}

// AskTool implements Model.
func (m *ScriptedModel) AskTool(_ context.Context, req ToolRequest) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolRequests = append(m.toolRequests, req)
	r, err := m.next()
	if err != nil {
		return nil, err
	}
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Response == nil {
		return nil, nil
	}
	resp := *r.Response
	resp.ToolCalls = append([]core.ToolCall(nil), r.Response.ToolCalls...)
	return &resp, nil
}

// Info implements Model.
func (m *ScriptedModel) Info() Info { return m.info }

// Calls returns the total number of Ask and AskTool calls served.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.asks) + len(m.toolRequests)
}

// Asks returns the recorded plain requests.
func (m *ScriptedModel) Asks() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.asks...)
}

// ToolRequests returns the recorded tool requests.
func (m *ScriptedModel) ToolRequests() []ToolRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ToolRequest(nil), m.toolRequests...)
}
