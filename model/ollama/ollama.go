// Package ollama provides an implementation of model.Model for models served
// by a local or remote Ollama instance through its /api/chat endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/ollama/ollama/api"
)

// DefaultEndpoint is the address of a local Ollama server.
const DefaultEndpoint = "http://localhost:11434"

// Options configures the Ollama model adapter.
type Options struct {
	Endpoint    string
	Model       string
	Temperature float64
	NumCtx      int // Context window; 0 keeps the server default
	HTTPClient  *http.Client
	Logger      logging.Logger
}

// Model talks to Ollama's chat API using the request/response types of the
// official api package.
type Model struct {
	opts Options
}

// NewModel creates a new Ollama model adapter.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Endpoint:    DefaultEndpoint,
		Model:       "llama3.1",
		Temperature: 0.7,
		HTTPClient:  &http.Client{Timeout: 10 * time.Minute},
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	opts.Endpoint = strings.TrimRight(opts.Endpoint, "/")

	return &Model{opts: opts}
}

// Ask implements model.Model.
func (m *Model) Ask(ctx context.Context, req model.Request) (string, error) {
	resp, err := m.chat(ctx, m.chatRequest(req.System, req.Messages))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// AskTool implements model.Model. Ollama has no tool choice parameter: "none"
// omits the tools and "required" is enforced by the caller.
func (m *Model) AskTool(ctx context.Context, req model.ToolRequest) (*model.Response, error) {
	chatReq := m.chatRequest(req.System, req.Messages)
	if len(req.Tools) > 0 && req.ToolChoice != core.ToolChoiceNone {
		tools, err := buildTools(req.Tools)
		if err != nil {
			return nil, err
		}
		chatReq.Tools = tools
	}
	return m.chat(ctx, chatReq)
}

func (m *Model) chatRequest(system, msgs []core.Message) *api.ChatRequest {
	stream := false
	options := map[string]any{"temperature": m.opts.Temperature}
	if m.opts.NumCtx > 0 {
		options["num_ctx"] = m.opts.NumCtx
	}
	return &api.ChatRequest{
		Model:    m.opts.Model,
		Messages: buildMessages(system, msgs, m.opts.Logger),
		Stream:   &stream,
		Options:  options,
	}
}

func (m *Model) chat(ctx context.Context, chatReq *api.ChatRequest) (*model.Response, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("ollama: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.opts.Endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := m.opts.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama: send request: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("ollama: read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		statusErr := api.StatusError{StatusCode: httpResp.StatusCode, Status: httpResp.Status}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			statusErr.ErrorMessage = payload.Error
		}
		if strings.Contains(strings.ToLower(statusErr.ErrorMessage), "context length") {
			return nil, &model.BudgetExceededError{Cause: statusErr}
		}
		return nil, fmt.Errorf("ollama api error: %w", statusErr)
	}

	var chatResp api.ChatResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}

	return convertResponse(&chatResp)
}

func convertResponse(resp *api.ChatResponse) (*model.Response, error) {
	out := &model.Response{
		Content:      resp.Message.Content,
		FinishReason: resp.DoneReason,
		Usage: &model.TokenUsage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}
	for _, tc := range resp.Message.ToolCalls {
		args, err := json.Marshal(tc.Function.Arguments)
		if err != nil {
			return nil, fmt.Errorf("ollama: encode tool arguments: %w", err)
		}
		out.ToolCalls = append(out.ToolCalls, core.ToolCall{
			ID:        core.NewID(),
			Name:      tc.Function.Name,
			Arguments: string(args),
		})
	}
	if len(out.ToolCalls) > 0 {
		out.FinishReason = "tool_calls"
	}
	return out, nil
}

// buildMessages converts the conversation to Ollama messages. Tool call
// arguments that are not a JSON object are replayed as empty arguments.
func buildMessages(system, msgs []core.Message, logger logging.Logger) []api.Message {
	out := make([]api.Message, 0, len(system)+len(msgs))
	for _, s := range system {
		out = append(out, api.Message{Role: string(core.RoleSystem), Content: s.Content})
	}
	for _, m := range msgs {
		msg := api.Message{Role: string(m.Role), Content: m.Content}
		if m.Media != "" {
			if img, err := base64.StdEncoding.DecodeString(m.Media); err == nil {
				msg.Images = []api.ImageData{img}
			}
		}
		for _, c := range m.ToolCalls {
			var args api.ToolCallFunctionArguments
			if raw := strings.TrimSpace(c.Arguments); raw != "" {
				if err := json.Unmarshal([]byte(raw), &args); err != nil {
					logger.Warn("ollama.tool_call.invalid_arguments", "tool", c.Name, "call_id", c.ID, "error", err)
					args = nil
				}
			}
			msg.ToolCalls = append(msg.ToolCalls, api.ToolCall{
				Function: api.ToolCallFunction{Name: c.Name, Arguments: args},
			})
		}
		out = append(out, msg)
	}
	return out
}

// buildTools converts tool definitions through their JSON form, which matches
// the wire format of api.Tool.
func buildTools(defs []model.ToolDefinition) (api.Tools, error) {
	raw, err := json.Marshal(defs)
	if err != nil {
		return nil, fmt.Errorf("ollama: encode tools: %w", err)
	}
	var tools api.Tools
	if err := json.Unmarshal(raw, &tools); err != nil {
		return nil, fmt.Errorf("ollama: convert tools: %w", err)
	}
	return tools, nil
}

// Info returns metadata describing this Ollama model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "ollama",
		SupportsTools: true,
	}
}
