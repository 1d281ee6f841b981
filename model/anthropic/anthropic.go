// Package anthropic provides a model wrapper for the Anthropic Claude API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/model"
)

// Options configures the Anthropic model adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	BaseURL     string
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// NewModel creates a new Anthropic model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Model{
		client: &client,
		opts:   opts,
	}
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{
		client: client,
		opts:   opts,
	}
}

// Ask implements model.Model.
func (m *Model) Ask(ctx context.Context, req model.Request) (string, error) {
	resp, err := m.send(ctx, m.baseParams(req.System, req.Messages))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// AskTool implements model.Model. Tool choice "none" is expressed by not
// offering any tools.
func (m *Model) AskTool(ctx context.Context, req model.ToolRequest) (*model.Response, error) {
	params := m.baseParams(req.System, req.Messages)

	if len(req.Tools) > 0 && req.ToolChoice != core.ToolChoiceNone {
		params.Tools = buildTools(req.Tools)
		if req.ToolChoice == core.ToolChoiceRequired {
			params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
		} else {
			params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
		}
	}

	return m.send(ctx, params)
}

func (m *Model) baseParams(system, msgs []core.Message) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    buildMessages(msgs),
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
	}
	if blocks := systemBlocks(system, msgs); len(blocks) > 0 {
		params.System = blocks
	}
	return params
}

func (m *Model) send(ctx context.Context, params anthropic.MessageNewParams) (*model.Response, error) {
	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, translateError(err)
	}
	return convertResponse(resp), nil
}

// translateError maps a prompt that exceeds the context window onto
// model.ErrContextBudgetExceeded.
func translateError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(apiErr.Error()), "prompt is too long") {
		return &model.BudgetExceededError{Cause: err}
	}
	return fmt.Errorf("anthropic api error: %w", err)
}

func convertResponse(resp *anthropic.Message) *model.Response {
	out := &model.Response{
		FinishReason: "stop",
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}
	if resp.StopReason != "" {
		out.FinishReason = string(resp.StopReason)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.AsText().Text)
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := "{}"
			if len(toolBlock.Input) > 0 {
				args = string(toolBlock.Input)
			}
			out.ToolCalls = append(out.ToolCalls, core.ToolCall{
				ID:        toolBlock.ID,
				Name:      toolBlock.Name,
				Arguments: args,
			})
		}
	}
	out.Content = text.String()

	return out
}

// systemBlocks collects explicit system messages plus system turns found in
// the conversation, which the Messages API only accepts out of band.
func systemBlocks(system, msgs []core.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, group := range [][]core.Message{system, msgs} {
		for _, m := range group {
			if m.Role == core.RoleSystem && m.Content != "" {
				blocks = append(blocks, anthropic.TextBlockParam{Text: m.Content})
			}
		}
	}
	return blocks
}

// buildMessages converts conversation messages to Anthropic message format.
// Consecutive tool results are merged into one user message of tool_result
// blocks, placed right after the assistant turn that requested them.
func buildMessages(msgs []core.Message) []anthropic.MessageParam {
	var (
		messages    []anthropic.MessageParam
		toolResults []anthropic.ContentBlockParamUnion
	)
	flush := func() {
		if len(toolResults) > 0 {
			messages = append(messages, anthropic.NewUserMessage(toolResults...))
			toolResults = nil
		}
	}

	for _, m := range msgs {
		if m.Role != core.RoleTool {
			flush()
		}

		switch m.Role {
		case core.RoleSystem:
			continue // sent out of band
		case core.RoleTool:
			toolResults = append(toolResults, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, strings.HasPrefix(m.Content, "Error: ")))
			if m.Media != "" {
				toolResults = append(toolResults, imageBlock(m.Media))
			}
		case core.RoleAssistant:
			if content := assistantContent(m); len(content) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(content...))
			}
		default:
			if content := userContent(m); len(content) > 0 {
				messages = append(messages, anthropic.NewUserMessage(content...))
			}
		}
	}
	flush()

	return messages
}

func userContent(m core.Message) []anthropic.ContentBlockParamUnion {
	var content []anthropic.ContentBlockParamUnion
	if m.Content != "" {
		content = append(content, anthropic.NewTextBlock(m.Content))
	}
	if m.Media != "" {
		content = append(content, imageBlock(m.Media))
	}
	return content
}

func assistantContent(m core.Message) []anthropic.ContentBlockParamUnion {
	var content []anthropic.ContentBlockParamUnion
	if m.Content != "" {
		content = append(content, anthropic.NewTextBlock(m.Content))
	}
	for _, c := range m.ToolCalls {
		var input any = map[string]any{}
		if raw := strings.TrimSpace(c.Arguments); raw != "" && json.Valid([]byte(raw)) {
			input = json.RawMessage(raw)
		}
		content = append(content, anthropic.NewToolUseBlock(c.ID, input, c.Name))
	}
	return content
}

func imageBlock(media string) anthropic.ContentBlockParamUnion {
	return anthropic.NewImageBlockBase64("image/jpeg", media)
}

// buildTools converts tool definitions to Anthropic tool format.
func buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, len(tools))

	for i, tool := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}

		if params := tool.Function.Parameters; params != nil {
			if properties, exists := params["properties"]; exists {
				inputSchema.Properties = properties
			}
			switch req := params["required"].(type) {
			case []string:
				inputSchema.Required = req
			case []any:
				for _, r := range req {
					if s, ok := r.(string); ok {
						inputSchema.Required = append(inputSchema.Required, s)
					}
				}
			}
		}

		param := anthropic.ToolUnionParamOfTool(inputSchema, tool.Function.Name)
		if param.OfTool != nil && tool.Function.Description != "" {
			param.OfTool.Description = anthropic.String(tool.Function.Description)
		}
		anthropicTools[i] = param
	}

	return anthropicTools
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          string(m.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}
