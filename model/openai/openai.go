// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API (including function/tool calling and image input). It
// adapts agentrelay's conversation messages into the SDK's message format and
// back.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// codeContextLengthExceeded is the API error code reported when the prompt
// does not fit into the model's context window.
const codeContextLengthExceeded = "context_length_exceeded"

// Options configure the OpenAI model adapter.
// Fields mirror a subset of Chat Completion parameters.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string // Falls back to OPENAI_API_KEY
	BaseURL             string // Optional, for compatible endpoints
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
}

// NewModel creates a new OpenAI model using the official client.
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

	client := openai.NewClient(clientOpts...)
	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Ask implements model.Model.
func (m *Model) Ask(ctx context.Context, req model.Request) (string, error) {
	params := m.baseParams(req.System, req.Messages)

	resp, err := m.complete(ctx, params)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.Content, nil
}

// AskTool implements model.Model.
func (m *Model) AskTool(ctx context.Context, req model.ToolRequest) (*model.Response, error) {
	params := m.baseParams(req.System, req.Messages)
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
		if req.ToolChoice != "" {
			params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
				OfAuto: openai.String(string(req.ToolChoice)),
			}
		}
	}
	return m.complete(ctx, params)
}

func (m *Model) baseParams(system, msgs []core.Message) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Messages:            buildMessages(system, msgs),
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
}

func (m *Model) complete(ctx context.Context, params openai.ChatCompletionNewParams) (*model.Response, error) {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, translateError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}
	return convertResponse(resp), nil
}

// translateError maps a context window overflow onto model.ErrContextBudgetExceeded.
func translateError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Code == codeContextLengthExceeded {
		return &model.BudgetExceededError{Cause: err}
	}
	return fmt.Errorf("openai api error: %w", err)
}

func convertResponse(resp *openai.ChatCompletion) *model.Response {
	ch0 := resp.Choices[0]
	out := &model.Response{
		Content:      ch0.Message.Content,
		FinishReason: ch0.FinishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	for _, tc := range ch0.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, core.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}

// buildMessages converts system and conversation messages into OpenAI chat
// messages. Images attached to tool results cannot travel in tool messages;
// they follow the batch of tool messages as a user message.
func buildMessages(system, msgs []core.Message) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(system)+len(msgs))
	for _, s := range system {
		messages = append(messages, openai.SystemMessage(s.Content))
	}

	var pendingImages []core.Message
	flush := func() {
		for _, m := range pendingImages {
			messages = append(messages, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(fmt.Sprintf("Image returned by tool `%s`:", m.Name)),
				imagePart(m.Media),
			}))
		}
		pendingImages = nil
	}

	for _, m := range msgs {
		if m.Role != core.RoleTool {
			flush()
		}
		switch m.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case core.RoleUser:
			if m.Media != "" {
				messages = append(messages, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
					openai.TextContentPart(m.Content),
					imagePart(m.Media),
				}))
				continue
			}
			messages = append(messages, openai.UserMessage(m.Content))
		case core.RoleAssistant:
			if !m.HasToolCalls() {
				messages = append(messages, openai.AssistantMessage(m.Content))
				continue
			}
			assistant := &openai.ChatCompletionAssistantMessageParam{
				Role:      "assistant",
				ToolCalls: buildToolCalls(m.ToolCalls),
			}
			if m.Content != "" {
				assistant.Content.OfString = openai.String(m.Content)
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: assistant})
		case core.RoleTool:
			messages = append(messages, openai.ToolMessage(m.Content, m.ToolCallID))
			if m.Media != "" {
				pendingImages = append(pendingImages, m)
			}
		default:
			if m.Content != "" {
				messages = append(messages, openai.UserMessage(m.Content))
			}
		}
	}
	flush()

	return messages
}

func imagePart(media string) openai.ChatCompletionContentPartUnionParam {
	return openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
		URL: "data:image/jpeg;base64," + media,
	})
}

func buildToolCalls(calls []core.ToolCall) []openai.ChatCompletionMessageToolCallParam {
	out := make([]openai.ChatCompletionMessageToolCallParam, 0, len(calls))
	for _, c := range calls {
		out = append(out, openai.ChatCompletionMessageToolCallParam{
			ID:   c.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      c.Name,
				Arguments: c.Arguments,
			},
		})
	}
	return out
}

func buildTools(defs []model.ToolDefinition) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, len(defs))
	for i, tdef := range defs {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Function.Name,
				Description: openai.String(tdef.Function.Description),
				Parameters:  tdef.Function.Parameters,
			},
		}
	}
	return tools
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}
