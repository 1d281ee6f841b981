package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/memory"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/tool"
	"github.com/sourcegraph/conc/panics"
)

var (
	// ErrNoResponse is returned when the model produced no response at all.
	ErrNoResponse = errors.New("no response received from the model")

	// ErrToolRequired is returned when tool choice "required" was violated.
	ErrToolRequired = errors.New("model was required to use a tool but didn't call any tools")
)

// DefaultAssistantThinkHint is appended as the agent's own reasoning
// continuation before each think call unless overridden.
const DefaultAssistantThinkHint = "Let me review the conversation so far and decide on the next action. " +
	"If the task is complete, I will use the `terminate` tool."

// FinishPredicate decides whether the invocation of a special tool finishes
// the agent.
type FinishPredicate func(name string, result tool.Result) bool

// AlwaysFinish finishes on any special tool invocation.
func AlwaysFinish(string, tool.Result) bool { return true }

// FinishOnSignal finishes only when the tool result requests termination.
func FinishOnSignal(_ string, result tool.Result) bool { return result.Terminate }

// Options configures a GenericAgent.
//
// Use functional options with NewGenericAgent to override defaults. Setting a
// hint to the empty string disables it.
type Options struct {
	Description        string
	SystemPrompt       string      // Template, may use {{.name}} and {{.description}}
	Instruction        Instruction // Overrides SystemPrompt when set
	UserThinkHint      string      // User turn appended before each think call
	AssistantThinkHint string      // Assistant turn appended after the user hint
	ActHint            string      // User turn appended before the wrap-up call
	MaxSteps           int
	Tools              *tool.Collection
	ToolChoice         core.ToolChoice
	SpecialToolNames   []string // Matched case-insensitively
	ShouldFinish       FinishPredicate
	Memory             *memory.Buffer
	Logger             logging.Logger
}

// GenericAgent drives a language model through a bounded think/act loop over
// a tool collection.
//
// Each step first asks the model (think) for content and/or tool calls, then
// executes the requested calls in order (act) and, unless a finish tool ended
// the run, asks once more for a plain wrap-up of the step. All turns except
// the think hints are kept in the agent's memory.
type GenericAgent struct {
	BaseAgent
	llm          model.Model
	instruction  Instruction
	userHint     string
	selfHint     string
	actHint      string
	tools        *tool.Collection
	toolChoice   core.ToolChoice
	special      map[string]struct{}
	shouldFinish FinishPredicate
	memory       *memory.Buffer
	logger       logging.Logger

	pendingMu sync.Mutex
	pending   []core.ToolCall
}

// NewGenericAgent creates a new agent with sensible defaults.
//
// The agent is initialized with:
//   - 20 step budget
//   - Terminate as its only tool and only special tool
//   - Tool choice "auto"
//   - DefaultAssistantThinkHint as self-prompt
//   - An empty memory buffer
func NewGenericAgent(name string, llm model.Model, optFns ...func(o *Options)) *GenericAgent {
	opts := Options{
		AssistantThinkHint: DefaultAssistantThinkHint,
		MaxSteps:           20,
		ToolChoice:         core.ToolChoiceAuto,
		SpecialToolNames:   []string{tool.TerminateName},
		ShouldFinish:       AlwaysFinish,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Tools == nil {
		opts.Tools = tool.NewCollection(tool.NewTerminate())
	}
	if opts.Memory == nil {
		opts.Memory = memory.NewBuffer()
	}
	if opts.ShouldFinish == nil {
		opts.ShouldFinish = AlwaysFinish
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	logger := logging.With(opts.Logger, "agent", name)
	if !opts.ToolChoice.Valid() {
		logger.Warn("agent.config.invalid_tool_choice", "tool_choice", string(opts.ToolChoice))
		opts.ToolChoice = core.ToolChoiceAuto
	}
	instruction := opts.Instruction
	if instruction.IsZero() {
		instruction = NewInstructionFromText(opts.SystemPrompt)
	}

	special := make(map[string]struct{}, len(opts.SpecialToolNames))
	for _, n := range opts.SpecialToolNames {
		special[strings.ToLower(n)] = struct{}{}
	}

	a := &GenericAgent{
		BaseAgent:    NewBaseAgent(name, opts.MaxSteps),
		llm:          llm,
		instruction:  instruction,
		userHint:     opts.UserThinkHint,
		selfHint:     opts.AssistantThinkHint,
		actHint:      opts.ActHint,
		tools:        opts.Tools,
		toolChoice:   opts.ToolChoice,
		special:      special,
		shouldFinish: opts.ShouldFinish,
		memory:       opts.Memory,
		logger:       logger,
	}
	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}

	return a
}

// Memory returns the agent's conversation memory.
func (a *GenericAgent) Memory() *memory.Buffer { return a.memory }

// Tools returns the agent's tool collection.
func (a *GenericAgent) Tools() *tool.Collection { return a.tools }

// Run appends request (if non-empty) as a user turn and loops think → act
// until the agent finishes, think reports nothing left to do, or the step
// budget is spent. It returns the chronological "Step i: ..." outputs of all
// completed steps, joined by newlines.
//
// Tool resources are released before Run returns, regardless of outcome.
func (a *GenericAgent) Run(ctx context.Context, request string) (string, error) {
	defer a.Cleanup(context.WithoutCancel(ctx))

	a.setState(core.StateRunning)
	a.logger.Info("agent.run.start", "depth", core.CallDepth(ctx), "remaining_steps", a.steps.Remaining())

	if request != "" {
		a.memory.Add(core.UserMessage(request))
	}

	var results []string
	for !a.IsFinished() {
		if err := ctx.Err(); err != nil {
			a.logger.Warn("agent.run.cancelled", "error", err)
			return "", err
		}
		if !a.steps.Next() {
			break
		}
		step := a.steps.Count()
		a.logger.Debug("agent.step.start", "step", step, "max_steps", a.steps.Max())

		ok, err := a.think(ctx)
		if err != nil {
			a.logger.Error("agent.think.failed", "step", step, "error", err)
			return "", fmt.Errorf("agent %s step %d: think: %w", a.Name(), step, err)
		}
		if !ok {
			a.logger.Debug("agent.step.no_action", "step", step)
			a.finish()
			break
		}

		output, err := a.act(ctx)
		if err != nil {
			a.logger.Error("agent.act.failed", "step", step, "error", err)
			return "", fmt.Errorf("agent %s step %d: act: %w", a.Name(), step, err)
		}
		results = append(results, fmt.Sprintf("Step %d: %s", step, output))
	}

	if !a.IsFinished() && a.steps.Exhausted() {
		a.finish()
		a.logger.Warn("agent.run.max_steps", "max_steps", a.steps.Max())
		results = append(results, fmt.Sprintf("Terminated: Reached max steps (%d)", a.steps.Max()))
	}

	a.logger.Info("agent.run.done", "steps", a.steps.Count(), "state", a.State().String())

	if len(results) == 0 {
		return "No steps executed", nil
	}
	return strings.Join(results, "\n"), nil
}

// think asks the model for content and/or tool calls. It reports false when
// there is nothing to act on.
func (a *GenericAgent) think(ctx context.Context) (bool, error) {
	msgs := a.memory.Messages()
	if a.userHint != "" {
		msgs = append(msgs, core.UserMessage(a.userHint))
	}
	if a.selfHint != "" {
		msgs = append(msgs, core.AssistantMessage(a.selfHint))
	}

	system, err := a.systemMessages(ctx)
	if err != nil {
		return false, err
	}

	a.logger.Debug("agent.think.start", "messages", len(msgs), "tools", a.tools.Len(), "tool_choice", string(a.toolChoice))

	resp, err := a.llm.AskTool(ctx, model.ToolRequest{
		Messages:   msgs,
		System:     system,
		Tools:      a.tools.Definitions(),
		ToolChoice: a.toolChoice,
	})
	if err != nil {
		if model.IsBudgetExceeded(err) {
			a.budgetExhausted(err)
			return false, nil
		}
		return false, err
	}
	if resp == nil {
		return false, ErrNoResponse
	}

	calls, content := resp.ToolCalls, resp.Content

	switch a.toolChoice {
	case core.ToolChoiceNone:
		if len(calls) > 0 {
			a.logger.Warn("agent.think.unexpected_tool_calls", "count", len(calls))
		}
		a.setPending(nil)
		if content == "" {
			return false, nil
		}
		a.memory.Add(core.AssistantMessage(content))
		return true, nil
	case core.ToolChoiceRequired:
		if len(calls) == 0 {
			return false, ErrToolRequired
		}
	}

	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = core.NewID()
		}
	}
	a.setPending(calls)

	if len(calls) == 0 {
		if content == "" {
			return false, nil
		}
		a.memory.Add(core.AssistantMessage(content))
		a.logger.Debug("agent.think.content", "length", len(content))
		return true, nil
	}

	a.memory.Add(core.ToolCallsMessage(content, calls))
	a.logger.Info("agent.think.tool_calls", "count", len(calls), "tools", callNames(calls))
	return true, nil
}

// act executes pending tool calls in order, then asks for a plain wrap-up
// unless a finish tool ended the run.
func (a *GenericAgent) act(ctx context.Context) (string, error) {
	calls := a.takePending()

	results := make([]string, 0, len(calls)+1)
	for _, call := range calls {
		observation, media := a.executeTool(ctx, call)
		a.memory.Add(core.ToolMessage(observation, call.ID, call.Name, media))
		results = append(results, observation)
	}

	if a.IsFinished() {
		return strings.Join(results, "\n\n"), nil
	}

	msgs := a.memory.Messages()
	if a.actHint != "" {
		msgs = append(msgs, core.UserMessage(a.actHint))
	}
	system, err := a.systemMessages(ctx)
	if err != nil {
		return "", err
	}

	reply, err := a.llm.Ask(ctx, model.Request{Messages: msgs, System: system})
	if err != nil {
		if model.IsBudgetExceeded(err) {
			a.budgetExhausted(err)
			return strings.Join(results, "\n\n"), nil
		}
		return "", err
	}
	if reply == "" {
		return "", ErrNoResponse
	}

	a.memory.Add(core.AssistantMessage(reply))
	results = append(results, reply)

	return strings.Join(results, "\n\n"), nil
}

// executeTool runs a single tool call and renders the outcome as an
// observation. Failures are reported as text and never returned as errors.
// The second return value is the media attached by the tool, if any.
func (a *GenericAgent) executeTool(ctx context.Context, call core.ToolCall) (string, string) {
	name := call.Name
	if name == "" {
		return "Error: Invalid command format", ""
	}
	if !a.tools.Has(name) {
		a.logger.Warn("agent.tool.unknown", "tool", name)
		return fmt.Sprintf("Error: Unknown tool '%s'", name), ""
	}

	raw := strings.TrimSpace(call.Arguments)
	if raw == "" {
		raw = "{}"
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		a.logger.Error("agent.tool.invalid_arguments", "tool", name, "arguments", call.Arguments, "error", err)
		return fmt.Sprintf("Error: Error parsing arguments for %s: Invalid JSON format", name), ""
	}

	a.logger.Info("agent.tool.start", "tool", name)

	var (
		pc     panics.Catcher
		result tool.Result
		err    error
	)
	pc.Try(func() { result, err = a.tools.Execute(ctx, name, args) })
	if r := pc.Recovered(); r != nil {
		err = r.AsError()
	}
	if err != nil {
		a.logger.Error("agent.tool.failed", "tool", name, "error", err)
		return fmt.Sprintf("Error: ⚠️ Tool '%s' encountered a problem: %v", name, err), ""
	}

	a.handleSpecialTool(name, result)

	a.logger.Info("agent.tool.executed", "tool", name, "empty", result.IsEmpty(), "media", result.Media != "")

	if result.IsEmpty() {
		return fmt.Sprintf("Cmd `%s` completed with no output", name), result.Media
	}
	return fmt.Sprintf("Observed output of cmd `%s` executed:\n%s", name, result.String()), result.Media
}

func (a *GenericAgent) handleSpecialTool(name string, result tool.Result) {
	if !a.isSpecialTool(name) {
		return
	}
	if a.shouldFinish(name, result) && a.finish() {
		a.logger.Info("agent.finished", "tool", name)
	}
}

func (a *GenericAgent) isSpecialTool(name string) bool {
	_, ok := a.special[strings.ToLower(name)]
	return ok
}

func (a *GenericAgent) budgetExhausted(err error) {
	a.logger.Error("agent.model.budget_exceeded", "error", err)
	a.memory.Add(core.AssistantMessage(
		fmt.Sprintf("Maximum token limit reached, cannot continue execution: %v", err),
	))
	a.finish()
}

func (a *GenericAgent) systemMessages(ctx context.Context) ([]core.Message, error) {
	prompt, err := a.instruction.Resolve(ctx, map[string]any{
		"name":        a.Name(),
		"description": a.Description(),
	})
	if err != nil {
		return nil, fmt.Errorf("resolve system prompt: %w", err)
	}
	if prompt == "" {
		return nil, nil
	}
	return []core.Message{core.SystemMessage(prompt)}, nil
}

func (a *GenericAgent) setPending(calls []core.ToolCall) {
	a.pendingMu.Lock()
	defer a.pendingMu.Unlock()
	a.pending = append([]core.ToolCall(nil), calls...)
}

func (a *GenericAgent) takePending() []core.ToolCall {
	a.pendingMu.Lock()
	defer a.pendingMu.Unlock()
	calls := a.pending
	a.pending = nil
	return calls
}

// Cleanup releases the resources held by the agent's tools. Failures are
// logged, never returned; one failing tool does not stop the others.
func (a *GenericAgent) Cleanup(ctx context.Context) {
	a.logger.Debug("agent.cleanup.start", "tools", a.tools.Len())
	if err := a.tools.Cleanup(ctx); err != nil {
		a.logger.Error("agent.cleanup.failed", "error", err)
		return
	}
	a.logger.Debug("agent.cleanup.done")
}

func callNames(calls []core.ToolCall) []string {
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Name
	}
	return names
}
