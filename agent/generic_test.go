package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/directory"
	"github.com/hupe1980/agentrelay/internal/testutil"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/tool"
)

const terminateSuccess = `{"status":"success"}`

func call(id, name, args string) core.ToolCall { return testutil.Call(id, name, args) }

func echoTool() *tool.FunctionTool {
	return tool.NewFunctionTool("echo", "Echo the text", map[string]any{
		"type":       "object",
		"properties": map[string]any{"text": map[string]any{"type": "string"}},
	}, func(_ context.Context, args map[string]any) (any, error) {
		return args["text"], nil
	})
}

func withTools(tools ...tool.Tool) func(o *Options) {
	return func(o *Options) { o.Tools = tool.NewCollection(tools...) }
}

func TestGenericAgent_StepBudget(t *testing.T) {
	llm := model.NewScriptedModel().
		WithFallback(model.Calls("keep going", call("c", "echo", `{"text":"again"}`)))

	a := NewGenericAgent("looper", llm, withTools(echoTool(), tool.NewTerminate()), func(o *Options) {
		o.MaxSteps = 3
	})

	out, err := a.Run(context.Background(), "loop forever")
	require.NoError(t, err)

	// one think and one wrap-up call per step, nothing after the budget
	assert.Equal(t, 6, llm.Calls())
	assert.Equal(t, 3, a.CurrentStep())
	assert.Equal(t, core.StateFinished, a.State())

	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(out, "Step 1: "))
	assert.Contains(t, out, "Step 3: ")
	assert.Equal(t, "Terminated: Reached max steps (3)", lines[len(lines)-1])
}

func TestGenericAgent_StepBudgetNotReset(t *testing.T) {
	llm := model.NewScriptedModel().WithFallback(model.Calls("again", call("c", "echo", `{"text":"x"}`)))
	a := NewGenericAgent("looper", llm, withTools(echoTool()), func(o *Options) { o.MaxSteps = 1 })

	_, err := a.Run(context.Background(), "first")
	require.NoError(t, err)
	require.Equal(t, 2, llm.Calls())

	out, err := a.Run(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, 2, llm.Calls())
	assert.Equal(t, "Terminated: Reached max steps (1)", out)

	a.ResetSteps()
	_, err = a.Run(context.Background(), "third")
	require.NoError(t, err)
	assert.Equal(t, 4, llm.Calls())
}

func TestGenericAgent_TerminateEndsRun(t *testing.T) {
	llm := model.NewScriptedModel(model.Calls("All done.", call("t1", "terminate", terminateSuccess)))
	a := NewGenericAgent("solo", llm)

	out, err := a.Run(context.Background(), "finish up")
	require.NoError(t, err)

	assert.Equal(t, "Step 1: Observed output of cmd `terminate` executed:\nThe interaction has been completed with status: success", out)
	assert.Equal(t, 1, llm.Calls(), "no wrap-up call once finished")
	assert.Equal(t, core.StateFinished, a.State())

	msgs := a.Memory().Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.True(t, msgs[1].HasToolCalls())
	assert.Equal(t, "All done.", msgs[1].Content)
	assert.Equal(t, core.RoleTool, msgs[2].Role)
	assert.Equal(t, "t1", msgs[2].ToolCallID)
	assert.Equal(t, "terminate", msgs[2].Name)
}

func TestGenericAgent_MissingCallIDIsAssignedBeforeRecording(t *testing.T) {
	llm := model.NewScriptedModel(model.Calls("", call("", "terminate", terminateSuccess)))
	a := NewGenericAgent("solo", llm)

	_, err := a.Run(context.Background(), "finish up")
	require.NoError(t, err)

	msgs := a.Memory().Messages()
	require.Len(t, msgs, 3)
	require.Len(t, msgs[1].ToolCalls, 1)
	id := msgs[1].ToolCalls[0].ID
	assert.NotEmpty(t, id)
	assert.Equal(t, id, msgs[2].ToolCallID)
}

func TestGenericAgent_ExecuteTool(t *testing.T) {
	ctx := context.Background()
	boom := tool.NewFunctionTool("boom", "fails", nil, func(context.Context, map[string]any) (any, error) {
		return nil, errors.New("kaput")
	})
	panicky := tool.NewFunctionTool("panicky", "panics", nil, func(context.Context, map[string]any) (any, error) {
		panic("unexpected")
	})
	silent := tool.NewFunctionTool("silent", "no output", nil, func(context.Context, map[string]any) (any, error) {
		return "", nil
	})
	a := NewGenericAgent("dispatcher", model.NewScriptedModel(), withTools(echoTool(), boom, panicky, silent, tool.NewTerminate()))

	tests := []struct {
		name string
		call core.ToolCall
		want string
	}{
		{"missing name", call("1", "", "{}"), "Error: Invalid command format"},
		{"unknown tool", call("2", "ghost", "{}"), "Error: Unknown tool 'ghost'"},
		{"malformed arguments", call("3", "echo", `{"text":`), "Error: Error parsing arguments for echo: Invalid JSON format"},
		{"non-object arguments", call("4", "echo", `["a"]`), "Error: Error parsing arguments for echo: Invalid JSON format"},
		{"empty payload", call("5", "silent", ""), "Cmd `silent` completed with no output"},
		{"output", call("6", "echo", `{"text":"hi"}`), "Observed output of cmd `echo` executed:\nhi"},
		{"tool error", call("7", "boom", "{}"), "Error: ⚠️ Tool 'boom' encountered a problem: tool error [EXECUTION_ERROR] in boom: kaput"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, media := a.executeTool(ctx, tt.call)
			assert.Equal(t, tt.want, obs)
			assert.Empty(t, media)
			assert.Equal(t, core.StateIdle, a.State())
		})
	}

	t.Run("panic", func(t *testing.T) {
		obs, _ := a.executeTool(ctx, call("8", "panicky", "{}"))
		assert.True(t, strings.HasPrefix(obs, "Error: ⚠️ Tool 'panicky' encountered a problem: "))
		assert.Contains(t, obs, "unexpected")
		assert.Equal(t, core.StateIdle, a.State())
	})
}

func TestGenericAgent_FinishIdempotent(t *testing.T) {
	a := NewGenericAgent("finisher", model.NewScriptedModel())
	ctx := context.Background()

	_, _ = a.executeTool(ctx, call("1", "terminate", terminateSuccess))
	assert.Equal(t, core.StateFinished, a.State())

	obs, _ := a.executeTool(ctx, call("2", "terminate", terminateSuccess))
	assert.Contains(t, obs, "completed with status: success")
	assert.Equal(t, core.StateFinished, a.State())
	assert.False(t, a.finish())
}

func TestGenericAgent_SpecialToolsCaseInsensitive(t *testing.T) {
	stop := tool.NewFunctionTool("Stop_Game", "ends the game", nil, func(context.Context, map[string]any) (any, error) {
		return "game over", nil
	})
	a := NewGenericAgent("host", model.NewScriptedModel(), withTools(stop), func(o *Options) {
		o.SpecialToolNames = []string{"stop_game"}
	})

	_, _ = a.executeTool(context.Background(), call("1", "Stop_Game", ""))
	assert.Equal(t, core.StateFinished, a.State())
}

func TestGenericAgent_FinishOnSignal(t *testing.T) {
	maybe := tool.NewFunctionTool("maybe_stop", "", nil, func(_ context.Context, args map[string]any) (any, error) {
		return tool.Result{Output: "checked", Terminate: args["stop"] == true}, nil
	})
	a := NewGenericAgent("host", model.NewScriptedModel(), withTools(maybe), func(o *Options) {
		o.SpecialToolNames = []string{"maybe_stop"}
		o.ShouldFinish = FinishOnSignal
	})

	_, _ = a.executeTool(context.Background(), call("1", "maybe_stop", `{"stop":false}`))
	assert.Equal(t, core.StateIdle, a.State())

	_, _ = a.executeTool(context.Background(), call("2", "maybe_stop", `{"stop":true}`))
	assert.Equal(t, core.StateFinished, a.State())
}

func TestGenericAgent_MessagingRelay(t *testing.T) {
	dir := directory.New()

	aliceLLM := model.NewScriptedModel(model.Calls("I stand.", call("a1", "terminate", terminateSuccess)))
	alice := NewGenericAgent("Alice", aliceLLM, func(o *Options) { o.Description = "blackjack player" })

	hostLLM := model.NewScriptedModel(
		model.Calls("", call("h1", "msg_to_agent", `{"your_name":"Host","agent_name":"Alice","message":"Hit or stand?"}`)),
		model.Text("Alice stands."),
		model.Calls("", call("h2", "terminate", terminateSuccess)),
	)
	host := NewGenericAgent("Host", hostLLM, withTools(tool.NewMessageTool(dir), tool.NewTerminate()))

	dir.Register(host)
	dir.Register(alice)

	out, err := host.Run(context.Background(), "Host the game")
	require.NoError(t, err)

	aliceMsgs := alice.Memory().Messages()
	require.NotEmpty(t, aliceMsgs)
	assert.Equal(t, "Agent Host send message for you, and you have to response that: Hit or stand?\n", aliceMsgs[0].Content)
	assert.Equal(t, core.StateFinished, alice.State())

	var relayed *core.Message
	for _, m := range host.Memory().Messages() {
		if m.Role == core.RoleTool && m.ToolCallID == "h1" {
			relayed = &m
			break
		}
	}
	require.NotNil(t, relayed)
	assert.Equal(t, "msg_to_agent", relayed.Name)
	assert.Contains(t, relayed.Content, "Agent Alice response: ")
	assert.Contains(t, relayed.Content, "The interaction has been completed with status: success")

	assert.Equal(t, 3, hostLLM.Calls())
	assert.Equal(t, 1, aliceLLM.Calls())
	assert.Contains(t, out, "Step 1: ")
	assert.Contains(t, out, "Alice stands.")
	assert.Contains(t, out, "Step 2: ")

	defs := hostLLM.ToolRequests()[0].Tools
	require.Len(t, defs, 2)
	assert.Contains(t, defs[0].Function.Description, `"name":"Alice"`)
}

func TestGenericAgent_CleanupResilience(t *testing.T) {
	var cleaned []string
	mk := func(name string, cleanup func() error) tool.Tool {
		return tool.NewFunctionTool(name, "", nil, func(context.Context, map[string]any) (any, error) {
			return nil, nil
		}).WithCleanup(func(context.Context) error {
			cleaned = append(cleaned, name)
			return cleanup()
		})
	}

	tools := []tool.Tool{
		mk("browser", func() error { return errors.New("browser hung") }),
		mk("shell", func() error { panic("shell gone") }),
		mk("files", func() error { return nil }),
		tool.NewTerminate(),
	}

	llm := model.NewScriptedModel(model.Calls("", call("t", "terminate", terminateSuccess)))
	a := NewGenericAgent("worker", llm, withTools(tools...))

	_, err := a.Run(context.Background(), "work")
	require.NoError(t, err)
	assert.Equal(t, []string{"browser", "shell", "files"}, cleaned)

	// also after a failed run
	cleaned = nil
	failing := NewGenericAgent("worker", model.NewScriptedModel(model.Fail(errors.New("network down"))), withTools(tools...))
	_, err = failing.Run(context.Background(), "work")
	require.Error(t, err)
	assert.Equal(t, []string{"browser", "shell", "files"}, cleaned)
}

func TestGenericAgent_BudgetExceededInThink(t *testing.T) {
	llm := model.NewScriptedModel(model.Fail(&model.BudgetExceededError{Limit: 100, Requested: 120}))
	a := NewGenericAgent("chatty", llm)

	out, err := a.Run(context.Background(), "tell me everything")
	require.NoError(t, err)
	assert.Equal(t, "No steps executed", out)
	assert.Equal(t, core.StateFinished, a.State())

	last, ok := a.Memory().Last()
	require.True(t, ok)
	assert.Equal(t, core.RoleAssistant, last.Role)
	assert.Equal(t, "Maximum token limit reached, cannot continue execution: context budget exceeded (requested 120, limit 100)", last.Content)
}

func TestGenericAgent_BudgetExceededInWrapUp(t *testing.T) {
	llm := model.NewScriptedModel(
		model.Calls("", call("c", "echo", `{"text":"hi"}`)),
		model.Fail(&model.BudgetExceededError{}),
	)
	a := NewGenericAgent("chatty", llm, withTools(echoTool()))

	out, err := a.Run(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "Step 1: Observed output of cmd `echo` executed:\nhi", out)
	assert.Equal(t, core.StateFinished, a.State())

	last, _ := a.Memory().Last()
	assert.True(t, strings.HasPrefix(last.Content, "Maximum token limit reached"))
}

func TestGenericAgent_FatalErrors(t *testing.T) {
	tests := []struct {
		name    string
		llm     *model.ScriptedModel
		choice  core.ToolChoice
		wantErr error
	}{
		{"no response in think", model.NewScriptedModel(model.Reply{}), core.ToolChoiceAuto, ErrNoResponse},
		{"required without calls", model.NewScriptedModel(model.Text("just talking")), core.ToolChoiceRequired, ErrToolRequired},
		{"empty wrap-up", model.NewScriptedModel(model.Text("thinking"), model.Text("")), core.ToolChoiceAuto, ErrNoResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewGenericAgent("fragile", tt.llm, func(o *Options) { o.ToolChoice = tt.choice })
			_, err := a.Run(context.Background(), "go")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("generic model failure", func(t *testing.T) {
		cause := errors.New("503 service unavailable")
		a := NewGenericAgent("fragile", model.NewScriptedModel(model.Fail(cause)))
		_, err := a.Run(context.Background(), "go")
		require.ErrorIs(t, err, cause)
		assert.NotEqual(t, core.StateFinished, a.State())
	})
}

func TestGenericAgent_ContentOnlyStepStillWrapsUp(t *testing.T) {
	llm := model.NewScriptedModel(
		model.Text("I think the answer is 42."),
		model.Text("The answer is 42."),
		model.Reply{Response: &model.Response{}},
	)
	a := NewGenericAgent("thinker", llm)

	out, err := a.Run(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "Step 1: The answer is 42.", out)
	assert.Equal(t, core.StateFinished, a.State())
	assert.Equal(t, 3, llm.Calls())
}

func TestGenericAgent_ToolChoiceNoneIgnoresCalls(t *testing.T) {
	llm := model.NewScriptedModel(
		model.Calls("plain answer", call("c", "terminate", terminateSuccess)),
		model.Text("wrap"),
		model.Calls("", call("c2", "terminate", terminateSuccess)),
	)
	a := NewGenericAgent("quiet", llm, func(o *Options) {
		o.ToolChoice = core.ToolChoiceNone
		o.MaxSteps = 2
	})

	out, err := a.Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Step 1: wrap", out)
	assert.Equal(t, 3, llm.Calls())
	assert.Equal(t, core.StateFinished, a.State())

	for _, m := range a.Memory().Messages() {
		assert.NotEqual(t, core.RoleTool, m.Role)
		assert.False(t, m.HasToolCalls())
	}
}

func TestGenericAgent_HintsAreEphemeral(t *testing.T) {
	llm := model.NewScriptedModel(
		model.Calls("", call("c", "echo", `{"text":"x"}`)),
		model.Text("wrapped"),
		model.Calls("", call("t", "terminate", terminateSuccess)),
	)
	a := NewGenericAgent("hinted", llm, withTools(echoTool(), tool.NewTerminate()), func(o *Options) {
		o.SystemPrompt = "You are {{.name}}, {{.description}}."
		o.Description = "a careful dealer"
		o.UserThinkHint = "What next?"
		o.ActHint = "Summarize."
	})

	_, err := a.Run(context.Background(), "start")
	require.NoError(t, err)

	req := llm.ToolRequests()[0]
	require.Len(t, req.System, 1)
	assert.Equal(t, "You are hinted, a careful dealer.", req.System[0].Content)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "What next?", req.Messages[1].Content)
	assert.Equal(t, core.RoleUser, req.Messages[1].Role)
	assert.Equal(t, DefaultAssistantThinkHint, req.Messages[2].Content)
	assert.Equal(t, core.RoleAssistant, req.Messages[2].Role)

	ask := llm.Asks()[0]
	assert.Equal(t, "Summarize.", ask.Messages[len(ask.Messages)-1].Content)

	for _, m := range a.Memory().Messages() {
		assert.NotEqual(t, "What next?", m.Content)
		assert.NotEqual(t, DefaultAssistantThinkHint, m.Content)
		assert.NotEqual(t, "Summarize.", m.Content)
	}
}

func TestGenericAgent_MediaIsAttached(t *testing.T) {
	shot := tool.NewFunctionTool("screenshot", "", nil, func(context.Context, map[string]any) (any, error) {
		return tool.Result{Output: "captured", Media: "aW1hZ2U="}, nil
	})
	llm := model.NewScriptedModel(
		model.Calls("", call("s", "screenshot", ""), call("t", "terminate", terminateSuccess)),
	)
	a := NewGenericAgent("viewer", llm, withTools(shot, tool.NewTerminate()))

	_, err := a.Run(context.Background(), "look")
	require.NoError(t, err)

	msgs := a.Memory().Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "aW1hZ2U=", msgs[2].Media)
	assert.Empty(t, msgs[3].Media)
}

func TestGenericAgent_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := model.NewScriptedModel()
	a := NewGenericAgent("idle", llm)

	_, err := a.Run(ctx, "never")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, llm.Calls())
}

func TestSequentialAgent(t *testing.T) {
	draft := &testutil.StubAgent{AgentName: "draft", Reply: func(_ context.Context, req string) (string, error) {
		return "draft(" + req + ")", nil
	}}
	review := &testutil.StubAgent{AgentName: "review", Reply: func(_ context.Context, req string) (string, error) {
		return "review(" + req + ")", nil
	}}

	seq := NewSequentialAgent("pipeline", draft, review)
	out, err := seq.Run(context.Background(), "essay")
	require.NoError(t, err)
	assert.Equal(t, "review(draft(essay))", out)
	assert.Equal(t, core.StateFinished, seq.State())
	assert.Equal(t, 2, seq.CurrentStep())

	seq.Cleanup(context.Background())
	assert.Equal(t, 1, draft.Cleanups())
	assert.Equal(t, 1, review.Cleanups())
}

func TestSequentialAgent_StopsOnError(t *testing.T) {
	broken := &testutil.StubAgent{AgentName: "broken", Reply: func(context.Context, string) (string, error) {
		return "", errors.New("offline")
	}}
	never := testutil.NewStubAgent("never", "", "unused")

	_, err := NewSequentialAgent("pipeline", broken, never).Run(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Empty(t, never.Requests())
}
