package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/directory"
	"github.com/hupe1980/agentrelay/internal/testutil"
	"github.com/hupe1980/agentrelay/memory"
)

func TestMessageTool_Relay(t *testing.T) {
	dir := directory.New()
	bob := testutil.NewStubAgent("Bob", "a blackjack player", "I hit.")
	dir.Register(bob)

	msgTool := NewMessageTool(dir)
	res, err := msgTool.Execute(context.Background(), map[string]any{
		"your_name":  "Host",
		"agent_name": "Bob",
		"message":    "Your move?",
	})
	require.NoError(t, err)

	assert.Equal(t, "Agent Bob response: I hit.", res.String())
	assert.Equal(t, []string{"Agent Host send message for you, and you have to response that: Your move?\n"}, bob.Requests())
	assert.Equal(t, []int{1}, bob.Depths())
}

func TestMessageTool_NotFound(t *testing.T) {
	res, err := NewMessageTool(directory.New()).Execute(context.Background(), map[string]any{
		"your_name":  "Host",
		"agent_name": "Carol",
		"message":    "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "Agent Carol not found.", res.String())
}

func TestMessageTool_NestedFailure(t *testing.T) {
	dir := directory.New()
	dir.Register(&testutil.StubAgent{
		AgentName: "Bob",
		Reply: func(context.Context, string) (string, error) {
			return "", errors.New("model offline")
		},
	})

	_, err := NewMessageTool(dir).Execute(context.Background(), map[string]any{
		"agent_name": "Bob",
		"message":    "hi",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model offline")
}

func TestMessageTool_MaxDepth(t *testing.T) {
	dir := directory.New()
	bob := testutil.NewStubAgent("Bob", "", "ok")
	dir.Register(bob)

	msgTool := NewMessageTool(dir, WithMaxDepth(2))
	ctx := core.WithCallDepth(context.Background(), 2)

	res, err := msgTool.Execute(ctx, map[string]any{"agent_name": "Bob", "message": "hi"})
	require.NoError(t, err)
	assert.Contains(t, res.String(), "maximum nesting depth 2")
	assert.Empty(t, bob.Requests())
}

func TestMessageTool_Description(t *testing.T) {
	dir := directory.New()
	dir.Register(testutil.NewStubAgent("Alice", "plays cautiously", ""))
	msgTool := NewMessageTool(dir)

	assert.Contains(t, msgTool.Description(), `"name":"Alice"`)

	dir.Register(testutil.NewStubAgent("Bob", "plays boldly", ""))
	assert.Contains(t, msgTool.Description(), `"name":"Bob"`)
}

func TestMessageTool_Validation(t *testing.T) {
	_, err := NewMessageTool(directory.New()).Execute(context.Background(), map[string]any{"message": "hi"})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)

	_, err = NewMessageTool(directory.New()).Execute(context.Background(), map[string]any{"agent_name": "Bob", "message": 42.0})
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "message", toolErr.Details.(*ValidationError).Field)
}

func TestRecallTool(t *testing.T) {
	buf := memory.NewBuffer()
	buf.Add(core.UserMessage("Alice draws a 7"), core.AssistantMessage("Bob stands"), core.UserMessage("Alice draws a 9"))

	res, err := NewRecallTool(buf).Execute(context.Background(), map[string]any{"query": "Alice", "limit": float64(1)})
	require.NoError(t, err)
	assert.Equal(t, "[user] Alice draws a 9", res.String())

	res, err = NewRecallTool(buf).Execute(context.Background(), map[string]any{"query": "dealer"})
	require.NoError(t, err)
	assert.Equal(t, `No earlier turn mentions "dealer".`, res.String())

	_, err = NewRecallTool(buf).Execute(context.Background(), map[string]any{"query": "Alice", "limit": 1.5})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)
}
