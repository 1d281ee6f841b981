package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/directory"
)

// MessageToolName is the name under which MessageTool is offered to models.
const MessageToolName = "msg_to_agent"

// MessageToolOptions configures a MessageTool.
type MessageToolOptions struct {
	// MaxDepth limits how many agent runs may be nested through this tool on
	// one call stack. Zero means unlimited; each agent's step budget is then
	// the only bound on mutually messaging agents.
	MaxDepth int
}

// MessageTool relays a message to another agent found in a Directory and
// returns that agent's reply. The target's full run executes synchronously
// inside the caller's act phase.
type MessageTool struct {
	NopCleanup
	dir  *directory.Directory
	opts MessageToolOptions
}

// NewMessageTool creates a messaging tool resolving peers in dir.
func NewMessageTool(dir *directory.Directory, optFns ...func(o *MessageToolOptions)) *MessageTool {
	opts := MessageToolOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &MessageTool{dir: dir, opts: opts}
}

func (t *MessageTool) Name() string { return MessageToolName }

// Description embeds the current directory listing so the model knows which
// peers it can address.
func (t *MessageTool) Description() string {
	list, err := json.Marshal(t.dir.List())
	if err != nil {
		list = []byte("[]")
	}
	return "Use this tool to communicate with other agent. Agent list: " + string(list)
}

func (t *MessageTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"your_name": map[string]any{
				"type":        "string",
				"description": "Your name, the agent who sends the message.",
			},
			"agent_name": map[string]any{
				"type":        "string",
				"description": "The name of the agent you want to communicate with.",
			},
			"message": map[string]any{
				"type":        "string",
				"description": "The message you want to send to other agent.",
			},
		},
		"required": []string{"agent_name", "message"},
	}
}

// Execute looks up agent_name and drives its run with a request embedding the
// sender's name and message. A missing peer is reported as text, not as an error.
func (t *MessageTool) Execute(ctx context.Context, args map[string]any) (Result, error) {
	if err := validateArgs(t, args); err != nil {
		return Result{}, err
	}
	target, ok := stringArg(args, "agent_name")
	if !ok || target == "" {
		return Result{}, fmt.Errorf("field 'agent_name' must be non-empty string")
	}
	message, ok := stringArg(args, "message")
	if !ok {
		return Result{}, fmt.Errorf("field 'message' must be a string")
	}
	sender, _ := stringArg(args, "your_name")

	peer, found := t.dir.Get(target)
	if !found {
		return Text(fmt.Sprintf("Agent %s not found.", target)), nil
	}

	depth := core.CallDepth(ctx)
	if t.opts.MaxDepth > 0 && depth >= t.opts.MaxDepth {
		return Text(fmt.Sprintf("Agent %s not reached: maximum nesting depth %d exceeded.", target, t.opts.MaxDepth)), nil
	}

	request := fmt.Sprintf("Agent %s send message for you, and you have to response that: %s\n", sender, message)
	reply, err := peer.Run(core.WithCallDepth(ctx, depth+1), request)
	if err != nil {
		return Result{}, fmt.Errorf("agent %s failed: %w", target, err)
	}

	return Text(fmt.Sprintf("Agent %s response: %s", target, reply)), nil
}

// WithMaxDepth limits nested agent runs started through the tool to n.
func WithMaxDepth(n int) func(o *MessageToolOptions) {
	return func(o *MessageToolOptions) { o.MaxDepth = n }
}
