// Package agentrelay provides a high-level façade over the agent directory,
// agent construction and logging, enabling rapid construction of systems of
// agents that talk to each other. Most applications interact with this
// package by:
//  1. Creating a Relay via New() (optionally supplying a logger or directory)
//  2. Creating agents with NewAgent (registered automatically) or registering
//     custom core.Agent implementations with Register
//  3. Giving agents that should talk to peers the MessageTool
//  4. Running one agent by name with Run and releasing resources with CleanupAll
//
// Agents run synchronously: a message to a peer executes the peer's full loop
// inside the sender's step.
package agentrelay

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/directory"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/tool"
)

// ErrAgentNotFound is returned by Run for names absent from the directory.
var ErrAgentNotFound = errors.New("agent not found")

// Options configures the Relay instance.
type Options struct {
	// Directory used for peer lookup (defaults to a new empty directory).
	Directory *directory.Directory

	// MaxDepth bounds nested agent runs started through MessageTool.
	// Zero means unlimited.
	MaxDepth int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Relay is the high-level façade aggregating the directory and logger shared
// by a group of agents.
type Relay struct {
	opts   Options
	dir    *directory.Directory
	logger logging.Logger
}

// New creates a new Relay instance with optional overrides.
func New(optFns ...func(o *Options)) *Relay {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Directory == nil {
		logger := opts.Logger
		opts.Directory = directory.New(func(o *directory.Options) { o.Logger = logger })
	}

	return &Relay{opts: opts, dir: opts.Directory, logger: opts.Logger}
}

// Directory returns the directory agents are registered in.
func (r *Relay) Directory() *directory.Directory { return r.dir }

// Register adds agents to the directory. A name registered twice refers to
// the last agent.
func (r *Relay) Register(agents ...core.Agent) {
	for _, a := range agents {
		r.dir.Register(a)
	}
}

// MessageTool returns a msg_to_agent tool bound to this relay's directory.
func (r *Relay) MessageTool() *tool.MessageTool {
	return tool.NewMessageTool(r.dir, tool.WithMaxDepth(r.opts.MaxDepth))
}

// NewAgent creates a GenericAgent using the relay's logger and registers it.
func (r *Relay) NewAgent(name string, llm model.Model, optFns ...func(o *agent.Options)) *agent.GenericAgent {
	fns := append([]func(o *agent.Options){func(o *agent.Options) { o.Logger = r.logger }}, optFns...)
	a := agent.NewGenericAgent(name, llm, fns...)
	r.Register(a)
	return a
}

// Run drives the named agent with request and returns its output.
func (r *Relay) Run(ctx context.Context, name, request string) (string, error) {
	a, ok := r.dir.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}

	r.logger.Info("relay.run.start", "agent", name)
	out, err := a.Run(ctx, request)
	if err != nil {
		r.logger.Error("relay.run.failed", "agent", name, "error", err)
		return "", err
	}
	r.logger.Info("relay.run.done", "agent", name)

	return out, nil
}

// CleanupAll releases the resources of every registered agent.
func (r *Relay) CleanupAll(ctx context.Context) {
	for _, a := range r.dir.Agents() {
		a.Cleanup(ctx)
	}
	r.logger.Info("relay.cleanup.done", "agents", r.dir.Len())
}
