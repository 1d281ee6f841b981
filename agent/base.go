package agent

import (
	"fmt"
	"sync"

	"github.com/hupe1980/agentrelay/core"
)

// BaseAgent bundles identity, lifecycle state and step accounting shared by
// concrete agents. Embed it and supply Run and Cleanup to satisfy core.Agent.
// All exported methods are goroutine-safe.
type BaseAgent struct {
	name        string          // Unique name used for directory lookup
	description string          // Short description advertised to peers
	mu          sync.Mutex      // Protects state
	state       core.AgentState // Idle → Running → Finished
	steps       *core.StepBudget
}

// NewBaseAgent constructs a BaseAgent with a generated description
// (customizable via SetDescription) and the given step budget.
func NewBaseAgent(name string, maxSteps int) BaseAgent {
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
		state:       core.StateIdle,
		steps:       core.NewStepBudget(maxSteps),
	}
}

// Name returns the agent's unique name.
func (b *BaseAgent) Name() string { return b.name }

// Description returns the agent's description.
func (b *BaseAgent) Description() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.description
}

// SetDescription updates the agent's description.
func (b *BaseAgent) SetDescription(desc string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.description = desc
}

// State returns the current lifecycle state.
func (b *BaseAgent) State() core.AgentState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// IsFinished reports whether the agent reached StateFinished.
func (b *BaseAgent) IsFinished() bool { return b.State() == core.StateFinished }

func (b *BaseAgent) setState(s core.AgentState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = s
}

// finish moves the agent to StateFinished and reports whether it was not
// finished before.
func (b *BaseAgent) finish() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed := b.state != core.StateFinished
	b.state = core.StateFinished
	return changed
}

// CurrentStep returns the number of steps consumed so far.
func (b *BaseAgent) CurrentStep() int { return b.steps.Count() }

// MaxSteps returns the step budget.
func (b *BaseAgent) MaxSteps() int { return b.steps.Max() }

// ResetSteps restores the full step budget. Runs never reset it on their own,
// so an agent driven repeatedly shares one budget across runs unless the
// caller resets it.
func (b *BaseAgent) ResetSteps() { b.steps.Reset() }
