package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrelay/core"
)

// SequentialAgent coordinates the execution of multiple child agents in sequence.
//
// The request is handed to the first child; each child's output becomes the
// request of the next one and the last output is returned. Execution stops at
// the first error. Cleanup is delegated to every child.
//
// SequentialAgent is registered in a directory like any other agent, so a
// pipeline (e.g. "draft then review") can be messaged by name.
type SequentialAgent struct {
	BaseAgent              // Embedded base agent functionality
	children  []core.Agent // Child agents to execute in sequence
}

// NewSequentialAgent creates a new sequential execution coordinator.
func NewSequentialAgent(name string, children ...core.Agent) *SequentialAgent {
	return &SequentialAgent{
		BaseAgent: NewBaseAgent(name, len(children)),
		children:  children,
	}
}

// Children returns the child agents in execution order.
func (s *SequentialAgent) Children() []core.Agent {
	return append([]core.Agent(nil), s.children...)
}

// Run implements core.Agent.
func (s *SequentialAgent) Run(ctx context.Context, request string) (string, error) {
	s.setState(core.StateRunning)
	s.ResetSteps()
	defer s.finish()

	input := request
	for _, child := range s.children {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		s.steps.Next()

		out, err := child.Run(ctx, input)
		if err != nil {
			return "", fmt.Errorf("sequential execution failed at agent %s: %w", child.Name(), err)
		}
		input = out
	}

	return input, nil
}

// Cleanup implements core.Agent.
func (s *SequentialAgent) Cleanup(ctx context.Context) {
	for _, child := range s.children {
		child.Cleanup(ctx)
	}
}
