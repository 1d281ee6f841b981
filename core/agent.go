package core

import "context"

// Agent is the surface other components need to address an agent by name and
// drive it. The directory and the messaging tool depend only on this
// interface; the execution loop lives in package agent.
//
// Implementations must:
//   - Respect context cancellation in Run
//   - Release tool resources in Cleanup without returning an error
//   - Keep Name stable for the lifetime of the agent
type Agent interface {
	// Name returns the unique identifier used for directory lookup.
	Name() string

	// Description returns a human-readable summary advertised to peers.
	Description() string

	// Run drives the agent's think/act loop with an optional request and
	// returns its cumulative output.
	Run(ctx context.Context, request string) (string, error)

	// Cleanup releases resources held by the agent's tools. It is idempotent.
	Cleanup(ctx context.Context)
}
