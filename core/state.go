package core

import "fmt"

// AgentState is the lifecycle phase of an agent's execution loop.
type AgentState int

const (
	// StateIdle is the initial state before any run.
	StateIdle AgentState = iota
	// StateRunning is entered when a run starts.
	StateRunning
	// StateFinished is terminal for the current run: a finish tool fired,
	// the step budget was exhausted or the model's context budget was hit.
	StateFinished
)

// String returns the lower-case name of the state.
func (s AgentState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ToolChoice instructs the model whether tool use is optional, mandatory or
// disallowed for a think call.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceRequired ToolChoice = "required"
	ToolChoiceNone     ToolChoice = "none"
)

// Valid reports whether c is one of the known policies.
func (c ToolChoice) Valid() bool {
	switch c {
	case ToolChoiceAuto, ToolChoiceRequired, ToolChoiceNone:
		return true
	}
	return false
}
