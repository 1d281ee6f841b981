package core

import "sync"

// StepBudget bounds the number of think/act cycles of a run. The counter is
// not reset automatically between runs; callers re-driving a finished agent
// call Reset first if they want a fresh budget.
type StepBudget struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewStepBudget creates a budget allowing max steps. If max <= 0 no step is allowed.
func NewStepBudget(max int) *StepBudget {
	return &StepBudget{max: max}
}

// Next consumes one step and reports whether it was within budget.
func (b *StepBudget) Next() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.max {
		return false
	}
	b.count++

	return true
}

// Count returns the number of steps consumed so far.
func (b *StepBudget) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.count
}

// Max returns the configured budget.
func (b *StepBudget) Max() int { return b.max }

// Remaining returns how many steps are left.
func (b *StepBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.max {
		return 0
	}
	return b.max - b.count
}

// Exhausted reports whether no step is left.
func (b *StepBudget) Exhausted() bool { return b.Remaining() == 0 }

// Reset sets the consumed step count back to zero.
func (b *StepBudget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.count = 0
}
