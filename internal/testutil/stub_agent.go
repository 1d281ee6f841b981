package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/agentrelay/core"
)

// StubAgent is a core.Agent that answers every request through Reply and
// records what it was asked.
type StubAgent struct {
	AgentName        string
	AgentDescription string
	// Reply produces the run output; nil echoes the request.
	Reply func(ctx context.Context, request string) (string, error)

	mu       sync.Mutex
	requests []string
	depths   []int
	cleanups int
}

// NewStubAgent creates a stub answering with a fixed reply.
func NewStubAgent(name, description, reply string) *StubAgent {
	return &StubAgent{
		AgentName:        name,
		AgentDescription: description,
		Reply: func(context.Context, string) (string, error) {
			return reply, nil
		},
	}
}

func (s *StubAgent) Name() string        { return s.AgentName }
func (s *StubAgent) Description() string { return s.AgentDescription }

func (s *StubAgent) Run(ctx context.Context, request string) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, request)
	s.depths = append(s.depths, core.CallDepth(ctx))
	s.mu.Unlock()

	if s.Reply == nil {
		return request, nil
	}
	return s.Reply(ctx, request)
}

func (s *StubAgent) Cleanup(context.Context) {
	s.mu.Lock()
	s.cleanups++
	s.mu.Unlock()
}

// Requests returns the requests received so far.
func (s *StubAgent) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Depths returns the call depth observed on each run.
func (s *StubAgent) Depths() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.depths...)
}

// Cleanups returns how many times Cleanup was called.
func (s *StubAgent) Cleanups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleanups
}
