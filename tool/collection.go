package tool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/agentrelay/model"
	"github.com/sourcegraph/conc/panics"
)

// Collection is the name-keyed tool registry of an agent. Iteration order is
// the order tools were first added. It is safe for concurrent use.
type Collection struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewCollection creates a collection holding tools.
func NewCollection(tools ...Tool) *Collection {
	c := &Collection{tools: make(map[string]Tool)}
	c.Add(tools...)
	return c
}

// Add registers tools. A tool replacing an existing name keeps its position.
func (c *Collection) Add(tools ...Tool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tools {
		name := t.Name()
		if _, exists := c.tools[name]; !exists {
			c.order = append(c.order, name)
		}
		c.tools[name] = t
	}
}

// Get returns the tool registered under name.
func (c *Collection) Get(name string) (Tool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tools[name]
	return t, ok
}

// Has reports whether a tool named name is registered.
func (c *Collection) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Names returns the registered tool names in order.
func (c *Collection) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// Tools returns the registered tools in order.
func (c *Collection) Tools() []Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Tool, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tools[name])
	}
	return out
}

// Len returns the number of registered tools.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}

// Definitions renders the tool schemas advertised to the model. Descriptions
// are read at call time so tools with dynamic descriptions stay current.
func (c *Collection) Definitions() []model.ToolDefinition {
	tools := c.Tools()
	defs := make([]model.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// Execute invokes the named tool. An unknown name yields a *ToolError with
// code NOT_FOUND.
func (c *Collection) Execute(ctx context.Context, name string, args map[string]any) (Result, error) {
	t, ok := c.Get(name)
	if !ok {
		return Result{}, NewToolError(name, "tool not found", CodeNotFound)
	}
	return t.Execute(ctx, args)
}

// Cleanup runs Cleanup on every tool. A failing or panicking tool does not
// prevent the others from being cleaned up; all failures are joined.
func (c *Collection) Cleanup(ctx context.Context) error {
	var errs []error
	for _, t := range c.Tools() {
		var (
			pc  panics.Catcher
			err error
		)
		pc.Try(func() { err = t.Cleanup(ctx) })
		if r := pc.Recovered(); r != nil {
			err = r.AsError()
		}
		if err != nil {
			errs = append(errs, &ToolError{
				Tool:    t.Name(),
				Message: fmt.Sprintf("cleanup failed: %v", err),
				Code:    CodeCleanup,
				Details: err,
			})
		}
	}
	return errors.Join(errs...)
}
