// Package tool implements the capabilities an agent may invoke: the Tool
// contract, the name-keyed Collection registry, a FunctionTool adapter for
// plain Go functions, the terminate tool and the inter-agent messaging tool.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentrelay/internal/util"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Return errors rather than panic
//   - Release held resources in Cleanup (a no-op is fine; embed NopCleanup)
type Tool interface {
	// Name returns the unique identifier for this tool.
	// Names should be descriptive and follow function naming conventions (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	// This description is provided to the LLM to help it understand when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Execute runs the tool with arguments already parsed from the model's
	// JSON payload.
	Execute(ctx context.Context, args map[string]any) (Result, error)

	// Cleanup releases resources held by the tool.
	Cleanup(ctx context.Context) error
}

// NopCleanup provides a no-op Cleanup for tools without resources.
type NopCleanup struct{}

// Cleanup implements Tool.
func (NopCleanup) Cleanup(context.Context) error { return nil }

// Result is the outcome of a tool invocation.
type Result struct {
	Output    any    // Text or any JSON serializable value
	Media     string // Optional base64 encoded image
	Terminate bool   // Set by tools requesting the run to finish
}

// Text creates a Result carrying plain text.
func Text(s string) Result { return Result{Output: s} }

// IsEmpty reports whether the result carries neither output nor media.
func (r Result) IsEmpty() bool {
	if r.Media != "" {
		return false
	}
	switch v := r.Output.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

// String renders Output for inclusion in an observation.
func (r Result) String() string {
	switch v := r.Output.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	}
	b, err := json.Marshal(r.Output)
	if err != nil {
		return fmt.Sprintf("%v", r.Output)
	}
	return string(b)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// Error codes carried by ToolError.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodeCleanup    = "CLEANUP_ERROR"
)

// ToolError represents errors that occur during tool lookup, validation,
// execution or cleanup.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// validateArgs checks args against the parameter schema of t.
func validateArgs(t Tool, args map[string]any) error {
	if err := util.ValidateParameters(args, t.Parameters()); err != nil {
		return &ToolError{
			Tool:    t.Name(),
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
		}
	}
	return nil
}

// stringArg extracts an optional string argument.
func stringArg(args map[string]any, key string) (string, bool) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}
