package tool

import (
	"context"
	"fmt"
)

// TerminateName is the name of the built-in finish tool.
const TerminateName = "terminate"

// Terminate lets the model end the interaction. Its Result sets Terminate;
// agents list it among their special tool names so invoking it finishes the run.
type Terminate struct{ NopCleanup }

// NewTerminate creates the terminate tool.
func NewTerminate() *Terminate { return &Terminate{} }

func (t *Terminate) Name() string { return TerminateName }

func (t *Terminate) Description() string {
	return "Terminate the interaction when the request is met OR if the assistant cannot proceed further with the task.\n" +
		"When you have finished all the tasks, call this tool to end the work."
}

func (t *Terminate) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{
				"type":        "string",
				"description": "The finish status of the interaction.",
				"enum":        []string{"success", "failure"},
			},
		},
		"required": []string{"status"},
	}
}

func (t *Terminate) Execute(_ context.Context, args map[string]any) (Result, error) {
	if err := validateArgs(t, args); err != nil {
		return Result{}, err
	}
	status, ok := stringArg(args, "status")
	if !ok || status == "" {
		return Result{}, fmt.Errorf("missing required field 'status'")
	}
	return Result{
		Output:    fmt.Sprintf("The interaction has been completed with status: %s", status),
		Terminate: true,
	}, nil
}
