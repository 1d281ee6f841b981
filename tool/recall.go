package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentrelay/memory"
)

// RecallTool searches a memory buffer for earlier turns containing a query.
// It helps long-running agents whose history is trimmed by the provider or who
// need exact earlier wording (e.g. a game host re-reading a player's move).
type RecallTool struct {
	NopCleanup
	buf *memory.Buffer
}

// NewRecallTool creates a recall tool over buf.
func NewRecallTool(buf *memory.Buffer) *RecallTool { return &RecallTool{buf: buf} }

func (t *RecallTool) Name() string { return "recall_memory" }

func (t *RecallTool) Description() string {
	return "Search earlier conversation turns for a text fragment. Returns the newest matches first."
}

func (t *RecallTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "Text to look for"},
			"limit": map[string]any{"type": "integer", "description": "Maximum number of matches (default 5)"},
		},
		"required": []string{"query"},
	}
}

func (t *RecallTool) Execute(_ context.Context, args map[string]any) (Result, error) {
	if err := validateArgs(t, args); err != nil {
		return Result{}, err
	}
	query, ok := stringArg(args, "query")
	if !ok || query == "" {
		return Result{}, fmt.Errorf("field 'query' must be non-empty string")
	}
	limit := 5
	if raw, ok := args["limit"].(float64); ok && raw > 0 {
		limit = int(raw)
	}

	hits := t.buf.Search(query, limit)
	if len(hits) == 0 {
		return Text(fmt.Sprintf("No earlier turn mentions %q.", query)), nil
	}
	var sb strings.Builder
	for i, h := range hits {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "[%s] %s", h.Role, h.Content)
	}
	return Text(sb.String()), nil
}
