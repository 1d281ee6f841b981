package core

import "context"

type callDepthKey struct{}

// WithCallDepth returns a context recording how many nested agent runs are on
// the current call stack.
func WithCallDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, callDepthKey{}, depth)
}

// CallDepth returns the nesting depth recorded in ctx (0 for a top-level run).
func CallDepth(ctx context.Context) int {
	if d, ok := ctx.Value(callDepthKey{}).(int); ok {
		return d
	}
	return 0
}
