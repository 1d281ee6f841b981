// Package logging provides a minimal logging interface and adapters for agentrelay.
//
// The Logger interface defines the leveled methods (Debug, Info, Warn, Error)
// that agents, tools and the directory use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NewLogger building json, text or colored console (tint) handlers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewLogger(&logging.Config{Level: logging.LevelDebug, Format: logging.FormatPretty})
//	a := agent.NewGenericAgent("host", llm, func(o *agent.Options) { o.Logger = logger })
//
// Messages are dotted event names (agent.think.start, agent.tool.executed)
// followed by slog style key/value pairs.
package logging
