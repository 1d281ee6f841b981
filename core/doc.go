// Package core provides the foundational domain types and interfaces shared by
// every agentrelay package. It defines:
//
//   - Messages (immutable conversational turns with roles and tool metadata)
//   - Tool calls (model-issued invocation requests with raw JSON arguments)
//   - Agent lifecycle state and the Agent contract used for peer lookup
//   - Step budgets bounding the think/act loop
//   - Call-depth propagation for nested agent invocations
//
// The package keeps implementation concerns (model adapters, tool registries,
// the execution loop) out of scope so higher layers can depend on it without
// cycles.
package core
