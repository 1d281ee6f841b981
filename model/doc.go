// Package model defines the provider‑agnostic boundary between the agent loop
// and language models.
//
// Core goals:
//   - Two request shapes: a plain ask and an ask offering tools under a
//     tool-choice policy
//   - Normalize tool call representation (ToolDefinition, core.ToolCall)
//   - Distinguish context/token budget exhaustion from generic failures via
//     ErrContextBudgetExceeded so callers branch with errors.Is
//   - Facilitate deterministic testing (ScriptedModel)
//
// Providers (OpenAI, Anthropic, Ollama) implement Model in sub packages so the
// agent loop remains decoupled from vendor SDKs.
package model
