// Package agent contains the agent implementations of agentrelay. The package
// focuses on three concerns:
//
//  1. Shared identity, state and step accounting (BaseAgent)
//  2. The tool-calling think/act loop driven by a language model (GenericAgent)
//  3. Simple composition of agents (SequentialAgent)
//
// Execution Model:
//   - Run appends the request to the agent's memory and loops think → act
//     until a finish tool is invoked, the step budget is spent or the model
//     reports that its context budget is exhausted
//   - Tool failures never escape a step; they are folded back into the
//     conversation as observations so the model can react to them
//   - A tool may itself run another agent (see tool.MessageTool), which nests
//     that agent's full loop inside the caller's act phase
//   - Tool resources are released after every Run, including failed ones
//
// Peer lookup, persistence and model specifics live in their own packages
// (directory, memory, model) to avoid cyclic deps.
package agent
