// Package memory provides the append-only conversational log owned by each
// agent. Turns are stored in the order they were produced; the store offers
// no edit or delete operations so the loop's ordering guarantees carry over
// to anything reading the history.
package memory
