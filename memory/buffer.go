package memory

import (
	"strings"
	"sync"

	"github.com/hupe1980/agentrelay/core"
)

// Buffer is an ordered, append-only store of messages.
//
// Concurrency: protected by RWMutex. Messages returns a copy so callers may
// extend the slice (e.g. with ephemeral hint turns) without touching the store.
type Buffer struct {
	mu       sync.RWMutex
	messages []core.Message
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Add appends messages in the given order.
func (b *Buffer) Add(msgs ...core.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range msgs {
		b.messages = append(b.messages, m.Clone())
	}
}

// Messages returns a copy of every stored message in append order.
func (b *Buffer) Messages() []core.Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.Message, len(b.messages))
	for i, m := range b.messages {
		out[i] = m.Clone()
	}
	return out
}

// Last returns the most recently appended message.
func (b *Buffer) Last() (core.Message, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.messages) == 0 {
		return core.Message{}, false
	}
	return b.messages[len(b.messages)-1].Clone(), true
}

// Len returns the number of stored messages.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.messages)
}

// Search performs a case sensitive substring match over message content,
// newest first, up to limit results.
// An empty query matches everything; limit <= 0 means no limit.
func (b *Buffer) Search(query string, limit int) []core.Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var results []core.Message
	for i := len(b.messages) - 1; i >= 0; i-- {
		if limit > 0 && len(results) >= limit {
			break
		}
		m := b.messages[i]
		if query == "" || strings.Contains(m.Content, query) {
			results = append(results, m.Clone())
		}
	}
	return results
}
