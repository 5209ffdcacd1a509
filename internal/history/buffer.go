// Package history holds the append-only log of globally broadcast messages.
// The log lives for the process lifetime only; there is no persistence and
// no eviction.
package history

import (
	"sync"

	"chatwire/pkg/types"
)

// Buffer is an append-only message log queryable in reverse-offset pages.
// Safe for concurrent use.
type Buffer struct {
	mu       sync.RWMutex
	messages []types.Message
}

// NewBuffer creates an empty history buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds a message to the end of the log.
func (b *Buffer) Append(msg types.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.messages = append(b.messages, msg)
}

// Page returns up to pageSize messages ending offset entries before the most
// recent one, oldest-first within the page. offset=0 yields the newest page.
// Walking offsets 0, pageSize, 2*pageSize, ... covers the whole log exactly
// once. An offset past the start of the log yields an empty page.
func (b *Buffer) Page(offset, pageSize int) []types.Message {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if offset < 0 || pageSize <= 0 {
		return nil
	}

	end := len(b.messages) - offset
	if end <= 0 {
		return nil
	}
	start := end - pageSize
	if start < 0 {
		start = 0
	}

	page := make([]types.Message, end-start)
	copy(page, b.messages[start:end])
	return page
}

// SetReaction overwrites the reaction on the message with the given ID and
// reports whether the message was found. Unknown IDs are a no-op.
func (b *Buffer) SetReaction(messageID, reaction string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.messages {
		if b.messages[i].ID == messageID {
			b.messages[i].Reaction = reaction
			return true
		}
	}
	return false
}

// Len returns the number of messages in the log.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.messages)
}
