// Package session manages bounded conversation history for the conductor
// runtime loop. A Session stores ordered turns, trims them to a configured
// bound, and assembles the exact message sequence to submit to a provider.
package session

import (
	"github.com/tailored-agentic-units/conductor/core/protocol"
)

// Session holds an ordered, bounded sequence of conversation messages plus a
// default system directive tracked outside the bounded history.
// Implementations must be safe for concurrent use.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// AddMessage appends a message to the conversation history, trimming
	// per the configured policy so the bound holds after every mutation.
	AddMessage(msg protocol.Message)
	// Messages returns a defensive copy of the stored history.
	Messages() []protocol.Message
	// MessagesForRequest assembles the sequence to submit to a provider:
	// the effective directive (systemPrompt when non-empty, otherwise the
	// stored default) prepended exactly once, followed by all stored
	// history excluding system-role entries. Does not mutate history.
	MessagesForRequest(systemPrompt string) []protocol.Message
	// SetSystemPrompt replaces the stored default directive.
	SetSystemPrompt(prompt string)
	// SystemPrompt returns the stored default directive.
	SystemPrompt() string
	// Clear resets the conversation history. The stored directive is
	// unaffected.
	Clear()
}
