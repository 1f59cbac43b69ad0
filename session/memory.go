package session

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/conductor/core/protocol"
)

type memorySession struct {
	id           string
	maxHistory   int
	trimPolicy   TrimPolicy
	messages     []protocol.Message
	systemPrompt string
	mu           sync.RWMutex
}

// newMemorySession creates an in-memory Session with a unique UUIDv7
// identifier. Called by New after configuration validation.
func newMemorySession(cfg *Config) *memorySession {
	policy := cfg.TrimPolicy
	if policy == "" {
		policy = TrimPreserveSystem
	}
	return &memorySession{
		id:           uuid.Must(uuid.NewV7()).String(),
		maxHistory:   cfg.MaxHistory,
		trimPolicy:   policy,
		systemPrompt: cfg.SystemPrompt,
	}
}

func (s *memorySession) ID() string {
	return s.id
}

func (s *memorySession) AddMessage(msg protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
	if s.maxHistory > 0 && len(s.messages) > s.maxHistory {
		s.messages = trim(s.messages, s.maxHistory, s.trimPolicy)
	}
}

func (s *memorySession) Messages() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

func (s *memorySession) MessagesForRequest(systemPrompt string) []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	directive := systemPrompt
	if directive == "" {
		directive = s.systemPrompt
	}

	messages := make([]protocol.Message, 0, len(s.messages)+1)
	if directive != "" {
		messages = append(messages, protocol.NewMessage(protocol.RoleSystem, directive))
	}
	for _, msg := range s.messages {
		if msg.Role != protocol.RoleSystem {
			messages = append(messages, msg)
		}
	}
	return messages
}

func (s *memorySession) SetSystemPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systemPrompt = prompt
}

func (s *memorySession) SystemPrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.systemPrompt
}

func (s *memorySession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// trim returns history reduced to at most max entries per the given policy.
func trim(history []protocol.Message, max int, policy TrimPolicy) []protocol.Message {
	if len(history) <= max {
		return history
	}

	if policy == TrimRecent {
		return history[len(history)-max:]
	}

	// Role-aware: system entries always survive; the oldest non-system
	// entries are dropped until the bound holds.
	var system, other []protocol.Message
	for _, msg := range history {
		if msg.Role == protocol.RoleSystem {
			system = append(system, msg)
		} else {
			other = append(other, msg)
		}
	}

	keep := max - len(system)
	if keep < 0 {
		keep = 0
	}
	if keep < len(other) {
		other = other[len(other)-keep:]
	}

	trimmed := make([]protocol.Message, 0, len(system)+len(other))
	trimmed = append(trimmed, system...)
	trimmed = append(trimmed, other...)
	return trimmed
}
