// Package protocol defines the canonical conversation message model shared
// by the session store, providers, and the conductor runtime.
package protocol

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// IsValid reports whether s is one of the four conversation roles.
func IsValid(s string) bool {
	switch Role(s) {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// ValidRoles returns all conversation roles in their canonical order.
func ValidRoles() []Role {
	return []Role{RoleSystem, RoleUser, RoleAssistant, RoleTool}
}

// Message represents a single message in a conversation. Role indicates the
// sender and Content carries the message text. Name optionally identifies a
// named participant, and ToolCallID correlates a tool-role message back to
// the assistant turn that requested it.
//
// Messages are values: once appended to a session they are never mutated.
// History evolves only by append or by wholesale replacement of the sequence.
type Message struct {
	Role       Role   `json:"role"`
	Content    string `json:"content"`
	Name       string `json:"name,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// NewMessage creates a Message with the given role and content.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.RoleUser, "Hello, world!")
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// InitMessages creates a single-element message slice from a role and content
// string. Convenience wrapper for the common pattern of initializing a
// conversation from a prompt.
func InitMessages(role Role, content string) []Message {
	return []Message{NewMessage(role, content)}
}
