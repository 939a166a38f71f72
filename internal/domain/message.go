// Package domain contains core domain types for chatgate.
package domain

// Role tags the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged record in a session's history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage builds the leading instruction record of a session.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}
