package domain

import (
	"time"
)

// ConversationEventType names what happened during a chat turn.
type ConversationEventType string

const (
	EventUserMessage      ConversationEventType = "chat_user_message"
	EventAssistantMessage ConversationEventType = "chat_assistant_message"
	EventProviderError    ConversationEventType = "chat_provider_error"
	EventQuotaExceeded    ConversationEventType = "chat_quota_exceeded"
)

// ConversationEvent is an archived record of chat activity for one session.
type ConversationEvent struct {
	ID        string                `json:"id"`
	SessionID string                `json:"session_id"`
	EventType ConversationEventType `json:"event_type"`
	Role      Role                  `json:"role,omitempty"`
	Content   string                `json:"content,omitempty"`
	Count     int                   `json:"count"`
	RequestID string                `json:"request_id,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}
