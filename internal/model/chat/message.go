package chat

import (
	"strings"
	"time"
)

// AssistantPrefix marks messages written by the assistant.
const AssistantPrefix = "AI:"

// Message is one stored turn of a user's conversation.
type Message struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"user_id"`
}

// FromAssistant reports whether the message carries the assistant prefix.
func (m Message) FromAssistant() bool {
	return strings.HasPrefix(m.Content, AssistantPrefix)
}

// AssistantContent formats a reply so FromAssistant recognises it.
func AssistantContent(reply string) string {
	return AssistantPrefix + " " + strings.TrimSpace(reply)
}
