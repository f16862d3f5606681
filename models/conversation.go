package models

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MaxConversations bounds the stored history; saving past the cap prunes
// the oldest conversations.
const MaxConversations = 50

// PreviewChars bounds the stored conversation preview.
const PreviewChars = 100

// Message is one turn of a conversation.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Conversation is an ordered exchange between the user and the assistant.
// Created on the first message, mutated on every turn, deleted only by
// explicit user action.
type Conversation struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Preview   string    `json:"preview"`
}

// BuildPreview derives the list preview from the first user message.
func BuildPreview(messages []Message) string {
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		runes := []rune(m.Text)
		if len(runes) > PreviewChars {
			return string(runes[:PreviewChars]) + "..."
		}
		return m.Text
	}
	return "New conversation"
}
