package core

import (
	"context"
	"time"
)

// CompletionClient is a text completion service used for AI-assisted time
// extraction and request summarization.
type CompletionClient interface {
	// Complete sends a prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Calendar is the read side of the calendar consulted for availability.
type Calendar interface {
	// ListEvents returns events intersecting [from, to).
	ListEvents(ctx context.Context, from, to time.Time) ([]CalendarEvent, error)
}

// ConversationIndex looks up previously scheduled events by conversation.
type ConversationIndex interface {
	// FindEventByConversation returns the event ref tied to the earliest
	// meeting-intent message of the conversation, or "" when none exists.
	FindEventByConversation(ctx context.Context, conversationID string) (string, error)
}
