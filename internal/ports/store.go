package ports

import (
	"context"
	"time"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
)

// StoredEvent is a scheduled calendar event as recorded in the store.
type StoredEvent struct {
	Ref            string
	ConversationID string
	MessageID      string
	Window         core.MeetingWindow
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Counts summarizes the store contents for the HTTP API.
type Counts struct {
	Processed int `json:"processed"`
	Meetings  int `json:"meetings"`
	Events    int `json:"events"`
}

// Store persists processed-message records and scheduled events. It also
// serves as the conversation index the correlator reads.
type Store interface {
	core.ConversationIndex

	// IsProcessed reports whether the message was already handled.
	IsProcessed(ctx context.Context, messageID string) (bool, error)
	// RecordProcessed stores the terminal outcome for a message.
	RecordProcessed(ctx context.Context, rec *core.ProcessedRecord) error
	// ListProcessed returns recent processed records, newest first.
	ListProcessed(ctx context.Context, limit, offset int) ([]core.ProcessedRecord, error)

	// RecordEvent stores a newly created calendar event.
	RecordEvent(ctx context.Context, ev *StoredEvent) error
	// UpdateEventWindow moves a stored event to a new window.
	UpdateEventWindow(ctx context.Context, eventRef string, window core.MeetingWindow) error
	// RecentEvents returns the most recently updated events, for the manual
	// event selection path.
	RecentEvents(ctx context.Context, limit int) ([]StoredEvent, error)

	// Counts reports store totals.
	Counts(ctx context.Context) (Counts, error)
	// Close releases the underlying resources.
	Close() error
}
