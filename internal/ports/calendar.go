package ports

import (
	"context"
	"errors"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
)

// ErrEventNotFound reports that the calendar no longer knows the referenced
// event, typically because it was deleted externally.
var ErrEventNotFound = errors.New("calendar event not found")

// CalendarTransport is the full calendar surface: the read side the decision
// core consults plus the write operations the orchestrator executes.
type CalendarTransport interface {
	core.Calendar
	// CreateEvent inserts a new event and returns its reference.
	CreateEvent(ctx context.Context, draft core.EventDraft) (*core.EventRef, error)
	// UpdateEvent moves an existing event to a new window. It returns
	// ErrEventNotFound when the event no longer exists.
	UpdateEvent(ctx context.Context, eventRef string, window core.MeetingWindow) (*core.EventRef, error)
}
