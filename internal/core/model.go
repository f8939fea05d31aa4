package core

import (
	"fmt"
	"strings"
	"time"
)

// InboundMessage is a single email message handed to the pipeline.
type InboundMessage struct {
	// ID is the provider-assigned message identifier.
	ID string
	// ConversationID groups messages belonging to the same thread.
	ConversationID string
	// Sender is the From header, either a bare address or "Name <addr>".
	Sender string
	// Subject is the message subject.
	Subject string
	// Body is the raw plain-text body, including any quoted history.
	Body string
	// ReceivedAt is when the provider received the message.
	ReceivedAt time.Time
}

// IntentResult is the classifier's verdict for a message.
type IntentResult struct {
	// IsMeeting reports whether the message asks to meet.
	IsMeeting bool
	// IsReschedule reports whether the message asks to move an existing meeting.
	IsReschedule bool
}

// TimeSource identifies which detection strategy produced a candidate.
type TimeSource string

const (
	// TimeSourcePattern is the regex-anchored natural language strategy.
	TimeSourcePattern TimeSource = "pattern"
	// TimeSourceAI is the completion-service extraction strategy.
	TimeSourceAI TimeSource = "ai"
	// TimeSourceHeuristic is the weekday-plus-clock-time fallback strategy.
	TimeSourceHeuristic TimeSource = "heuristic"
)

// TimeCandidate is a detected meeting start time, always strictly in the
// future and normalized to the operating timezone.
type TimeCandidate struct {
	Time   time.Time
	Source TimeSource
}

// MeetingWindow is a half-open interval [Start, End).
type MeetingWindow struct {
	Start time.Time
	End   time.Time
}

// NewMeetingWindow builds a window of the given duration from a start time.
func NewMeetingWindow(start time.Time, duration time.Duration) MeetingWindow {
	return MeetingWindow{Start: start, End: start.Add(duration)}
}

// Duration returns the window's length.
func (w MeetingWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether two half-open windows intersect. Windows that
// merely touch at an endpoint do not overlap.
func (w MeetingWindow) Overlaps(other MeetingWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Format renders the window's start in a human-friendly form for email bodies.
func (w MeetingWindow) Format() string {
	return w.Start.Format("Monday, January 2 at 3:04 PM")
}

// CalendarEvent is a busy interval read back from the calendar.
type CalendarEvent struct {
	// Ref is the calendar's event identifier.
	Ref string
	// Title is the event summary.
	Title string
	// Window is the event's occupied interval.
	Window MeetingWindow
}

// EventDraft describes a calendar event to be created.
type EventDraft struct {
	Summary     string
	Description string
	Attendees   []string
	Window      MeetingWindow
}

// EventRef identifies a calendar event after creation or update.
type EventRef struct {
	ID   string
	Link string
}

// Correlation links an inbound message to a previously scheduled event in the
// same conversation. A zero Correlation means no prior event is involved.
type Correlation struct {
	// EventRef is the correlated calendar event ID, empty when none.
	EventRef string
	// Manual is true when the operator selected the event explicitly instead
	// of relying on the conversation lookup.
	Manual bool
}

// Correlated reports whether an existing event is in play.
func (c Correlation) Correlated() bool {
	return c.EventRef != ""
}

// OutcomeKind tags the terminal result of processing one message.
type OutcomeKind string

const (
	// OutcomeCreated means a new calendar event should be created.
	OutcomeCreated OutcomeKind = "created"
	// OutcomeRescheduled means an existing event should be moved.
	OutcomeRescheduled OutcomeKind = "rescheduled"
	// OutcomeAlternativesProposed means the requested slot is busy and open
	// alternatives should be offered to the sender.
	OutcomeAlternativesProposed OutcomeKind = "alternatives_proposed"
	// OutcomeManualInputRequired means the pipeline could not decide on its own.
	OutcomeManualInputRequired OutcomeKind = "manual_input_required"
	// OutcomeSkipped means the message is not a meeting request.
	OutcomeSkipped OutcomeKind = "skipped"
)

// SchedulingOutcome is the single terminal result emitted for a message.
// Exactly one of the payload fields is populated according to Kind.
type SchedulingOutcome struct {
	Kind OutcomeKind

	// Draft is set for Created outcomes.
	Draft *EventDraft
	// EventRef and NewWindow are set for Rescheduled outcomes.
	EventRef  string
	NewWindow *MeetingWindow
	// Requested and Alternatives are set for AlternativesProposed outcomes.
	Requested    *MeetingWindow
	Alternatives []MeetingWindow
	// Reason carries the skip or manual-input explanation.
	Reason string
}

// CreatedOutcome wraps an event draft ready for calendar insertion.
func CreatedOutcome(draft EventDraft) SchedulingOutcome {
	return SchedulingOutcome{Kind: OutcomeCreated, Draft: &draft}
}

// RescheduledOutcome moves the correlated event to a new window.
func RescheduledOutcome(eventRef string, window MeetingWindow) SchedulingOutcome {
	return SchedulingOutcome{Kind: OutcomeRescheduled, EventRef: eventRef, NewWindow: &window}
}

// AlternativesOutcome reports a busy requested window together with the open
// windows to offer instead.
func AlternativesOutcome(requested MeetingWindow, alternatives []MeetingWindow) SchedulingOutcome {
	return SchedulingOutcome{
		Kind:         OutcomeAlternativesProposed,
		Requested:    &requested,
		Alternatives: alternatives,
	}
}

// ManualInputOutcome asks a human to take over, with the reason why.
func ManualInputOutcome(reason string) SchedulingOutcome {
	return SchedulingOutcome{Kind: OutcomeManualInputRequired, Reason: reason}
}

// SkippedOutcome marks a message the scheduler has nothing to do for.
func SkippedOutcome(reason string) SchedulingOutcome {
	return SchedulingOutcome{Kind: OutcomeSkipped, Reason: reason}
}

// Summary renders a human-readable explanation of the outcome for operator
// logs and stored records.
func (o SchedulingOutcome) Summary() string {
	switch o.Kind {
	case OutcomeCreated:
		return fmt.Sprintf("scheduled %q for %s", o.Draft.Summary, o.Draft.Window.Format())
	case OutcomeRescheduled:
		return fmt.Sprintf("moved event %s to %s", o.EventRef, o.NewWindow.Format())
	case OutcomeAlternativesProposed:
		parts := make([]string, 0, len(o.Alternatives))
		for _, alt := range o.Alternatives {
			parts = append(parts, alt.Format())
		}
		return fmt.Sprintf("requested %s is busy; proposed: %s",
			o.Requested.Format(), strings.Join(parts, "; "))
	case OutcomeManualInputRequired:
		return fmt.Sprintf("manual input required: %s", o.Reason)
	case OutcomeSkipped:
		return fmt.Sprintf("skipped: %s", o.Reason)
	default:
		return string(o.Kind)
	}
}

// ProcessedRecord is the stored trace of one handled message. It lives in the
// external store, never inside the decision core.
type ProcessedRecord struct {
	MessageID      string
	ConversationID string
	Sender         string
	Subject        string
	// Category is "meeting" for meeting-intent messages, "general" otherwise.
	Category string
	Outcome  OutcomeKind
	// Summary is the human-readable outcome explanation.
	Summary string
	// ProcessingID uniquely identifies this processing run.
	ProcessingID string
	ProcessedAt  time.Time
}
