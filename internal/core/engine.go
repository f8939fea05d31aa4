package core

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const summaryPrompt = `Summarize this meeting request in one or two sentences for a calendar event description. Respond with the summary only, no preamble.

Email:
%s`

// SchedulingDecisionEngine turns a classified message, its detected time and
// its correlation into exactly one terminal SchedulingOutcome. The engine
// never writes to the calendar or the store; it only decides.
type SchedulingDecisionEngine struct {
	resolver        *AvailabilityResolver
	completion      CompletionClient
	meetingDuration time.Duration
	maxAlternatives int
	horizonDays     int
	maxSummaryChars int
	logger          *zap.Logger
}

// NewSchedulingDecisionEngine builds an engine. Zero values select the
// defaults: one hour meetings, three alternatives, a seven day horizon.
func NewSchedulingDecisionEngine(
	resolver *AvailabilityResolver,
	completion CompletionClient,
	meetingDuration time.Duration,
	maxAlternatives int,
	horizonDays int,
	maxSummaryChars int,
	logger *zap.Logger,
) *SchedulingDecisionEngine {
	if meetingDuration <= 0 {
		meetingDuration = time.Hour
	}
	if maxAlternatives <= 0 {
		maxAlternatives = 3
	}
	if horizonDays <= 0 {
		horizonDays = 7
	}
	if maxSummaryChars <= 0 {
		maxSummaryChars = 500
	}
	return &SchedulingDecisionEngine{
		resolver:        resolver,
		completion:      completion,
		meetingDuration: meetingDuration,
		maxAlternatives: maxAlternatives,
		horizonDays:     horizonDays,
		maxSummaryChars: maxSummaryChars,
		logger:          logger,
	}
}

// Decide runs the decision policy:
//
//   - not a meeting request: Skipped
//   - no detected time: ManualInputRequired
//   - detected window free, correlated event: Rescheduled
//   - detected window free, no correlation: Created
//   - detected window busy: AlternativesProposed with up to maxAlternatives
//     open windows, or the single next-open-slot rescue window, or
//     ManualInputRequired when the calendar offers nothing.
//
// now anchors past-rejection and the rescue scan so the decision is a pure
// function of its inputs.
func (e *SchedulingDecisionEngine) Decide(
	ctx context.Context,
	now time.Time,
	msg *InboundMessage,
	cleaned string,
	intent IntentResult,
	candidate *TimeCandidate,
	correlation Correlation,
) SchedulingOutcome {
	if !intent.IsMeeting {
		return SkippedOutcome("no meeting intent detected")
	}
	if candidate == nil {
		return ManualInputOutcome("no meeting time could be extracted from the message")
	}

	window := NewMeetingWindow(candidate.Time, e.meetingDuration)
	available, err := e.resolver.IsAvailable(ctx, window, correlation.EventRef)
	if err != nil {
		e.logger.Warn("availability check failed, treating slot as busy",
			zap.String("message_id", msg.ID), zap.Error(err))
		available = false
	}

	if available {
		if correlation.Correlated() {
			return RescheduledOutcome(correlation.EventRef, window)
		}
		return CreatedOutcome(e.buildDraft(ctx, msg, cleaned, window))
	}

	alternatives := e.resolver.FindAlternatives(ctx, window, correlation.EventRef, e.maxAlternatives, e.horizonDays)
	if len(alternatives) > 0 {
		return AlternativesOutcome(window, alternatives)
	}
	if rescue, ok := e.resolver.NextOpenSlot(ctx, now, e.meetingDuration); ok {
		return AlternativesOutcome(window, []MeetingWindow{rescue})
	}
	return ManualInputOutcome("requested time is busy and no open slot was found within the search horizon")
}

func (e *SchedulingDecisionEngine) buildDraft(ctx context.Context, msg *InboundMessage, cleaned string, window MeetingWindow) EventDraft {
	summary := "Meeting Request"
	if subject := strings.TrimSpace(msg.Subject); subject != "" {
		summary = "Meeting: " + subject
	}
	var attendees []string
	if addr := senderAddress(msg.Sender); addr != "" {
		attendees = []string{addr}
	}
	return EventDraft{
		Summary:     summary,
		Description: e.describeRequest(ctx, cleaned),
		Attendees:   attendees,
		Window:      window,
	}
}

// describeRequest asks the completion service for a short description and
// falls back to the truncated request body. The description is cosmetic, a
// completion outage must not block scheduling.
func (e *SchedulingDecisionEngine) describeRequest(ctx context.Context, cleaned string) string {
	fallback := "Automatically scheduled from email:\n\n" + truncate(cleaned, e.maxSummaryChars)
	if e.completion == nil {
		return fallback
	}
	resp, err := e.completion.Complete(ctx, fmt.Sprintf(summaryPrompt, truncate(cleaned, e.maxSummaryChars*2)))
	if err != nil {
		e.logger.Warn("request summarization failed, using raw body", zap.Error(err))
		return fallback
	}
	resp = strings.TrimSpace(resp)
	if resp == "" {
		return fallback
	}
	return truncate(resp, e.maxSummaryChars)
}

func senderAddress(sender string) string {
	if addr, err := mail.ParseAddress(sender); err == nil {
		return addr.Address
	}
	return strings.TrimSpace(sender)
}

// truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
