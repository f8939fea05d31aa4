package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(cal Calendar, completion CompletionClient, loc *time.Location) *SchedulingDecisionEngine {
	resolver := NewAvailabilityResolver(cal, loc, nil, zap.NewNop())
	return NewSchedulingDecisionEngine(resolver, completion, time.Hour, 3, 7, 500, zap.NewNop())
}

func testMessage() *InboundMessage {
	return &InboundMessage{
		ID:             "m1",
		ConversationID: "t1",
		Sender:         "Dana Reeves <dana@example.com>",
		Subject:        "Project kickoff",
		Body:           "Let's meet tomorrow at 3pm to discuss the proposal",
	}
}

func TestDecideSkipsNonMeetings(t *testing.T) {
	loc := dubai(t)
	e := newTestEngine(&fakeCalendar{}, nil, loc)

	got := e.Decide(context.Background(), fixedNow(loc), testMessage(), "body",
		IntentResult{}, nil, Correlation{})
	assert.Equal(t, OutcomeSkipped, got.Kind)
	assert.NotEmpty(t, got.Summary())
}

func TestDecideNoTimeNeedsManualInput(t *testing.T) {
	loc := dubai(t)
	e := newTestEngine(&fakeCalendar{}, nil, loc)

	got := e.Decide(context.Background(), fixedNow(loc), testMessage(), "body",
		IntentResult{IsMeeting: true}, nil, Correlation{})
	assert.Equal(t, OutcomeManualInputRequired, got.Kind)
}

func TestDecideCreatesEventForFreeSlot(t *testing.T) {
	loc := dubai(t)
	e := newTestEngine(&fakeCalendar{}, nil, loc)
	start := time.Date(2026, time.September, 2, 15, 0, 0, 0, loc)

	got := e.Decide(context.Background(), fixedNow(loc), testMessage(),
		"Let's meet tomorrow at 3pm to discuss the proposal",
		IntentResult{IsMeeting: true},
		&TimeCandidate{Time: start, Source: TimeSourcePattern},
		Correlation{})

	require.Equal(t, OutcomeCreated, got.Kind)
	require.NotNil(t, got.Draft)
	assert.Equal(t, start, got.Draft.Window.Start)
	assert.Equal(t, start.Add(time.Hour), got.Draft.Window.End)
	assert.Equal(t, "Meeting: Project kickoff", got.Draft.Summary)
	assert.Equal(t, []string{"dana@example.com"}, got.Draft.Attendees)
	assert.Contains(t, got.Draft.Description, "Let's meet tomorrow at 3pm")
}

func TestDecideDescriptionUsesCompletion(t *testing.T) {
	loc := dubai(t)
	completion := completionFunc(func(_ context.Context, _ string) (string, error) {
		return "Kickoff discussion about the proposal.", nil
	})
	e := newTestEngine(&fakeCalendar{}, completion, loc)
	start := time.Date(2026, time.September, 2, 15, 0, 0, 0, loc)

	got := e.Decide(context.Background(), fixedNow(loc), testMessage(), "body text",
		IntentResult{IsMeeting: true},
		&TimeCandidate{Time: start, Source: TimeSourceAI},
		Correlation{})

	require.Equal(t, OutcomeCreated, got.Kind)
	assert.Equal(t, "Kickoff discussion about the proposal.", got.Draft.Description)
}

func TestDecideDescriptionFallsBackOnCompletionError(t *testing.T) {
	loc := dubai(t)
	completion := completionFunc(func(_ context.Context, _ string) (string, error) {
		return "", errors.New("provider down")
	})
	e := newTestEngine(&fakeCalendar{}, completion, loc)
	start := time.Date(2026, time.September, 2, 15, 0, 0, 0, loc)

	got := e.Decide(context.Background(), fixedNow(loc), testMessage(), "body text",
		IntentResult{IsMeeting: true},
		&TimeCandidate{Time: start, Source: TimeSourceAI},
		Correlation{})

	require.Equal(t, OutcomeCreated, got.Kind)
	assert.Contains(t, got.Draft.Description, "body text")
}

func TestDecideReschedulesCorrelatedEvent(t *testing.T) {
	loc := dubai(t)
	// The event's own current slot occupies 17:00; the exclude rule must let
	// the move to the same area through while other events still conflict.
	cal := &fakeCalendar{events: []CalendarEvent{
		{Ref: "ev-1", Window: window(loc, 2, 17, 0)},
	}}
	e := newTestEngine(cal, nil, loc)
	start := time.Date(2026, time.September, 2, 17, 0, 0, 0, loc)

	got := e.Decide(context.Background(), fixedNow(loc), testMessage(),
		"can we reschedule to 5pm instead?",
		IntentResult{IsMeeting: true, IsReschedule: true},
		&TimeCandidate{Time: start, Source: TimeSourcePattern},
		Correlation{EventRef: "ev-1"})

	require.Equal(t, OutcomeRescheduled, got.Kind, "a correlated request must move the event, not create a new one")
	assert.Equal(t, "ev-1", got.EventRef)
	assert.Equal(t, start, got.NewWindow.Start)
	assert.Equal(t, start.Add(time.Hour), got.NewWindow.End)
	assert.Nil(t, got.Draft)
}

func TestDecideProposesAlternativesForBusySlot(t *testing.T) {
	loc := dubai(t)
	cal := &fakeCalendar{events: []CalendarEvent{
		{Ref: "standup", Window: window(loc, 2, 15, 0)},
	}}
	e := newTestEngine(cal, nil, loc)
	start := time.Date(2026, time.September, 2, 15, 0, 0, 0, loc)

	got := e.Decide(context.Background(), fixedNow(loc), testMessage(), "body",
		IntentResult{IsMeeting: true},
		&TimeCandidate{Time: start, Source: TimeSourcePattern},
		Correlation{})

	require.Equal(t, OutcomeAlternativesProposed, got.Kind)
	require.Len(t, got.Alternatives, 3)
	assert.Equal(t, start.Add(time.Hour), got.Alternatives[0].Start)
	assert.Equal(t, start.Add(-time.Hour), got.Alternatives[1].Start)
	assert.Equal(t, start.AddDate(0, 0, 1), got.Alternatives[2].Start)
	assert.Equal(t, start, got.Requested.Start)
}

func TestDecideFullyBookedNeedsManualInput(t *testing.T) {
	loc := dubai(t)
	e := newTestEngine(busyCalendar{}, nil, loc)
	start := time.Date(2026, time.September, 2, 15, 0, 0, 0, loc)

	got := e.Decide(context.Background(), fixedNow(loc), testMessage(), "body",
		IntentResult{IsMeeting: true},
		&TimeCandidate{Time: start, Source: TimeSourcePattern},
		Correlation{})

	assert.Equal(t, OutcomeManualInputRequired, got.Kind)
	assert.NotEmpty(t, got.Reason)
}

// rangeBusyCalendar is busy inside [from, to) and free outside it.
type rangeBusyCalendar struct {
	busy MeetingWindow
}

func (c rangeBusyCalendar) ListEvents(_ context.Context, from, to time.Time) ([]CalendarEvent, error) {
	q := MeetingWindow{Start: from, End: to}
	if c.busy.Overlaps(q) {
		return []CalendarEvent{{Ref: "block", Window: c.busy}}, nil
	}
	return nil, nil
}

func TestDecideRescueSlotWhenLadderFails(t *testing.T) {
	loc := dubai(t)
	now := fixedNow(loc)
	// Busy from the day before through the week after the request: the whole
	// ladder is blocked, but the rescue scan starting from now finds the next
	// business-hour anchor outside the block.
	busyFrom := time.Date(2026, time.September, 8, 0, 0, 0, 0, loc)
	busyTo := time.Date(2026, time.September, 30, 0, 0, 0, 0, loc)
	cal := rangeBusyCalendar{busy: MeetingWindow{Start: busyFrom, End: busyTo}}
	e := newTestEngine(cal, nil, loc)
	start := time.Date(2026, time.September, 9, 15, 0, 0, 0, loc)

	got := e.Decide(context.Background(), now, testMessage(), "body",
		IntentResult{IsMeeting: true},
		&TimeCandidate{Time: start, Source: TimeSourcePattern},
		Correlation{})

	require.Equal(t, OutcomeAlternativesProposed, got.Kind)
	require.Len(t, got.Alternatives, 1)
	assert.Equal(t, time.Date(2026, time.September, 1, 11, 0, 0, 0, loc), got.Alternatives[0].Start)
}

func TestDecideIsDeterministic(t *testing.T) {
	loc := dubai(t)
	completion := completionFunc(func(_ context.Context, _ string) (string, error) {
		return "Stable summary.", nil
	})
	e := newTestEngine(&fakeCalendar{}, completion, loc)
	start := time.Date(2026, time.September, 2, 15, 0, 0, 0, loc)

	first := e.Decide(context.Background(), fixedNow(loc), testMessage(), "body",
		IntentResult{IsMeeting: true},
		&TimeCandidate{Time: start, Source: TimeSourcePattern},
		Correlation{})
	second := e.Decide(context.Background(), fixedNow(loc), testMessage(), "body",
		IntentResult{IsMeeting: true},
		&TimeCandidate{Time: start, Source: TimeSourcePattern},
		Correlation{})

	assert.Equal(t, first, second, "same inputs must yield the same outcome")
}
