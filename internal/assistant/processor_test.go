package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/adapters/store"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/ports"
)

type sentMail struct {
	To             string
	Subject        string
	Body           string
	ConversationID string
}

// fakeMail serves canned messages and records sends.
type fakeMail struct {
	messages map[string]*core.InboundMessage
	sent     []sentMail
}

func (f *fakeMail) Fetch(_ context.Context, messageID string) (*core.InboundMessage, error) {
	msg, ok := f.messages[messageID]
	if !ok {
		return nil, errors.New("message not found")
	}
	return msg, nil
}

func (f *fakeMail) ListRecent(_ context.Context, _ time.Time, _ int64) ([]string, error) {
	ids := make([]string, 0, len(f.messages))
	for id := range f.messages {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeMail) Send(_ context.Context, to, subject, body, conversationID string) (string, error) {
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body, ConversationID: conversationID})
	return "sent-1", nil
}

// fakeCalendarTransport is a free calendar recording writes.
type fakeCalendarTransport struct {
	created   []core.EventDraft
	updated   map[string]core.MeetingWindow
	updateErr error
}

func (f *fakeCalendarTransport) ListEvents(_ context.Context, _, _ time.Time) ([]core.CalendarEvent, error) {
	return nil, nil
}

func (f *fakeCalendarTransport) CreateEvent(_ context.Context, draft core.EventDraft) (*core.EventRef, error) {
	f.created = append(f.created, draft)
	return &core.EventRef{ID: "ev-new", Link: "https://calendar.example/ev-new"}, nil
}

func (f *fakeCalendarTransport) UpdateEvent(_ context.Context, eventRef string, window core.MeetingWindow) (*core.EventRef, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updated == nil {
		f.updated = make(map[string]core.MeetingWindow)
	}
	f.updated[eventRef] = window
	return &core.EventRef{ID: eventRef}, nil
}

func newTestProcessor(t *testing.T, mail *fakeMail, cal ports.CalendarTransport, st ports.Store) *Processor {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Dubai")
	require.NoError(t, err)

	logger := zap.NewNop()
	resolver := core.NewAvailabilityResolver(cal, loc, nil, logger)
	engine := core.NewSchedulingDecisionEngine(resolver, nil, time.Hour, 3, 7, 500, logger)
	detector := core.NewTimeDetectionChain(loc, logger,
		core.NewPatternStrategy(loc),
		core.NewHeuristicStrategy(loc),
	)
	return NewProcessor(
		mail, cal, st,
		core.NewThreadContentExtractor(0),
		core.NewIntentClassifier(nil, nil, nil),
		detector,
		core.NewThreadEventCorrelator(st, logger),
		engine,
		NewComposer(nil, logger),
		loc,
		logger,
	)
}

func TestProcessMessageSchedulesMeeting(t *testing.T) {
	mail := &fakeMail{messages: map[string]*core.InboundMessage{
		"m1": {
			ID:             "m1",
			ConversationID: "t1",
			Sender:         "Dana Reeves <dana@example.com>",
			Subject:        "Project kickoff",
			Body:           "Let's meet tomorrow at 3pm to discuss the proposal",
		},
	}}
	cal := &fakeCalendarTransport{}
	st := store.NewMemoryStore(zap.NewNop())
	p := newTestProcessor(t, mail, cal, st)

	outcome, err := p.ProcessMessage(context.Background(), "m1")
	require.NoError(t, err)
	require.Equal(t, core.OutcomeCreated, outcome.Kind)

	require.Len(t, cal.created, 1)
	assert.Equal(t, "Meeting: Project kickoff", cal.created[0].Summary)
	assert.Equal(t, 15, cal.created[0].Window.Start.Hour())
	assert.Equal(t, time.Hour, cal.created[0].Window.Duration())

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "dana@example.com", mail.sent[0].To)
	assert.Equal(t, "Re: Project kickoff", mail.sent[0].Subject)
	assert.Equal(t, "t1", mail.sent[0].ConversationID)

	// The run is recorded and the event is tied to the conversation.
	done, err := st.IsProcessed(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, done)
	ref, err := st.FindEventByConversation(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "ev-new", ref)
}

func TestProcessMessageDedup(t *testing.T) {
	mail := &fakeMail{messages: map[string]*core.InboundMessage{
		"m1": {
			ID:             "m1",
			ConversationID: "t1",
			Sender:         "dana@example.com",
			Subject:        "kickoff",
			Body:           "Let's meet tomorrow at 3pm",
		},
	}}
	cal := &fakeCalendarTransport{}
	st := store.NewMemoryStore(zap.NewNop())
	p := newTestProcessor(t, mail, cal, st)

	_, err := p.ProcessMessage(context.Background(), "m1")
	require.NoError(t, err)

	_, err = p.ProcessMessage(context.Background(), "m1")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Len(t, cal.created, 1, "the pipeline must not run twice for one message")
	assert.Len(t, mail.sent, 1)
}

func TestProcessMessageSkipsNonMeetings(t *testing.T) {
	mail := &fakeMail{messages: map[string]*core.InboundMessage{
		"m1": {
			ID:             "m1",
			ConversationID: "t1",
			Sender:         "billing@example.com",
			Subject:        "Invoice",
			Body:           "Attached is the invoice for August.",
		},
	}}
	cal := &fakeCalendarTransport{}
	st := store.NewMemoryStore(zap.NewNop())
	p := newTestProcessor(t, mail, cal, st)

	outcome, err := p.ProcessMessage(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeSkipped, outcome.Kind)
	assert.Empty(t, cal.created)
	assert.Empty(t, mail.sent, "skips must be silent")

	done, err := st.IsProcessed(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, done, "skipped messages are still recorded for dedup")
}

func seedConversationEvent(t *testing.T, st ports.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.RecordProcessed(ctx, &core.ProcessedRecord{
		MessageID:      "m0",
		ConversationID: "t1",
		Sender:         "dana@example.com",
		Subject:        "kickoff",
		Category:       "meeting",
		Outcome:        core.OutcomeCreated,
		Summary:        "scheduled",
		ProcessingID:   "p0",
		ProcessedAt:    time.Now().Add(-time.Hour),
	}))
	require.NoError(t, st.RecordEvent(ctx, &ports.StoredEvent{
		Ref:            "ev-1",
		ConversationID: "t1",
		MessageID:      "m0",
		Window:         core.NewMeetingWindow(time.Now().Add(24*time.Hour), time.Hour),
	}))
}

func TestProcessMessageReschedulesThreadEvent(t *testing.T) {
	mail := &fakeMail{messages: map[string]*core.InboundMessage{
		"m2": {
			ID:             "m2",
			ConversationID: "t1",
			Sender:         "dana@example.com",
			Subject:        "Re: kickoff",
			Body:           "Something came up, can we reschedule to tomorrow at 5pm instead?",
		},
	}}
	cal := &fakeCalendarTransport{}
	st := store.NewMemoryStore(zap.NewNop())
	seedConversationEvent(t, st)
	p := newTestProcessor(t, mail, cal, st)

	outcome, err := p.ProcessMessage(context.Background(), "m2")
	require.NoError(t, err)
	require.Equal(t, core.OutcomeRescheduled, outcome.Kind)
	assert.Equal(t, "ev-1", outcome.EventRef)
	assert.Empty(t, cal.created, "a reschedule must move the existing event, not create a new one")
	require.Contains(t, cal.updated, "ev-1")
	assert.Equal(t, 17, cal.updated["ev-1"].Start.Hour())
	require.Len(t, mail.sent, 1)
}

func TestProcessMessageVanishedEventNeedsManualInput(t *testing.T) {
	mail := &fakeMail{messages: map[string]*core.InboundMessage{
		"m2": {
			ID:             "m2",
			ConversationID: "t1",
			Sender:         "dana@example.com",
			Subject:        "Re: kickoff",
			Body:           "Can we reschedule to tomorrow at 5pm instead?",
		},
	}}
	cal := &fakeCalendarTransport{updateErr: ports.ErrEventNotFound}
	st := store.NewMemoryStore(zap.NewNop())
	seedConversationEvent(t, st)
	p := newTestProcessor(t, mail, cal, st)

	outcome, err := p.ProcessMessage(context.Background(), "m2")
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeManualInputRequired, outcome.Kind)
	assert.Contains(t, outcome.Reason, "no longer exists")
}

func TestProcessMessageManualEventOverride(t *testing.T) {
	mail := &fakeMail{messages: map[string]*core.InboundMessage{
		"m2": {
			ID:             "m2",
			ConversationID: "t-unrelated",
			Sender:         "dana@example.com",
			Subject:        "moving our chat",
			Body:           "Can we reschedule to tomorrow at 5pm instead?",
		},
	}}
	cal := &fakeCalendarTransport{}
	st := store.NewMemoryStore(zap.NewNop())
	p := newTestProcessor(t, mail, cal, st)

	outcome, err := p.ProcessMessageWithEvent(context.Background(), "m2", "ev-picked")
	require.NoError(t, err)
	require.Equal(t, core.OutcomeRescheduled, outcome.Kind)
	assert.Equal(t, "ev-picked", outcome.EventRef)
	require.Contains(t, cal.updated, "ev-picked")
}

func TestProcessMessageNoTimeNeedsManualInput(t *testing.T) {
	mail := &fakeMail{messages: map[string]*core.InboundMessage{
		"m1": {
			ID:             "m1",
			ConversationID: "t1",
			Sender:         "dana@example.com",
			Subject:        "coffee",
			Body:           "We should grab coffee one of these days!",
		},
	}}
	cal := &fakeCalendarTransport{}
	st := store.NewMemoryStore(zap.NewNop())
	p := newTestProcessor(t, mail, cal, st)

	outcome, err := p.ProcessMessage(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeManualInputRequired, outcome.Kind)
	assert.Empty(t, cal.created)
}
