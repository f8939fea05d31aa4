package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/ports"
)

func record(id, conversation, category string, at time.Time) *core.ProcessedRecord {
	return &core.ProcessedRecord{
		MessageID:      id,
		ConversationID: conversation,
		Sender:         "dana@example.com",
		Subject:        "sync",
		Category:       category,
		Outcome:        core.OutcomeCreated,
		Summary:        "scheduled",
		ProcessingID:   "p-" + id,
		ProcessedAt:    at,
	}
}

func TestMemoryStoreDedup(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	done, err := s.IsProcessed(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, s.RecordProcessed(ctx, record("m1", "t1", "meeting", time.Now())))

	done, err = s.IsProcessed(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestMemoryStoreConversationIndex(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()
	base := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)

	// Two meeting messages in the thread; the event hangs off the earliest.
	require.NoError(t, s.RecordProcessed(ctx, record("m1", "t1", "meeting", base)))
	require.NoError(t, s.RecordProcessed(ctx, record("m2", "t1", "meeting", base.Add(time.Hour))))
	require.NoError(t, s.RecordProcessed(ctx, record("m3", "t2", "general", base)))

	require.NoError(t, s.RecordEvent(ctx, &ports.StoredEvent{
		Ref:            "ev-1",
		ConversationID: "t1",
		MessageID:      "m1",
		Window:         core.NewMeetingWindow(base.Add(24*time.Hour), time.Hour),
	}))
	require.NoError(t, s.RecordEvent(ctx, &ports.StoredEvent{
		Ref:            "ev-2",
		ConversationID: "t1",
		MessageID:      "m2",
		Window:         core.NewMeetingWindow(base.Add(48*time.Hour), time.Hour),
	}))

	ref, err := s.FindEventByConversation(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "ev-1", ref, "the earliest meeting message wins")

	ref, err = s.FindEventByConversation(ctx, "t2")
	require.NoError(t, err)
	assert.Empty(t, ref, "general messages do not anchor events")

	ref, err = s.FindEventByConversation(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, ref)
}

func TestMemoryStoreUpdateEventWindow(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()
	base := time.Date(2026, time.September, 2, 15, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordEvent(ctx, &ports.StoredEvent{
		Ref:            "ev-1",
		ConversationID: "t1",
		MessageID:      "m1",
		Window:         core.NewMeetingWindow(base, time.Hour),
	}))

	moved := core.NewMeetingWindow(base.Add(2*time.Hour), time.Hour)
	require.NoError(t, s.UpdateEventWindow(ctx, "ev-1", moved))

	events, err := s.RecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, moved, events[0].Window)
}

func TestMemoryStoreListProcessedNewestFirst(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()
	base := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordProcessed(ctx, record("m1", "t1", "meeting", base)))
	require.NoError(t, s.RecordProcessed(ctx, record("m2", "t1", "general", base.Add(time.Hour))))
	require.NoError(t, s.RecordProcessed(ctx, record("m3", "t2", "meeting", base.Add(2*time.Hour))))

	got, err := s.ListProcessed(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m3", got[0].MessageID)
	assert.Equal(t, "m2", got[1].MessageID)

	rest, err := s.ListProcessed(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "m1", rest[0].MessageID)
}

func TestMemoryStoreCounts(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.RecordProcessed(ctx, record("m1", "t1", "meeting", now)))
	require.NoError(t, s.RecordProcessed(ctx, record("m2", "t2", "general", now)))
	require.NoError(t, s.RecordEvent(ctx, &ports.StoredEvent{Ref: "ev-1", ConversationID: "t1", MessageID: "m1"}))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, ports.Counts{Processed: 2, Meetings: 1, Events: 1}, counts)
}
