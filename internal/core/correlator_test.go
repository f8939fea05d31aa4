package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeIndex struct {
	refs map[string]string
	err  error
}

func (f *fakeIndex) FindEventByConversation(_ context.Context, conversationID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.refs[conversationID], nil
}

func TestCorrelateManualOverrideWins(t *testing.T) {
	c := NewThreadEventCorrelator(&fakeIndex{refs: map[string]string{"t1": "ev-from-index"}}, zap.NewNop())

	got := c.Correlate(context.Background(), "t1", IntentResult{IsMeeting: true, IsReschedule: true}, "ev-manual")
	assert.Equal(t, Correlation{EventRef: "ev-manual", Manual: true}, got)
}

func TestCorrelateLooksUpRescheduleThreads(t *testing.T) {
	c := NewThreadEventCorrelator(&fakeIndex{refs: map[string]string{"t1": "ev-1"}}, zap.NewNop())

	got := c.Correlate(context.Background(), "t1", IntentResult{IsMeeting: true, IsReschedule: true}, "")
	assert.Equal(t, "ev-1", got.EventRef)
	assert.False(t, got.Manual)
	assert.True(t, got.Correlated())
}

func TestCorrelateSkipsNonReschedule(t *testing.T) {
	idx := &fakeIndex{refs: map[string]string{"t1": "ev-1"}}
	c := NewThreadEventCorrelator(idx, zap.NewNop())

	got := c.Correlate(context.Background(), "t1", IntentResult{IsMeeting: true}, "")
	assert.False(t, got.Correlated())
}

func TestCorrelateUnknownThread(t *testing.T) {
	c := NewThreadEventCorrelator(&fakeIndex{refs: map[string]string{}}, zap.NewNop())

	got := c.Correlate(context.Background(), "t9", IntentResult{IsMeeting: true, IsReschedule: true}, "")
	assert.False(t, got.Correlated())
}

func TestCorrelateLookupFailureDegrades(t *testing.T) {
	c := NewThreadEventCorrelator(&fakeIndex{err: errors.New("db locked")}, zap.NewNop())

	got := c.Correlate(context.Background(), "t1", IntentResult{IsMeeting: true, IsReschedule: true}, "")
	assert.False(t, got.Correlated(), "lookup failure must fall back to a fresh event")
}
