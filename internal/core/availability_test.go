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

// fakeCalendar serves a fixed set of events, optionally failing every call.
type fakeCalendar struct {
	events []CalendarEvent
	err    error
}

func (f *fakeCalendar) ListEvents(_ context.Context, from, to time.Time) ([]CalendarEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	query := MeetingWindow{Start: from, End: to}
	var out []CalendarEvent
	for _, ev := range f.events {
		if ev.Window.Overlaps(query) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// busyCalendar reports a conflict for every window.
type busyCalendar struct{}

func (busyCalendar) ListEvents(_ context.Context, from, to time.Time) ([]CalendarEvent, error) {
	return []CalendarEvent{{
		Ref:    "busy",
		Window: MeetingWindow{Start: from.Add(-time.Hour), End: to.Add(time.Hour)},
	}}, nil
}

func window(loc *time.Location, day, hour, min int) MeetingWindow {
	start := time.Date(2026, time.September, day, hour, min, 0, 0, loc)
	return NewMeetingWindow(start, time.Hour)
}

func TestIsAvailableEmptyCalendar(t *testing.T) {
	loc := dubai(t)
	r := NewAvailabilityResolver(&fakeCalendar{}, loc, nil, zap.NewNop())

	ok, err := r.IsAvailable(context.Background(), window(loc, 2, 15, 0), "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsAvailableConflict(t *testing.T) {
	loc := dubai(t)
	cal := &fakeCalendar{events: []CalendarEvent{
		{Ref: "ev1", Title: "standup", Window: window(loc, 2, 15, 30)},
	}}
	r := NewAvailabilityResolver(cal, loc, nil, zap.NewNop())

	ok, err := r.IsAvailable(context.Background(), window(loc, 2, 15, 0), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsAvailableHalfOpenBoundary(t *testing.T) {
	loc := dubai(t)
	// Event ends exactly when the requested window starts.
	cal := &fakeCalendar{events: []CalendarEvent{
		{Ref: "ev1", Window: window(loc, 2, 14, 0)},
	}}
	r := NewAvailabilityResolver(cal, loc, nil, zap.NewNop())

	ok, err := r.IsAvailable(context.Background(), window(loc, 2, 15, 0), "")
	require.NoError(t, err)
	assert.True(t, ok, "touching windows must not conflict")
}

func TestIsAvailableExcludesOwnEvent(t *testing.T) {
	loc := dubai(t)
	cal := &fakeCalendar{events: []CalendarEvent{
		{Ref: "own-event", Window: window(loc, 2, 15, 0)},
	}}
	r := NewAvailabilityResolver(cal, loc, nil, zap.NewNop())

	ok, err := r.IsAvailable(context.Background(), window(loc, 2, 15, 0), "own-event")
	require.NoError(t, err)
	assert.True(t, ok, "a reschedule must not collide with its own current slot")

	ok, err = r.IsAvailable(context.Background(), window(loc, 2, 15, 0), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsAvailableCalendarError(t *testing.T) {
	loc := dubai(t)
	r := NewAvailabilityResolver(&fakeCalendar{err: errors.New("api down")}, loc, nil, zap.NewNop())

	_, err := r.IsAvailable(context.Background(), window(loc, 2, 15, 0), "")
	assert.Error(t, err)
}

func TestFindAlternativesLadderOrder(t *testing.T) {
	loc := dubai(t)
	r := NewAvailabilityResolver(&fakeCalendar{}, loc, nil, zap.NewNop())
	original := window(loc, 2, 15, 0)

	got := r.FindAlternatives(context.Background(), original, "", 3, 7)
	require.Len(t, got, 3)
	assert.Equal(t, original.Start.Add(time.Hour), got[0].Start)
	assert.Equal(t, original.Start.Add(-time.Hour), got[1].Start)
	assert.Equal(t, original.Start.AddDate(0, 0, 1), got[2].Start)
	for _, alt := range got {
		assert.Equal(t, time.Hour, alt.Duration())
	}
}

func TestFindAlternativesSkipsBusySlots(t *testing.T) {
	loc := dubai(t)
	original := window(loc, 2, 15, 0)
	cal := &fakeCalendar{events: []CalendarEvent{
		{Ref: "a", Window: window(loc, 2, 16, 0)}, // +1h busy
		{Ref: "b", Window: window(loc, 2, 14, 0)}, // -1h busy
	}}
	r := NewAvailabilityResolver(cal, loc, nil, zap.NewNop())

	got := r.FindAlternatives(context.Background(), original, "", 3, 7)
	require.Len(t, got, 3)
	assert.Equal(t, original.Start.AddDate(0, 0, 1), got[0].Start)
	assert.Equal(t, original.Start.AddDate(0, 0, -1), got[1].Start)
	assert.Equal(t, original.Start.AddDate(0, 0, 7), got[2].Start)
}

func TestFindAlternativesNeverReturnsBusy(t *testing.T) {
	loc := dubai(t)
	r := NewAvailabilityResolver(busyCalendar{}, loc, nil, zap.NewNop())

	got := r.FindAlternatives(context.Background(), window(loc, 2, 15, 0), "", 3, 7)
	assert.Empty(t, got)
}

func TestFindAlternativesRespectsMaxResults(t *testing.T) {
	loc := dubai(t)
	r := NewAvailabilityResolver(&fakeCalendar{}, loc, nil, zap.NewNop())

	got := r.FindAlternatives(context.Background(), window(loc, 2, 15, 0), "", 2, 7)
	assert.Len(t, got, 2)
}

func TestNextOpenSlotFirstAnchor(t *testing.T) {
	loc := dubai(t)
	now := time.Date(2026, time.September, 1, 10, 0, 0, 0, loc)
	r := NewAvailabilityResolver(&fakeCalendar{}, loc, nil, zap.NewNop())

	got, ok := r.NextOpenSlot(context.Background(), now, time.Hour)
	require.True(t, ok)
	// 09:00 is already past, 11:00 the same day is the first open anchor.
	assert.Equal(t, time.Date(2026, time.September, 1, 11, 0, 0, 0, loc), got.Start)
	assert.Equal(t, time.Hour, got.Duration())
}

func TestNextOpenSlotSkipsBusyAnchors(t *testing.T) {
	loc := dubai(t)
	now := time.Date(2026, time.September, 1, 10, 0, 0, 0, loc)
	cal := &fakeCalendar{events: []CalendarEvent{
		{Ref: "x", Window: window(loc, 1, 11, 0)},
		{Ref: "y", Window: window(loc, 1, 14, 0)},
	}}
	r := NewAvailabilityResolver(cal, loc, nil, zap.NewNop())

	got, ok := r.NextOpenSlot(context.Background(), now, time.Hour)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.September, 1, 16, 0, 0, 0, loc), got.Start)
}

func TestNextOpenSlotFullyBooked(t *testing.T) {
	loc := dubai(t)
	now := time.Date(2026, time.September, 1, 10, 0, 0, 0, loc)
	r := NewAvailabilityResolver(busyCalendar{}, loc, nil, zap.NewNop())

	_, ok := r.NextOpenSlot(context.Background(), now, time.Hour)
	assert.False(t, ok)
}
