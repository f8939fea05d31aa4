package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// AvailabilityResolver answers "is this window free" and proposes open
// windows when it is not. It only ever reads the calendar; there is no lock
// between an availability answer and a later event write, so a conflicting
// external write in that gap is tolerated and shows up as a double booking
// the operator resolves.
type AvailabilityResolver struct {
	calendar Calendar
	loc      *time.Location
	anchors  []int
	logger   *zap.Logger
}

// NewAvailabilityResolver builds a resolver. anchors are the hour-of-day
// starting points for the rescue scan; nil selects the defaults.
func NewAvailabilityResolver(calendar Calendar, loc *time.Location, anchors []int, logger *zap.Logger) *AvailabilityResolver {
	if len(anchors) == 0 {
		anchors = []int{9, 11, 14, 16}
	}
	return &AvailabilityResolver{calendar: calendar, loc: loc, anchors: anchors, logger: logger}
}

// IsAvailable reports whether window is free of conflicting events. An event
// whose ref equals excludeRef is ignored, so a reschedule check does not
// collide with the meeting's own current slot.
func (r *AvailabilityResolver) IsAvailable(ctx context.Context, window MeetingWindow, excludeRef string) (bool, error) {
	events, err := r.calendar.ListEvents(ctx, window.Start, window.End)
	if err != nil {
		return false, fmt.Errorf("failed to list calendar events: %w", err)
	}
	for _, ev := range events {
		if excludeRef != "" && ev.Ref == excludeRef {
			continue
		}
		if ev.Window.Overlaps(window) {
			return false, nil
		}
	}
	return true, nil
}

// alternativeStarts yields the candidate start times for a busy window in the
// fixed ladder order: one hour later, one hour earlier, next day, previous
// day, next week, then each following day up to the horizon.
func alternativeStarts(original time.Time, horizonDays int) []time.Time {
	starts := []time.Time{
		original.Add(time.Hour),
		original.Add(-time.Hour),
		original.AddDate(0, 0, 1),
		original.AddDate(0, 0, -1),
		original.AddDate(0, 0, 7),
	}
	for d := 1; d <= horizonDays; d++ {
		starts = append(starts, original.AddDate(0, 0, d))
	}
	return starts
}

// FindAlternatives walks the deterministic ladder around the busy window and
// returns up to maxResults open windows of the same duration, in ladder
// order. Candidates whose availability check errors are skipped. The result
// may be empty.
func (r *AvailabilityResolver) FindAlternatives(ctx context.Context, original MeetingWindow, excludeRef string, maxResults, horizonDays int) []MeetingWindow {
	if maxResults <= 0 {
		maxResults = 3
	}
	if horizonDays <= 0 {
		horizonDays = 7
	}
	duration := original.Duration()
	seen := make(map[time.Time]struct{})

	var out []MeetingWindow
	for _, start := range alternativeStarts(original.Start, horizonDays) {
		if _, dup := seen[start]; dup {
			continue
		}
		seen[start] = struct{}{}

		window := NewMeetingWindow(start, duration)
		ok, err := r.IsAvailable(ctx, window, excludeRef)
		if err != nil {
			r.logger.Warn("availability check failed for alternative slot",
				zap.Time("start", start), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		out = append(out, window)
		if len(out) >= maxResults {
			break
		}
	}
	return out
}

// NextOpenSlot scans business-hour anchors over the next seven days, starting
// from now, and returns the first open window of the given duration. ok is
// false when every anchor is busy or unreachable.
func (r *AvailabilityResolver) NextOpenSlot(ctx context.Context, now time.Time, duration time.Duration) (MeetingWindow, bool) {
	now = now.In(r.loc)
	for day := 0; day < 7; day++ {
		date := now.AddDate(0, 0, day)
		for _, hour := range r.anchors {
			start := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, r.loc)
			if !start.After(now) {
				continue
			}
			window := NewMeetingWindow(start, duration)
			ok, err := r.IsAvailable(ctx, window, "")
			if err != nil {
				r.logger.Warn("availability check failed for rescue slot",
					zap.Time("start", start), zap.Error(err))
				continue
			}
			if ok {
				return window, true
			}
		}
	}
	return MeetingWindow{}, false
}
