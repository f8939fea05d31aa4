// Package gcal implements the calendar transport over the Google Calendar API.
package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/ports"
)

// Transport reads availability from and writes events to one Google calendar.
type Transport struct {
	svc        *calendar.Service
	calendarID string
	loc        *time.Location
	logger     *zap.Logger
}

// NewTransport creates a calendar transport over an authenticated HTTP client.
func NewTransport(ctx context.Context, httpClient *http.Client, calendarID string, loc *time.Location, logger *zap.Logger) (*Transport, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Transport{svc: svc, calendarID: calendarID, loc: loc, logger: logger}, nil
}

// ListEvents implements core.Calendar.
func (t *Transport) ListEvents(ctx context.Context, from, to time.Time) ([]core.CalendarEvent, error) {
	resp, err := t.svc.Events.List(t.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	out := make([]core.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		window, ok := t.parseEventWindow(item)
		if !ok {
			continue
		}
		out = append(out, core.CalendarEvent{
			Ref:    item.Id,
			Title:  item.Summary,
			Window: window,
		})
	}
	return out, nil
}

// parseEventWindow handles both timed and all-day events. All-day events
// block their whole days.
func (t *Transport) parseEventWindow(item *calendar.Event) (core.MeetingWindow, bool) {
	if item.Start == nil || item.End == nil {
		return core.MeetingWindow{}, false
	}
	if item.Start.DateTime != "" {
		start, err1 := time.Parse(time.RFC3339, item.Start.DateTime)
		end, err2 := time.Parse(time.RFC3339, item.End.DateTime)
		if err1 != nil || err2 != nil {
			t.logger.Warn("skipping event with unparseable times", zap.String("event_id", item.Id))
			return core.MeetingWindow{}, false
		}
		return core.MeetingWindow{Start: start.In(t.loc), End: end.In(t.loc)}, true
	}
	start, err1 := time.ParseInLocation("2006-01-02", item.Start.Date, t.loc)
	end, err2 := time.ParseInLocation("2006-01-02", item.End.Date, t.loc)
	if err1 != nil || err2 != nil {
		return core.MeetingWindow{}, false
	}
	return core.MeetingWindow{Start: start, End: end}, true
}

// CreateEvent implements ports.CalendarTransport.
func (t *Transport) CreateEvent(ctx context.Context, draft core.EventDraft) (*core.EventRef, error) {
	event := &calendar.Event{
		Summary:     draft.Summary,
		Description: draft.Description,
		Start: &calendar.EventDateTime{
			DateTime: draft.Window.Start.In(t.loc).Format(time.RFC3339),
			TimeZone: t.loc.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: draft.Window.End.In(t.loc).Format(time.RFC3339),
			TimeZone: t.loc.String(),
		},
	}
	for _, attendee := range draft.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: attendee})
	}

	created, err := t.svc.Events.Insert(t.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	t.logger.Info("calendar event created",
		zap.String("event_id", created.Id),
		zap.String("summary", draft.Summary))
	return &core.EventRef{ID: created.Id, Link: created.HtmlLink}, nil
}

// UpdateEvent implements ports.CalendarTransport.
func (t *Transport) UpdateEvent(ctx context.Context, eventRef string, window core.MeetingWindow) (*core.EventRef, error) {
	patch := &calendar.Event{
		Start: &calendar.EventDateTime{
			DateTime: window.Start.In(t.loc).Format(time.RFC3339),
			TimeZone: t.loc.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: window.End.In(t.loc).Format(time.RFC3339),
			TimeZone: t.loc.String(),
		},
	}

	updated, err := t.svc.Events.Patch(t.calendarID, eventRef, patch).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone) {
			return nil, ports.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event %s: %w", eventRef, err)
	}

	t.logger.Info("calendar event moved",
		zap.String("event_id", eventRef),
		zap.Time("new_start", window.Start))
	return &core.EventRef{ID: updated.Id, Link: updated.HtmlLink}, nil
}
