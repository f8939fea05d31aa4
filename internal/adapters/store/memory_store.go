// Package store implements the persistence backends for processed messages
// and scheduled events.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/ports"
)

// categoryMeeting marks processed records that carried meeting intent. The
// conversation index only considers these.
const categoryMeeting = "meeting"

// MemoryStore keeps everything in process memory. Useful for tests and the
// one-shot CLI; nothing survives a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	processed map[string]core.ProcessedRecord
	events    map[string]ports.StoredEvent
	logger    *zap.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		processed: make(map[string]core.ProcessedRecord),
		events:    make(map[string]ports.StoredEvent),
		logger:    logger,
	}
}

// IsProcessed implements ports.Store.
func (s *MemoryStore) IsProcessed(_ context.Context, messageID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.processed[messageID]
	return ok, nil
}

// RecordProcessed implements ports.Store.
func (s *MemoryStore) RecordProcessed(_ context.Context, rec *core.ProcessedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[rec.MessageID] = *rec
	return nil
}

// ListProcessed implements ports.Store.
func (s *MemoryStore) ListProcessed(_ context.Context, limit, offset int) ([]core.ProcessedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]core.ProcessedRecord, 0, len(s.processed))
	for _, rec := range s.processed {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ProcessedAt.After(records[j].ProcessedAt)
	})

	if offset >= len(records) {
		return nil, nil
	}
	records = records[offset:]
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// FindEventByConversation implements core.ConversationIndex: the event tied
// to the earliest meeting-intent message of the conversation.
func (s *MemoryStore) FindEventByConversation(_ context.Context, conversationID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var earliest *core.ProcessedRecord
	for _, rec := range s.processed {
		if rec.ConversationID != conversationID || rec.Category != categoryMeeting {
			continue
		}
		rec := rec
		if earliest == nil || rec.ProcessedAt.Before(earliest.ProcessedAt) {
			earliest = &rec
		}
	}
	if earliest == nil {
		return "", nil
	}
	for _, ev := range s.events {
		if ev.MessageID == earliest.MessageID {
			return ev.Ref, nil
		}
	}
	return "", nil
}

// RecordEvent implements ports.Store.
func (s *MemoryStore) RecordEvent(_ context.Context, ev *ports.StoredEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *ev
	now := time.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = now
	}
	s.events[stored.Ref] = stored
	return nil
}

// UpdateEventWindow implements ports.Store.
func (s *MemoryStore) UpdateEventWindow(_ context.Context, eventRef string, window core.MeetingWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[eventRef]
	if !ok {
		return nil
	}
	ev.Window = window
	ev.UpdatedAt = time.Now()
	s.events[eventRef] = ev
	return nil
}

// RecentEvents implements ports.Store.
func (s *MemoryStore) RecentEvents(_ context.Context, limit int) ([]ports.StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]ports.StoredEvent, 0, len(s.events))
	for _, ev := range s.events {
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].UpdatedAt.After(events[j].UpdatedAt)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// Counts implements ports.Store.
func (s *MemoryStore) Counts(_ context.Context) (ports.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := ports.Counts{Processed: len(s.processed), Events: len(s.events)}
	for _, rec := range s.processed {
		if rec.Category == categoryMeeting {
			counts.Meetings++
		}
	}
	return counts, nil
}

// Close implements ports.Store.
func (s *MemoryStore) Close() error {
	return nil
}
