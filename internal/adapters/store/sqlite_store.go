package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/ports"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS processed_messages (
	message_id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	sender TEXT NOT NULL,
	subject TEXT NOT NULL,
	category TEXT NOT NULL,
	outcome TEXT NOT NULL,
	summary TEXT NOT NULL,
	processing_id TEXT NOT NULL,
	processed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_processed_conversation ON processed_messages(conversation_id);

CREATE TABLE IF NOT EXISTS scheduled_events (
	event_ref TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	message_id TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_conversation ON scheduled_events(conversation_id);
`

// SQLiteStore persists records in a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("sqlite store opened", zap.String("path", path))
	return &SQLiteStore{db: db, logger: logger}, nil
}

// IsProcessed implements ports.Store.
func (s *SQLiteStore) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM processed_messages WHERE message_id = ?", messageID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query processed message: %w", err)
	}
	return true, nil
}

// RecordProcessed implements ports.Store.
func (s *SQLiteStore) RecordProcessed(ctx context.Context, rec *core.ProcessedRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO processed_messages
		(message_id, conversation_id, sender, subject, category, outcome, summary, processing_id, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.MessageID, rec.ConversationID, rec.Sender, rec.Subject, rec.Category,
		string(rec.Outcome), rec.Summary, rec.ProcessingID, rec.ProcessedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record processed message: %w", err)
	}
	return nil
}

// ListProcessed implements ports.Store.
func (s *SQLiteStore) ListProcessed(ctx context.Context, limit, offset int) ([]core.ProcessedRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, conversation_id, sender, subject, category, outcome, summary, processing_id, processed_at
		FROM processed_messages ORDER BY processed_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list processed messages: %w", err)
	}
	defer rows.Close()

	var out []core.ProcessedRecord
	for rows.Next() {
		var rec core.ProcessedRecord
		var outcome, processedAt string
		if err := rows.Scan(&rec.MessageID, &rec.ConversationID, &rec.Sender, &rec.Subject,
			&rec.Category, &outcome, &rec.Summary, &rec.ProcessingID, &processedAt); err != nil {
			return nil, fmt.Errorf("failed to scan processed message: %w", err)
		}
		rec.Outcome = core.OutcomeKind(outcome)
		rec.ProcessedAt, _ = time.Parse(time.RFC3339, processedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// FindEventByConversation implements core.ConversationIndex.
func (s *SQLiteStore) FindEventByConversation(ctx context.Context, conversationID string) (string, error) {
	var ref string
	err := s.db.QueryRowContext(ctx, `
		SELECT e.event_ref
		FROM scheduled_events e
		JOIN processed_messages m ON m.message_id = e.message_id
		WHERE m.conversation_id = ? AND m.category = ?
		ORDER BY m.processed_at ASC
		LIMIT 1`, conversationID, categoryMeeting).Scan(&ref)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find conversation event: %w", err)
	}
	return ref, nil
}

// RecordEvent implements ports.Store.
func (s *SQLiteStore) RecordEvent(ctx context.Context, ev *ports.StoredEvent) error {
	now := time.Now().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO scheduled_events
		(event_ref, conversation_id, message_id, start_time, end_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.Ref, ev.ConversationID, ev.MessageID,
		ev.Window.Start.Format(time.RFC3339), ev.Window.End.Format(time.RFC3339), now, now)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// UpdateEventWindow implements ports.Store.
func (s *SQLiteStore) UpdateEventWindow(ctx context.Context, eventRef string, window core.MeetingWindow) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_events SET start_time = ?, end_time = ?, updated_at = ?
		WHERE event_ref = ?`,
		window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339),
		time.Now().Format(time.RFC3339), eventRef)
	if err != nil {
		return fmt.Errorf("failed to update event window: %w", err)
	}
	return nil
}

// RecentEvents implements ports.Store.
func (s *SQLiteStore) RecentEvents(ctx context.Context, limit int) ([]ports.StoredEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_ref, conversation_id, message_id, start_time, end_time, created_at, updated_at
		FROM scheduled_events ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent events: %w", err)
	}
	defer rows.Close()

	var out []ports.StoredEvent
	for rows.Next() {
		ev, err := scanStoredEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func scanStoredEvent(rows *sql.Rows) (ports.StoredEvent, error) {
	var ev ports.StoredEvent
	var start, end, created, updated string
	if err := rows.Scan(&ev.Ref, &ev.ConversationID, &ev.MessageID, &start, &end, &created, &updated); err != nil {
		return ev, fmt.Errorf("failed to scan event: %w", err)
	}
	ev.Window.Start, _ = time.Parse(time.RFC3339, start)
	ev.Window.End, _ = time.Parse(time.RFC3339, end)
	ev.CreatedAt, _ = time.Parse(time.RFC3339, created)
	ev.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return ev, nil
}

// Counts implements ports.Store.
func (s *SQLiteStore) Counts(ctx context.Context) (ports.Counts, error) {
	var counts ports.Counts
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM processed_messages").Scan(&counts.Processed); err != nil {
		return counts, fmt.Errorf("failed to count processed messages: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM processed_messages WHERE category = ?", categoryMeeting).Scan(&counts.Meetings); err != nil {
		return counts, fmt.Errorf("failed to count meetings: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM scheduled_events").Scan(&counts.Events); err != nil {
		return counts, fmt.Errorf("failed to count events: %w", err)
	}
	return counts, nil
}

// Close implements ports.Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
