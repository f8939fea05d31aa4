package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/ports"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS processed_messages (
		message_id VARCHAR(255) PRIMARY KEY,
		conversation_id VARCHAR(255) NOT NULL,
		sender VARCHAR(512) NOT NULL,
		subject TEXT NOT NULL,
		category VARCHAR(32) NOT NULL,
		outcome VARCHAR(64) NOT NULL,
		summary TEXT NOT NULL,
		processing_id VARCHAR(64) NOT NULL,
		processed_at VARCHAR(64) NOT NULL,
		INDEX idx_processed_conversation (conversation_id)
	)`,
	`CREATE TABLE IF NOT EXISTS scheduled_events (
		event_ref VARCHAR(255) PRIMARY KEY,
		conversation_id VARCHAR(255) NOT NULL,
		message_id VARCHAR(255) NOT NULL,
		start_time VARCHAR(64) NOT NULL,
		end_time VARCHAR(64) NOT NULL,
		created_at VARCHAR(64) NOT NULL,
		updated_at VARCHAR(64) NOT NULL,
		INDEX idx_events_conversation (conversation_id)
	)`,
}

// MySQLStore persists records in MySQL, for deployments where several tools
// share one database server.
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore opens a MySQL-backed store from a DSN.
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}
	for _, stmt := range mysqlSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	logger.Info("mysql store opened")
	return &MySQLStore{db: db, logger: logger}, nil
}

// IsProcessed implements ports.Store.
func (s *MySQLStore) IsProcessed(ctx context.Context, messageID string) (bool, error) {
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
func (s *MySQLStore) RecordProcessed(ctx context.Context, rec *core.ProcessedRecord) error {
	_, err := s.db.ExecContext(ctx, `
		REPLACE INTO processed_messages
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
func (s *MySQLStore) ListProcessed(ctx context.Context, limit, offset int) ([]core.ProcessedRecord, error) {
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
func (s *MySQLStore) FindEventByConversation(ctx context.Context, conversationID string) (string, error) {
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
func (s *MySQLStore) RecordEvent(ctx context.Context, ev *ports.StoredEvent) error {
	now := time.Now().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		REPLACE INTO scheduled_events
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
func (s *MySQLStore) UpdateEventWindow(ctx context.Context, eventRef string, window core.MeetingWindow) error {
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
func (s *MySQLStore) RecentEvents(ctx context.Context, limit int) ([]ports.StoredEvent, error) {
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

// Counts implements ports.Store.
func (s *MySQLStore) Counts(ctx context.Context) (ports.Counts, error) {
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
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
