package ports

import (
	"context"
	"time"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
)

// MailFetcher reads messages from the mailbox.
type MailFetcher interface {
	// Fetch retrieves one full message by provider ID.
	Fetch(ctx context.Context, messageID string) (*core.InboundMessage, error)
	// ListRecent returns the IDs of inbox messages received since the given
	// time, newest first, capped at max.
	ListRecent(ctx context.Context, since time.Time, max int64) ([]string, error)
}

// MailSender sends messages, threading them onto an existing conversation
// when the transport supports it.
type MailSender interface {
	// Send delivers a plain-text message and returns the provider's ID for
	// the sent message. conversationID may be empty for a fresh thread.
	Send(ctx context.Context, to, subject, body, conversationID string) (string, error)
}

// MailTransport is a full-duplex mailbox.
type MailTransport interface {
	MailFetcher
	MailSender
}
