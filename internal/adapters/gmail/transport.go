// Package gmail implements the mail transport over the Gmail API.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
)

const user = "me"

// Transport reads and sends mail through the Gmail API.
type Transport struct {
	svc    *gmail.Service
	logger *zap.Logger
}

// NewTransport creates a Gmail transport over an authenticated HTTP client.
func NewTransport(ctx context.Context, httpClient *http.Client, logger *zap.Logger) (*Transport, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &Transport{svc: svc, logger: logger}, nil
}

// Fetch implements ports.MailFetcher.
func (t *Transport) Fetch(ctx context.Context, messageID string) (*core.InboundMessage, error) {
	msg, err := t.svc.Users.Messages.Get(user, messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", messageID, err)
	}

	out := &core.InboundMessage{
		ID:             msg.Id,
		ConversationID: msg.ThreadId,
		ReceivedAt:     time.UnixMilli(msg.InternalDate),
	}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch strings.ToLower(h.Name) {
			case "from":
				out.Sender = h.Value
			case "subject":
				out.Subject = h.Value
			}
		}
		out.Body = extractPlainText(msg.Payload)
	}
	if out.Body == "" {
		out.Body = msg.Snippet
	}
	return out, nil
}

// extractPlainText walks the MIME tree for the first text/plain part, falling
// back to the top-level body.
func extractPlainText(payload *gmail.MessagePart) string {
	if payload.MimeType == "text/plain" && payload.Body != nil && payload.Body.Data != "" {
		return decodeBody(payload.Body.Data)
	}
	for _, part := range payload.Parts {
		if text := extractPlainText(part); text != "" {
			return text
		}
	}
	if payload.Body != nil && payload.Body.Data != "" {
		return decodeBody(payload.Body.Data)
	}
	return ""
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
	}
	if err != nil {
		return ""
	}
	return string(decoded)
}

// ListRecent implements ports.MailFetcher.
func (t *Transport) ListRecent(ctx context.Context, since time.Time, max int64) ([]string, error) {
	query := "in:inbox"
	if !since.IsZero() {
		query += " after:" + since.Format("2006/01/02")
	}

	call := t.svc.Users.Messages.List(user).Q(query).Context(ctx)
	if max > 0 {
		call = call.MaxResults(max)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// Send implements ports.MailSender. conversationID, when set, threads the
// reply onto the existing Gmail conversation.
func (t *Transport) Send(ctx context.Context, to, subject, body, conversationID string) (string, error) {
	raw := fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		to, subject, body)

	msg := &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString([]byte(raw)),
		ThreadId: conversationID,
	}
	sent, err := t.svc.Users.Messages.Send(user, msg).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	t.logger.Debug("message sent",
		zap.String("to", to),
		zap.String("message_id", sent.Id),
		zap.String("thread_id", sent.ThreadId))
	return sent.Id, nil
}
