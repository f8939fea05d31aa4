// Package smtpout implements a send-only mail transport over plain SMTP, for
// deployments that read via the Gmail API but relay outbound mail through a
// local MTA.
package smtpout

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sender delivers messages to a single SMTP relay.
type Sender struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSender creates an SMTP sender. username may be empty for an open relay.
func NewSender(host string, port int, username, password, from string, timeout time.Duration, logger *zap.Logger) *Sender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		timeout:  timeout,
		logger:   logger,
	}
}

// Send implements ports.MailSender. SMTP has no thread identifiers, so
// conversationID is ignored; recipients thread on the subject.
func (s *Sender) Send(ctx context.Context, to, subject, body, conversationID string) (string, error) {
	_ = conversationID

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	conn, err := net.DialTimeout("tcp", addr, s.timeout)
	if err != nil {
		return "", fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	if err := c.Hello(hostname); err != nil {
		return "", fmt.Errorf("failed to greet SMTP server: %w", err)
	}

	if s.username != "" {
		if err := c.Auth(sasl.NewPlainClient("", s.username, s.password)); err != nil {
			return "", fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := c.Mail(s.from, nil); err != nil {
		return "", fmt.Errorf("failed to set sender: %w", err)
	}
	if err := c.Rcpt(to, nil); err != nil {
		return "", fmt.Errorf("failed to set recipient: %w", err)
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.host)
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString(fmt.Sprintf("Message-ID: %s\r\n", messageID))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	wc, err := c.Data()
	if err != nil {
		return "", fmt.Errorf("failed to open data stream: %w", err)
	}
	if _, err := wc.Write([]byte(msg.String())); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finish message: %w", err)
	}

	if err := c.Quit(); err != nil {
		s.logger.Warn("failed to quit SMTP session cleanly", zap.Error(err))
	}

	s.logger.Debug("message relayed",
		zap.String("to", to),
		zap.String("message_id", messageID))
	return messageID, nil
}
