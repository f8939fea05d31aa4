package factory

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/adapters/gcal"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/adapters/gmail"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/adapters/smtpout"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/auth"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/config"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/ports"
)

// GoogleFactory creates the authenticated Google API surfaces shared by the
// Gmail and Calendar transports.
type GoogleFactory struct {
	cfg    *config.Config
	logger *zap.Logger

	httpClient *http.Client
}

// NewGoogleFactory creates a new Google transport factory.
func NewGoogleFactory(cfg *config.Config, logger *zap.Logger) *GoogleFactory {
	return &GoogleFactory{cfg: cfg, logger: logger}
}

func (f *GoogleFactory) client(ctx context.Context) (*http.Client, error) {
	if f.httpClient != nil {
		return f.httpClient, nil
	}
	c := f.cfg.GetGoogle()
	client, err := auth.NewHTTPClient(ctx, c.CredentialsPath, c.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build google client: %w", err)
	}
	f.httpClient = client
	return client, nil
}

// CreateCalendar builds the Google Calendar transport.
func (f *GoogleFactory) CreateCalendar(ctx context.Context, loc *time.Location) (ports.CalendarTransport, error) {
	client, err := f.client(ctx)
	if err != nil {
		return nil, err
	}
	return gcal.NewTransport(ctx, client, f.cfg.GetGoogle().CalendarID, loc, f.logger)
}

// CreateGmail builds the Gmail mail transport.
func (f *GoogleFactory) CreateGmail(ctx context.Context) (*gmail.Transport, error) {
	client, err := f.client(ctx)
	if err != nil {
		return nil, err
	}
	return gmail.NewTransport(ctx, client, f.logger)
}

// MailFactory creates the configured mail transport.
type MailFactory struct {
	cfg    *config.Config
	google *GoogleFactory
	logger *zap.Logger
}

// NewMailFactory creates a new mail transport factory.
func NewMailFactory(cfg *config.Config, google *GoogleFactory, logger *zap.Logger) *MailFactory {
	return &MailFactory{cfg: cfg, google: google, logger: logger}
}

// compositeTransport reads through one implementation and sends through
// another.
type compositeTransport struct {
	ports.MailFetcher
	ports.MailSender
}

// Create builds the mail transport. "gmail" is full duplex; "smtp" still
// reads through Gmail but relays outbound mail over SMTP.
func (f *MailFactory) Create(ctx context.Context) (ports.MailTransport, error) {
	transport := f.cfg.GetMail().Transport
	f.logger.Info("creating mail transport", zap.String("transport", transport))

	gm, err := f.google.CreateGmail(ctx)
	if err != nil {
		return nil, err
	}

	switch transport {
	case "gmail":
		return gm, nil
	case "smtp":
		c := f.cfg.GetSMTP()
		sender := smtpout.NewSender(c.Host, c.Port, c.Username, c.Password, c.From, c.Timeout, f.logger)
		return compositeTransport{MailFetcher: gm, MailSender: sender}, nil
	default:
		return nil, fmt.Errorf("unsupported mail transport: %s", transport)
	}
}
