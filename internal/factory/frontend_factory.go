package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/adapters/httpapi"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/assistant"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/config"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/ports"
)

// FrontendFactory creates the configured intake surface.
type FrontendFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFrontendFactory creates a new front end factory.
func NewFrontendFactory(cfg *config.Config, logger *zap.Logger) *FrontendFactory {
	return &FrontendFactory{cfg: cfg, logger: logger}
}

// Create builds the front end: the inbox poller, the HTTP API, or both.
func (f *FrontendFactory) Create(
	processor *assistant.Processor,
	mail ports.MailTransport,
	store ports.Store,
) (ports.Frontend, error) {
	c := f.cfg.GetServer()
	f.logger.Info("creating front end", zap.String("frontend", c.Frontend))

	switch c.Frontend {
	case "poller":
		return assistant.NewInboxPoller(processor, mail, c.PollInterval, c.Lookback, c.MaxMessages, f.logger), nil
	case "http":
		return httpapi.NewServer(processor, store, c.ListenAddress, f.logger), nil
	case "both":
		return compositeFrontend{
			assistant.NewInboxPoller(processor, mail, c.PollInterval, c.Lookback, c.MaxMessages, f.logger),
			httpapi.NewServer(processor, store, c.ListenAddress, f.logger),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported frontend: %s", c.Frontend)
	}
}

// compositeFrontend starts and stops several front ends as one.
type compositeFrontend []ports.Frontend

func (c compositeFrontend) Start() error {
	for _, fe := range c {
		if err := fe.Start(); err != nil {
			return err
		}
	}
	return nil
}

func (c compositeFrontend) Stop() error {
	var firstErr error
	for _, fe := range c {
		if err := fe.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
