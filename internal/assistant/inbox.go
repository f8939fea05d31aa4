package assistant

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/ports"
)

// InboxPoller is a front end that periodically scans recent inbox messages
// and feeds unprocessed ones through the pipeline, one at a time. The serial
// loop keeps processing within a conversation ordered.
type InboxPoller struct {
	processor   *Processor
	fetcher     ports.MailFetcher
	interval    time.Duration
	lookback    time.Duration
	maxMessages int64
	logger      *zap.Logger
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// NewInboxPoller creates a poller front end.
func NewInboxPoller(
	processor *Processor,
	fetcher ports.MailFetcher,
	interval time.Duration,
	lookback time.Duration,
	maxMessages int64,
	logger *zap.Logger,
) *InboxPoller {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	return &InboxPoller{
		processor:   processor,
		fetcher:     fetcher,
		interval:    interval,
		lookback:    lookback,
		maxMessages: maxMessages,
		logger:      logger,
		stopCh:      make(chan struct{}),
	}
}

// Start implements ports.Frontend.
func (p *InboxPoller) Start() error {
	p.wg.Add(1)
	go p.loop()
	p.logger.Info("inbox poller started",
		zap.Duration("interval", p.interval),
		zap.Duration("lookback", p.lookback))
	return nil
}

// Stop implements ports.Frontend.
func (p *InboxPoller) Stop() error {
	close(p.stopCh)
	p.wg.Wait()
	p.logger.Info("inbox poller stopped")
	return nil
}

func (p *InboxPoller) loop() {
	defer p.wg.Done()

	// One scan right away so a restart does not wait a full interval.
	p.scan()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.scan()
		case <-p.stopCh:
			return
		}
	}
}

func (p *InboxPoller) scan() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	since := time.Now().Add(-p.lookback)
	ids, err := p.fetcher.ListRecent(ctx, since, p.maxMessages)
	if err != nil {
		p.logger.Error("inbox scan failed", zap.Error(err))
		return
	}

	for _, id := range ids {
		select {
		case <-p.stopCh:
			return
		default:
		}
		if _, err := p.processor.ProcessMessage(ctx, id); err != nil {
			if errors.Is(err, ErrAlreadyProcessed) {
				continue
			}
			p.logger.Error("failed to process message", zap.String("message_id", id), zap.Error(err))
		}
	}
}
