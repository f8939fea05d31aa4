// Package assistant orchestrates the scheduling pipeline around the decision
// core: dedup, message fetch, decision, calendar and mail side effects, and
// outcome recording.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/ports"
)

// ErrAlreadyProcessed reports that the message was handled in an earlier run
// and the pipeline was not invoked again.
var ErrAlreadyProcessed = errors.New("message already processed")

// Processor runs the full pipeline for one message at a time.
type Processor struct {
	mail       ports.MailTransport
	calendar   ports.CalendarTransport
	store      ports.Store
	extractor  *core.ThreadContentExtractor
	classifier *core.IntentClassifier
	detector   *core.TimeDetectionChain
	correlator *core.ThreadEventCorrelator
	engine     *core.SchedulingDecisionEngine
	composer   *Composer
	loc        *time.Location
	logger     *zap.Logger
}

// NewProcessor wires the pipeline together.
func NewProcessor(
	mailTransport ports.MailTransport,
	calendar ports.CalendarTransport,
	store ports.Store,
	extractor *core.ThreadContentExtractor,
	classifier *core.IntentClassifier,
	detector *core.TimeDetectionChain,
	correlator *core.ThreadEventCorrelator,
	engine *core.SchedulingDecisionEngine,
	composer *Composer,
	loc *time.Location,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		mail:       mailTransport,
		calendar:   calendar,
		store:      store,
		extractor:  extractor,
		classifier: classifier,
		detector:   detector,
		correlator: correlator,
		engine:     engine,
		composer:   composer,
		loc:        loc,
		logger:     logger,
	}
}

// ProcessMessage handles one inbound message end to end.
func (p *Processor) ProcessMessage(ctx context.Context, messageID string) (*core.SchedulingOutcome, error) {
	return p.ProcessMessageWithEvent(ctx, messageID, "")
}

// ProcessMessageWithEvent is ProcessMessage with an operator-selected event
// ref overriding the conversation correlation.
func (p *Processor) ProcessMessageWithEvent(ctx context.Context, messageID, manualEventRef string) (*core.SchedulingOutcome, error) {
	done, err := p.store.IsProcessed(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to check processed state: %w", err)
	}
	if done {
		return nil, ErrAlreadyProcessed
	}

	msg, err := p.mail.Fetch(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", messageID, err)
	}

	now := time.Now().In(p.loc)
	cleaned := p.extractor.Extract(msg.Body)
	intent := p.classifier.Classify(msg, cleaned)

	var candidate *core.TimeCandidate
	if intent.IsMeeting {
		candidate, err = p.detector.Detect(ctx, cleaned, now)
		if err != nil && !errors.Is(err, core.ErrNoTime) {
			p.logger.Warn("time detection failed", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}

	correlation := p.correlator.Correlate(ctx, msg.ConversationID, intent, manualEventRef)
	outcome := p.engine.Decide(ctx, now, msg, cleaned, intent, candidate, correlation)
	outcome = p.execute(ctx, msg, cleaned, outcome)

	rec := &core.ProcessedRecord{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		Sender:         msg.Sender,
		Subject:        msg.Subject,
		Category:       categoryFor(intent),
		Outcome:        outcome.Kind,
		Summary:        outcome.Summary(),
		ProcessingID:   uuid.NewString(),
		ProcessedAt:    now,
	}
	if err := p.store.RecordProcessed(ctx, rec); err != nil {
		// Without the record the message would be handled again next run, so
		// surface the failure to the caller.
		return &outcome, fmt.Errorf("failed to record processed message: %w", err)
	}

	p.logger.Info("message processed",
		zap.String("message_id", msg.ID),
		zap.String("conversation_id", msg.ConversationID),
		zap.String("outcome", string(outcome.Kind)),
		zap.String("summary", outcome.Summary()))
	return &outcome, nil
}

// execute performs the side effects the outcome calls for. Calendar write
// failures downgrade the outcome to ManualInputRequired; mail failures only
// log, the scheduling work itself already took effect.
func (p *Processor) execute(ctx context.Context, msg *core.InboundMessage, cleaned string, outcome core.SchedulingOutcome) core.SchedulingOutcome {
	switch outcome.Kind {
	case core.OutcomeCreated:
		ref, err := p.calendar.CreateEvent(ctx, *outcome.Draft)
		if err != nil {
			p.logger.Error("calendar event creation failed", zap.String("message_id", msg.ID), zap.Error(err))
			return core.ManualInputOutcome("calendar event creation failed")
		}
		if err := p.store.RecordEvent(ctx, &ports.StoredEvent{
			Ref:            ref.ID,
			ConversationID: msg.ConversationID,
			MessageID:      msg.ID,
			Window:         outcome.Draft.Window,
		}); err != nil {
			p.logger.Warn("failed to record scheduled event", zap.String("event_ref", ref.ID), zap.Error(err))
		}
		p.reply(ctx, msg, p.composer.Confirmation(outcome.Draft.Window))

	case core.OutcomeRescheduled:
		_, err := p.calendar.UpdateEvent(ctx, outcome.EventRef, *outcome.NewWindow)
		if errors.Is(err, ports.ErrEventNotFound) {
			p.logger.Warn("correlated event vanished from the calendar",
				zap.String("event_ref", outcome.EventRef))
			return core.ManualInputOutcome("the meeting this thread refers to no longer exists on the calendar")
		}
		if err != nil {
			p.logger.Error("calendar event update failed", zap.String("event_ref", outcome.EventRef), zap.Error(err))
			return core.ManualInputOutcome("calendar event update failed")
		}
		if err := p.store.UpdateEventWindow(ctx, outcome.EventRef, *outcome.NewWindow); err != nil {
			p.logger.Warn("failed to update stored event", zap.String("event_ref", outcome.EventRef), zap.Error(err))
		}
		p.reply(ctx, msg, p.composer.Confirmation(*outcome.NewWindow))

	case core.OutcomeAlternativesProposed:
		p.reply(ctx, msg, p.composer.Alternatives(ctx, cleaned, *outcome.Requested, outcome.Alternatives))
	}
	return outcome
}

func (p *Processor) reply(ctx context.Context, msg *core.InboundMessage, body string) {
	to := replyAddress(msg.Sender)
	if to == "" {
		p.logger.Warn("no usable reply address", zap.String("message_id", msg.ID))
		return
	}
	subject := msg.Subject
	if subject != "" && !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}
	if _, err := p.mail.Send(ctx, to, subject, body, msg.ConversationID); err != nil {
		p.logger.Warn("failed to send reply",
			zap.String("message_id", msg.ID),
			zap.String("to", to),
			zap.Error(err))
	}
}

func replyAddress(sender string) string {
	if addr, err := mail.ParseAddress(sender); err == nil {
		return addr.Address
	}
	return strings.TrimSpace(sender)
}

func categoryFor(intent core.IntentResult) string {
	if intent.IsMeeting {
		return "meeting"
	}
	return "general"
}
