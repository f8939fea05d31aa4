// Package di assembles the application graph.
package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/assistant"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/config"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/factory"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/logging"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/ports"
)

// BuildContainer wires the full application graph for the daemon.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []interface{}{
		config.New,
		logging.InitLogger,

		func(cfg *config.Config) (*time.Location, error) {
			loc, err := time.LoadLocation(cfg.GetScheduler().Timezone)
			if err != nil {
				return nil, fmt.Errorf("failed to load timezone: %w", err)
			}
			return loc, nil
		},

		factory.NewLLMFactory,
		factory.NewStoreFactory,
		factory.NewGoogleFactory,
		factory.NewMailFactory,
		factory.NewFrontendFactory,

		func(f *factory.LLMFactory) (core.CompletionClient, error) {
			return f.Create(context.Background())
		},
		func(f *factory.StoreFactory) (ports.Store, error) {
			return f.Create()
		},
		func(f *factory.MailFactory) (ports.MailTransport, error) {
			return f.Create(context.Background())
		},
		func(f *factory.GoogleFactory, loc *time.Location) (ports.CalendarTransport, error) {
			return f.CreateCalendar(context.Background(), loc)
		},

		func(cfg *config.Config) *core.ThreadContentExtractor {
			return core.NewThreadContentExtractor(cfg.GetScheduler().MinContentLength)
		},
		func(cfg *config.Config) *core.IntentClassifier {
			c := cfg.GetScheduler()
			return core.NewIntentClassifier(c.MeetingPhrases, c.ExclusionPhrases, c.ReschedulePhrases)
		},
		func(cfg *config.Config, completion core.CompletionClient, loc *time.Location, logger *zap.Logger) *core.TimeDetectionChain {
			c := cfg.GetScheduler()
			return core.NewTimeDetectionChain(loc, logger,
				core.NewPatternStrategy(loc),
				core.NewAIStrategy(completion, loc, c.MaxPromptChars, c.AITimeout),
				core.NewHeuristicStrategy(loc),
			)
		},
		func(cfg *config.Config, calendar ports.CalendarTransport, loc *time.Location, logger *zap.Logger) *core.AvailabilityResolver {
			return core.NewAvailabilityResolver(calendar, loc, cfg.GetScheduler().BusinessHours, logger)
		},
		func(store ports.Store, logger *zap.Logger) *core.ThreadEventCorrelator {
			return core.NewThreadEventCorrelator(store, logger)
		},
		func(cfg *config.Config, resolver *core.AvailabilityResolver, completion core.CompletionClient, logger *zap.Logger) *core.SchedulingDecisionEngine {
			c := cfg.GetScheduler()
			return core.NewSchedulingDecisionEngine(resolver, completion,
				c.MeetingDuration, c.MaxAlternatives, c.SearchHorizonDays, c.MaxSummaryChars, logger)
		},

		func(completion core.CompletionClient, logger *zap.Logger) *assistant.Composer {
			return assistant.NewComposer(completion, logger)
		},
		assistant.NewProcessor,

		func(f *factory.FrontendFactory, processor *assistant.Processor, mail ports.MailTransport, store ports.Store) (ports.Frontend, error) {
			return f.Create(processor, mail, store)
		},
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, fmt.Errorf("failed to register provider: %w", err)
		}
	}
	return container, nil
}
