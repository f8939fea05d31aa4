// The assistant-cli binary runs the scheduling decision pipeline once over an
// RFC822 message from a file or stdin and prints the outcome. Without Google
// credentials the calendar is treated as free, which keeps the decision logic
// usable offline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/adapters/gcal"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/adapters/openai"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/auth"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/config"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/logging"
)

var (
	inputFile       = flag.String("file", "", "RFC822 message file (default: stdin)")
	provider        = flag.String("provider", "deepseek", "completion provider: deepseek, openai, none")
	apiKey          = flag.String("api-key", "", "completion API key")
	baseURL         = flag.String("base-url", "", "completion API base URL override")
	modelName       = flag.String("model", "", "completion model name override")
	timezone        = flag.String("timezone", "Asia/Dubai", "operating timezone")
	credentialsPath = flag.String("credentials", "", "Google credentials.json (optional)")
	tokenPath       = flag.String("token", "token.json", "Google token.json")
	calendarID      = flag.String("calendar-id", "primary", "calendar to check for conflicts")
	logLevel        = flag.String("log-level", "warn", "log level")
)

// freeCalendar treats every window as open.
type freeCalendar struct{}

func (freeCalendar) ListEvents(_ context.Context, _, _ time.Time) ([]core.CalendarEvent, error) {
	return nil, nil
}

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	ctx := context.Background()

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone: %w", err)
	}

	msg, err := readMessage()
	if err != nil {
		return err
	}

	completion := buildCompletion(logger)
	calendar, err := buildCalendar(ctx, loc, logger)
	if err != nil {
		return err
	}

	extractor := core.NewThreadContentExtractor(0)
	classifier := core.NewIntentClassifier(nil, nil, nil)
	strategies := []core.TimeStrategy{core.NewPatternStrategy(loc)}
	if completion != nil {
		strategies = append(strategies, core.NewAIStrategy(completion, loc, 2000, 30*time.Second))
	}
	strategies = append(strategies, core.NewHeuristicStrategy(loc))
	detector := core.NewTimeDetectionChain(loc, logger, strategies...)
	resolver := core.NewAvailabilityResolver(calendar, loc, nil, logger)
	engine := core.NewSchedulingDecisionEngine(resolver, completion, time.Hour, 3, 7, 500, logger)

	now := time.Now().In(loc)
	cleaned := extractor.Extract(msg.Body)
	intent := classifier.Classify(msg, cleaned)

	var candidate *core.TimeCandidate
	if intent.IsMeeting {
		candidate, err = detector.Detect(ctx, cleaned, now)
		if err != nil && !errors.Is(err, core.ErrNoTime) {
			logger.Warn("time detection failed", zap.Error(err))
		}
	}

	outcome := engine.Decide(ctx, now, msg, cleaned, intent, candidate, core.Correlation{})

	fmt.Printf("outcome: %s\n", outcome.Kind)
	fmt.Printf("summary: %s\n", outcome.Summary())
	if candidate != nil {
		fmt.Printf("detected: %s (via %s)\n", candidate.Time.Format(time.RFC3339), candidate.Source)
	}
	return nil
}

func readMessage() (*core.InboundMessage, error) {
	var reader io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	parsed, err := mail.ReadMessage(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	body, err := io.ReadAll(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}

	id := strings.Trim(parsed.Header.Get("Message-ID"), "<>")
	if id == "" {
		id = "cli"
	}
	return &core.InboundMessage{
		ID:             id,
		ConversationID: id,
		Sender:         parsed.Header.Get("From"),
		Subject:        parsed.Header.Get("Subject"),
		Body:           string(body),
		ReceivedAt:     time.Now(),
	}, nil
}

func buildCompletion(logger *zap.Logger) core.CompletionClient {
	if *provider == "none" || *apiKey == "" {
		logger.Warn("no completion provider configured, AI strategies disabled")
		return nil
	}

	v := config.NewEmptyViper()
	cfg := config.NewFromViper(v)

	var c config.OpenAIConfig
	switch *provider {
	case "deepseek":
		c = cfg.GetDeepSeek()
	default:
		c = cfg.GetOpenAI()
	}
	c.APIKey = *apiKey
	if *baseURL != "" {
		c.BaseURL = *baseURL
	}
	if *modelName != "" {
		c.ModelName = *modelName
	}
	return openai.NewClient(c.APIKey, c.BaseURL, c.ModelName, c.MaxTokens,
		float32(c.Temperature), float32(c.TopP), c.Timeout, logger)
}

func buildCalendar(ctx context.Context, loc *time.Location, logger *zap.Logger) (core.Calendar, error) {
	if *credentialsPath == "" {
		logger.Warn("no Google credentials supplied, treating the calendar as free")
		return freeCalendar{}, nil
	}
	client, err := auth.NewHTTPClient(ctx, *credentialsPath, *tokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with Google: %w", err)
	}
	return gcal.NewTransport(ctx, client, *calendarID, loc, logger)
}
