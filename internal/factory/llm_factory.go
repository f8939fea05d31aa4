// Package factory builds the swappable pieces (completion provider, store,
// mail transport, front end) from configuration.
package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/adapters/bedrock"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/adapters/gemini"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/adapters/openai"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/config"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
)

// LLMFactory creates the configured completion client.
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new completion client factory.
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{cfg: cfg, logger: logger}
}

// Create builds the completion client for the configured provider.
func (f *LLMFactory) Create(ctx context.Context) (core.CompletionClient, error) {
	provider := f.cfg.GetLLM().Provider
	f.logger.Info("creating completion client", zap.String("provider", provider))

	switch provider {
	case "deepseek":
		c := f.cfg.GetDeepSeek()
		return openai.NewClient(c.APIKey, c.BaseURL, c.ModelName, c.MaxTokens,
			float32(c.Temperature), float32(c.TopP), c.Timeout, f.logger), nil

	case "openai":
		c := f.cfg.GetOpenAI()
		return openai.NewClient(c.APIKey, c.BaseURL, c.ModelName, c.MaxTokens,
			float32(c.Temperature), float32(c.TopP), c.Timeout, f.logger), nil

	case "gemini":
		c := f.cfg.GetGemini()
		client, err := gemini.NewClient(ctx, c.APIKey, c.ModelName, c.MaxTokens,
			float32(c.Temperature), float32(c.TopP), f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return client, nil

	case "bedrock":
		c := f.cfg.GetBedrock()
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		runtime := bedrockruntime.NewFromConfig(awsCfg)
		return bedrock.NewClient(runtime, c.ModelID, c.MaxTokens, c.Temperature, c.TopP, f.logger), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
