// Package bedrock implements the completion client over AWS Bedrock using the
// Claude text completion body.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/utils"
)

// Client invokes a Bedrock-hosted Claude model.
type Client struct {
	client      *bedrockruntime.Client
	modelID     string
	maxTokens   int
	temperature float64
	topP        float64
	logger      *zap.Logger
	text        *utils.TextProcessor
}

type claudeRequest struct {
	Prompt            string  `json:"prompt"`
	MaxTokensToSample int     `json:"max_tokens_to_sample"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
}

type claudeResponse struct {
	Completion string `json:"completion"`
}

// NewClient creates a Bedrock completion client.
func NewClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float64,
	topP float64,
	logger *zap.Logger,
) *Client {
	return &Client{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
		text:        utils.NewTextProcessor(0),
	}
}

// Complete implements core.CompletionClient.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(claudeRequest{
		Prompt:            fmt.Sprintf("\n\nHuman: %s\n\nAssistant:", c.text.Process(prompt)),
		MaxTokensToSample: c.maxTokens,
		Temperature:       c.temperature,
		TopP:              c.topP,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal bedrock request: %w", err)
	}

	out, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke bedrock model: %w", err)
	}

	var resp claudeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal bedrock response: %w", err)
	}
	if resp.Completion == "" {
		return "", fmt.Errorf("bedrock model returned an empty completion")
	}
	return resp.Completion, nil
}
