// Package gemini implements the completion client over Google's Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/utils"
)

// Client calls the Gemini generate-content API.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
	text   *utils.TextProcessor
}

// NewClient creates a Gemini completion client.
func NewClient(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.SetTemperature(temperature)
	model.SetTopP(topP)

	return &Client{
		client: client,
		model:  model,
		logger: logger,
		text:   utils.NewTextProcessor(0),
	}, nil
}

// Complete implements core.CompletionClient.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(c.text.Process(prompt)))
	if err != nil {
		return "", fmt.Errorf("failed to call gemini API: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini API returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini API returned no text parts")
	}
	return sb.String(), nil
}

// Close releases the underlying API connection.
func (c *Client) Close() error {
	return c.client.Close()
}
