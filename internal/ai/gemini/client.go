// Package gemini implements the ai.Embedder and ai.Generator capabilities on
// top of the Google GenAI API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/recruitkit/talent-scout/internal/ai"
	"github.com/recruitkit/talent-scout/internal/logger"
)

const (
	defaultModel      = "gemini-2.0-flash"
	defaultEmbedModel = "text-embedding-004"
	defaultTimeout    = 30 * time.Second

	// The embedding API is rate limited per project; one request every
	// 100ms keeps a full corpus build under the free-tier quota.
	defaultMinInterval = 100 * time.Millisecond
)

// Config holds the provider settings for a Client.
type Config struct {
	APIKey     string
	Model      string
	EmbedModel string
	// TaskType is passed to the embedding API (RETRIEVAL_DOCUMENT,
	// RETRIEVAL_QUERY, ...). Defaults to RETRIEVAL_DOCUMENT.
	TaskType string
	// Timeout bounds every provider call. Defaults to 30s.
	Timeout time.Duration
	// MinInterval is the minimum spacing between provider calls.
	MinInterval time.Duration
}

// Client wraps the GenAI client behind the core's capability interfaces.
// Every call is a single attempt: failures surface as
// ai.ErrProviderUnavailable and retry policy stays with the caller.
type Client struct {
	client     *genai.Client
	model      string
	embedModel string
	taskType   string
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a Client configured for the Gemini API backend.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	embedModel := strings.TrimSpace(cfg.EmbedModel)
	if embedModel == "" {
		embedModel = defaultEmbedModel
	}

	taskType := strings.TrimSpace(cfg.TaskType)
	if taskType == "" {
		taskType = "RETRIEVAL_DOCUMENT"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	interval := cfg.MinInterval
	if interval <= 0 {
		interval = defaultMinInterval
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		client:     client,
		model:      model,
		embedModel: embedModel,
		taskType:   taskType,
		timeout:    timeout,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		logger:     log.With(zap.String("provider", "gemini")),
	}, nil
}

// GenerateContent sends the prompt to Gemini and returns the assembled
// textual response.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini client is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt must not be empty", ai.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ai.ErrProviderUnavailable, err)
	}

	c.logger.Debug("generate content request",
		zap.String("model", c.model),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, 200)),
	)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", ai.ErrProviderUnavailable, err)
	}

	output := collectText(resp)
	if output == "" {
		return "", fmt.Errorf("%w: empty response", ai.ErrProviderUnavailable)
	}

	c.logger.Debug("generate content response",
		zap.String("model", c.model),
		zap.String("response_preview", logger.TruncateForLog(output, 200)),
	)

	return output, nil
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("gemini client is not initialized")
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text must not be empty", ai.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrProviderUnavailable, err)
	}

	resp, err := c.client.Models.EmbedContent(ctx, c.embedModel, genai.Text(text), &genai.EmbedContentConfig{
		TaskType: c.taskType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embed content: %v", ai.ErrProviderUnavailable, err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ai.ErrProviderUnavailable)
	}

	return resp.Embeddings[0].Values, nil
}

// Model returns the completion model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}
