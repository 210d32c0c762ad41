// Package anthropic generates text with Claude models through the Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"wikiqa/internal/domain"
)

const (
	DefaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 1024
)

// Config configures the Anthropic backend. BaseURL is optional.
type Config struct {
	APIKeyEnv string
	Model     string
	BaseURL   string
}

// Backend sends each prompt as one user message.
type Backend struct {
	client anthropic.Client
	model  string
}

// New creates an Anthropic backend. The API key is read from cfg.APIKeyEnv.
func New(cfg Config) (*Backend, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "ANTHROPIC_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Backend{client: anthropic.NewClient(opts...), model: cfg.Model}, nil
}

func (b *Backend) Name() string { return "anthropic:" + b.model }

func (b *Backend) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		MaxTokens:   int64(maxTokens),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(opts.Temperature),
	}
	resp, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", errors.New("no response generated from claude API")
	}
	return out.String(), nil
}
