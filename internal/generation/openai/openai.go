// Package openai generates text through an OpenAI-compatible chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"wikiqa/internal/domain"
)

const DefaultModel = "gpt-4o-mini"

// Config configures the chat completions backend.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
}

// Backend sends each prompt as a single user message.
type Backend struct {
	client oai.Client
	model  string
}

// New creates a chat completions backend. The API key is read from cfg.APIKeyEnv.
func New(cfg Config) (*Backend, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1/"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Backend{
		client: oai.NewClient(
			option.WithAPIKey(key),
			option.WithBaseURL(cfg.BaseURL),
			option.WithMaxRetries(0),
		),
		model: cfg.Model,
	}, nil
}

func (b *Backend) Name() string { return "openai:" + b.model }

func (b *Backend) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	params := oai.ChatCompletionNewParams{
		Model:       oai.ChatModel(b.model),
		Messages:    []oai.ChatCompletionMessageParamUnion{oai.UserMessage(prompt)},
		Temperature: oai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = oai.Int(int64(opts.MaxTokens))
	}
	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
