// Package gemini generates text with Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"

	"wikiqa/internal/domain"
)

const DefaultModel = "gemini-2.0-flash"

// Config configures the Gemini backend.
type Config struct {
	APIKeyEnv string
	Model     string
}

// Backend calls Models.GenerateContent with a single user turn.
type Backend struct {
	client *genai.Client
	model  string
}

// New creates a Gemini backend. The API key is read from cfg.APIKeyEnv.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "GEMINI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	return &Backend{client: client, model: cfg.Model}, nil
}

func (b *Backend) Name() string { return "gemini:" + b.model }

func (b *Backend) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, contentConfig(opts))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("no response generated from gemini")
	}
	return text, nil
}

func contentConfig(opts domain.GenerateOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	return cfg
}
