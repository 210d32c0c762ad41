// Package gemini embeds text with Google's Gemini embedding models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-embedding-001"

// Config configures the Gemini embedder.
type Config struct {
	APIKeyEnv  string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// Embedder calls Models.EmbedContent for each text.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int32
	timeout    time.Duration
	mu         sync.Mutex
	dimension  int
}

// New creates a Gemini embedder. The API key is read from cfg.APIKeyEnv.
func New(ctx context.Context, cfg Config) (*Embedder, error) {
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
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	return &Embedder{
		client:     client,
		model:      cfg.Model,
		dimensions: int32(cfg.Dimensions),
		timeout:    cfg.Timeout,
	}, nil
}

func (e *Embedder) Name() string { return "gemini" }

func (e *Embedder) Prepare(context.Context, []string) error { return nil }

func (e *Embedder) Dimension() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimension
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, errors.New("text cannot be empty for embedding generation")
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var cfg *genai.EmbedContentConfig
	if e.dimensions > 0 {
		dims := e.dimensions
		cfg = &genai.EmbedContentConfig{OutputDimensionality: &dims}
	}
	result, err := e.client.Models.EmbedContent(ctx, e.model, []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, cfg)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, errors.New("no embedding returned from API")
	}
	values := result.Embeddings[0].Values
	vec := make([]float64, len(values))
	for i, v := range values {
		vec[i] = float64(v)
	}
	e.mu.Lock()
	if e.dimension == 0 {
		e.dimension = len(vec)
	}
	e.mu.Unlock()
	return vec, nil
}
