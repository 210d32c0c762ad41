package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client is an OpenAI-compatible embeddings client implementing the Embedder interface.
// Any server exposing /embeddings (OpenAI, Ollama, vLLM) can be targeted through BaseURL.
type Client struct {
	client    oai.Client
	model     string
	timeout   time.Duration
	mu        sync.Mutex
	dimension int
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1/"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		client: oai.NewClient(
			option.WithAPIKey(key),
			option.WithBaseURL(cfg.BaseURL),
			option.WithMaxRetries(0),
		),
		model:   cfg.Model,
		timeout: t,
	}, nil
}

func (c *Client) Name() string { return "openai" }

// Prepare is not required for remote embedding; the dimension is learned on first embed.
func (c *Client) Prepare(context.Context, []string) error { return nil }

func (c *Client) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimension
}

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Embeddings.New(ctx, oai.EmbeddingNewParams{
		Input: oai.EmbeddingNewParamsInputUnion{OfString: oai.String(text)},
		Model: oai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("no embedding returned")
	}
	v := resp.Data[0].Embedding
	c.mu.Lock()
	if c.dimension == 0 {
		c.dimension = len(v)
	}
	c.mu.Unlock()
	return v, nil
}
