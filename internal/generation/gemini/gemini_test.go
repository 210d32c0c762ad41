package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikiqa/internal/domain"
)

func TestNew_MissingKey(t *testing.T) {
	t.Setenv("WIKIQA_TEST_EMPTY_KEY", "")
	_, err := New(context.Background(), Config{APIKeyEnv: "WIKIQA_TEST_EMPTY_KEY"})
	assert.ErrorContains(t, err, "WIKIQA_TEST_EMPTY_KEY")
}

func TestContentConfig(t *testing.T) {
	cfg := contentConfig(domain.GenerateOptions{MaxTokens: 120, Temperature: 0.7})
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.7, *cfg.Temperature, 1e-6)
	assert.EqualValues(t, 120, cfg.MaxOutputTokens)

	cfg = contentConfig(domain.GenerateOptions{})
	assert.Zero(t, cfg.MaxOutputTokens)
	assert.Zero(t, *cfg.Temperature)
}
