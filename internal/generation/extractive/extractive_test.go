package extractive

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikiqa/internal/domain"
	"wikiqa/internal/prompt"
)

func TestGenerate_Answer(t *testing.T) {
	b := New()
	p := prompt.Render("What does Naruto use?", []domain.Chunk{
		{Text: "He uses shadow clones."},
		{Text: "Naruto is a ninja."},
	})
	out, err := b.Generate(context.Background(), p, domain.GenerateOptions{MaxTokens: 50})
	require.NoError(t, err)
	assert.Contains(t, out, "shadow")
}

func TestGenerate_AnswerRespectsBudget(t *testing.T) {
	b := New()
	p := prompt.Render("Who?", []domain.Chunk{{Text: "Naruto Uzumaki is a shinobi of Konohagakure and the Seventh Hokage."}})
	out, err := b.Generate(context.Background(), p, domain.GenerateOptions{MaxTokens: 3})
	require.NoError(t, err)
	assert.Equal(t, "Naruto Uzumaki is", out)
}

func TestGenerate_Summary(t *testing.T) {
	b := New()
	text := "Naruto is a ninja. Naruto loves ramen. The weather was fine."
	out, err := b.Generate(context.Background(), prompt.SummaryPrompt(text), domain.GenerateOptions{MaxTokens: 8})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.LessOrEqual(t, len(strings.Fields(out)), 8)
	assert.NotContains(t, out, "summarize:")
}

func TestGenerate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Generate(ctx, "anything", domain.GenerateOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "use", stem("uses"))
	assert.Equal(t, "clone", stem("clones"))
	assert.Equal(t, "boss", stem("boss"))
	assert.Equal(t, "naruto", stem("naruto's"))
}
