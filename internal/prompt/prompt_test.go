package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikiqa/internal/domain"
	"wikiqa/internal/tokenizer"
)

func TestBuild_Template(t *testing.T) {
	b := NewBuilder(tokenizer.NewSimple())
	got := b.Build("What does Naruto use?", []domain.Chunk{
		{Section: "Abilities", Text: "He uses shadow clones."},
		{Section: "Intro", Text: "Naruto is a ninja."},
	})
	want := "Answer the question based on the text below:\n\n" +
		"He uses shadow clones.\nNaruto is a ninja.\n\n" +
		"Question: What does Naruto use?\nAnswer:"
	assert.Equal(t, want, got)
}

func TestTruncate_NoopUnderBudget(t *testing.T) {
	b := NewBuilder(tokenizer.NewSimple())
	p := Render("Who?", []domain.Chunk{{Text: "Some  oddly   spaced (text) here."}})
	require.Less(t, b.CountTokens(p), DefaultMaxInputTokens)
	assert.Equal(t, p, b.Build("Who?", []domain.Chunk{{Text: "Some  oddly   spaced (text) here."}}))
}

func TestTruncate_WithinBudget(t *testing.T) {
	tok := tokenizer.NewSimple()
	b := NewBuilder(tok, WithMaxInputTokens(50))

	long := strings.Repeat("Hinata trained with Neji, every morning. ", 40)
	p := b.Build("Who trained?", []domain.Chunk{{Text: long}})

	assert.LessOrEqual(t, tokenizer.Count(tok, p), 50)
	assert.True(t, strings.HasPrefix(p, "Answer the question based on the text below:"))
	assert.NotContains(t, p, "Question:")
}

func TestTruncateTo(t *testing.T) {
	b := NewBuilder(tokenizer.NewSimple())
	assert.Equal(t, "one two", b.TruncateTo("one two three", 2))
	assert.Equal(t, "one two three", b.TruncateTo("one two three", 3))
}

func TestWithMaxInputTokens_IgnoresNonPositive(t *testing.T) {
	b := NewBuilder(tokenizer.NewSimple(), WithMaxInputTokens(0))
	assert.Equal(t, DefaultMaxInputTokens, b.MaxInputTokens())
}

func TestSplitQA(t *testing.T) {
	p := Render("What does Naruto use?", []domain.Chunk{{Text: "He uses shadow clones."}})
	ctx, q, ok := SplitQA(p)
	require.True(t, ok)
	assert.Equal(t, "He uses shadow clones.", ctx)
	assert.Equal(t, "What does Naruto use?", q)

	_, _, ok = SplitQA("summarize: text")
	assert.False(t, ok)

	ctx, q, ok = SplitQA("Answer the question based on the text below:\n\nHe uses shadow")
	require.True(t, ok)
	assert.Equal(t, "He uses shadow", ctx)
	assert.Empty(t, q)
}

func TestSummaryPrompt(t *testing.T) {
	body, ok := IsSummaryPrompt(SummaryPrompt("Naruto is a ninja."))
	assert.True(t, ok)
	assert.Equal(t, "Naruto is a ninja.", body)
}
