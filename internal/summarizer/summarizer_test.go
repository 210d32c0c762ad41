package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikiqa/internal/domain"
	"wikiqa/internal/prompt"
	"wikiqa/internal/tokenizer"
)

// echoGenerator returns the first sentence of the summarized text.
type echoGenerator struct {
	calls   []domain.GenerateOptions
	prompts []string
	failOn  string
}

func (g *echoGenerator) Generate(_ context.Context, p string, opts domain.GenerateOptions) (string, error) {
	g.calls = append(g.calls, opts)
	g.prompts = append(g.prompts, p)
	if g.failOn != "" && strings.Contains(p, g.failOn) {
		return "", &domain.GenerationError{Backend: "echo", Err: errors.New("boom")}
	}
	body, _ := prompt.IsSummaryPrompt(p)
	return Sentences(body)[0], nil
}

type axisEmbedder struct{}

func (axisEmbedder) Name() string                            { return "axis" }
func (axisEmbedder) Prepare(context.Context, []string) error { return nil }
func (axisEmbedder) Dimension() int                          { return 2 }

func (axisEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if strings.Contains(text, "ramen") {
		return []float64{0, 1}, nil
	}
	return []float64{1, 0}, nil
}

func builder() *prompt.Builder { return prompt.NewBuilder(tokenizer.NewSimple()) }

func chunks(texts ...string) []domain.Chunk {
	out := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		out[i] = domain.Chunk{Section: "S", Text: t}
	}
	return out
}

func TestSequential_Windows(t *testing.T) {
	gen := &echoGenerator{}
	s := NewSequential(gen, builder())

	got := s.Summarize(context.Background(), chunks(
		"Naruto is a ninja.", "He likes ramen.", "He trains daily.",
		"Sasuke is his rival.", "They fight often.",
	))

	assert.Equal(t, "Naruto is a ninja.\nSasuke is his rival.", got)
	require.Len(t, gen.calls, 2)
	assert.True(t, strings.HasPrefix(gen.prompts[0], "summarize: Naruto is a ninja. He likes ramen."))
	for _, c := range gen.calls {
		assert.LessOrEqual(t, c.MaxTokens, 100)
		assert.LessOrEqual(t, c.MinTokens, c.MaxTokens)
	}
}

func TestSequential_SkipsShortAndFailedWindows(t *testing.T) {
	gen := &echoGenerator{failOn: "Sasuke"}
	s := NewSequential(gen, builder(), WithWindowSize(1))

	got := s.Summarize(context.Background(), chunks("Hi.", "Naruto is a ninja.", "Sasuke is his rival."))
	assert.Equal(t, "Naruto is a ninja.", got)
	assert.Len(t, gen.calls, 2)
}

func TestSequential_NotEnoughContent(t *testing.T) {
	s := NewSequential(&echoGenerator{}, builder())
	assert.Equal(t, domain.NotEnoughContent, s.Summarize(context.Background(), nil))
	assert.Equal(t, domain.NotEnoughContent, s.Summarize(context.Background(), chunks("ok")))

	failing := NewSequential(&echoGenerator{failOn: "summarize"}, builder())
	assert.Equal(t, domain.NotEnoughContent, failing.Summarize(context.Background(), chunks("Naruto is a ninja of Konoha.")))
}

func TestClustered_GroupsAndLabels(t *testing.T) {
	long := func(s string) string { return s + strings.Repeat(" More detail follows here.", 3) }
	in := chunks(
		long("Naruto is a ninja."),
		long("Ichiraku serves ramen."),
		long("Naruto trains as a ninja."),
		"too short",
	)
	gen := &echoGenerator{}
	c := NewClustered(gen, builder(), axisEmbedder{}, ClusterConfig{NumClusters: 2}, nil)

	got := c.Summarize(context.Background(), in)
	parts := strings.Split(got, "\n\n")
	require.Len(t, parts, 2)
	assert.Contains(t, got, "Naruto is a ninja.")
	assert.Contains(t, got, "Ichiraku serves ramen.")
	for _, p := range parts {
		assert.Regexp(t, `^Summary [12]:\n`, p)
	}
	for _, p := range gen.prompts {
		if strings.Contains(p, "Naruto is a ninja.") {
			assert.Contains(t, p, "Naruto trains as a ninja.")
		}
		assert.NotContains(t, p, "too short")
	}
}

func TestClustered_CapsText(t *testing.T) {
	gen := &echoGenerator{}
	c := NewClustered(gen, builder(), axisEmbedder{}, ClusterConfig{NumClusters: 1, MaxChars: 60}, nil)
	c.Summarize(context.Background(), chunks(strings.Repeat("Naruto is a ninja. ", 20)))
	require.Len(t, gen.prompts, 1)
	body, _ := prompt.IsSummaryPrompt(gen.prompts[0])
	assert.LessOrEqual(t, len([]rune(body)), 60)
}

func TestClustered_NotEnoughContent(t *testing.T) {
	c := NewClustered(&echoGenerator{}, builder(), axisEmbedder{}, ClusterConfig{}, nil)
	assert.Equal(t, domain.NotEnoughContent, c.Summarize(context.Background(), nil))
	assert.Equal(t, domain.NotEnoughContent, c.Summarize(context.Background(), chunks("short one", "short two")))
}

func TestFrequencySummarizer(t *testing.T) {
	f := NewFrequencySummarizer()
	text := "Naruto is a ninja. Naruto loves ramen. The weather was fine. Naruto became Hokage"

	got := f.SummarizeWords(text, 8)
	assert.NotContains(t, got, "weather")
	assert.True(t, strings.HasPrefix(got, "Naruto"))

	short := f.SummarizeWords(text, 4)
	assert.LessOrEqual(t, len(strings.Fields(short)), 4)
	assert.NotEmpty(t, short)

	assert.Equal(t, "", f.SummarizeWords("", 10))
}

func TestSentences(t *testing.T) {
	assert.Equal(t, []string{"One.", "Two!", "three"}, Sentences("One. Two! three"))
	assert.Empty(t, Sentences("  \n "))
}
