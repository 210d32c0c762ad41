// Package summarizer produces whole-document digests from section chunks.
package summarizer

import (
	"context"
	"strings"

	"github.com/phuslu/log"

	"wikiqa/internal/domain"
	"wikiqa/internal/generation"
	"wikiqa/internal/logging"
	"wikiqa/internal/prompt"
)

// Defaults for the sequential strategy.
const (
	DefaultWindowSize = 3
	minWindowChars    = 10
)

// Sequential summarizes fixed windows of consecutive chunks and joins the results in order.
type Sequential struct {
	gen     domain.Generator
	builder *prompt.Builder
	window  int
	logger  *log.Logger
}

var _ domain.Summarizer = (*Sequential)(nil)

// SequentialOption configures a Sequential summarizer.
type SequentialOption func(*Sequential)

// WithWindowSize sets how many chunks are summarized together.
func WithWindowSize(n int) SequentialOption {
	return func(s *Sequential) {
		if n > 0 {
			s.window = n
		}
	}
}

// WithSequentialLogger attaches a logger.
func WithSequentialLogger(l *log.Logger) SequentialOption {
	return func(s *Sequential) { s.logger = l }
}

// NewSequential creates a window summarizer. The builder's tokenizer and input
// budget bound every window.
func NewSequential(gen domain.Generator, builder *prompt.Builder, opts ...SequentialOption) *Sequential {
	s := &Sequential{gen: gen, builder: builder, window: DefaultWindowSize}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

// Summarize returns one summary line per window. Failed windows are logged and skipped.
func (s *Sequential) Summarize(ctx context.Context, chunks []domain.Chunk) string {
	var summaries []string
	for start := 0; start < len(chunks); start += s.window {
		end := min(start+s.window, len(chunks))
		texts := make([]string, 0, end-start)
		for _, ch := range chunks[start:end] {
			texts = append(texts, ch.Text)
		}
		text := strings.TrimSpace(strings.Join(texts, " "))
		if len(text) < minWindowChars {
			continue
		}

		text = s.builder.Truncate(text)
		budget := generation.WindowBudget(s.builder.CountTokens(text))
		out, err := s.gen.Generate(ctx, prompt.SummaryPrompt(text), domain.GenerateOptions{
			MaxTokens: budget.Max,
			MinTokens: budget.Min,
		})
		if err != nil {
			s.logger.Warn().Int("window_start", start).Err(err).Msg("skipping window")
			continue
		}
		summaries = append(summaries, out)
	}
	if len(summaries) == 0 {
		return domain.NotEnoughContent
	}
	return strings.Join(summaries, "\n")
}
