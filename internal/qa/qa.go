// Package qa answers questions about the indexed document.
package qa

import (
	"context"
	"errors"
	"fmt"

	"github.com/phuslu/log"

	"wikiqa/internal/domain"
	"wikiqa/internal/generation"
	"wikiqa/internal/index"
	"wikiqa/internal/logging"
	"wikiqa/internal/prompt"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 3

// Orchestrator runs retrieval, prompt construction and generation for one question.
// It only reads the index and may be shared across goroutines.
type Orchestrator struct {
	idx     *index.Index
	builder *prompt.Builder
	gen     domain.Generator
	topK    int
	logger  *log.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTopK sets how many chunks feed the prompt. Zero or less retrieves nothing.
func WithTopK(k int) Option {
	return func(o *Orchestrator) { o.topK = k }
}

// WithLogger attaches a logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator. idx may be nil when no document has been processed.
func New(idx *index.Index, builder *prompt.Builder, gen domain.Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{idx: idx, builder: builder, gen: gen, topK: DefaultTopK}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.OrNop(o.logger)
	return o
}

// Retrieve returns the hits used to answer question.
func (o *Orchestrator) Retrieve(ctx context.Context, question string) ([]domain.SearchResult, error) {
	if o.idx == nil {
		return nil, domain.ErrEmptyIndex
	}
	return o.idx.Query(ctx, question, o.topK)
}

// Answer always returns user-facing text. Missing context and empty retrieval
// produce fixed messages, failures an apology carrying the reason.
func (o *Orchestrator) Answer(ctx context.Context, question string) string {
	if o.idx == nil {
		return domain.NoContextAnswer
	}
	hits, err := o.idx.Query(ctx, question, o.topK)
	if errors.Is(err, domain.ErrEmptyIndex) {
		return domain.NoContextAnswer
	}
	if err != nil {
		o.logger.Error().Err(err).Str("question", question).Msg("retrieval failed")
		return apology(err)
	}
	if len(hits) == 0 {
		return domain.NoHitsAnswer
	}

	chunks := make([]domain.Chunk, len(hits))
	for i, h := range hits {
		chunks[i] = h.Chunk
	}
	p := o.builder.Build(question, chunks)
	inputTokens := o.builder.CountTokens(p)
	budget := generation.AnswerBudget(inputTokens)

	answer, err := o.gen.Generate(ctx, p, domain.GenerateOptions{MaxTokens: budget})
	if err != nil {
		return apology(err)
	}
	o.logger.Info().
		Str("question", question).
		Int("hits", len(hits)).
		Str("top_section", hits[0].Chunk.Section).
		Int("input_tokens", inputTokens).
		Int("max_output_tokens", budget).
		Msg("question answered")
	return answer
}

func apology(err error) string {
	return fmt.Sprintf("Sorry, I couldn't answer that: %v", err)
}
