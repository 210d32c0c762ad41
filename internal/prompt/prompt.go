// Package prompt renders generation prompts and keeps them inside the model's input budget.
package prompt

import (
	"strings"

	"wikiqa/internal/domain"
	"wikiqa/internal/tokenizer"
)

// DefaultMaxInputTokens is the input budget of the generation model.
const DefaultMaxInputTokens = 480

const (
	qaHeader      = "Answer the question based on the text below:\n\n"
	qaQuestion    = "\n\nQuestion: "
	qaAnswer      = "\nAnswer:"
	summaryPrefix = "summarize: "
)

// Builder assembles prompts using the generation backend's tokenizer.
type Builder struct {
	tok       tokenizer.Tokenizer
	maxTokens int
}

// Option configures a Builder.
type Option func(*Builder)

// WithMaxInputTokens overrides the input token budget. Values <= 0 are ignored.
func WithMaxInputTokens(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.maxTokens = n
		}
	}
}

// NewBuilder creates a prompt builder.
func NewBuilder(tok tokenizer.Tokenizer, opts ...Option) *Builder {
	b := &Builder{tok: tok, maxTokens: DefaultMaxInputTokens}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// MaxInputTokens returns the configured budget.
func (b *Builder) MaxInputTokens() int { return b.maxTokens }

// Build renders the question answering prompt over chunks in retrieval order and
// truncates it to the input budget.
func (b *Builder) Build(question string, chunks []domain.Chunk) string {
	return b.Truncate(Render(question, chunks))
}

// Render fills the question answering template without truncation.
func Render(question string, chunks []domain.Chunk) string {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	return qaHeader + strings.Join(texts, "\n") + qaQuestion + question + qaAnswer
}

// Truncate keeps the first MaxInputTokens tokens of text. Text within budget is
// returned unchanged. The cut is not sentence aware and may split a word.
func (b *Builder) Truncate(text string) string {
	ids := b.tok.Encode(text)
	if len(ids) <= b.maxTokens {
		return text
	}
	return b.tok.Decode(ids[:b.maxTokens])
}

// TruncateTo is Truncate with an explicit budget.
func (b *Builder) TruncateTo(text string, maxTokens int) string {
	ids := b.tok.Encode(text)
	if maxTokens < 0 || len(ids) <= maxTokens {
		return text
	}
	return b.tok.Decode(ids[:maxTokens])
}

// CountTokens returns the token count of text.
func (b *Builder) CountTokens(text string) int {
	return tokenizer.Count(b.tok, text)
}

// SummaryPrompt renders the summarization instruction for text.
func SummaryPrompt(text string) string {
	return summaryPrefix + text
}

// IsSummaryPrompt reports whether p was produced by SummaryPrompt and returns its body.
func IsSummaryPrompt(p string) (string, bool) {
	return strings.CutPrefix(p, summaryPrefix)
}

// SplitQA recovers the context and question from a rendered question answering prompt.
// It tolerates prompts cut by truncation; a missing question yields "".
func SplitQA(p string) (context, question string, ok bool) {
	body, found := strings.CutPrefix(p, qaHeader)
	if !found {
		return "", "", false
	}
	i := strings.LastIndex(body, qaQuestion)
	if i < 0 {
		return strings.TrimSpace(body), "", true
	}
	context = body[:i]
	question = strings.TrimSuffix(body[i+len(qaQuestion):], qaAnswer)
	return strings.TrimSpace(context), strings.TrimSpace(question), true
}
