// Package extractive is an offline generation backend that answers by selecting
// sentences from the prompt instead of calling a model.
package extractive

import (
	"context"
	"strings"

	"wikiqa/internal/domain"
	"wikiqa/internal/prompt"
	"wikiqa/internal/summarizer"
)

// Backend picks sentences by word frequency for summaries and by question
// overlap for answers. Output length is measured in words.
type Backend struct {
	freq      *summarizer.FrequencySummarizer
	stopwords map[string]struct{}
}

// New creates the extractive backend.
func New() *Backend {
	return &Backend{
		freq:      summarizer.NewFrequencySummarizer(),
		stopwords: summarizer.Stopwords(),
	}
}

func (b *Backend) Name() string { return "extractive" }

func (b *Backend) Generate(ctx context.Context, p string, opts domain.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	maxWords := opts.MaxTokens
	if maxWords <= 0 {
		maxWords = 100
	}
	if body, ok := prompt.IsSummaryPrompt(p); ok {
		return b.freq.SummarizeWords(body, maxWords), nil
	}
	if passage, question, ok := prompt.SplitQA(p); ok {
		return b.answer(passage, question, maxWords), nil
	}
	return b.freq.SummarizeWords(p, maxWords), nil
}

// answer returns the context sentence sharing the most content words with the question.
// Earlier sentences win ties, which favours the most relevant retrieved chunk.
func (b *Backend) answer(passage, question string, maxWords int) string {
	sentences := summarizer.Sentences(passage)
	if len(sentences) == 0 {
		return ""
	}
	qTokens := b.tokenSet(question)
	best, bestScore := 0, -1
	for i, s := range sentences {
		if score := overlap(qTokens, b.tokenSet(s)); score > bestScore {
			best, bestScore = i, score
		}
	}
	fields := strings.Fields(sentences[best])
	return strings.Join(fields[:min(maxWords, len(fields))], " ")
}

func (b *Backend) tokenSet(s string) map[string]struct{} {
	words := summarizer.Words(s)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, stop := b.stopwords[w]; stop {
			continue
		}
		m[stem(w)] = struct{}{}
	}
	return m
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}

// stem folds simple plural and third person forms so "use" matches "uses".
func stem(w string) string {
	w = strings.TrimSuffix(w, "'s")
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return strings.TrimSuffix(w, "s")
	}
	return w
}
