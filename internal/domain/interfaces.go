package domain

import (
	"context"
	"time"
)

// DefaultSection tags content that appears before the first heading.
const DefaultSection = "Introduction"

// Fixed answers returned by the question answering pipeline.
const (
	NoContextAnswer  = "No retriever context available."
	NoHitsAnswer     = "No relevant context found."
	NotEnoughContent = "Not enough content to summarize."
)

// Chunk is a section-tagged block of document text, the unit of retrieval and summarization.
type Chunk struct {
	Section string `json:"section"`
	Text    string `json:"text"`
}

// Document represents a single scraped article.
type Document struct {
	Title  string  `json:"title"`
	URL    string  `json:"url"`
	Chunks []Chunk `json:"chunks"`
}

// SearchResult represents a matching chunk with a relevance score.
// Index is the position of the chunk in the indexed document.
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// ChatTurn is one question/answer exchange of a session.
type ChatTurn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// Scraper fetches a source URL and turns it into a chunked document.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Document, error)
}

// Summarizer produces a whole-document digest from its chunks.
type Summarizer interface {
	Summarize(ctx context.Context, chunks []Chunk) string
}

// Generator produces text for a prompt within an output token budget.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// GenerateOptions controls a single generation call.
// MinTokens is advisory: none of the backends can force a minimum length, so
// shorter output is accepted and only logged.
type GenerateOptions struct {
	MaxTokens   int
	MinTokens   int
	Temperature float64
	Sample      bool
}
