// Package service holds the state of one interactive question answering session.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"wikiqa/internal/domain"
	"wikiqa/internal/embedding"
	"wikiqa/internal/index"
	"wikiqa/internal/logging"
	"wikiqa/internal/prompt"
	"wikiqa/internal/qa"
)

// Deps are the collaborators a session drives.
type Deps struct {
	Scraper    domain.Scraper
	Embedder   embedding.Embedder
	Summarizer domain.Summarizer
	Builder    *prompt.Builder
	Generator  domain.Generator
	TopK       int
	Logger     *log.Logger
}

// Session owns the document, index, summary and chat log of one user.
// Reset drops all of them.
type Session struct {
	deps Deps
	id   string
	now  func() time.Time

	mu      sync.RWMutex
	doc     *domain.Document
	summary string
	idx     *index.Index
	history []domain.ChatTurn
	// epoch changes whenever the document is replaced or dropped, so answers
	// to questions about an older document are not logged.
	epoch int
}

// NewSession creates an empty session.
func NewSession(deps Deps) *Session {
	deps.Logger = logging.OrNop(deps.Logger)
	if deps.TopK == 0 {
		deps.TopK = qa.DefaultTopK
	}
	return &Session{deps: deps, id: uuid.NewString(), now: time.Now}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Process scrapes url, summarizes it and builds the index. On failure the
// previous document is kept and the error names the failing stage.
func (s *Session) Process(ctx context.Context, url string) (string, error) {
	logger := s.deps.Logger
	start := time.Now()

	doc, err := s.deps.Scraper.Scrape(ctx, url)
	if err != nil {
		return "", fmt.Errorf("scrape: %w", err)
	}
	summary := s.deps.Summarizer.Summarize(ctx, doc.Chunks)
	idx, err := index.Build(ctx, s.deps.Embedder, doc.Chunks, index.WithLogger(logger))
	if err != nil {
		return "", fmt.Errorf("build index: %w", err)
	}

	s.mu.Lock()
	old := s.idx
	s.doc = doc
	s.summary = summary
	s.idx = idx
	s.history = nil
	s.epoch++
	s.mu.Unlock()
	s.release(old)

	logger.Info().
		Str("session", s.id).
		Str("url", url).
		Str("title", doc.Title).
		Int("chunks", len(doc.Chunks)).
		Dur("duration", time.Since(start)).
		Msg("document processed")
	return summary, nil
}

// Ask answers question and records the turn.
func (s *Session) Ask(ctx context.Context, question string) string {
	s.mu.RLock()
	idx, epoch := s.idx, s.epoch
	s.mu.RUnlock()

	answer := s.orchestrator(idx, s.deps.TopK).Answer(ctx, question)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.deps.Logger.Debug().Str("session", s.id).Str("question", question).Msg("dropping answer for a replaced document")
		return answer
	}
	s.history = append(s.history, domain.ChatTurn{Question: question, Answer: answer, AskedAt: s.now()})
	return answer
}

// Search returns up to topK retrieval hits for query without generating an answer.
func (s *Session) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	idx := s.idx
	s.mu.RUnlock()
	return s.orchestrator(idx, topK).Retrieve(ctx, query)
}

// History returns the chat log, newest first.
func (s *Session) History() []domain.ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChatTurn, len(s.history))
	for i, turn := range s.history {
		out[len(s.history)-1-i] = turn
	}
	return out
}

// Document returns the processed document, or nil.
func (s *Session) Document() *domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Title returns the processed document's title.
func (s *Session) Title() string {
	if doc := s.Document(); doc != nil {
		return doc.Title
	}
	return ""
}

// Summary returns the document summary.
func (s *Session) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// Reset discards the document, index, summary and chat log.
func (s *Session) Reset() {
	s.mu.Lock()
	old := s.idx
	s.doc = nil
	s.summary = ""
	s.idx = nil
	s.history = nil
	s.epoch++
	s.mu.Unlock()
	s.release(old)
	s.deps.Logger.Info().Str("session", s.id).Msg("session reset")
}

func (s *Session) release(idx *index.Index) {
	if idx == nil {
		return
	}
	if err := idx.Release(); err != nil {
		s.deps.Logger.Warn().Err(err).Str("session", s.id).Msg("release index")
	}
}

func (s *Session) orchestrator(idx *index.Index, topK int) *qa.Orchestrator {
	return qa.New(idx, s.deps.Builder, s.deps.Generator, qa.WithTopK(topK), qa.WithLogger(s.deps.Logger))
}
