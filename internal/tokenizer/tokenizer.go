package tokenizer

import (
	"regexp"
	"strings"
	"sync"
)

// Tokenizer converts text to model token ids and back.
// Prompt truncation and output budgets must use the generation backend's tokenizer.
type Tokenizer interface {
	Name() string
	Encode(text string) []int
	Decode(ids []int) string
}

// Count returns the number of tokens in text.
func Count(t Tokenizer, text string) int {
	return len(t.Encode(text))
}

// Simple splits text into words, numbers and single punctuation marks.
// Ids are assigned from a vocabulary that grows as new tokens are seen.
type Simple struct {
	mu      sync.Mutex
	pattern *regexp.Regexp
	ids     map[string]int
	tokens  []string
}

// NewSimple creates an empty word-level tokenizer.
func NewSimple() *Simple {
	return &Simple{
		pattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+|[^\s\p{L}\p{N}]`),
		ids:     make(map[string]int),
	}
}

func (s *Simple) Name() string { return "simple" }

func (s *Simple) Encode(text string) []int {
	raw := s.pattern.FindAllString(text, -1)
	if len(raw) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(raw))
	for i, tok := range raw {
		id, ok := s.ids[tok]
		if !ok {
			id = len(s.tokens)
			s.ids[tok] = id
			s.tokens = append(s.tokens, tok)
		}
		out[i] = id
	}
	return out
}

func (s *Simple) Decode(ids []int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	prevOpen := false
	for i, id := range ids {
		if id < 0 || id >= len(s.tokens) {
			continue
		}
		tok := s.tokens[id]
		if i > 0 && !prevOpen && !attachesLeft(tok) {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
		prevOpen = tok == "(" || tok == "["
	}
	return b.String()
}

func attachesLeft(tok string) bool {
	switch tok {
	case ".", ",", "!", "?", ";", ":", ")", "]", "%":
		return true
	}
	return false
}
