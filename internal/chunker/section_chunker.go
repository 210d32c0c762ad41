package chunker

import (
	"strings"

	"wikiqa/internal/domain"
)

// BlockKind distinguishes headings from paragraph text.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
)

// Block is one tagged unit of document markup in reading order.
type Block struct {
	Kind BlockKind
	Text string
}

// SectionChunker groups paragraphs under the nearest preceding heading.
type SectionChunker struct {
	normalizeSection func(string) string
}

// Option configures a SectionChunker.
type Option func(*SectionChunker)

// WithSectionNormalizer cleans heading text before it is used as a section title.
func WithSectionNormalizer(fn func(string) string) Option {
	return func(c *SectionChunker) {
		c.normalizeSection = fn
	}
}

func NewSectionChunker(opts ...Option) *SectionChunker {
	c := &SectionChunker{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk walks the blocks once and emits one chunk per non-empty section run.
func (c *SectionChunker) Chunk(blocks []Block) []domain.Chunk {
	var chunks []domain.Chunk
	section := domain.DefaultSection
	var paragraphs []string

	flush := func() {
		if len(paragraphs) == 0 {
			return
		}
		chunks = append(chunks, domain.Chunk{
			Section: section,
			Text:    strings.Join(paragraphs, " "),
		})
		paragraphs = nil
	}

	for _, b := range blocks {
		switch b.Kind {
		case Heading:
			flush()
			section = c.sectionTitle(b.Text)
		case Paragraph:
			text := strings.TrimSpace(b.Text)
			if text == "" {
				continue
			}
			paragraphs = append(paragraphs, text)
		}
	}
	flush()
	return chunks
}

func (c *SectionChunker) sectionTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if c.normalizeSection == nil {
		return title
	}
	if cleaned := c.normalizeSection(title); cleaned != "" {
		return cleaned
	}
	return title
}

// Flatten renders chunks back into heading and paragraph blocks.
func Flatten(chunks []domain.Chunk) []Block {
	blocks := make([]Block, 0, len(chunks)*2)
	for _, ch := range chunks {
		blocks = append(blocks, Block{Kind: Heading, Text: ch.Section}, Block{Kind: Paragraph, Text: ch.Text})
	}
	return blocks
}
