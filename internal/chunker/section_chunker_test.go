package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikiqa/internal/domain"
)

func h(text string) Block { return Block{Kind: Heading, Text: text} }
func p(text string) Block { return Block{Kind: Paragraph, Text: text} }

func TestSectionChunker_Chunk(t *testing.T) {
	c := NewSectionChunker()

	t.Run("introduction default", func(t *testing.T) {
		chunks := c.Chunk([]Block{p("Naruto is a ninja."), p("He lives in Konoha.")})
		require.Len(t, chunks, 1)
		assert.Equal(t, domain.Chunk{Section: "Introduction", Text: "Naruto is a ninja. He lives in Konoha."}, chunks[0])
	})

	t.Run("headings split sections", func(t *testing.T) {
		chunks := c.Chunk([]Block{
			p("Intro text."),
			h("Abilities"),
			p("He uses shadow clones."),
			h("Background"),
			p("Born in Konoha."),
			p("Raised alone."),
		})
		require.Len(t, chunks, 3)
		assert.Equal(t, "Introduction", chunks[0].Section)
		assert.Equal(t, "Abilities", chunks[1].Section)
		assert.Equal(t, "Background", chunks[2].Section)
		assert.Equal(t, "Born in Konoha. Raised alone.", chunks[2].Text)
	})

	t.Run("empty sections are skipped", func(t *testing.T) {
		chunks := c.Chunk([]Block{h("Empty"), h("Filled"), p("content")})
		require.Len(t, chunks, 1)
		assert.Equal(t, "Filled", chunks[0].Section)
	})

	t.Run("empty paragraphs dropped", func(t *testing.T) {
		chunks := c.Chunk([]Block{p(""), p("   "), h("A"), p(""), p("x")})
		require.Len(t, chunks, 1)
		assert.Equal(t, domain.Chunk{Section: "A", Text: "x"}, chunks[0])
	})

	t.Run("no input", func(t *testing.T) {
		assert.Empty(t, c.Chunk(nil))
	})
}

func TestSectionChunker_ConcatenationPreserved(t *testing.T) {
	blocks := []Block{p("one"), h("S1"), p(""), p("two"), p("three"), h("S2"), h("S3"), p("four")}
	chunks := NewSectionChunker().Chunk(blocks)

	var want []string
	for _, b := range blocks {
		if b.Kind == Paragraph && strings.TrimSpace(b.Text) != "" {
			want = append(want, b.Text)
		}
	}
	var got []string
	for _, ch := range chunks {
		got = append(got, ch.Text)
	}
	assert.Equal(t, strings.Join(want, " "), strings.Join(got, " "))
}

func TestSectionChunker_Idempotent(t *testing.T) {
	c := NewSectionChunker()
	first := c.Chunk([]Block{p("a"), h("B"), p("b1"), p("b2"), h("C"), p("c")})
	second := c.Chunk(Flatten(first))
	assert.Equal(t, first, second)
}

func TestSectionChunker_Normalizer(t *testing.T) {
	c := NewSectionChunker(WithSectionNormalizer(func(s string) string {
		return strings.ToUpper(strings.ReplaceAll(s, "[]", ""))
	}))
	chunks := c.Chunk([]Block{h("abilities[]"), p("x"), h("[]"), p("y")})
	require.Len(t, chunks, 2)
	assert.Equal(t, "ABILITIES", chunks[0].Section)
	// a heading that normalizes to nothing keeps its raw text
	assert.Equal(t, "[]", chunks[1].Section)
}
