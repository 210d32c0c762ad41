package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"wikiqa/internal/domain"
	"wikiqa/internal/prompt"
	"wikiqa/internal/textnorm"
	"wikiqa/internal/tokenizer"
)

// scriptedGenerator answers question prompts with canned Q: lines and answer
// prompts with an A: line.
type scriptedGenerator struct {
	questions string
	fallback  string
	answer    string
	failAll   bool
	calls     []domain.GenerateOptions
	prompts   []string
}

func (g *scriptedGenerator) Generate(_ context.Context, p string, opts domain.GenerateOptions) (string, error) {
	g.calls = append(g.calls, opts)
	g.prompts = append(g.prompts, p)
	if g.failAll {
		return "", &domain.GenerationError{Backend: "scripted", Err: errors.New("down")}
	}
	switch {
	case strings.Contains(p, "simple questions"):
		return g.fallback, nil
	case strings.Contains(p, "generate exactly"):
		return g.questions, nil
	default:
		return g.answer, nil
	}
}

var hinataChunk = domain.Chunk{
	Section: "personality[]",
	Text:    "Hinata Hyūga (日向ヒナタ, Hyūga Hinata) is a kunoichi née Hyga. She is shyAnd kind.",
}

var hygaFix = []textnorm.Replacement{{Pattern: `née\s*Hyga`, With: "née Hyūga"}}

func newExporter(t *testing.T, gen *scriptedGenerator, cfg Config) *Exporter {
	t.Helper()
	cfg.Replacements = hygaFix
	e, err := NewExporter(gen, prompt.NewBuilder(tokenizer.NewSimple()), cfg, nil)
	require.NoError(t, err)
	return e
}

func TestRows(t *testing.T) {
	gen := &scriptedGenerator{
		questions: "Sure!\nQ: Who is Hinata?\nq: who is hinata?\nQ: What is she like?",
		answer:    "A: She is shy.",
	}
	rows, err := newExporter(t, gen, Config{}).Rows(context.Background(), []domain.Chunk{hinataChunk})
	require.NoError(t, err)

	require.Len(t, rows, 2, "case-insensitive duplicate question dropped")
	assert.Equal(t, Row{
		Question: "Who is Hinata?",
		Answer:   "She is shy.",
		Section:  "Personality",
		Context:  "Hinata Hyūga is a kunoichi née Hyūga. She is shyAnd kind.",
	}, rows[0])
	assert.Equal(t, "What is she like?", rows[1].Question)

	for _, c := range gen.calls {
		assert.True(t, c.Sample)
		assert.InDelta(t, 0.7, c.Temperature, 1e-9)
	}
	assert.Contains(t, gen.prompts[0], "generate exactly 3 questions")
	assert.Contains(t, gen.prompts[0], "She is shy And kind.", "model input has spacing fixed")
}

func TestRows_DedupeAcrossChunks(t *testing.T) {
	gen := &scriptedGenerator{questions: "Q: Who is Hinata?", answer: "A: A kunoichi."}
	rows, err := newExporter(t, gen, Config{}).Rows(context.Background(), []domain.Chunk{hinataChunk, hinataChunk})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRows_Fallback(t *testing.T) {
	gen := &scriptedGenerator{questions: "I cannot do that.", fallback: "Q: Is Hinata shy?", answer: "Yes, very."}
	rows, err := newExporter(t, gen, Config{}).Rows(context.Background(), []domain.Chunk{hinataChunk})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Is Hinata shy?", rows[0].Question)
	assert.Equal(t, "Yes, very.", rows[0].Answer)
	assert.Contains(t, gen.prompts[1], "Generate 1 simple questions")
}

func TestRows_NoQuestionsOrFailures(t *testing.T) {
	rows, err := newExporter(t, &scriptedGenerator{questions: "nothing", fallback: "nothing"}, Config{}).
		Rows(context.Background(), []domain.Chunk{hinataChunk})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = newExporter(t, &scriptedGenerator{failAll: true}, Config{}).
		Rows(context.Background(), []domain.Chunk{hinataChunk})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRows_UnknownSection(t *testing.T) {
	gen := &scriptedGenerator{questions: "Q: Who?", answer: "A: Hinata."}
	rows, err := newExporter(t, gen, Config{}).Rows(context.Background(), []domain.Chunk{{Section: "[]", Text: "Hinata."}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Unknown", rows[0].Section)
}

func TestRows_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newExporter(t, &scriptedGenerator{questions: "Q: Who?"}, Config{RequestsPerSecond: 1}).
		Rows(ctx, []domain.Chunk{hinataChunk})
	assert.Error(t, err)
}

func TestInputTruncation(t *testing.T) {
	gen := &scriptedGenerator{questions: "Q: Who?", answer: "A: Someone."}
	long := domain.Chunk{Section: "Long", Text: strings.Repeat("word ", 1000)}
	_, err := newExporter(t, gen, Config{}).Rows(context.Background(), []domain.Chunk{long})
	require.NoError(t, err)

	tok := tokenizer.NewSimple()
	qBody := gen.prompts[0][strings.Index(gen.prompts[0], "TEXT:\n")+len("TEXT:\n"):]
	assert.Equal(t, 380, tokenizer.Count(tok, qBody))
	aPrompt := gen.prompts[1]
	aBody := aPrompt[strings.Index(aPrompt, "TEXT:\n")+len("TEXT:\n") : strings.Index(aPrompt, "\n\nQ:")]
	assert.Equal(t, 330, tokenizer.Count(tok, aBody))
}

func TestExport_AppendsFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{CSVPath: filepath.Join(dir, "out", "qa.csv"), XLSXPath: filepath.Join(dir, "out", "qa.xlsx")}
	gen := &scriptedGenerator{questions: "Q: Who is Hinata?", answer: "A: A kunoichi."}

	n, err := newExporter(t, gen, cfg).Export(context.Background(), []domain.Chunk{hinataChunk})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	// a second run appends below the first
	n, err = newExporter(t, gen, cfg).Export(context.Background(), []domain.Chunk{hinataChunk})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, err := os.Open(cfg.CSVPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, "Who is Hinata?", records[2][0])

	wb, err := excelize.OpenFile(cfg.XLSXPath)
	require.NoError(t, err)
	defer wb.Close()
	xrows, err := wb.GetRows(wb.GetSheetList()[0])
	require.NoError(t, err)
	require.Len(t, xrows, 3)
	assert.Equal(t, Header, xrows[0])
	assert.Equal(t, "A kunoichi.", xrows[1][1])
}

func TestParse(t *testing.T) {
	assert.Equal(t, []string{"One?", "Two?"}, ParseQuestions("  Q: One?\nnoise\nq:Two?\nQ:   "))
	assert.Equal(t, "Shadow clones.", ParseAnswer("Sure. A: Shadow clones."))
	assert.Equal(t, "multi\nline", ParseAnswer("a: multi\nline"))
	assert.Equal(t, "No prefix", ParseAnswer(" No prefix "))
}
