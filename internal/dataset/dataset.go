// Package dataset generates question/answer pairs from document chunks and
// appends them to CSV and XLSX files.
package dataset

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"wikiqa/internal/domain"
	"wikiqa/internal/generation"
	"wikiqa/internal/logging"
	"wikiqa/internal/prompt"
	"wikiqa/internal/textnorm"
)

// Defaults mirror the generation model's 480 token input window minus room
// for the instructions.
const (
	DefaultNumQuestions = 3
	DefaultMaxOutput    = 512
	questionInputTokens = prompt.DefaultMaxInputTokens - 100
	answerInputTokens   = prompt.DefaultMaxInputTokens - 150
	unknownSection      = "Unknown"
	questionPrefix      = "q:"
)

var answerRe = regexp.MustCompile(`(?is)A:\s*(.*)`)

// Row is one exported question/answer pair.
type Row struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Section  string `json:"section"`
	Context  string `json:"context"`
}

// Header is the column order of exported files.
var Header = []string{"question", "answer", "section", "context"}

func (r Row) values() []string {
	return []string{r.Question, r.Answer, r.Section, r.Context}
}

// Config tunes the exporter.
type Config struct {
	NumQuestions      int
	MaxOutputTokens   int
	RequestsPerSecond float64
	CSVPath           string
	XLSXPath          string
	Replacements      []textnorm.Replacement
}

// Exporter drives a sampling generator over chunks.
type Exporter struct {
	gen          domain.Generator
	builder      *prompt.Builder
	cfg          Config
	limiter      *rate.Limiter
	cleanSection textnorm.Pipeline
	cleanContext textnorm.Pipeline
	logger       *log.Logger
}

// NewExporter validates cfg and compiles the context replacements.
func NewExporter(gen domain.Generator, builder *prompt.Builder, cfg Config, logger *log.Logger) (*Exporter, error) {
	if cfg.NumQuestions <= 0 {
		cfg.NumQuestions = DefaultNumQuestions
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutput
	}
	contextClean, err := textnorm.ContextPipeline(cfg.Replacements)
	if err != nil {
		return nil, fmt.Errorf("context normalizer: %w", err)
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Exporter{
		gen:          gen,
		builder:      builder,
		cfg:          cfg,
		limiter:      rate.NewLimiter(limit, 1),
		cleanSection: textnorm.SectionPipeline(),
		cleanContext: contextClean,
		logger:       logging.OrNop(logger),
	}, nil
}

// Export generates rows for every chunk and appends each chunk's new rows to the
// configured files. It returns the number of rows written.
func (e *Exporter) Export(ctx context.Context, chunks []domain.Chunk) (int, error) {
	seen := make(map[string]struct{})
	written := 0
	for i, ch := range chunks {
		rows, err := e.chunkRows(ctx, ch, seen)
		if err != nil {
			return written, err
		}
		if len(rows) == 0 {
			e.logger.Info().Int("chunk", i).Str("section", ch.Section).Msg("no question/answer pairs for chunk")
			continue
		}
		if err := e.write(rows); err != nil {
			return written, err
		}
		written += len(rows)
		e.logger.Info().Int("chunk", i).Int("rows", len(rows)).Msg("saved question/answer pairs")
	}
	return written, nil
}

// Rows generates deduplicated rows without writing them.
func (e *Exporter) Rows(ctx context.Context, chunks []domain.Chunk) ([]Row, error) {
	seen := make(map[string]struct{})
	var out []Row
	for _, ch := range chunks {
		rows, err := e.chunkRows(ctx, ch, seen)
		if err != nil {
			return out, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// chunkRows only fails when ctx is done; model failures skip the question.
func (e *Exporter) chunkRows(ctx context.Context, ch domain.Chunk, seen map[string]struct{}) ([]Row, error) {
	text := textnorm.FixSpacing(ch.Text)
	questions, err := e.questions(ctx, text, e.cfg.NumQuestions, false)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		e.logger.Debug().Str("section", ch.Section).Msg("no questions, trying fallback prompt")
		if questions, err = e.questions(ctx, text, 1, true); err != nil {
			return nil, err
		}
	}

	section := e.cleanSection.Apply(ch.Section)
	if section == "" {
		section = unknownSection
	}
	cleanContext := e.cleanContext.Apply(ch.Text)

	var rows []Row
	for _, q := range questions {
		key := strings.ToLower(q) + "\x00" + cleanContext
		if _, dup := seen[key]; dup {
			continue
		}
		answer, err := e.answer(ctx, text, q)
		if err != nil {
			return rows, err
		}
		if answer == "" {
			e.logger.Debug().Str("question", q).Msg("no answer generated")
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, Row{Question: q, Answer: answer, Section: section, Context: cleanContext})
	}
	return rows, nil
}

func (e *Exporter) questions(ctx context.Context, text string, n int, simple bool) ([]string, error) {
	body := e.builder.TruncateTo(text, questionInputTokens)
	var p string
	if simple {
		p = fmt.Sprintf("Generate %d simple questions from the text below, each starting with 'Q:' on a new line.\n\nTEXT:\n%s", n, body)
	} else {
		p = fmt.Sprintf("You are an expert in anime trivia. Given the text below, generate exactly %d questions only, each starting with 'Q:' on a new line.\n\nTEXT:\n%s", n, body)
	}
	out, err := e.sample(ctx, p)
	if err != nil {
		return nil, err
	}
	return ParseQuestions(out), nil
}

func (e *Exporter) answer(ctx context.Context, text, question string) (string, error) {
	body := e.builder.TruncateTo(text, answerInputTokens)
	p := "You are an expert in anime trivia. Given the text below and a question, provide a clear and concise answer. " +
		"Format your output as 'A: ...'\n\nTEXT:\n" + body + "\n\nQ: " + question + "\nA:"
	out, err := e.sample(ctx, p)
	if err != nil {
		return "", err
	}
	return ParseAnswer(out), nil
}

// sample waits for the rate limiter and calls the generator. Generation failures
// are logged and yield empty output; only a done context is returned as error.
func (e *Exporter) sample(ctx context.Context, p string) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	out, err := e.gen.Generate(ctx, p, domain.GenerateOptions{
		MaxTokens:   e.cfg.MaxOutputTokens,
		Temperature: generation.SampleTemperature,
		Sample:      true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		e.logger.Warn().Err(err).Msg("dataset generation failed")
		return "", nil
	}
	return out, nil
}

func (e *Exporter) write(rows []Row) error {
	if e.cfg.CSVPath != "" {
		if err := AppendCSV(e.cfg.CSVPath, rows); err != nil {
			return err
		}
	}
	if e.cfg.XLSXPath != "" {
		if err := AppendXLSX(e.cfg.XLSXPath, rows); err != nil {
			return err
		}
	}
	return nil
}

// ParseQuestions returns the text of every line starting with "Q:" (any case).
func ParseQuestions(out string) []string {
	var qs []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if len(line) >= 2 && strings.EqualFold(line[:2], questionPrefix) {
			if q := strings.TrimSpace(line[2:]); q != "" {
				qs = append(qs, q)
			}
		}
	}
	return qs
}

// ParseAnswer returns the text after "A:", or the whole output when absent.
func ParseAnswer(out string) string {
	if m := answerRe.FindStringSubmatch(out); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(out)
}
