// Package generation wraps text generation backends behind one call contract.
package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/phuslu/log"

	"wikiqa/internal/domain"
	"wikiqa/internal/logging"
)

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 60 * time.Second

// SampleTemperature is used for exploratory generation such as dataset questions.
const SampleTemperature = 0.7

var errEmptyOutput = errors.New("backend returned no text")

// Backend is a concrete text generation model.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error)
}

// Adapter applies a timeout to every backend call and reports failures as
// *domain.GenerationError.
type Adapter struct {
	backend Backend
	timeout time.Duration
	logger  *log.Logger
}

var _ domain.Generator = (*Adapter)(nil)

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) { a.timeout = d }
}

// WithLogger attaches a logger.
func WithLogger(l *log.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = l }
}

// NewAdapter wraps backend.
func NewAdapter(backend Backend, opts ...AdapterOption) *Adapter {
	a := &Adapter{backend: backend, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.OrNop(a.logger)
	return a
}

// Backend returns the wrapped backend's name.
func (a *Adapter) Backend() string { return a.backend.Name() }

// Generate produces text for prompt. Unsampled calls force temperature 0.
func (a *Adapter) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	if !opts.Sample {
		opts.Temperature = 0
	}
	if opts.MinTokens > opts.MaxTokens {
		opts.MinTokens = opts.MaxTokens
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := a.backend.Generate(ctx, prompt, opts)
	if err == nil && strings.TrimSpace(out) == "" {
		err = errEmptyOutput
	}
	if err == nil {
		err = ctx.Err()
	}
	elapsed := time.Since(start)
	if err != nil {
		a.logger.Warn().
			Str("backend", a.backend.Name()).
			Int("max_tokens", opts.MaxTokens).
			Dur("elapsed", elapsed).
			Err(err).
			Msg("generation failed")
		return "", &domain.GenerationError{Backend: a.backend.Name(), Err: err}
	}
	out = strings.TrimSpace(out)
	a.logger.Debug().
		Str("backend", a.backend.Name()).
		Int("max_tokens", opts.MaxTokens).
		Int("output_chars", len(out)).
		Dur("elapsed", elapsed).
		Msg("generated")
	if words := len(strings.Fields(out)); words < opts.MinTokens {
		a.logger.Debug().
			Str("backend", a.backend.Name()).
			Int("min_tokens", opts.MinTokens).
			Int("output_words", words).
			Msg("output shorter than requested minimum")
	}
	return out, nil
}
