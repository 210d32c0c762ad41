// Package index embeds the chunks of one document and answers nearest-neighbour queries.
package index

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"wikiqa/internal/domain"
	"wikiqa/internal/embedding"
	"wikiqa/internal/logging"
	"wikiqa/internal/vectorstore"
	"wikiqa/internal/vectorstore/memory"
)

// Index pairs each chunk with its embedding. It is immutable once built until
// Release drops the vectors.
type Index struct {
	embedder embedding.Embedder
	store    vectorstore.Storage
	logger   *log.Logger
}

// Option configures Build.
type Option func(*Index)

// WithLogger attaches a logger.
func WithLogger(l *log.Logger) Option {
	return func(i *Index) { i.logger = l }
}

// Build embeds every chunk in order. An empty chunk list produces an empty index
// that rejects queries with domain.ErrEmptyIndex.
func Build(ctx context.Context, embedder embedding.Embedder, chunks []domain.Chunk, opts ...Option) (*Index, error) {
	idx := &Index{embedder: embedder, store: memory.NewStorage()}
	for _, opt := range opts {
		opt(idx)
	}
	idx.logger = logging.OrNop(idx.logger)
	if len(chunks) == 0 {
		idx.logger.Warn().Msg("building index from zero chunks")
		return idx, nil
	}

	start := time.Now()
	corpus := make([]string, len(chunks))
	for i, ch := range chunks {
		corpus[i] = ch.Text
	}
	if err := embedder.Prepare(ctx, corpus); err != nil {
		return nil, fmt.Errorf("prepare %s embedder: %w", embedder.Name(), err)
	}
	vectors := make([][]float64, len(chunks))
	for i, text := range corpus {
		vec, err := embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d (%s): %w", i, chunks[i].Section, err)
		}
		vectors[i] = vec
	}
	dim := len(vectors[0])
	if reported := embedder.Dimension(); reported != dim {
		return nil, fmt.Errorf("%s embedder reports dimension %d, produced %d", embedder.Name(), reported, dim)
	}
	if err := idx.store.Init(dim); err != nil {
		return nil, fmt.Errorf("init vector store: %w", err)
	}
	if err := idx.store.Upsert(chunks, vectors); err != nil {
		return nil, fmt.Errorf("store vectors: %w", err)
	}
	idx.logger.Info().
		Str("embedder", embedder.Name()).
		Int("chunks", idx.Len()).
		Int("dimension", dim).
		Dur("duration", time.Since(start)).
		Msg("index built")
	return idx, nil
}

// Len returns the number of indexed chunks.
func (i *Index) Len() int { return i.store.Len() }

// Release drops the stored vectors. Later queries fail with domain.ErrEmptyIndex.
func (i *Index) Release() error {
	return i.store.Clear()
}

// Query returns up to topK chunks most similar to text, best first.
func (i *Index) Query(ctx context.Context, text string, topK int) ([]domain.SearchResult, error) {
	if i.Len() == 0 {
		return nil, domain.ErrEmptyIndex
	}
	vec, err := i.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := i.store.Search(vec, topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	i.logger.Debug().Str("query", text).Int("top_k", topK).Int("hits", len(results)).Msg("index queried")
	return results, nil
}
