package summarizer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/phuslu/log"

	"wikiqa/internal/domain"
	"wikiqa/internal/embedding"
	"wikiqa/internal/generation"
	"wikiqa/internal/logging"
	"wikiqa/internal/prompt"
)

// Defaults for the clustered strategy.
const (
	DefaultNumClusters = 5
	DefaultMinChars    = 50
	DefaultMaxChars    = 1000

	clusterScale = 0.6
	clusterCap   = 350
)

// ClusterConfig tunes the clustered strategy. Zero values use the defaults.
type ClusterConfig struct {
	NumClusters int
	MinChars    int
	MaxChars    int
}

// Clustered groups similar chunks with k-means and summarizes each group.
// Centroids are seeded randomly so group boundaries may vary between runs.
type Clustered struct {
	gen      domain.Generator
	builder  *prompt.Builder
	embedder embedding.Embedder
	cfg      ClusterConfig
	logger   *log.Logger
}

var _ domain.Summarizer = (*Clustered)(nil)

// NewClustered creates a clustered summarizer embedding chunks with embedder.
func NewClustered(gen domain.Generator, builder *prompt.Builder, embedder embedding.Embedder, cfg ClusterConfig, logger *log.Logger) *Clustered {
	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultNumClusters
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = DefaultMinChars
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	return &Clustered{gen: gen, builder: builder, embedder: embedder, cfg: cfg, logger: logging.OrNop(logger)}
}

// Summarize labels each cluster summary "Summary <n>:" and separates them with a blank line.
func (c *Clustered) Summarize(ctx context.Context, chunks []domain.Chunk) string {
	var texts []string
	for _, ch := range chunks {
		if len(ch.Text) > c.cfg.MinChars {
			texts = append(texts, ch.Text)
		}
	}
	if len(texts) == 0 {
		return domain.NotEnoughContent
	}

	groups, err := c.group(ctx, texts)
	if err != nil {
		c.logger.Warn().Err(err).Int("chunks", len(texts)).Msg("clustering failed")
		return domain.NotEnoughContent
	}

	var summaries []string
	for id, members := range groups {
		if len(members) == 0 {
			continue
		}
		text := capRunes(strings.Join(members, " "), c.cfg.MaxChars)
		text = c.builder.Truncate(text)
		budget := generation.SummaryBudget(text, clusterScale, clusterCap)
		out, err := c.gen.Generate(ctx, prompt.SummaryPrompt(text), domain.GenerateOptions{
			MaxTokens: budget.Max,
			MinTokens: budget.Min,
		})
		if err != nil {
			c.logger.Warn().Int("cluster", id).Err(err).Msg("skipping cluster")
			continue
		}
		summaries = append(summaries, fmt.Sprintf("Summary %d:\n%s", id+1, out))
	}
	if len(summaries) == 0 {
		return domain.NotEnoughContent
	}
	return strings.Join(summaries, "\n\n")
}

// group partitions texts into at most NumClusters groups, members kept in input order.
func (c *Clustered) group(ctx context.Context, texts []string) ([][]string, error) {
	if err := c.embedder.Prepare(ctx, texts); err != nil {
		return nil, fmt.Errorf("prepare embedder: %w", err)
	}
	obs := make(clusters.Observations, len(texts))
	for i, text := range texts {
		vec, err := c.embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		obs[i] = clusters.Coordinates(vec)
	}

	k := min(c.cfg.NumClusters, len(texts))
	if k == 1 {
		return [][]string{texts}, nil
	}
	parts, err := kmeans.New().Partition(obs, k)
	if err != nil {
		return nil, fmt.Errorf("k-means: %w", err)
	}
	groups := make([][]string, len(parts))
	for i, o := range obs {
		label := parts.Nearest(o)
		groups[label] = append(groups[label], texts[i])
	}
	return groups, nil
}

func capRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
