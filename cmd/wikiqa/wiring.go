package main

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"wikiqa/internal/chunker"
	"wikiqa/internal/config"
	"wikiqa/internal/dataset"
	"wikiqa/internal/domain"
	"wikiqa/internal/embedding"
	"wikiqa/internal/embedding/gemini"
	"wikiqa/internal/embedding/openai"
	"wikiqa/internal/embedding/tfidf"
	"wikiqa/internal/generation"
	"wikiqa/internal/generation/anthropic"
	"wikiqa/internal/generation/extractive"
	gengemini "wikiqa/internal/generation/gemini"
	"wikiqa/internal/generation/ollama"
	genopenai "wikiqa/internal/generation/openai"
	"wikiqa/internal/prompt"
	"wikiqa/internal/scraper"
	"wikiqa/internal/service"
	"wikiqa/internal/summarizer"
	"wikiqa/internal/textnorm"
	"wikiqa/internal/tokenizer"
	"wikiqa/internal/tokenizer/tiktoken"
)

// app holds the assembled components for one command invocation.
type app struct {
	cfg       *config.AppConfig
	logger    *log.Logger
	scraper   *scraper.Scraper
	builder   *prompt.Builder
	generator *generation.Adapter
	session   *service.Session
}

func buildApp(ctx context.Context, cfg *config.AppConfig, logger *log.Logger) (*app, error) {
	tok, err := buildTokenizer(cfg)
	if err != nil {
		return nil, err
	}
	builder := prompt.NewBuilder(tok, prompt.WithMaxInputTokens(cfg.Retrieval.MaxInputTokens))

	backend, err := buildBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	gen := generation.NewAdapter(backend,
		generation.WithTimeout(cfg.GeneratorTimeout()),
		generation.WithLogger(logger),
	)

	emb, err := buildEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	sum, err := buildSummarizer(ctx, cfg, gen, builder, logger)
	if err != nil {
		return nil, err
	}

	var chunkOpts []chunker.Option
	if cfg.Chunker.NormalizeSections {
		chunkOpts = append(chunkOpts, chunker.WithSectionNormalizer(textnorm.SectionPipeline().Apply))
	}
	scr := scraper.New(scraper.Config{
		Timeout:   cfg.ScraperTimeout(),
		UserAgent: cfg.Scraper.UserAgent,
	}, chunker.NewSectionChunker(chunkOpts...), logger)

	session := service.NewSession(service.Deps{
		Scraper:    scr,
		Embedder:   emb,
		Summarizer: sum,
		Builder:    builder,
		Generator:  gen,
		TopK:       cfg.Retrieval.TopK,
		Logger:     logger,
	})
	logger.Debug().
		Str("session", session.ID()).
		Str("tokenizer", tok.Name()).
		Str("embedder", emb.Name()).
		Str("generator", backend.Name()).
		Str("summarizer", cfg.Summarizer.Type).
		Msg("components assembled")

	return &app{cfg: cfg, logger: logger, scraper: scr, builder: builder, generator: gen, session: session}, nil
}

func buildTokenizer(cfg *config.AppConfig) (tokenizer.Tokenizer, error) {
	switch cfg.Tokenizer.Type {
	case "simple", "":
		return tokenizer.NewSimple(), nil
	case "tiktoken":
		return tiktoken.New(cfg.Tokenizer.Encoding)
	default:
		return nil, fmt.Errorf("unknown tokenizer: %s", cfg.Tokenizer.Type)
	}
}

func buildEmbedder(ctx context.Context, cfg *config.AppConfig) (embedding.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	case "gemini":
		gc := cfg.Embedder.Gemini
		if gc == nil {
			gc = &config.GeminiEmbedderConfig{}
		}
		emb, err := gemini.New(ctx, gemini.Config{
			APIKeyEnv:  gc.APIKeyEnv,
			Model:      gc.Model,
			Dimensions: gc.Dimensions,
			Timeout:    time.Duration(gc.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini embedder init failed: %w", err)
		}
		return emb, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func buildBackend(ctx context.Context, cfg *config.AppConfig) (generation.Backend, error) {
	g := cfg.Generator
	switch g.Type {
	case "extractive", "":
		return extractive.New(), nil
	case "ollama":
		oc := config.OllamaConfig{}
		if g.Ollama != nil {
			oc = *g.Ollama
		}
		return ollama.New(ollama.Config{BaseURL: oc.BaseURL, Model: oc.Model}), nil
	case "openai":
		mc := apiModel(g.OpenAI)
		return genopenai.New(genopenai.Config{BaseURL: mc.BaseURL, APIKeyEnv: mc.APIKeyEnv, Model: mc.Model})
	case "gemini":
		mc := apiModel(g.Gemini)
		return gengemini.New(ctx, gengemini.Config{APIKeyEnv: mc.APIKeyEnv, Model: mc.Model})
	case "anthropic":
		mc := apiModel(g.Anthropic)
		return anthropic.New(anthropic.Config{BaseURL: mc.BaseURL, APIKeyEnv: mc.APIKeyEnv, Model: mc.Model})
	default:
		return nil, fmt.Errorf("unknown generator: %s", g.Type)
	}
}

func apiModel(mc *config.APIModelConfig) config.APIModelConfig {
	if mc == nil {
		return config.APIModelConfig{}
	}
	return *mc
}

// buildSummarizer gives the clustered strategy its own embedder so clustering
// never touches the vocabulary of the retrieval index.
func buildSummarizer(ctx context.Context, cfg *config.AppConfig, gen domain.Generator, builder *prompt.Builder, logger *log.Logger) (domain.Summarizer, error) {
	sc := cfg.Summarizer
	switch sc.Type {
	case "sequential", "":
		return summarizer.NewSequential(gen, builder,
			summarizer.WithWindowSize(sc.WindowSize),
			summarizer.WithSequentialLogger(logger),
		), nil
	case "clustered":
		emb, err := buildEmbedder(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return summarizer.NewClustered(gen, builder, emb, summarizer.ClusterConfig{
			NumClusters: sc.NumClusters,
			MinChars:    sc.MinChars,
			MaxChars:    sc.MaxChars,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", sc.Type)
	}
}

func buildExporter(a *app, csvPath, xlsxPath string) (*dataset.Exporter, error) {
	ec := a.cfg.Export
	if csvPath == "" {
		csvPath = ec.CSVPath
	}
	if xlsxPath == "" {
		xlsxPath = ec.XLSXPath
	}
	return dataset.NewExporter(a.generator, a.builder, dataset.Config{
		NumQuestions:      ec.NumQuestions,
		MaxOutputTokens:   ec.MaxOutputTokens,
		RequestsPerSecond: ec.RequestsPerSecond,
		CSVPath:           csvPath,
		XLSXPath:          xlsxPath,
		Replacements:      a.cfg.Normalizer.Replacements,
	}, a.logger)
}
