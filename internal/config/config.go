package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"wikiqa/internal/logging"
	"wikiqa/internal/textnorm"
	"wikiqa/internal/tokenizer/tiktoken"
)

// ScraperConfig configures page fetching.
type ScraperConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" toml:"user_agent"`
}

// ChunkerConfig configures how pages are split into chunks.
type ChunkerConfig struct {
	NormalizeSections bool `yaml:"normalize_sections" toml:"normalize_sections"`
}

// TokenizerConfig selects the tokenizer shared by prompt truncation and budgets.
type TokenizerConfig struct {
	Type     string `yaml:"type" toml:"type"`
	Encoding string `yaml:"encoding,omitempty" toml:"encoding,omitempty"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url" toml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env" toml:"api_key_env"`
	Model       string `yaml:"model" toml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs"`
}

// GeminiEmbedderConfig holds configuration for the Gemini embedder.
type GeminiEmbedderConfig struct {
	APIKeyEnv   string `yaml:"api_key_env" toml:"api_key_env"`
	Model       string `yaml:"model" toml:"model"`
	Dimensions  int    `yaml:"dimensions" toml:"dimensions"`
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type" toml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty" toml:"openai,omitempty"`
	Gemini *GeminiEmbedderConfig `yaml:"gemini,omitempty" toml:"gemini,omitempty"`
}

// OllamaConfig points at a local Ollama server.
type OllamaConfig struct {
	BaseURL string `yaml:"base_url" toml:"base_url"`
	Model   string `yaml:"model" toml:"model"`
}

// APIModelConfig configures a hosted model reached with an API key.
type APIModelConfig struct {
	BaseURL   string `yaml:"base_url,omitempty" toml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env" toml:"api_key_env"`
	Model     string `yaml:"model" toml:"model"`
}

// GeneratorConfig selects and configures the generation backend.
type GeneratorConfig struct {
	Type        string          `yaml:"type" toml:"type"`
	TimeoutSecs int             `yaml:"timeout_secs" toml:"timeout_secs"`
	Ollama      *OllamaConfig   `yaml:"ollama,omitempty" toml:"ollama,omitempty"`
	OpenAI      *APIModelConfig `yaml:"openai,omitempty" toml:"openai,omitempty"`
	Gemini      *APIModelConfig `yaml:"gemini,omitempty" toml:"gemini,omitempty"`
	Anthropic   *APIModelConfig `yaml:"anthropic,omitempty" toml:"anthropic,omitempty"`
}

// RetrievalConfig controls question answering.
type RetrievalConfig struct {
	TopK           int `yaml:"top_k" toml:"top_k"`
	MaxInputTokens int `yaml:"max_input_tokens" toml:"max_input_tokens"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type        string `yaml:"type" toml:"type"`
	WindowSize  int    `yaml:"window_size" toml:"window_size"`
	NumClusters int    `yaml:"num_clusters" toml:"num_clusters"`
	MinChars    int    `yaml:"min_chars" toml:"min_chars"`
	MaxChars    int    `yaml:"max_chars" toml:"max_chars"`
}

// NormalizerConfig lists corpus specific context fixes applied on export.
type NormalizerConfig struct {
	Replacements []textnorm.Replacement `yaml:"replacements" toml:"replacements"`
}

// ExportConfig configures the dataset exporter.
type ExportConfig struct {
	NumQuestions      int     `yaml:"num_questions" toml:"num_questions"`
	MaxOutputTokens   int     `yaml:"max_output_tokens" toml:"max_output_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second"`
	CSVPath           string  `yaml:"csv_path" toml:"csv_path"`
	XLSXPath          string  `yaml:"xlsx_path" toml:"xlsx_path"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Scraper    ScraperConfig    `yaml:"scraper" toml:"scraper"`
	Chunker    ChunkerConfig    `yaml:"chunker" toml:"chunker"`
	Tokenizer  TokenizerConfig  `yaml:"tokenizer" toml:"tokenizer"`
	Embedder   EmbedderConfig   `yaml:"embedder" toml:"embedder"`
	Generator  GeneratorConfig  `yaml:"generator" toml:"generator"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" toml:"retrieval"`
	Summarizer SummarizerConfig `yaml:"summarizer" toml:"summarizer"`
	Normalizer NormalizerConfig `yaml:"normalizer" toml:"normalizer"`
	Export     ExportConfig     `yaml:"export" toml:"export"`
	Logging    logging.Config   `yaml:"logging" toml:"logging"`
}

// ScraperTimeout returns the fetch timeout as a duration.
func (c *AppConfig) ScraperTimeout() time.Duration {
	return time.Duration(c.Scraper.TimeoutSecs) * time.Second
}

// GeneratorTimeout returns the per-call generation timeout as a duration.
func (c *AppConfig) GeneratorTimeout() time.Duration {
	return time.Duration(c.Generator.TimeoutSecs) * time.Second
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Paths ending in .toml are parsed as TOML, anything else as YAML.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if isTOML(path) {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/wikiqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/wikiqa/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wikiqa", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Chunker:    ChunkerConfig{NormalizeSections: false},
		Tokenizer:  TokenizerConfig{Type: "simple"},
		Embedder:   EmbedderConfig{Type: "tfidf"},
		Generator:  GeneratorConfig{Type: "extractive"},
		Summarizer: SummarizerConfig{Type: "sequential"},
		Normalizer: NormalizerConfig{Replacements: []textnorm.Replacement{
			{Pattern: `née\s*Hyga`, With: "née Hyūga"},
		}},
		Export: ExportConfig{
			CSVPath:  filepath.Join("data", "qa_dataset.csv"),
			XLSXPath: filepath.Join("data", "qa_dataset.xlsx"),
		},
		Logging: logging.Config{Level: "info", Format: "console"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Scraper.TimeoutSecs == 0 {
		cfg.Scraper.TimeoutSecs = 30
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Embedder.Type == "gemini" && cfg.Embedder.Gemini == nil {
		cfg.Embedder.Gemini = &GeminiEmbedderConfig{}
	}

	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "extractive"
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 60
	}
	switch cfg.Generator.Type {
	case "ollama":
		if cfg.Generator.Ollama == nil {
			cfg.Generator.Ollama = &OllamaConfig{}
		}
	case "openai":
		if cfg.Generator.OpenAI == nil {
			cfg.Generator.OpenAI = &APIModelConfig{}
		}
		if cfg.Generator.OpenAI.Model == "" {
			cfg.Generator.OpenAI.Model = "gpt-4o-mini"
		}
	case "gemini":
		if cfg.Generator.Gemini == nil {
			cfg.Generator.Gemini = &APIModelConfig{}
		}
	case "anthropic":
		if cfg.Generator.Anthropic == nil {
			cfg.Generator.Anthropic = &APIModelConfig{}
		}
	}

	// Prompt budgets must be counted with the generation model's tokenizer.
	// Only OpenAI models ship one; the rest fall back to word units.
	if cfg.Tokenizer.Type == "" {
		cfg.Tokenizer.Type = "simple"
		if cfg.Generator.Type == "openai" {
			cfg.Tokenizer.Type = "tiktoken"
			cfg.Tokenizer.Encoding = tiktoken.EncodingForModel(cfg.Generator.OpenAI.Model)
		}
	}
	if cfg.Tokenizer.Type == "tiktoken" && cfg.Tokenizer.Encoding == "" {
		cfg.Tokenizer.Encoding = tiktoken.DefaultEncoding
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.MaxInputTokens == 0 {
		cfg.Retrieval.MaxInputTokens = 480
	}

	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = "sequential"
	}
	if cfg.Summarizer.WindowSize == 0 {
		cfg.Summarizer.WindowSize = 3
	}
	if cfg.Summarizer.NumClusters == 0 {
		cfg.Summarizer.NumClusters = 5
	}
	if cfg.Summarizer.MinChars == 0 {
		cfg.Summarizer.MinChars = 50
	}
	if cfg.Summarizer.MaxChars == 0 {
		cfg.Summarizer.MaxChars = 1000
	}

	if cfg.Export.NumQuestions == 0 {
		cfg.Export.NumQuestions = 3
	}
	if cfg.Export.MaxOutputTokens == 0 {
		cfg.Export.MaxOutputTokens = 512
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
