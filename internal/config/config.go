package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/danielpatrickdp/chatpls/internal/gameplay"
	"github.com/danielpatrickdp/chatpls/internal/scoring"
	"github.com/danielpatrickdp/chatpls/internal/semantic"
)

// Scorer backends selectable with CHATPLS_SCORER.
const (
	ScorerLexical = "lexical"
	ScorerOpenAI  = "openai"
	ScorerOllama  = "ollama"
	ScorerGemini  = "gemini"
	ScorerCodec   = "codec"
)

// Config is the process configuration read from the environment.
type Config struct {
	DBPath string
	Addr   string

	Scorer         string
	EmbedCacheSize int
	Preset         scoring.Preset

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIEmbedModel string

	OllamaHost       string
	OllamaEmbedModel string

	GeminiAPIKey     string
	GeminiEmbedModel string

	CodecAddr string
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads the configuration. Unknown scorer or preset names are errors.
func Load() (Config, error) {
	cfg := Config{
		DBPath: getEnv("CHATPLS_DB", "chatpls.db"),
		Addr:   getEnv("CHATPLS_ADDR", ":8080"),

		Scorer: getEnv("CHATPLS_SCORER", ScorerLexical),
		Preset: scoring.Preset(getEnv("CHATPLS_WEIGHTS", string(scoring.PresetBalanced))),

		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIEmbedModel: getEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),

		OllamaHost:       getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaEmbedModel: getEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiEmbedModel: getEnv("GEMINI_EMBED_MODEL", semantic.DefaultGeminiModel),

		CodecAddr: getEnv("CODEC_ADDR", "localhost:50051"),
	}

	size, err := strconv.Atoi(getEnv("CHATPLS_EMBED_CACHE", "1024"))
	if err != nil {
		return Config{}, fmt.Errorf("CHATPLS_EMBED_CACHE: %w", err)
	}
	cfg.EmbedCacheSize = size

	switch cfg.Scorer {
	case ScorerLexical, ScorerOpenAI, ScorerOllama, ScorerGemini, ScorerCodec:
	default:
		return Config{}, fmt.Errorf("CHATPLS_SCORER: unknown scorer %q", cfg.Scorer)
	}
	if _, ok := scoring.PresetWeights(cfg.Preset); !ok {
		return Config{}, fmt.Errorf("CHATPLS_WEIGHTS: unknown preset %q", cfg.Preset)
	}
	return cfg, nil
}

// Weights returns the weight vector of the configured preset.
func (c Config) Weights() scoring.ScoreVector {
	w, ok := scoring.PresetWeights(c.Preset)
	if !ok {
		w, _ = scoring.PresetWeights(scoring.PresetBalanced)
	}
	return w
}

// BuildScorer constructs the configured semantic scorer. The returned close
// func releases any client connection and is never nil.
func BuildScorer(ctx context.Context, c Config) (gameplay.SemanticScorer, func() error, error) {
	noop := func() error { return nil }

	var (
		emb     semantic.Embedder
		closeFn = noop
	)
	switch c.Scorer {
	case ScorerLexical, "":
		log.Printf("[SEMANTIC] using lexical scorer")
		return semantic.Lexical{}, noop, nil
	case ScorerOpenAI:
		if c.OpenAIAPIKey == "" {
			return nil, noop, fmt.Errorf("openai scorer: OPENAI_API_KEY is not set")
		}
		emb = semantic.NewOpenAIEmbedder(c.OpenAIAPIKey,
			semantic.WithOpenAIBaseURL(c.OpenAIBaseURL),
			semantic.WithOpenAIModel(c.OpenAIEmbedModel))
	case ScorerOllama:
		emb = semantic.NewOllamaEmbedder(c.OllamaEmbedModel, semantic.WithOllamaHost(c.OllamaHost))
	case ScorerGemini:
		g, err := semantic.NewGeminiEmbedder(ctx, c.GeminiAPIKey, c.GeminiEmbedModel)
		if err != nil {
			return nil, noop, fmt.Errorf("gemini scorer: %w", err)
		}
		emb, closeFn = g, g.Close
	case ScorerCodec:
		cc, err := semantic.NewCodecEmbedder(c.CodecAddr)
		if err != nil {
			return nil, noop, fmt.Errorf("codec scorer: %w", err)
		}
		emb, closeFn = cc, cc.Close
	default:
		return nil, noop, fmt.Errorf("unknown scorer %q", c.Scorer)
	}

	log.Printf("[SEMANTIC] using %s embeddings", c.Scorer)
	return semantic.NewEmbeddingScorer(emb, c.EmbedCacheSize), closeFn, nil
}
