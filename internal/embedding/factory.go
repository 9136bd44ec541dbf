package embedding

import (
	"fmt"
	"os"

	"github.com/hyperjump/kotae/internal/config"
)

// New creates the embedder selected by the configuration. API keys for remote
// providers come from the environment (OPENAI_API_KEY, GOOGLE_API_KEY).
func New(cfg *config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "local":
		return NewLocalEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
	case "openai":
		return NewOpenAIEmbedder(os.Getenv("OPENAI_API_KEY"), cfg.Model, cfg.Dimensions, os.Getenv("OPENAI_BASE_URL"))
	case "gemini":
		return NewGeminiEmbedder(os.Getenv("GOOGLE_API_KEY"), cfg.Model, cfg.Dimensions, os.Getenv("GEMINI_BASE_URL"))
	case "mock":
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Provider)
	}
}
