package llm

import (
	"fmt"
	"os"

	"github.com/hyperjump/kotae/internal/config"
)

// New creates the generator selected by the configuration. API keys come from
// the environment (OPENAI_API_KEY, GOOGLE_API_KEY).
func New(cfg *config.LLMConfig) (Generator, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIGenerator(os.Getenv("OPENAI_API_KEY"), cfg.Model, cfg.Temperature, os.Getenv("OPENAI_BASE_URL"))
	case "gemini":
		return NewGeminiGenerator(os.Getenv("GOOGLE_API_KEY"), cfg.Model, cfg.Temperature, os.Getenv("GEMINI_BASE_URL"))
	case "mock":
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}
