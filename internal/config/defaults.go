package config

// Default embedding dimensionality per provider. The local model is
// all-MiniLM-L6-v2 (384); OpenAI text-embedding-3-small is 1536; Gemini
// embedding-001 is requested at 768.
const (
	DefaultLocalDimensions  = 384
	DefaultOpenAIDimensions = 1536
	DefaultGeminiDimensions = 768
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Corpus.Directory == "" {
		cfg.Corpus.Directory = "./documents"
	}
	if cfg.Corpus.Extensions == nil {
		cfg.Corpus.Extensions = []string{".pdf", ".docx"}
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = "./vector_store"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "local"
	}
	if cfg.Embedding.Model == "" {
		switch cfg.Embedding.Provider {
		case "openai":
			cfg.Embedding.Model = "text-embedding-3-small"
		case "gemini":
			cfg.Embedding.Model = "embedding-001"
		default:
			cfg.Embedding.Model = "all-MiniLM-L6-v2"
		}
	}
	if cfg.Embedding.Dimensions == 0 {
		switch cfg.Embedding.Provider {
		case "openai":
			cfg.Embedding.Dimensions = DefaultOpenAIDimensions
		case "gemini":
			cfg.Embedding.Dimensions = DefaultGeminiDimensions
		default:
			cfg.Embedding.Dimensions = DefaultLocalDimensions
		}
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 64
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.Model == "" {
		switch cfg.LLM.Provider {
		case "gemini":
			cfg.LLM.Model = "gemini-pro"
		default:
			cfg.LLM.Model = "gpt-3.5-turbo"
		}
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 7
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 1000
	}
	if cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking.ChunkOverlap = 200
	}
	if cfg.Memory.ContextWindow == 0 {
		cfg.Memory.ContextWindow = 5
	}
	if cfg.Memory.ContextBudget == 0 {
		cfg.Memory.ContextBudget = 4000
	}
}
