// Package config provides configuration loading and structs for the kotae server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Memory    MemoryConfig    `yaml:"memory"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CorpusConfig holds the document corpus location and file selection.
type CorpusConfig struct {
	Directory  string   `yaml:"directory"`
	Extensions []string `yaml:"extensions"`
}

// IndexConfig holds the persisted vector index location and rebuild policy.
type IndexConfig struct {
	Path         string `yaml:"path"`
	ForceRebuild bool   `yaml:"force_rebuild"`
}

// EmbeddingConfig selects and configures the embedding provider.
// Provider is fixed for the process lifetime; the persisted index is only
// valid for the provider/dimensions it was built with.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // "local", "openai", "gemini", or "mock"
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	ModelPath  string `yaml:"model_path"` // ONNX model file for the local provider
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
	BatchSize  int    `yaml:"batch_size"`
}

// LLMConfig selects and configures the generation provider.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "openai" or "gemini"
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// RetrievalConfig holds similarity search settings.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// ChunkingConfig holds document splitting settings (characters).
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// MemoryConfig holds conversation memory settings.
type MemoryConfig struct {
	ContextWindow int `yaml:"context_window"` // messages rendered into the query context
	ContextBudget int `yaml:"context_budget"` // character cap on the rendered block
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Corpus.Directory = expandPath(cfg.Corpus.Directory, configDir)
	cfg.Index.Path = expandPath(cfg.Index.Path, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}

	return &cfg, nil
}

// Validate checks cross-field constraints that defaults cannot repair.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "local", "openai", "gemini", "mock":
	default:
		return fmt.Errorf("unsupported embedding provider %q (use local, openai, gemini, or mock)", c.Embedding.Provider)
	}
	switch c.LLM.Provider {
	case "openai", "gemini", "mock":
	default:
		return fmt.Errorf("unsupported llm provider %q (use openai, gemini, or mock)", c.LLM.Provider)
	}
	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Chunking.ChunkOverlap, c.Chunking.ChunkSize)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
