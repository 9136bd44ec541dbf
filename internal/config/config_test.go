package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("default port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Retrieval.TopK != 7 {
		t.Errorf("default top_k = %d, want 7", cfg.Retrieval.TopK)
	}
	if cfg.Chunking.ChunkSize != 1000 || cfg.Chunking.ChunkOverlap != 200 {
		t.Errorf("default chunking = %d/%d, want 1000/200", cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	}
	if cfg.Embedding.Provider != "local" {
		t.Errorf("default embedding provider = %q, want local", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions != DefaultLocalDimensions {
		t.Errorf("default dimensions = %d, want %d", cfg.Embedding.Dimensions, DefaultLocalDimensions)
	}
	if cfg.Memory.ContextWindow != 5 {
		t.Errorf("default context window = %d, want 5", cfg.Memory.ContextWindow)
	}
}

func TestLoad_ProviderDimensionDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "embedding:\n  provider: gemini\n"
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embedding.Dimensions != DefaultGeminiDimensions {
		t.Errorf("gemini dimensions = %d, want %d", cfg.Embedding.Dimensions, DefaultGeminiDimensions)
	}
	if cfg.Embedding.Model != "embedding-001" {
		t.Errorf("gemini model = %q", cfg.Embedding.Model)
	}
}

func TestLoad_ExpandsRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "corpus:\n  directory: ./docs\nindex:\n  path: ./store\n"
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Corpus.Directory != filepath.Join(dir, "docs") {
		t.Errorf("corpus dir = %q, want under %q", cfg.Corpus.Directory, dir)
	}
	if cfg.Index.Path != filepath.Join(dir, "store") {
		t.Errorf("index path = %q, want under %q", cfg.Index.Path, dir)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"bad embedding provider", func(c *Config) { c.Embedding.Provider = "cohere" }, true},
		{"bad llm provider", func(c *Config) { c.LLM.Provider = "llama" }, true},
		{"overlap >= size", func(c *Config) { c.Chunking.ChunkOverlap = c.Chunking.ChunkSize }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			ApplyDefaults(&cfg)
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
