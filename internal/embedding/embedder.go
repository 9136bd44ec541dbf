// Package embedding provides the embedding provider abstraction and its
// local, OpenAI, and Gemini implementations. The provider is selected once at
// configuration time; an index built with one provider/dimensionality is only
// valid for that provider/dimensionality.
package embedding

import "context"

// Embedder produces vector embeddings for text.
type Embedder interface {
	// Embed returns the embedding for a single text (query path).
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns embeddings for texts in order (index-build path).
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the fixed dimensionality of produced vectors.
	Dimensions() int
	// Provider returns the provider identifier ("local", "openai", "gemini").
	Provider() string
	Close() error
}
