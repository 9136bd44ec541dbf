//go:build !cgo

package embedding

import (
	"context"
	"fmt"
)

var errNoCgo = fmt.Errorf("local embedding provider requires cgo (build with CGO_ENABLED=1)")

// LocalEmbedder requires cgo for the ONNX runtime bindings. This stub keeps
// the package buildable without cgo; use the mock provider in that case.
type LocalEmbedder struct{}

func NewLocalEmbedder(modelPath string, dimensions, maxTokens, cacheSize int) (*LocalEmbedder, error) {
	return nil, errNoCgo
}

func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errNoCgo
}

func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errNoCgo
}

func (e *LocalEmbedder) Dimensions() int { return 0 }

func (e *LocalEmbedder) Provider() string { return "local" }

func (e *LocalEmbedder) Close() error { return nil }
