package llm

import (
	"context"
	"strings"
)

// MockGenerator is a deterministic extractive generator for tests and offline
// runs. It answers with the context sentence sharing the most words with the
// question, which is enough to exercise the full pipeline without a model.
type MockGenerator struct{}

// NewMockGenerator returns a generator that needs no backend.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate picks the best-overlapping context sentence.
func (g *MockGenerator) Generate(ctx context.Context, req *Request) (string, error) {
	if strings.TrimSpace(req.Context) == "" {
		return "I don't know based on the provided documents.", nil
	}

	questionWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(req.Question)) {
		questionWords[strings.Trim(w, ".,;:!?\"'")] = true
	}

	best := ""
	bestScore := -1
	for _, sentence := range strings.FieldsFunc(req.Context, func(r rune) bool {
		return r == '.' || r == '\n'
	}) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		score := 0
		for _, w := range strings.Fields(strings.ToLower(sentence)) {
			if questionWords[strings.Trim(w, ".,;:!?\"'")] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = sentence, score
		}
	}
	return best + ".", nil
}

// Provider returns the provider name.
func (g *MockGenerator) Provider() string {
	return "mock"
}

// Close is a no-op.
func (g *MockGenerator) Close() error {
	return nil
}
