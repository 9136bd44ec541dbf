// Package chat orchestrates a question through retrieval, generation, and
// session memory.
package chat

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/memory"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// historyQueryLimit caps how much rendered history is prefixed to the
// retrieval query. Long histories drown the question's own terms.
const historyQueryLimit = 1000

// Engine answers questions over the indexed corpus.
type Engine struct {
	retriever *indexer.Retriever
	generator llm.Generator
	memory    *memory.Store
	logger    *zap.Logger
}

// NewEngine creates an engine over the given components.
func NewEngine(retriever *indexer.Retriever, generator llm.Generator, mem *memory.Store, logger *zap.Logger) *Engine {
	return &Engine{retriever: retriever, generator: generator, memory: mem, logger: logger}
}

// Answer runs one question through the pipeline. With memory enabled the
// session history is prefixed to the retrieval query and passed to the model,
// but the model always sees the original question verbatim. The exchange is
// recorded in memory only after a successful generation, so failed requests
// never pollute the history.
func (e *Engine) Answer(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	useMemory := req.UseMemory == nil || *req.UseMemory

	history := ""
	if useMemory {
		history = e.memory.Context(req.SessionID)
	}

	retrievalQuery := req.Question
	if history != "" {
		retrievalQuery = utils.Truncate(history, historyQueryLimit) + "\n" + req.Question
	}

	hits, err := e.retriever.Retrieve(ctx, retrievalQuery)
	if err != nil {
		return nil, err
	}

	answer, err := e.generator.Generate(ctx, &llm.Request{
		Context:  chunkContext(hits),
		History:  history,
		Question: req.Question,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(answer) == "" {
		answer = llm.FallbackAnswer
	}

	if useMemory {
		e.memory.Append(req.SessionID, models.Message{Role: models.RoleUser, Content: req.Question})
		e.memory.Append(req.SessionID, models.Message{Role: models.RoleAssistant, Content: answer})
	}

	e.logger.Debug("answered question",
		zap.String("session", req.SessionID),
		zap.Int("retrieved", len(hits)),
		zap.Bool("memory", useMemory))

	return &models.ChatResponse{
		Answer:    answer,
		Sources:   sources(hits),
		SessionID: req.SessionID,
	}, nil
}

// Clear discards the session's conversation history.
func (e *Engine) Clear(sessionID string) {
	e.memory.Clear(sessionID)
}

// Sessions returns the number of live conversation sessions.
func (e *Engine) Sessions() int {
	return e.memory.Sessions()
}

// chunkContext joins retrieved chunk texts, best match first.
func chunkContext(hits []*models.RetrievedChunk) string {
	parts := make([]string, len(hits))
	for i, hit := range hits {
		parts[i] = hit.Chunk.Content
	}
	return strings.Join(parts, "\n\n")
}

// sources returns distinct source file names in retrieval order.
func sources(hits []*models.RetrievedChunk) []string {
	seen := make(map[string]bool, len(hits))
	out := make([]string, 0, len(hits))
	for _, hit := range hits {
		if !seen[hit.Chunk.Source] {
			seen[hit.Chunk.Source] = true
			out = append(out, hit.Chunk.Source)
		}
	}
	return out
}
