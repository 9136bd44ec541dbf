package indexer

import (
	"context"
	"fmt"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
)

// Retriever answers similarity queries: embed the query text, search the
// vector index, and hydrate the hits from the chunk store.
type Retriever struct {
	embedder embedding.Embedder
	index    *vector.Index
	store    storage.ChunkStore
	topK     int
}

// NewRetriever creates a retriever returning at most topK chunks per query.
func NewRetriever(embedder embedding.Embedder, index *vector.Index, store storage.ChunkStore, topK int) *Retriever {
	if topK <= 0 {
		topK = 7
	}
	return &Retriever{embedder: embedder, index: index, store: store, topK: topK}
}

// Retrieve returns the most similar chunks to the query text, ordered by
// descending similarity. A chunk ID present in the index but missing from the
// store is dropped rather than failing the query.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]*models.RetrievedChunk, error) {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Search(ctx, queryVec, r.topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]string, len(hits))
	scoreByID := make(map[string]float64, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
		scoreByID[hit.ID] = hit.Score
	}

	chunks, err := r.store.GetChunks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate chunks: %w", err)
	}

	retrieved := make([]*models.RetrievedChunk, len(chunks))
	for i, chunk := range chunks {
		retrieved[i] = &models.RetrievedChunk{Chunk: chunk, Score: scoreByID[chunk.ID]}
	}
	return retrieved, nil
}
