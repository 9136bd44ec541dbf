// Package indexer builds, restores, and queries the vector index over the
// document corpus.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/ingest"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
)

// ErrEmptyCorpus reports that the corpus directory contains no documents with
// extractable text, so there is nothing to index.
var ErrEmptyCorpus = errors.New("no indexable documents in corpus directory")

// Index file names inside the persisted index directory.
const (
	VectorsFile = "vectors.bin"
	ChunksFile  = "chunks.db"
)

// VectorsPath returns the vector file path inside an index directory.
func VectorsPath(indexDir string) string { return filepath.Join(indexDir, VectorsFile) }

// Builder turns the corpus directory into a populated vector index and chunk
// store: load, split, embed, persist.
type Builder struct {
	loader   *ingest.Loader
	splitter *ingest.Splitter
	embedder embedding.Embedder
	store    storage.ChunkStore
	index    *vector.Index
	cfg      *config.Config
	logger   *zap.Logger
}

// NewBuilder creates a builder over the given components.
func NewBuilder(
	loader *ingest.Loader,
	splitter *ingest.Splitter,
	embedder embedding.Embedder,
	store storage.ChunkStore,
	index *vector.Index,
	cfg *config.Config,
	logger *zap.Logger,
) *Builder {
	return &Builder{
		loader:   loader,
		splitter: splitter,
		embedder: embedder,
		store:    store,
		index:    index,
		cfg:      cfg,
		logger:   logger,
	}
}

// Build runs a full rebuild: load the corpus, split into chunks, embed every
// chunk, replace the chunk store contents, repopulate the vector index, and
// persist it. Returns ErrEmptyCorpus when nothing indexable was found.
// Each run gets a build ID so concurrent log streams can be told apart.
func (b *Builder) Build(ctx context.Context) error {
	logger := b.logger.With(zap.String("build_id", uuid.New().String()[:8]))
	docs, err := b.loader.Load(b.cfg.Corpus.Directory)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyCorpus, b.cfg.Corpus.Directory)
	}

	chunks := b.splitter.Split(docs)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyCorpus, b.cfg.Corpus.Directory)
	}
	logger.Info("corpus loaded",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)))

	if err := b.embedChunks(ctx, chunks); err != nil {
		return err
	}

	if err := b.store.ReplaceAll(ctx, chunks); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}

	ids := make([]string, len(chunks))
	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.ID
		vectors[i] = chunk.Embedding
	}
	b.index.Reset()
	if err := b.index.Add(ctx, ids, vectors); err != nil {
		return fmt.Errorf("populate index: %w", err)
	}

	vectorsPath := VectorsPath(b.cfg.Index.Path)
	if err := b.index.Save(vectorsPath); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	logger.Info("index built",
		zap.Int("vectors", b.index.Size()),
		zap.String("path", vectorsPath))
	return nil
}

// embedChunks embeds chunk contents in batches and attaches the vectors.
func (b *Builder) embedChunks(ctx context.Context, chunks []*models.Chunk) error {
	batchSize := b.cfg.Embedding.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, end-start)
		for i, chunk := range chunks[start:end] {
			texts[i] = chunk.Content
		}
		embeddings, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(embeddings) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(embeddings), len(texts))
		}
		for i, emb := range embeddings {
			chunks[start+i].Embedding = emb
		}
	}
	return nil
}
