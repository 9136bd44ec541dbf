// Package storage defines the persistence interface for chunk text and provenance.
package storage

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// ChunkStore persists chunk text and provenance alongside the vector index.
// The index holds only IDs and vectors; answers need the text back, so
// retrieval hydrates chunks from here by ID.
type ChunkStore interface {
	// ReplaceAll atomically swaps the stored chunks for a fresh build.
	ReplaceAll(ctx context.Context, chunks []*models.Chunk) error

	// GetChunks returns the chunks for the given IDs in the given order.
	// IDs with no stored chunk are skipped.
	GetChunks(ctx context.Context, ids []string) ([]*models.Chunk, error)

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int64, error)

	// ListSources returns the distinct source file names, sorted.
	ListSources(ctx context.Context) ([]string, error)

	Close() error
}
