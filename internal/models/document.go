// Package models defines core data structures for documents, chunks, and chat exchanges.
package models

import "time"

// Document is one extracted corpus file: the full text plus provenance metadata.
type Document struct {
	ID      string `json:"id"`
	Source  string `json:"source"`    // base filename, the citation unit returned to users
	Path    string `json:"file_path"` // absolute path of the corpus file
	Content string `json:"content"`
}

// Chunk is a bounded span of one document's text, the atomic unit that is
// embedded, stored, and retrieved. Immutable once created.
type Chunk struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Source     string    `json:"source" db:"source"`
	SourcePath string    `json:"source_path" db:"source_path"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	Content    string    `json:"content" db:"content"`
	Embedding  []float32 `json:"-" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// RetrievedChunk is a chunk returned by similarity search with its score.
type RetrievedChunk struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
}
