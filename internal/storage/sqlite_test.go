package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "chunks.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testChunk(id, source string, index int) *models.Chunk {
	return &models.Chunk{
		ID:         id,
		DocumentID: "doc:" + source,
		Source:     source,
		SourcePath: "/corpus/" + source,
		ChunkIndex: index,
		Content:    fmt.Sprintf("content of %s chunk %d", source, index),
	}
}

func TestReplaceAllAndGetChunks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.ReplaceAll(ctx, []*models.Chunk{
		testChunk("c1", "guide.pdf", 0),
		testChunk("c2", "guide.pdf", 1),
		testChunk("c3", "notes.docx", 0),
	})
	if err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	chunks, err := store.GetChunks(ctx, []string{"c3", "c1"})
	if err != nil {
		t.Fatalf("GetChunks: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	// Input order preserved, not table order.
	if chunks[0].ID != "c3" || chunks[1].ID != "c1" {
		t.Errorf("order = %s, %s; want c3, c1", chunks[0].ID, chunks[1].ID)
	}
	if chunks[0].Source != "notes.docx" || chunks[0].SourcePath != "/corpus/notes.docx" {
		t.Errorf("provenance not round-tripped: %+v", chunks[0])
	}
}

func TestReplaceAllSwapsContents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceAll(ctx, []*models.Chunk{testChunk("old", "a.pdf", 0)}); err != nil {
		t.Fatal(err)
	}
	if err := store.ReplaceAll(ctx, []*models.Chunk{testChunk("new", "b.pdf", 0)}); err != nil {
		t.Fatal(err)
	}

	if chunks, _ := store.GetChunks(ctx, []string{"old"}); len(chunks) != 0 {
		t.Error("previous build's chunks should be gone after ReplaceAll")
	}
	count, err := store.CountChunks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("CountChunks = %d, want 1", count)
	}
}

func TestGetChunksSkipsMissing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceAll(ctx, []*models.Chunk{testChunk("present", "a.pdf", 0)}); err != nil {
		t.Fatal(err)
	}
	chunks, err := store.GetChunks(ctx, []string{"present", "absent"})
	if err != nil {
		t.Fatalf("GetChunks: %v", err)
	}
	if len(chunks) != 1 || chunks[0].ID != "present" {
		t.Errorf("got %v, want only the present chunk", chunks)
	}
}

func TestGetChunksEmptyInput(t *testing.T) {
	store := newTestStore(t)
	chunks, err := store.GetChunks(context.Background(), nil)
	if err != nil || chunks != nil {
		t.Errorf("empty input should be a no-op, got %v, %v", chunks, err)
	}
}

func TestListSources(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.ReplaceAll(ctx, []*models.Chunk{
		testChunk("c1", "zebra.pdf", 0),
		testChunk("c2", "apple.docx", 0),
		testChunk("c3", "apple.docx", 1),
	})
	if err != nil {
		t.Fatal(err)
	}

	sources, err := store.ListSources(ctx)
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(sources) != 2 || sources[0] != "apple.docx" || sources[1] != "zebra.pdf" {
		t.Errorf("ListSources = %v, want [apple.docx zebra.pdf]", sources)
	}
}

func TestNewSQLiteStoreCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "chunks.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	count, err := store.CountChunks(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("fresh store CountChunks = %d, want 0", count)
	}
}
