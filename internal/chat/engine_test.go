package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/ingest"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/memory"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
)

func newTestEngine(t *testing.T, gen llm.Generator) (*Engine, *memory.Store) {
	t.Helper()
	root := t.TempDir()

	var cfg config.Config
	config.ApplyDefaults(&cfg)
	cfg.Corpus.Directory = filepath.Join(root, "documents")
	cfg.Corpus.Extensions = []string{".txt"}
	cfg.Index.Path = filepath.Join(root, "vector_store")
	cfg.Embedding.Dimensions = 128
	cfg.Chunking.ChunkSize = 200
	cfg.Chunking.ChunkOverlap = 40

	if err := os.MkdirAll(cfg.Corpus.Directory, 0755); err != nil {
		t.Fatal(err)
	}
	corpus := map[string]string{
		"france.txt":  "The capital of France is Paris. Paris sits on the Seine river.",
		"storage.txt": "SQLite keeps table rows inside fixed-size b-tree pages on disk.",
	}
	for name, content := range corpus {
		if err := os.WriteFile(filepath.Join(cfg.Corpus.Directory, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	emb := embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	store, err := storage.NewSQLiteStore(filepath.Join(cfg.Index.Path, indexer.ChunksFile))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	idx, err := vector.NewIndex(cfg.Embedding.Dimensions)
	if err != nil {
		t.Fatal(err)
	}

	loader := ingest.NewLoader(extract.NewExtractor(), cfg.Corpus.Extensions)
	splitter := ingest.NewSplitter(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	builder := indexer.NewBuilder(loader, splitter, emb, store, idx, &cfg, zap.NewNop())
	if err := builder.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	retriever := indexer.NewRetriever(emb, idx, store, cfg.Retrieval.TopK)
	mem := memory.NewStore(cfg.Memory.ContextWindow, cfg.Memory.ContextBudget)
	return NewEngine(retriever, gen, mem, zap.NewNop()), mem
}

func askReq(question, session string) *models.ChatRequest {
	req := &models.ChatRequest{Question: question, SessionID: session}
	_ = req.Validate()
	return req
}

func TestAnswerReturnsGroundedAnswerAndSources(t *testing.T) {
	engine, _ := newTestEngine(t, llm.NewMockGenerator())

	resp, err := engine.Answer(context.Background(), askReq("what is the capital of France?", "default"))
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !strings.Contains(resp.Answer, "Paris") {
		t.Errorf("answer %q should mention Paris", resp.Answer)
	}
	if len(resp.Sources) == 0 || resp.Sources[0] != "france.txt" {
		t.Errorf("sources = %v, want france.txt first", resp.Sources)
	}
	for i, src := range resp.Sources {
		for j := i + 1; j < len(resp.Sources); j++ {
			if src == resp.Sources[j] {
				t.Errorf("duplicate source %s", src)
			}
		}
	}
	if resp.SessionID != "default" {
		t.Errorf("session = %q", resp.SessionID)
	}
}

func TestAnswerRecordsMemoryAfterSuccess(t *testing.T) {
	engine, mem := newTestEngine(t, llm.NewMockGenerator())
	ctx := context.Background()

	if _, err := engine.Answer(ctx, askReq("what is the capital of France?", "sess")); err != nil {
		t.Fatal(err)
	}

	msgs := mem.Messages("sess")
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want user+assistant", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleAssistant {
		t.Errorf("roles = %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[0].Content != "what is the capital of France?" {
		t.Errorf("recorded question = %q, must be the original question", msgs[0].Content)
	}

	// Second question in the same session sees the history.
	if _, err := engine.Answer(ctx, askReq("and what river does it sit on?", "sess")); err != nil {
		t.Fatal(err)
	}
	if got := len(mem.Messages("sess")); got != 4 {
		t.Errorf("after second question got %d messages, want 4", got)
	}
}

type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, req *llm.Request) (string, error) {
	return "", errors.New("backend down")
}
func (failingGenerator) Provider() string { return "failing" }
func (failingGenerator) Close() error     { return nil }

func TestAnswerFailureLeavesMemoryUntouched(t *testing.T) {
	engine, mem := newTestEngine(t, failingGenerator{})

	_, err := engine.Answer(context.Background(), askReq("anything", "sess"))
	if err == nil {
		t.Fatal("expected generation error")
	}
	if got := len(mem.Messages("sess")); got != 0 {
		t.Errorf("failed request recorded %d messages, want 0", got)
	}
}

type emptyGenerator struct{}

func (emptyGenerator) Generate(ctx context.Context, req *llm.Request) (string, error) {
	return "   ", nil
}
func (emptyGenerator) Provider() string { return "empty" }
func (emptyGenerator) Close() error     { return nil }

func TestAnswerFallsBackOnEmptyGeneration(t *testing.T) {
	engine, _ := newTestEngine(t, emptyGenerator{})

	resp, err := engine.Answer(context.Background(), askReq("anything", "default"))
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Answer != llm.FallbackAnswer {
		t.Errorf("answer = %q, want fallback", resp.Answer)
	}
}

func TestAnswerMemoryDisabled(t *testing.T) {
	engine, mem := newTestEngine(t, llm.NewMockGenerator())

	off := false
	req := &models.ChatRequest{Question: "what is the capital of France?", SessionID: "sess", UseMemory: &off}
	if err := req.Validate(); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Answer(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if got := len(mem.Messages("sess")); got != 0 {
		t.Errorf("memory-off request recorded %d messages, want 0", got)
	}
}

func TestClear(t *testing.T) {
	engine, mem := newTestEngine(t, llm.NewMockGenerator())
	ctx := context.Background()

	if _, err := engine.Answer(ctx, askReq("what is the capital of France?", "sess")); err != nil {
		t.Fatal(err)
	}
	engine.Clear("sess")
	if got := len(mem.Messages("sess")); got != 0 {
		t.Errorf("after Clear got %d messages, want 0", got)
	}
}
