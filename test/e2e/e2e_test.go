package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/chat"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/ingest"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/memory"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
)

const e2eDimensions = 128

// stack bundles everything a test needs to poke at after wiring.
type stack struct {
	cfg     *config.Config
	store   *storage.SQLiteStore
	index   *vector.Index
	manager *indexer.Manager
	handler http.Handler
}

// newStack wires the full pipeline over cfg. It does not build the index;
// callers decide whether to Initialize, force a rebuild, or restore.
func newStack(t *testing.T, cfg *config.Config) *stack {
	t.Helper()

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
	builder := indexer.NewBuilder(loader, splitter, emb, store, idx, cfg, zap.NewNop())
	manager := indexer.NewManager(builder, zap.NewNop())

	retriever := indexer.NewRetriever(emb, idx, store, cfg.Retrieval.TopK)
	mem := memory.NewStore(cfg.Memory.ContextWindow, cfg.Memory.ContextBudget)
	engine := chat.NewEngine(retriever, llm.NewMockGenerator(), mem, zap.NewNop())

	srv := server.NewServer(engine, manager, store, idx, nil, cfg, zap.NewNop())
	return &stack{
		cfg:     cfg,
		store:   store,
		index:   idx,
		manager: manager,
		handler: srv.Router(),
	}
}

func e2eConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	var cfg config.Config
	config.ApplyDefaults(&cfg)
	cfg.Corpus.Directory = filepath.Join(root, "documents")
	cfg.Corpus.Extensions = []string{".txt", ".docx"}
	cfg.Index.Path = filepath.Join(root, "vector_store")
	cfg.Embedding.Provider = "mock"
	cfg.Embedding.Dimensions = e2eDimensions
	cfg.LLM.Provider = "mock"
	cfg.Chunking.ChunkSize = 300
	cfg.Chunking.ChunkOverlap = 60
	return &cfg
}

func e2eCorpus(t *testing.T, dir string) {
	t.Helper()
	writeCorpus(t, dir, map[string][]byte{
		"france.docx": minimalDocx(t,
			"France is a country in western Europe.",
			"The capital of France is Paris.",
			"Paris is known for the Eiffel Tower."),
		"storage.txt": []byte("Object storage keeps data as immutable blobs.\n\n" +
			"Each blob is addressed by a unique key and replicated across zones."),
		"cooking.txt": []byte("A roux is made from flour and butter.\n\n" +
			"Stock simmers for hours to develop flavour."),
	})
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func getJSON(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v (body %q)", path, err, rec.Body.String())
		}
	}
	return rec.Code
}

func askChat(t *testing.T, h http.Handler, question, session string) models.ChatResponse {
	t.Helper()
	rec := postJSON(t, h, "/chat", models.ChatRequest{Question: question, SessionID: session})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /chat = %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestChatOverMixedCorpus(t *testing.T) {
	root := t.TempDir()
	cfg := e2eConfig(t, root)
	e2eCorpus(t, cfg.Corpus.Directory)

	s := newStack(t, cfg)
	if err := s.manager.Initialize(context.Background(), false); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	resp := askChat(t, s.handler, "What is the capital of France?", "geo")
	if !strings.Contains(resp.Answer, "Paris") {
		t.Errorf("answer = %q, want mention of Paris", resp.Answer)
	}
	found := false
	for _, src := range resp.Sources {
		if src == "france.docx" {
			found = true
		}
	}
	if !found {
		t.Errorf("sources = %v, want france.docx", resp.Sources)
	}
	if resp.SessionID != "geo" {
		t.Errorf("session_id = %q, want geo", resp.SessionID)
	}

	// Follow-up in the same session keeps working with history present.
	resp = askChat(t, s.handler, "Which tower is Paris known for?", "geo")
	if !strings.Contains(resp.Answer, "Eiffel") {
		t.Errorf("follow-up answer = %q, want mention of Eiffel", resp.Answer)
	}

	var status map[string]any
	if code := getJSON(t, s.handler, "/api/v1/status", &status); code != http.StatusOK {
		t.Fatalf("GET /api/v1/status = %d", code)
	}
	if got := status["documents"].(float64); got != 3 {
		t.Errorf("documents = %v, want 3", got)
	}
	if got := status["sessions"].(float64); got < 1 {
		t.Errorf("sessions = %v, want at least 1", got)
	}
	if got := status["vector_index_size"].(float64); got < 3 {
		t.Errorf("vector_index_size = %v, want at least 3", got)
	}
}

func TestHealthAndClear(t *testing.T) {
	root := t.TempDir()
	cfg := e2eConfig(t, root)
	e2eCorpus(t, cfg.Corpus.Directory)

	s := newStack(t, cfg)

	var health map[string]any
	if code := getJSON(t, s.handler, "/health", &health); code != http.StatusOK {
		t.Fatalf("GET /health before init = %d", code)
	}
	if health["status"] != "starting" {
		t.Errorf("status before init = %v, want starting", health["status"])
	}

	if err := s.manager.Initialize(context.Background(), false); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if code := getJSON(t, s.handler, "/health", &health); code != http.StatusOK {
		t.Fatalf("GET /health after init = %d", code)
	}
	if health["status"] != "ok" {
		t.Errorf("status after init = %v, want ok", health["status"])
	}

	askChat(t, s.handler, "What holds data as immutable blobs?", "ops")
	rec := postJSON(t, s.handler, "/chat/clear", models.ClearRequest{SessionID: "ops"})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /chat/clear = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRestartRestoresIndex(t *testing.T) {
	root := t.TempDir()
	cfg := e2eConfig(t, root)
	e2eCorpus(t, cfg.Corpus.Directory)

	first := newStack(t, cfg)
	if err := first.manager.Initialize(context.Background(), false); err != nil {
		t.Fatalf("first Initialize: %v", err)
	}
	built := first.index.Size()
	if built == 0 {
		t.Fatal("expected a non-empty index after build")
	}
	first.store.Close()

	// Remove the corpus so a rebuild would fail; restore must not need it.
	if err := os.RemoveAll(cfg.Corpus.Directory); err != nil {
		t.Fatal(err)
	}

	second := newStack(t, cfg)
	if err := second.manager.Initialize(context.Background(), false); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if second.index.Size() != built {
		t.Errorf("restored index size = %d, want %d", second.index.Size(), built)
	}

	resp := askChat(t, second.handler, "What is the capital of France?", "geo")
	if !strings.Contains(resp.Answer, "Paris") {
		t.Errorf("answer after restore = %q, want mention of Paris", resp.Answer)
	}
}

func TestDimensionChangeForcesRebuild(t *testing.T) {
	root := t.TempDir()
	cfg := e2eConfig(t, root)
	e2eCorpus(t, cfg.Corpus.Directory)

	first := newStack(t, cfg)
	if err := first.manager.Initialize(context.Background(), false); err != nil {
		t.Fatalf("first Initialize: %v", err)
	}
	first.store.Close()

	cfg2 := e2eConfig(t, root)
	cfg2.Embedding.Dimensions = 64
	second := newStack(t, cfg2)
	if err := second.manager.Initialize(context.Background(), false); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if second.index.Dimensions() != 64 {
		t.Errorf("dimensions after rebuild = %d, want 64", second.index.Dimensions())
	}
	if second.index.Size() == 0 {
		t.Error("expected a rebuilt index, got empty")
	}
}
