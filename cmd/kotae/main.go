// Package main is the Kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/chat"
	"github.com/hyperjump/kotae/internal/cli"
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
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "kotae server" from the project dir picks up the
// project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// API keys commonly live in a .env next to the config during development.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "build":
		runBuild()
	case "ask":
		runAsk()
	case "clear":
		runClear()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Usage: kotae <command> [flags]

Commands:
  server    Start the question-answering HTTP server
  build     Rebuild the index from the corpus directory
  ask       Ask a question against a running server
  clear     Clear a conversation session on a running server
  status    Show index and corpus status of a running server
  version   Print version
  help      Show this help

Run "kotae <command> -h" for command flags.
`)
}

// components holds everything the server and build commands wire together.
type components struct {
	cfg      *config.Config
	logger   *zap.Logger
	embedder embedding.Embedder
	store    *storage.SQLiteStore
	index    *vector.Index
	manager  *indexer.Manager
	engine   *chat.Engine
}

func (c *components) Close() {
	if c.embedder != nil {
		_ = c.embedder.Close()
	}
	if c.store != nil {
		_ = c.store.Close()
	}
}

func initComponents(cfg *config.Config, logger *zap.Logger, debugMode bool) (*components, error) {
	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	store, err := storage.NewSQLiteStore(filepath.Join(cfg.Index.Path, indexer.ChunksFile))
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("open chunk store: %w", err)
	}

	index, err := vector.NewIndex(embedder.Dimensions())
	if err != nil {
		_ = embedder.Close()
		_ = store.Close()
		return nil, err
	}

	generator, err := llm.New(&cfg.LLM)
	if err != nil {
		_ = embedder.Close()
		_ = store.Close()
		return nil, fmt.Errorf("create generator: %w", err)
	}

	loaderOpts := []ingest.LoaderOption{}
	if debugMode {
		loaderOpts = append(loaderOpts, ingest.WithLogger(logger))
	}
	loader := ingest.NewLoader(extract.NewExtractor(), cfg.Corpus.Extensions, loaderOpts...)
	splitter := ingest.NewSplitter(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	builder := indexer.NewBuilder(loader, splitter, embedder, store, index, cfg, logger)
	manager := indexer.NewManager(builder, logger)

	retriever := indexer.NewRetriever(embedder, index, store, cfg.Retrieval.TopK)
	mem := memory.NewStore(cfg.Memory.ContextWindow, cfg.Memory.ContextBudget)
	engine := chat.NewEngine(retriever, generator, mem, logger)

	return &components{
		cfg:      cfg,
		logger:   logger,
		embedder: embedder,
		store:    store,
		index:    index,
		manager:  manager,
		engine:   engine,
	}, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	rebuild := fs.Bool("rebuild", false, "force a rebuild instead of restoring the persisted index")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode))

	comps, err := initComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	watchOpts := []watcher.Option{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watch := watcher.New(cfg.Corpus.Directory, cfg.Corpus.Extensions, watchOpts...)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()

	srv := server.NewServer(comps.engine, comps.manager, comps.store, comps.index, watch, cfg, logger)

	// Serve immediately; /chat answers 503 and /health reports "starting"
	// until initialization finishes.
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()
	go func() {
		forceRebuild := cfg.Index.ForceRebuild || *rebuild
		if err := comps.manager.Initialize(context.Background(), forceRebuild); err != nil {
			logger.Error("initialization failed, serving health only", zap.Error(err))
			return
		}
		if err := watch.Start(watchCtx); err != nil {
			logger.Warn("corpus watcher failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	watch.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	comps, err := initComponents(cfg, logger, cfg.Debug || *debug)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	if err := comps.manager.Initialize(context.Background(), true); err != nil {
		logger.Fatal("Build failed", zap.Error(err))
	}
	fmt.Printf("Index built: %d vectors at %s\n", comps.index.Size(), cfg.Index.Path)
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8000", "server URL")
	session := fs.String("session", models.DefaultSessionID, "conversation session ID")
	noMemory := fs.Bool("no-memory", false, "answer without conversation memory")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fmt.Println("Usage: kotae ask [flags] <question>")
		os.Exit(1)
	}
	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	useMemory := !*noMemory
	resp, err := askViaHTTP(*serverURL, &models.ChatRequest{
		Question:  question,
		SessionID: *session,
		UseMemory: &useMemory,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	_ = cli.WriteChatResponse(os.Stdout, resp, format)
}

func runClear() {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8000", "server URL")
	session := fs.String("session", models.DefaultSessionID, "conversation session ID")
	_ = fs.Parse(os.Args[2:])

	body, err := json.Marshal(models.ClearRequest{SessionID: *session})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Clear failed: %v\n", err)
		os.Exit(1)
	}
	resp, err := http.Post(*serverURL+"/chat/clear", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Clear failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Clear failed: %s\n", readError(resp.Body))
		os.Exit(1)
	}
	fmt.Printf("Session %q cleared\n", *session)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8000", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Status failed: %s\n", readError(resp.Body))
		os.Exit(1)
	}

	var status map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	_ = cli.WriteJSON(os.Stdout, status)
}

func askViaHTTP(serverURL string, req *models.ChatRequest) (*models.ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpResp, err := http.Post(serverURL+"/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", httpResp.StatusCode, readError(httpResp.Body))
	}
	var resp models.ChatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// readError extracts the error message from an API error body.
func readError(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return err.Error()
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		return apiErr.Error
	}
	return strings.TrimSpace(string(data))
}
