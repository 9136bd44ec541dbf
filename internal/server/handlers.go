package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.manager.Ready() {
		s.respondError(w, http.StatusServiceUnavailable,
			"service is not ready (index state: "+s.manager.State().String()+")")
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Debug("chat request",
		zap.String("session", req.SessionID), zap.Int("question_chars", len(req.Question)))

	resp, err := s.engine.Answer(r.Context(), &req)
	if err != nil {
		s.logger.Error("chat failed", zap.Error(err))
		if errors.Is(err, llm.ErrQuotaExceeded) || errors.Is(err, embedding.ErrQuotaExceeded) {
			s.respondError(w, http.StatusServiceUnavailable, "provider quota exceeded, try again later")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req models.ClearRequest
	// An empty body clears the default session.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		req.SessionID = models.DefaultSessionID
	}

	s.engine.Clear(req.SessionID)
	s.logger.Debug("cleared session", zap.String("session", req.SessionID))
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":     "cleared",
		"session_id": req.SessionID,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := s.manager.State()
	resp := map[string]any{"state": state.String()}

	var status string
	code := http.StatusOK
	switch state {
	case indexer.StateReady:
		status = "ok"
		if s.watch != nil && s.watch.Stale() {
			status = "degraded"
			resp["detail"] = "corpus changed since the index was built; rebuild to pick up changes"
		}
	case indexer.StateFailed:
		status = "unavailable"
		code = http.StatusServiceUnavailable
		if err := s.manager.Err(); err != nil {
			resp["detail"] = err.Error()
		}
	default:
		status = "starting"
	}
	resp["status"] = status
	s.respondJSON(w, code, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chunkCount, err := s.store.CountChunks(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sources, err := s.store.ListSources(ctx)
	if err != nil {
		s.logger.Error("status: list sources failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{
		"state":             s.manager.State().String(),
		"chunks":            chunkCount,
		"documents":         len(sources),
		"sources":           sources,
		"vector_index_size": s.index.Size(),
		"sessions":          s.engine.Sessions(),
	}
	if !s.manager.ReadyAt().IsZero() {
		resp["ready_at"] = s.manager.ReadyAt()
	}
	if s.watch != nil {
		resp["corpus_stale"] = s.watch.Stale()
	}
	if diskBytes, err := storage.DiskUsageBytes(s.cfg.Index.Path); err == nil {
		resp["index_disk_bytes"] = diskBytes
	}

	resp["config"] = map[string]any{
		"embedding_provider":   s.cfg.Embedding.Provider,
		"embedding_model":      s.cfg.Embedding.Model,
		"embedding_dimensions": s.index.Dimensions(),
		"llm_provider":         s.cfg.LLM.Provider,
		"llm_model":            s.cfg.LLM.Model,
		"chunk_size":           s.cfg.Chunking.ChunkSize,
		"chunk_overlap":        s.cfg.Chunking.ChunkOverlap,
		"top_k":                s.cfg.Retrieval.TopK,
		"corpus_directory":     s.cfg.Corpus.Directory,
		"index_path":           s.cfg.Index.Path,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
