package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/kotae/pkg/utils"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiTimeout        = 60 * time.Second
	geminiMaxRetries     = 3
)

// GeminiEmbedder generates embeddings through the Google Generative Language API.
type GeminiEmbedder struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbedRequest struct {
	Model                string        `json:"model"`
	Content              geminiContent `json:"content"`
	OutputDimensionality int           `json:"outputDimensionality,omitempty"`
}

type geminiBatchRequest struct {
	Requests []geminiEmbedRequest `json:"requests"`
}

type geminiEmbedding struct {
	Values []float32 `json:"values"`
}

type geminiBatchResponse struct {
	Embeddings []geminiEmbedding `json:"embeddings"`
	Error      *geminiError      `json:"error,omitempty"`
}

type geminiSingleResponse struct {
	Embedding *geminiEmbedding `json:"embedding"`
	Error     *geminiError     `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewGeminiEmbedder creates an embedder backed by the Gemini API.
func NewGeminiEmbedder(apiKey, model string, dimensions int, baseURL string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, providerErr("gemini", "init", fmt.Errorf("API key is required (set GOOGLE_API_KEY)"))
	}
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	return &GeminiEmbedder{
		client:     &http.Client{Timeout: geminiTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		dimensions: dimensions,
	}, nil
}

// Embed generates an embedding for a single text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(e.embedRequest(text))
	if err != nil {
		return nil, providerErr("gemini", "embed", fmt.Errorf("marshal request: %w", err))
	}
	respBody, err := e.post(ctx, e.model+":embedContent", body)
	if err != nil {
		return nil, err
	}

	var resp geminiSingleResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, providerErr("gemini", "embed", fmt.Errorf("decode response: %w", err))
	}
	if resp.Error != nil {
		return nil, e.apiError("embed", resp.Error)
	}
	if resp.Embedding == nil {
		return nil, providerErr("gemini", "embed", fmt.Errorf("no embedding returned"))
	}
	// Embeddings at a non-default outputDimensionality are not unit norm,
	// and the index scores by inner product.
	utils.NormalizeL2(resp.Embedding.Values)
	return resp.Embedding.Values, nil
}

// EmbedBatch generates embeddings for multiple texts in one batchEmbedContents
// call. The API preserves request order in its response.
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batch := geminiBatchRequest{Requests: make([]geminiEmbedRequest, len(texts))}
	for i, text := range texts {
		batch.Requests[i] = e.embedRequest(text)
	}
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, providerErr("gemini", "embed", fmt.Errorf("marshal request: %w", err))
	}

	respBody, err := e.post(ctx, e.model+":batchEmbedContents", body)
	if err != nil {
		return nil, err
	}

	var resp geminiBatchResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, providerErr("gemini", "embed", fmt.Errorf("decode response: %w", err))
	}
	if resp.Error != nil {
		return nil, e.apiError("embed", resp.Error)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, providerErr("gemini", "embed",
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings)))
	}

	embeddings := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		utils.NormalizeL2(emb.Values)
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

func (e *GeminiEmbedder) embedRequest(text string) geminiEmbedRequest {
	return geminiEmbedRequest{
		Model:                e.model,
		Content:              geminiContent{Parts: []geminiPart{{Text: text}}},
		OutputDimensionality: e.dimensions,
	}
}

func (e *GeminiEmbedder) apiError(op string, apiErr *geminiError) error {
	if apiErr.Status == "RESOURCE_EXHAUSTED" || apiErr.Code == http.StatusTooManyRequests {
		return quotaErr("gemini", op, apiErr.Message)
	}
	return providerErr("gemini", op, fmt.Errorf("%s: %s", apiErr.Status, apiErr.Message))
}

// post sends the request, retrying network errors and 5xx with backoff. Quota
// responses surface immediately as ErrQuotaExceeded.
func (e *GeminiEmbedder) post(ctx context.Context, path string, jsonBody []byte) ([]byte, error) {
	url := e.baseURL + "/" + path
	var lastErr error
	for attempt := 0; attempt < geminiMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, providerErr("gemini", "embed", ctx.Err())
			case <-time.After(time.Duration(1<<(attempt-1)) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, providerErr("gemini", "embed", fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", e.apiKey)

		resp, err := e.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("send request: %w", err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, quotaErr("gemini", "embed", truncateBody(body))
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body))
			continue
		default:
			return nil, providerErr("gemini", "embed",
				fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body)))
		}
	}
	return nil, providerErr("gemini", "embed", fmt.Errorf("after %d attempts: %w", geminiMaxRetries, lastErr))
}

// Dimensions returns the embedding dimension.
func (e *GeminiEmbedder) Dimensions() int {
	return e.dimensions
}

// Provider returns the provider name.
func (e *GeminiEmbedder) Provider() string {
	return "gemini"
}

// Close is a no-op; the HTTP client holds no resources needing cleanup.
func (e *GeminiEmbedder) Close() error {
	return nil
}
