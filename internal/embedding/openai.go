package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hyperjump/kotae/pkg/utils"
)

const (
	openaiDefaultBaseURL = "https://api.openai.com/v1"
	openaiTimeout        = 60 * time.Second
	openaiMaxRetries     = 3
)

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

type openaiEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openaiEmbedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIEmbedder creates an embedder backed by the OpenAI API. baseURL may
// be empty to use the public endpoint; override it for compatible gateways.
func NewOpenAIEmbedder(apiKey, model string, dimensions int, baseURL string) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, providerErr("openai", "init", fmt.Errorf("API key is required (set OPENAI_API_KEY)"))
	}
	if baseURL == "" {
		baseURL = openaiDefaultBaseURL
	}
	return &OpenAIEmbedder{
		client:     &http.Client{Timeout: openaiTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		dimensions: dimensions,
	}, nil
}

// Embed generates an embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, providerErr("openai", "embed", fmt.Errorf("no embedding returned"))
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request. The
// provider returns results keyed by input index, so output order matches the
// input order regardless of response order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	jsonBody, err := json.Marshal(openaiEmbedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, providerErr("openai", "embed", fmt.Errorf("marshal request: %w", err))
	}

	body, err := e.post(ctx, jsonBody)
	if err != nil {
		return nil, err
	}

	var embedResp openaiEmbedResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, providerErr("openai", "embed", fmt.Errorf("decode response: %w", err))
	}
	if embedResp.Error != nil {
		return nil, providerErr("openai", "embed", fmt.Errorf("%s: %s", embedResp.Error.Type, embedResp.Error.Message))
	}
	if len(embedResp.Data) != len(texts) {
		return nil, providerErr("openai", "embed",
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embedResp.Data)))
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range embedResp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, providerErr("openai", "embed", fmt.Errorf("embedding index %d out of range", data.Index))
		}
		vec := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vec[i] = float32(v)
		}
		// The index scores by inner product, so every vector must be unit norm.
		utils.NormalizeL2(vec)
		embeddings[data.Index] = vec
	}
	return embeddings, nil
}

// post sends the request, retrying transient failures (network errors and 5xx)
// with exponential backoff. Quota responses are surfaced immediately as
// ErrQuotaExceeded; retrying them would only burn more of the quota window.
func (e *OpenAIEmbedder) post(ctx context.Context, jsonBody []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < openaiMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, providerErr("openai", "embed", ctx.Err())
			case <-time.After(time.Duration(1<<(attempt-1)) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(jsonBody))
		if err != nil {
			return nil, providerErr("openai", "embed", fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+e.apiKey)

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
			return nil, quotaErr("openai", "embed", truncateBody(body))
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body))
			if wait := retryAfter(resp); wait > 0 {
				select {
				case <-ctx.Done():
					return nil, providerErr("openai", "embed", ctx.Err())
				case <-time.After(wait):
				}
			}
			continue
		default:
			return nil, providerErr("openai", "embed",
				fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body)))
		}
	}
	return nil, providerErr("openai", "embed", fmt.Errorf("after %d attempts: %w", openaiMaxRetries, lastErr))
}

// Dimensions returns the embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Provider returns the provider name.
func (e *OpenAIEmbedder) Provider() string {
	return "openai"
}

// Close is a no-op; the HTTP client holds no resources needing cleanup.
func (e *OpenAIEmbedder) Close() error {
	return nil
}

// retryAfter parses a Retry-After header given in seconds, capped at one minute.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	if secs > 60 {
		secs = 60
	}
	return time.Duration(secs) * time.Second
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
