package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiTimeout        = 120 * time.Second
	geminiMaxRetries     = 3
)

// GeminiGenerator generates answers through the Google Generative Language API.
type GeminiGenerator struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewGeminiGenerator creates a generator backed by the Gemini API.
func NewGeminiGenerator(apiKey, model string, temperature float64, baseURL string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, providerErr("gemini", "init", fmt.Errorf("API key is required (set GOOGLE_API_KEY)"))
	}
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	return &GeminiGenerator{
		client:      &http.Client{Timeout: geminiTimeout},
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
	}, nil
}

// Generate sends the request through generateContent and returns the first
// candidate's text.
func (g *GeminiGenerator) Generate(ctx context.Context, req *Request) (string, error) {
	jsonBody, err := json.Marshal(geminiGenerateRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: SystemPrompt}}},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: userPrompt(req)}}},
		},
		GenerationConfig: geminiGenerationConfig{Temperature: g.temperature},
	})
	if err != nil {
		return "", providerErr("gemini", "generate", fmt.Errorf("marshal request: %w", err))
	}

	body, err := g.post(ctx, jsonBody)
	if err != nil {
		return "", err
	}

	var genResp geminiGenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", providerErr("gemini", "generate", fmt.Errorf("decode response: %w", err))
	}
	if genResp.Error != nil {
		if genResp.Error.Status == "RESOURCE_EXHAUSTED" || genResp.Error.Code == http.StatusTooManyRequests {
			return "", quotaErr("gemini", "generate", genResp.Error.Message)
		}
		return "", providerErr("gemini", "generate", fmt.Errorf("%s: %s", genResp.Error.Status, genResp.Error.Message))
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", providerErr("gemini", "generate", fmt.Errorf("no candidates returned"))
	}

	var b strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String()), nil
}

func (g *GeminiGenerator) post(ctx context.Context, jsonBody []byte) ([]byte, error) {
	url := g.baseURL + "/" + g.model + ":generateContent"
	var lastErr error
	for attempt := 0; attempt < geminiMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, providerErr("gemini", "generate", ctx.Err())
			case <-time.After(time.Duration(1<<(attempt-1)) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, providerErr("gemini", "generate", fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", g.apiKey)

		resp, err := g.client.Do(req)
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
			return nil, quotaErr("gemini", "generate", truncateBody(body))
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body))
			continue
		default:
			return nil, providerErr("gemini", "generate",
				fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body)))
		}
	}
	return nil, providerErr("gemini", "generate", fmt.Errorf("after %d attempts: %w", geminiMaxRetries, lastErr))
}

// Provider returns the provider name.
func (g *GeminiGenerator) Provider() string {
	return "gemini"
}

// Close is a no-op; the HTTP client holds no resources needing cleanup.
func (g *GeminiGenerator) Close() error {
	return nil
}
