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
	openaiDefaultBaseURL = "https://api.openai.com/v1"
	openaiTimeout        = 120 * time.Second
	openaiMaxRetries     = 3
)

// OpenAIGenerator generates answers through the OpenAI chat completions API.
type OpenAIGenerator struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

type openaiChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openaiChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message openaiChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIGenerator creates a generator backed by the OpenAI API. baseURL
// may be empty to use the public endpoint.
func NewOpenAIGenerator(apiKey, model string, temperature float64, baseURL string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, providerErr("openai", "init", fmt.Errorf("API key is required (set OPENAI_API_KEY)"))
	}
	if baseURL == "" {
		baseURL = openaiDefaultBaseURL
	}
	return &OpenAIGenerator{
		client:      &http.Client{Timeout: openaiTimeout},
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
	}, nil
}

// Generate sends the system prompt plus the rendered request and returns the
// model's answer text.
func (g *OpenAIGenerator) Generate(ctx context.Context, req *Request) (string, error) {
	jsonBody, err := json.Marshal(openaiChatRequest{
		Model: g.model,
		Messages: []openaiChatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: userPrompt(req)},
		},
		Temperature: g.temperature,
	})
	if err != nil {
		return "", providerErr("openai", "generate", fmt.Errorf("marshal request: %w", err))
	}

	body, err := g.post(ctx, jsonBody)
	if err != nil {
		return "", err
	}

	var chatResp openaiChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", providerErr("openai", "generate", fmt.Errorf("decode response: %w", err))
	}
	if chatResp.Error != nil {
		return "", providerErr("openai", "generate", fmt.Errorf("%s: %s", chatResp.Error.Type, chatResp.Error.Message))
	}
	if len(chatResp.Choices) == 0 {
		return "", providerErr("openai", "generate", fmt.Errorf("no choices returned"))
	}
	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func (g *OpenAIGenerator) post(ctx context.Context, jsonBody []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < openaiMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, providerErr("openai", "generate", ctx.Err())
			case <-time.After(time.Duration(1<<(attempt-1)) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
		if err != nil {
			return nil, providerErr("openai", "generate", fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+g.apiKey)

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
			return nil, quotaErr("openai", "generate", truncateBody(body))
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body))
			continue
		default:
			return nil, providerErr("openai", "generate",
				fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body)))
		}
	}
	return nil, providerErr("openai", "generate", fmt.Errorf("after %d attempts: %w", openaiMaxRetries, lastErr))
}

// Provider returns the provider name.
func (g *OpenAIGenerator) Provider() string {
	return "openai"
}

// Close is a no-op; the HTTP client holds no resources needing cleanup.
func (g *OpenAIGenerator) Close() error {
	return nil
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
