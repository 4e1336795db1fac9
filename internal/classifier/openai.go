package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"leadflow_backend/internal/leads/domain"
)

// OpenAIProvider classifies text via an OpenAI-compatible chat-completions
// API (Moonshot/Kimi and similar gateways).
type OpenAIProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewOpenAIProvider(baseURL, apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{},
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error interface{} `json:"error"`
}

func (p *OpenAIProvider) Classify(ctx context.Context, text string) (domain.Classification, error) {
	payload := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "user", Content: buildPrompt(text)},
		},
		Temperature: 0,
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Classification{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return domain.Classification{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("chat completion request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Classification{}, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return domain.Classification{}, fmt.Errorf("chat completion returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return domain.Classification{}, fmt.Errorf("decode chat completion: %w", err)
	}
	if parsed.Error != nil {
		return domain.Classification{}, fmt.Errorf("chat completion error: %v", parsed.Error)
	}
	if len(parsed.Choices) == 0 {
		return domain.Classification{}, fmt.Errorf("chat completion returned no choices")
	}

	return parseClassification(parsed.Choices[0].Message.Content)
}
