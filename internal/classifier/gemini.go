package classifier

import (
	"context"
	"fmt"

	"leadflow_backend/internal/leads/domain"

	"google.golang.org/genai"
)

// GeminiProvider classifies text via the Gemini API with a JSON response
// MIME type so the model replies with bare JSON.
type GeminiProvider struct {
	apiKey string
	model  string
}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	return &GeminiProvider{apiKey: apiKey, model: model}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Classify(ctx context.Context, text string) (domain.Classification, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return domain.Classification{}, fmt.Errorf("gemini client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, p.model,
		genai.Text(buildPrompt(text)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr[float32](0),
		},
	)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("gemini generate: %w", err)
	}

	reply := resp.Text()
	if reply == "" {
		return domain.Classification{}, fmt.Errorf("gemini returned empty response")
	}

	return parseClassification(reply)
}
