// Package classifier wraps external text-classification backends behind a
// gateway with a fixed fallback result. Classification failure never blocks
// the intake pipeline: any provider error resolves to the fallback.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// Provider is a raw classification backend. Providers may fail; the Gateway
// is responsible for turning failures into the fallback result.
type Provider interface {
	Name() string
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

// Gateway bounds a provider call with a timeout and validates the result.
// Classify never returns an error: on any failure (network, timeout,
// malformed response, missing or out-of-set fields) it returns the fixed
// fallback classification.
type Gateway struct {
	provider Provider
	timeout  time.Duration
	log      *logger.Logger
}

// NewGateway selects the provider from configuration at construction time.
func NewGateway(cfg config.ClassifierConfig, log *logger.Logger) (*Gateway, error) {
	var provider Provider
	switch cfg.GetClassifierProvider() {
	case "gemini":
		provider = NewGeminiProvider(cfg.GetGeminiAPIKey(), cfg.GetGeminiModel())
	case "openai":
		provider = NewOpenAIProvider(cfg.GetOpenAIBaseURL(), cfg.GetOpenAIAPIKey(), cfg.GetOpenAIModel())
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.GetClassifierProvider())
	}

	return &Gateway{
		provider: provider,
		timeout:  cfg.GetClassifierTimeout(),
		log:      log,
	}, nil
}

// NewGatewayWithProvider wires an explicit provider, used by tests.
func NewGatewayWithProvider(provider Provider, timeout time.Duration, log *logger.Logger) *Gateway {
	return &Gateway{provider: provider, timeout: timeout, log: log}
}

// Classify runs the provider with a bounded timeout and returns either a
// validated result or the fallback. It never errors and never hangs.
func (g *Gateway) Classify(ctx context.Context, text string) domain.Classification {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.provider.Classify(ctx, text)
	if err != nil {
		g.log.Warn("classification failed, using fallback",
			"provider", g.provider.Name(), "error", err)
		return domain.FallbackClassification()
	}

	if !result.Valid() {
		g.log.Warn("classification result outside closed sets, using fallback",
			"provider", g.provider.Name(),
			"intent", result.Intent, "sentiment", result.Sentiment, "priority", result.Priority)
		return domain.FallbackClassification()
	}

	return result
}

const promptTemplate = `Classifique a mensagem de um cliente abaixo e responda SOMENTE com JSON no formato
{"intent": "...", "sentiment": "...", "priority": "..."}.

Valores permitidos:
- intent: budget, scheduling, support, complaint, other
- sentiment: positive, neutral, negative
- priority: low, medium, high

Mensagem do cliente:
%s`

func buildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}

// parseClassification decodes a backend reply into a classification,
// tolerating code fences and mixed casing. Field validation is the
// gateway's job; this only requires structurally valid JSON.
func parseClassification(raw string) (domain.Classification, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result domain.Classification
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return domain.Classification{}, fmt.Errorf("decode classification: %w", err)
	}

	result.Intent = strings.ToLower(strings.TrimSpace(result.Intent))
	result.Sentiment = strings.ToLower(strings.TrimSpace(result.Sentiment))
	result.Priority = strings.ToLower(strings.TrimSpace(result.Priority))
	return result, nil
}
