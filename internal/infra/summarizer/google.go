package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"
)

// googleTierModels maps tiers to Gemini model IDs. Vendor C is the
// long-context adapter: a 1,000,000-token window comfortably covers the
// newsletter- and multi-story summarization cases the other two vendors
// would need to truncate for.
var googleTierModels = map[ModelTier]string{
	TierFast:     "gemini-3.0-flash",
	TierStandard: "gemini-3.0-pro",
	TierAdvanced: "gemini-3.0-pro",
}

// GoogleProvider implements Provider using the Gemini API.
type GoogleProvider struct {
	client         *genai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	metrics        ProviderMetricsRecorder
}

// NewGoogleProvider creates a Provider backed by the Gemini API.
func NewGoogleProvider(ctx context.Context, apiKey string) (*GoogleProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GoogleProvider{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.GoogleAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		metrics:        NewPrometheusProviderMetrics(),
	}, nil
}

func (g *GoogleProvider) Name() string { return "google" }

func (g *GoogleProvider) Capabilities() Capabilities {
	return Capabilities{
		SupportsSystemPrompt:  true,
		SupportsPromptCaching: false,
		SupportsJSONMode:      true,
		SupportsStreaming:     true,
		MaxContextTokens:      1000000,
	}
}

func (g *GoogleProvider) ModelForTier(tier ModelTier) string {
	if model, ok := googleTierModels[tier]; ok {
		return model
	}
	return googleTierModels[TierStandard]
}

// Complete generates a completion using Gemini. use_cache is ignored:
// Gemini has no explicit prompt-cache toggle on this request path.
func (g *GoogleProvider) Complete(ctx context.Context, params CompleteParams) (Response, error) {
	model := params.Model
	if model == "" {
		model = g.ModelForTier(TierStandard)
	}
	return g.execute(ctx, model, params.SystemPrompt, params.UserPrompt, params.MaxTokens, params.Temperature, params.JSONMode)
}

// CompleteWithCacheablePrefix carries systemPrompt through Gemini's
// system-instruction field and concatenates instructionPrompt with
// dynamicContent as the user turn, matching the original provider.
func (g *GoogleProvider) CompleteWithCacheablePrefix(ctx context.Context, systemPrompt, instructionPrompt, dynamicContent, model string, maxTokens int, temperature float64) (Response, error) {
	if model == "" {
		model = g.ModelForTier(TierStandard)
	}
	return g.execute(ctx, model, systemPrompt, instructionPrompt+"\n\n"+dynamicContent, maxTokens, temperature, false)
}

func (g *GoogleProvider) execute(ctx context.Context, model, systemPrompt, userPrompt string, maxTokens int, temperature float64, jsonMode bool) (Response, error) {
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	var result Response
	start := time.Now()

	retryErr := retry.WithBackoff(ctx, g.retryConfig, func() error {
		cbResult, err := g.circuitBreaker.Execute(func() (interface{}, error) {
			return g.complete(ctx, model, systemPrompt, userPrompt, maxTokens, temperature, jsonMode)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("google api circuit breaker open, request rejected",
					slog.String("service", "google-api"),
					slog.String("state", g.circuitBreaker.State().String()))
				return fmt.Errorf("google api unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.(Response)
		return nil
	})

	duration := time.Since(start)
	if retryErr != nil {
		g.metrics.RecordError(g.Name())
		return Response{}, fmt.Errorf("google complete failed after retries: %w", retryErr)
	}

	g.metrics.RecordCompletion(g.Name(), tierOf(model, googleTierModels), duration, result.InputTokens, result.OutputTokens, result.CachedTokens)
	return result, nil
}

func (g *GoogleProvider) complete(ctx context.Context, model, systemPrompt, userPrompt string, maxTokens int, temperature float64, jsonMode bool) (Response, error) {
	temp := float32(temperature)
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Temperature:     &temp,
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}}
	}
	if jsonMode {
		config.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: userPrompt}},
		Role:  "user",
	}}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return Response{}, fmt.Errorf("google api error: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return Response{}, fmt.Errorf("google api returned empty response")
	}

	inputTokens, outputTokens := 0, 0
	if resp.UsageMetadata != nil {
		inputTokens = int(resp.UsageMetadata.PromptTokenCount)
		outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return Response{
		Text:         text,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Metadata:     map[string]string{"provider": "google"},
	}, nil
}
