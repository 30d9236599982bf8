package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"
)

// openaiTierModels maps tiers to GPT model IDs. Vendor B is the
// JSON-mode-capable adapter: response_format=json_object is set whenever
// a caller asks for json_mode, removing the need to coax JSON out of the
// model through prompt instructions alone.
var openaiTierModels = map[ModelTier]string{
	TierFast:     "gpt-5.2-mini",
	TierStandard: "gpt-5.2",
	TierAdvanced: "gpt-5.2",
}

// OpenAIProvider implements Provider using OpenAI's chat completions API.
type OpenAIProvider struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	metrics        ProviderMetricsRecorder
}

// NewOpenAIProvider creates a Provider backed by the OpenAI API.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		metrics:        NewPrometheusProviderMetrics(),
	}
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) Capabilities() Capabilities {
	return Capabilities{
		SupportsSystemPrompt:  true,
		SupportsPromptCaching: false,
		SupportsJSONMode:      true,
		SupportsStreaming:     true,
		MaxContextTokens:      128000,
	}
}

func (o *OpenAIProvider) ModelForTier(tier ModelTier) string {
	if model, ok := openaiTierModels[tier]; ok {
		return model
	}
	return openaiTierModels[TierStandard]
}

// Complete generates a completion using GPT. use_cache is ignored: OpenAI
// caches repeated prefixes automatically server-side, with no explicit
// cache-control knob to set.
func (o *OpenAIProvider) Complete(ctx context.Context, params CompleteParams) (Response, error) {
	model := params.Model
	if model == "" {
		model = o.ModelForTier(TierStandard)
	}

	messages := []openai.ChatCompletionMessage{}
	if params.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: params.SystemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: params.UserPrompt})

	return o.execute(ctx, model, messages, params.MaxTokens, params.Temperature, params.JSONMode)
}

// CompleteWithCacheablePrefix has no caching facility to use on OpenAI, so
// it concatenates the static instruction prefix and the dynamic article
// body into one user message, matching the original provider's fallback.
func (o *OpenAIProvider) CompleteWithCacheablePrefix(ctx context.Context, systemPrompt, instructionPrompt, dynamicContent, model string, maxTokens int, temperature float64) (Response, error) {
	return o.Complete(ctx, CompleteParams{
		UserPrompt:   instructionPrompt + "\n\n" + dynamicContent,
		SystemPrompt: systemPrompt,
		Model:        model,
		MaxTokens:    maxTokens,
		Temperature:  temperature,
	})
}

func (o *OpenAIProvider) execute(ctx context.Context, model string, messages []openai.ChatCompletionMessage, maxTokens int, temperature float64, jsonMode bool) (Response, error) {
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	var result Response
	start := time.Now()

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.complete(ctx, model, messages, maxTokens, temperature, jsonMode)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.(Response)
		return nil
	})

	duration := time.Since(start)
	if retryErr != nil {
		o.metrics.RecordError(o.Name())
		return Response{}, fmt.Errorf("openai complete failed after retries: %w", retryErr)
	}

	o.metrics.RecordCompletion(o.Name(), tierOf(model, openaiTierModels), duration, result.InputTokens, result.OutputTokens, result.CachedTokens)
	return result, nil
}

func (o *OpenAIProvider) complete(ctx context.Context, model string, messages []openai.ChatCompletionMessage, maxTokens int, temperature float64, jsonMode bool) (Response, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("openai api returned empty response")
	}

	choice := resp.Choices[0]
	return Response{
		Text:         choice.Message.Content,
		Model:        model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Metadata:     map[string]string{"finish_reason": string(choice.FinishReason), "provider": "openai"},
	}, nil
}
