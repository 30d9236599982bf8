package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"
)

// claudeTierModels maps tiers to Claude model IDs. Vendor A is the
// caching-capable adapter: prompt caching on the system prompt and the
// instruction prefix can cut input-token cost by roughly 90% on repeated
// calls, which is why the summarizer pipeline's step-1 generate call
// prefers this provider when its key is configured.
var claudeTierModels = map[ModelTier]string{
	TierFast:     "claude-haiku-4-5-20251001",
	TierStandard: "claude-sonnet-4-5-20250514",
	TierAdvanced: "claude-opus-4-5-20251218",
}

// ClaudeProvider implements Provider using Anthropic's Messages API.
type ClaudeProvider struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	metrics        ProviderMetricsRecorder
}

// NewClaudeProvider creates a Provider backed by the Anthropic API.
func NewClaudeProvider(apiKey string) *ClaudeProvider {
	return &ClaudeProvider{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		metrics:        NewPrometheusProviderMetrics(),
	}
}

func (c *ClaudeProvider) Name() string { return "anthropic" }

func (c *ClaudeProvider) Capabilities() Capabilities {
	return Capabilities{
		SupportsSystemPrompt:  true,
		SupportsPromptCaching: true,
		SupportsJSONMode:      false,
		SupportsStreaming:     true,
		MaxContextTokens:      200000,
	}
}

func (c *ClaudeProvider) ModelForTier(tier ModelTier) string {
	if model, ok := claudeTierModels[tier]; ok {
		return model
	}
	return claudeTierModels[TierStandard]
}

// Complete generates a completion using Claude. JSON mode is ignored:
// Claude has no native JSON-response flag, so callers asking for JSON
// steer the model with prompt instructions instead.
func (c *ClaudeProvider) Complete(ctx context.Context, params CompleteParams) (Response, error) {
	model := params.Model
	if model == "" {
		model = c.ModelForTier(TierStandard)
	}

	var system []anthropic.TextBlockParam
	if params.SystemPrompt != "" {
		block := anthropic.TextBlockParam{Text: params.SystemPrompt}
		if params.UseCache {
			block.CacheControl = anthropic.NewCacheControlEphemeralParam()
		}
		system = []anthropic.TextBlockParam{block}
	}

	return c.execute(ctx, model, system, []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(params.UserPrompt)),
	}, params.MaxTokens, params.Temperature)
}

// CompleteWithCacheablePrefix marks the system prompt and the instruction
// prefix as ephemeral-cacheable; only dynamicContent (the per-article
// body) is sent uncached, per the original provider's caching scheme.
func (c *ClaudeProvider) CompleteWithCacheablePrefix(ctx context.Context, systemPrompt, instructionPrompt, dynamicContent, model string, maxTokens int, temperature float64) (Response, error) {
	if model == "" {
		model = c.ModelForTier(TierStandard)
	}

	system := []anthropic.TextBlockParam{{
		Text:         systemPrompt,
		CacheControl: anthropic.NewCacheControlEphemeralParam(),
	}}

	messages := []anthropic.MessageParam{{
		Role: anthropic.MessageParamRoleUser,
		Content: []anthropic.ContentBlockParamUnion{
			anthropic.NewTextBlock(instructionPrompt),
			anthropic.NewTextBlock(dynamicContent),
		},
	}}
	messages[0].Content[0].OfText.CacheControl = anthropic.NewCacheControlEphemeralParam()

	return c.execute(ctx, model, system, messages, maxTokens, temperature)
}

func (c *ClaudeProvider) execute(ctx context.Context, model string, system []anthropic.TextBlockParam, messages []anthropic.MessageParam, maxTokens int, temperature float64) (Response, error) {
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	var result Response
	start := time.Now()

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.complete(ctx, model, system, messages, maxTokens, temperature)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.(Response)
		return nil
	})

	duration := time.Since(start)
	if retryErr != nil {
		c.metrics.RecordError(c.Name())
		return Response{}, fmt.Errorf("claude complete failed after retries: %w", retryErr)
	}

	c.metrics.RecordCompletion(c.Name(), tierOf(model, claudeTierModels), duration, result.InputTokens, result.OutputTokens, result.CachedTokens)
	return result, nil
}

func (c *ClaudeProvider) complete(ctx context.Context, model string, system []anthropic.TextBlockParam, messages []anthropic.MessageParam, maxTokens int, temperature float64) (Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}
	if temperature > 0 {
		params.Temperature = anthropic.Float(temperature)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		return Response{}, fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return Response{}, fmt.Errorf("claude api returned unexpected response type")
	}

	cachedTokens := 0
	if message.Usage.CacheReadInputTokens > 0 {
		cachedTokens = int(message.Usage.CacheReadInputTokens)
	}

	return Response{
		Text:         textBlock.Text,
		Model:        model,
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
		CachedTokens: cachedTokens,
		Metadata:     map[string]string{"stop_reason": string(message.StopReason), "provider": "anthropic"},
	}, nil
}

// tierOf recovers the tier label for a resolved model, used only for the
// duration histogram's tier bucket; an unrecognized model (a caller-forced
// override) falls back to the standard bucket.
func tierOf(model string, table map[ModelTier]string) ModelTier {
	for tier, m := range table {
		if m == model {
			return tier
		}
	}
	return TierStandard
}
