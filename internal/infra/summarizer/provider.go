package summarizer

import "context"

// ModelTier is a capability tier used for automatic model selection. The
// summarize and clusterer usecases pick a tier; each Provider resolves it
// to a concrete model identifier.
type ModelTier string

const (
	TierFast     ModelTier = "fast"
	TierStandard ModelTier = "standard"
	TierAdvanced ModelTier = "advanced"
)

// Capabilities describes what a provider supports, so callers can adapt
// their request shape (e.g. skip json_mode for a provider that has none).
type Capabilities struct {
	SupportsSystemPrompt  bool
	SupportsPromptCaching bool
	SupportsJSONMode      bool
	SupportsStreaming     bool
	MaxContextTokens      int
}

// Response is the vendor-neutral result of a completion call.
type Response struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	CachedTokens int
	Metadata     map[string]string
}

// CompleteParams carries every knob a Provider.Complete call can take.
// Model is an explicit override; an empty Model means "caller didn't pick
// one", and the provider resolves ModelForTier(TierStandard) (or its own
// default) instead.
type CompleteParams struct {
	UserPrompt   string
	SystemPrompt string
	Model        string
	MaxTokens    int
	Temperature  float64
	UseCache     bool
	JSONMode     bool
}

// Provider is the uniform contract the summarizer, clusterer, and
// keyword-extraction helper call through, regardless of vendor.
type Provider interface {
	Name() string
	Capabilities() Capabilities
	ModelForTier(tier ModelTier) string
	Complete(ctx context.Context, params CompleteParams) (Response, error)

	// CompleteWithCacheablePrefix lets providers that support prompt
	// caching mark systemPrompt and instructionPrompt as stable/cacheable
	// while dynamicContent (the per-article body) is not. Providers
	// without caching support concatenate instructionPrompt and
	// dynamicContent into a single user message.
	CompleteWithCacheablePrefix(ctx context.Context, systemPrompt, instructionPrompt, dynamicContent, model string, maxTokens int, temperature float64) (Response, error)
}
