package summarizer

import "context"

// NoOpProvider implements Provider by echoing the prompt back as the
// response text. Useful in tests and local development so the summarize
// pipeline can run end to end without a configured API key.
type NoOpProvider struct{}

func NewNoOpProvider() *NoOpProvider { return &NoOpProvider{} }

func (n *NoOpProvider) Name() string { return "noop" }

func (n *NoOpProvider) Capabilities() Capabilities {
	return Capabilities{
		SupportsSystemPrompt: true,
		SupportsJSONMode:     true,
		SupportsStreaming:    false,
		MaxContextTokens:     1 << 20,
	}
}

func (n *NoOpProvider) ModelForTier(_ ModelTier) string { return "noop" }

func (n *NoOpProvider) Complete(_ context.Context, params CompleteParams) (Response, error) {
	return Response{Text: params.UserPrompt, Model: "noop"}, nil
}

func (n *NoOpProvider) CompleteWithCacheablePrefix(_ context.Context, _, instructionPrompt, dynamicContent, _ string, _ int, _ float64) (Response, error) {
	return Response{Text: instructionPrompt + "\n\n" + dynamicContent, Model: "noop"}, nil
}
