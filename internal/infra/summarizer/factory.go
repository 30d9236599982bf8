package summarizer

import "context"

// Keys holds whichever provider API keys are configured; an empty string
// means that vendor is unavailable.
type Keys struct {
	Anthropic string
	OpenAI    string
	Google    string
}

// defaultOrder is the fallback preference when no preferred provider is
// configured, or the preferred one has no key: Anthropic, then OpenAI,
// then Google. Carried over from the distilled system's provider factory.
var defaultOrder = []string{"anthropic", "openai", "google"}

// New returns a Provider for the preferred vendor if its key is present,
// otherwise the first available vendor in defaultOrder. It returns nil,
// nil if no keys are configured at all — callers must then treat
// summarization as disabled rather than erroring.
func New(ctx context.Context, preferred string, keys Keys) (Provider, error) {
	if preferred != "" {
		if provider, ok, err := build(ctx, preferred, keys); ok {
			return provider, err
		}
	}

	for _, name := range defaultOrder {
		if provider, ok, err := build(ctx, name, keys); ok {
			return provider, err
		}
	}

	return nil, nil
}

// build constructs the named provider if its key is configured. The bool
// return reports whether that vendor had a key at all (distinct from
// whether construction succeeded), so New can fall through to the next
// candidate only when a key was genuinely absent.
func build(ctx context.Context, name string, keys Keys) (Provider, bool, error) {
	switch name {
	case "anthropic":
		if keys.Anthropic == "" {
			return nil, false, nil
		}
		return NewClaudeProvider(keys.Anthropic), true, nil
	case "openai":
		if keys.OpenAI == "" {
			return nil, false, nil
		}
		return NewOpenAIProvider(keys.OpenAI), true, nil
	case "google":
		if keys.Google == "" {
			return nil, false, nil
		}
		provider, err := NewGoogleProvider(ctx, keys.Google)
		return provider, true, err
	default:
		return nil, false, nil
	}
}
