package summarizer_test

import (
	"context"
	"testing"

	"catchup-feed/internal/infra/summarizer"
)

func TestNew_NoKeysReturnsNil(t *testing.T) {
	provider, err := summarizer.New(context.Background(), "", summarizer.Keys{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider != nil {
		t.Errorf("expected nil provider with no keys configured, got %v", provider.Name())
	}
}

func TestNew_DefaultOrderPrefersAnthropicThenOpenAIThenGoogle(t *testing.T) {
	keys := summarizer.Keys{OpenAI: "openai-key", Google: "google-key"}
	provider, err := summarizer.New(context.Background(), "", keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Name() != "openai" {
		t.Errorf("expected openai (anthropic key absent), got %q", provider.Name())
	}

	keys = summarizer.Keys{Anthropic: "anthropic-key", OpenAI: "openai-key"}
	provider, err = summarizer.New(context.Background(), "", keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Name() != "anthropic" {
		t.Errorf("expected anthropic to win default order, got %q", provider.Name())
	}
}

func TestNew_PreferredProviderUsedWhenKeyPresent(t *testing.T) {
	keys := summarizer.Keys{Anthropic: "anthropic-key", Google: "google-key"}
	provider, err := summarizer.New(context.Background(), "google", keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Name() != "google" {
		t.Errorf("expected preferred google provider, got %q", provider.Name())
	}
}

func TestNew_PreferredProviderWithoutKeyFallsThroughToDefaultOrder(t *testing.T) {
	keys := summarizer.Keys{OpenAI: "openai-key"}
	provider, err := summarizer.New(context.Background(), "anthropic", keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Name() != "openai" {
		t.Errorf("expected fallback to openai, got %q", provider.Name())
	}
}
