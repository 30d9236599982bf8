// Command summarize runs the generate-then-critique summarization pipeline
// over article content read from stdin or a file.
// Usage: summarize --title "..." --url "..." < article.txt [--output json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"catchup-feed/internal/infra/summarizer"
	"catchup-feed/internal/usecase/summarize"
)

type output struct {
	Title       string   `json:"title"`
	Headline    string   `json:"headline"`
	Summary     string   `json:"summary"`
	KeyPoints   []string `json:"key_points"`
	ContentType string   `json:"content_type"`
	ModelTier   string   `json:"model_tier"`
	Cached      bool     `json:"cached"`
	Error       string   `json:"error,omitempty"`
}

func main() {
	outputFormat := flag.String("output", "text", "Output format: text or json")
	file := flag.String("file", "", "Path to article content; reads stdin if unset")
	title := flag.String("title", "", "Article title")
	url := flag.String("url", "", "Article URL")
	timeout := flag.Duration("timeout", 60*time.Second, "Summarize timeout")
	flag.Parse()

	content, err := readContent(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "summarize: reading content: %v\n", err)
		os.Exit(1)
	}

	keys := summarizer.Keys{
		Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAI:    os.Getenv("OPENAI_API_KEY"),
		Google:    os.Getenv("GOOGLE_API_KEY"),
	}
	if keys.Anthropic == "" && keys.OpenAI == "" && keys.Google == "" {
		fmt.Fprintln(os.Stderr, "summarize: no summarizer API keys configured (ANTHROPIC_API_KEY, OPENAI_API_KEY, or GOOGLE_API_KEY)")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	provider, err := summarizer.New(ctx, os.Getenv("SUMMARIZER_PREFERRED"), keys)
	if err != nil || provider == nil {
		fmt.Fprintf(os.Stderr, "summarize: initializing provider: %v\n", err)
		os.Exit(1)
	}

	// A one-shot invocation gains nothing from a cache, so it runs without
	// one; Service accepts a nil Cache and hits the provider every call.
	svc := summarize.NewService(provider, nil, summarizer.TierFast, os.Getenv("SUMMARIZE_CRITIC_ENABLED") == "true")
	result, err := svc.Summarize(ctx, content, *url, *title)

	out := output{Title: *title}
	if err == nil {
		out.Headline = result.Headline
		out.Summary = result.Summary
		out.KeyPoints = result.KeyPoints
		out.ContentType = string(result.ContentType)
		out.ModelTier = string(result.ModelTier)
		out.Cached = result.Cached
	} else {
		out.Error = err.Error()
	}

	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		if err != nil {
			os.Exit(1)
		}
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "summarize failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("headline:    %s\n", out.Headline)
	fmt.Printf("content_type: %s\n", out.ContentType)
	fmt.Printf("model_tier:  %s\n", out.ModelTier)
	fmt.Printf("cached:      %v\n", out.Cached)
	fmt.Printf("\n%s\n", out.Summary)
	for _, kp := range out.KeyPoints {
		fmt.Printf("- %s\n", kp)
	}
}

func readContent(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
