// Command resolve decodes a single aggregator URL (Techmeme, Google News,
// Reddit, Hacker News) to its underlying publisher URL.
// Usage: resolve "https://news.google.com/..." [--output json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"catchup-feed/internal/infra/resolver"
)

type output struct {
	SourceURL  string  `json:"source_url"`
	Aggregator string  `json:"aggregator"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
}

func main() {
	outputFormat := flag.String("output", "text", "Output format: text or json")
	timeout := flag.Duration("timeout", 15*time.Second, "Resolve timeout")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: resolve <url> [--output json] [--timeout 15s]")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	r := resolver.New(*timeout)
	result := r.Resolve(ctx, args[0], "")

	out := output{
		SourceURL:  result.SourceURL,
		Aggregator: string(result.Aggregator),
		Confidence: result.Confidence,
	}
	if result.Err != nil {
		out.Error = result.Err.Error()
	}

	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		if result.Err != nil {
			os.Exit(1)
		}
		return
	}

	if result.Err != nil {
		fmt.Fprintf(os.Stderr, "resolve failed: %v\n", result.Err)
		os.Exit(1)
	}
	fmt.Printf("source_url:  %s\n", out.SourceURL)
	fmt.Printf("aggregator:  %s\n", out.Aggregator)
	fmt.Printf("confidence:  %.2f\n", out.Confidence)
}
