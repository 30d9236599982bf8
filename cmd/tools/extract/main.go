// Command extract fetches a single URL through the direct/JS-render/archive
// fallback chain and prints the extracted content.
// Usage: extract "https://example.com/article" [--force-js] [--output json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"catchup-feed/internal/infra/archive"
	"catchup-feed/internal/infra/extractor"
	"catchup-feed/internal/infra/fetcher"
	"catchup-feed/internal/infra/jsrender"
	"catchup-feed/internal/usecase/fetch"
)

type output struct {
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	Author          string   `json:"author,omitempty"`
	Content         string   `json:"content"`
	WordCount       int      `json:"word_count"`
	ReadingTimeMins int      `json:"reading_time_mins"`
	SourceTag       string   `json:"source_tag"`
	FallbackUsed    string   `json:"fallback_used"`
	ArchiveSource   string   `json:"archive_source,omitempty"`
	SiteName        string   `json:"site_name,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Error           string   `json:"error,omitempty"`
}

func main() {
	outputFormat := flag.String("output", "text", "Output format: text or json")
	forceJS := flag.Bool("force-js", false, "Skip direct fetch and render with a headless browser")
	forceArchive := flag.Bool("force-archive", false, "Skip direct and JS-render, go straight to archive services")
	timeout := flag.Duration("timeout", 30*time.Second, "Fetch timeout")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: extract <url> [--force-js] [--force-archive] [--output json] [--timeout 30s]")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	registry := extractor.NewRegistry()
	fetchConfig := fetcher.DefaultConfig()
	simple := fetcher.NewSimpleFetcher(registry, fetchConfig)

	var jsRenderer fetcher.JSRenderer
	if fetchConfig.JSRenderEnabled {
		jsRenderer = jsrender.NewRenderer()
	}

	var archiveChain fetcher.ArchiveFetcher
	if fetchConfig.ArchiveEnabled {
		archiveChain = archive.NewChain(archive.DefaultConfig())
	}

	contentFetcher := fetcher.NewEnhancedFetcher(simple, jsRenderer, archiveChain, registry, fetchConfig)

	result, err := contentFetcher.Fetch(ctx, args[0], fetch.Options{ForceJS: *forceJS, ForceArchive: *forceArchive})

	out := output{URL: args[0]}
	if result != nil {
		out.Title = result.Title
		out.Author = result.Author
		out.Content = result.Content
		out.WordCount = result.WordCount
		out.ReadingTimeMins = result.ReadingTimeMins
		out.SourceTag = string(result.SourceTag)
		out.FallbackUsed = string(result.FallbackUsed)
		out.ArchiveSource = result.ArchiveSource
		out.SiteName = result.SiteName
		out.Tags = result.Tags
	}
	if err != nil {
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
		fmt.Fprintf(os.Stderr, "extract failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("title:          %s\n", out.Title)
	fmt.Printf("author:         %s\n", out.Author)
	fmt.Printf("site_name:      %s\n", out.SiteName)
	fmt.Printf("word_count:     %d\n", out.WordCount)
	fmt.Printf("reading_time:   %d min\n", out.ReadingTimeMins)
	fmt.Printf("fallback_used:  %s\n", out.FallbackUsed)
	if out.ArchiveSource != "" {
		fmt.Printf("archive_source: %s\n", out.ArchiveSource)
	}
	fmt.Printf("\n%s\n", out.Content)
}
