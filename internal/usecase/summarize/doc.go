// Package summarize orchestrates the two-step article summarization
// pipeline: cache lookup, automatic model-tier selection, a step-1 generate
// call through summarizer.Provider, and an optional step-2 critic pass for
// long or multi-story content. It sits above internal/infra/summarizer,
// which only knows how to talk to a single vendor.
package summarize
