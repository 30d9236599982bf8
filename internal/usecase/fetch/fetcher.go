package fetch

import (
	"context"
	"errors"
)

// Options controls per-call fetch policy, letting a caller skip straight to
// a fallback tier instead of discovering it needs one.
type Options struct {
	// ForceJS skips the direct attempt and renders with a headless browser.
	ForceJS bool
	// ForceArchive skips both direct and JS-render and goes straight to the
	// archive-service chain.
	ForceArchive bool
}

// Fetcher retrieves and extracts content for a single URL. SimpleFetcher
// implements the core (direct-only) path; EnhancedFetcher wraps it with the
// JS-render and archive fallbacks.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts Options) (*FetchResult, error)
}

// Sentinel errors for fetch pipeline operations. Implementations should wrap
// these with %w so callers can distinguish failure modes with errors.Is.
var (
	// ErrInvalidURL indicates the URL format is invalid or uses an unsupported scheme.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a blocked network range
	// (private, loopback, link-local, unique-local, or reserved).
	ErrPrivateIP = errors.New("url points to a blocked network range")

	// ErrTooManyRedirects indicates the redirect chain exceeded the configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrExtractionFailed indicates every extraction stage failed to produce
	// usable content.
	ErrExtractionFailed = errors.New("content extraction failed")

	// ErrNoFallbackSucceeded indicates the enhanced fetcher exhausted direct,
	// JS-render, and archive attempts without a usable result.
	ErrNoFallbackSucceeded = errors.New("no fetch strategy produced usable content")
)
