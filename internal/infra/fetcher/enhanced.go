package fetcher

import (
	"context"
	"fmt"
	"net/url"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/usecase/fetch"
)

// JSRenderer drives a headless browser to render a URL and return its final
// HTML and resolved URL. Implementations (see internal/infra/jsrender) own
// the browser's lifecycle; EnhancedFetcher only calls Render.
type JSRenderer interface {
	Render(ctx context.Context, url string) (html string, finalURL string, err error)
}

// ArchiveFetcher retrieves a page from an archive service (archive.today,
// Wayback Machine, or Google Cache) when the live page is unusable.
// Implementations try their services in order and report which one served
// the result via the source return value.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, url string) (html string, source string, err error)
}

// EnhancedFetcher wraps SimpleFetcher with the direct → JS-render → archive
// fallback policy from spec §4.4.
type EnhancedFetcher struct {
	direct     *SimpleFetcher
	jsRenderer JSRenderer
	archive    ArchiveFetcher
	dispatcher fetch.Dispatcher
	config     Config
}

// NewEnhancedFetcher builds the fallback state machine around an already
// configured SimpleFetcher. jsRenderer and archive may be nil to disable
// those tiers regardless of config flags.
func NewEnhancedFetcher(direct *SimpleFetcher, jsRenderer JSRenderer, archive ArchiveFetcher, dispatcher fetch.Dispatcher, config Config) *EnhancedFetcher {
	return &EnhancedFetcher{
		direct:     direct,
		jsRenderer: jsRenderer,
		archive:    archive,
		dispatcher: dispatcher,
		config:     config,
	}
}

// Fetch runs the fallback policy: direct first (unless forced past it),
// escalating to JS-render when the direct result is thin or paywalled, and
// to the archive chain when a bot-detection page or paywall is seen. It
// returns whichever attempt succeeded, tagged with FallbackUsed, or
// ErrNoFallbackSucceeded carrying the last error if every tier failed.
func (f *EnhancedFetcher) Fetch(ctx context.Context, rawURL string, opts fetch.Options) (*fetch.FetchResult, error) {
	if err := validateFetchURL(rawURL, f.config.AllowLoopback); err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrInvalidURL, err)
	}

	var direct *fetch.FetchResult
	var lastErr error

	if !opts.ForceJS && !opts.ForceArchive {
		r, err := f.direct.Fetch(ctx, rawURL, fetch.Options{})
		if err != nil {
			lastErr = err
		} else {
			direct = r
		}
	}

	host := hostOf(rawURL)
	directPaywalled := direct != nil && direct.SourceTag == fetch.SourcePaywalled
	directThin := direct != nil && needsJSRender(host, direct.Content, directPaywalled)

	tryJS := !opts.ForceArchive && f.config.JSRenderEnabled && f.jsRenderer != nil &&
		(opts.ForceJS || direct == nil || directThin || directPaywalled)

	var jsResult *fetch.FetchResult
	var jsBotDetected bool
	if tryJS {
		r, err := f.tryJSRender(ctx, rawURL)
		if err != nil {
			lastErr = err
		} else {
			jsResult = r
			jsBotDetected = isBotDetectionPage(r.Content)
			if r.SourceTag != fetch.SourcePaywalled && !jsBotDetected {
				return r, nil
			}
		}
	}

	if direct != nil && !directThin && !directPaywalled {
		return direct, nil
	}

	needArchive := opts.ForceArchive || jsBotDetected || directPaywalled || needsArchive(host, directPaywalled, jsBotDetected)
	if needArchive && f.config.ArchiveEnabled && f.archive != nil {
		r, err := f.tryArchive(ctx, rawURL)
		if err == nil {
			return r, nil
		}
		lastErr = err
	}

	if jsResult != nil {
		return jsResult, nil
	}
	if direct != nil {
		return direct, nil
	}
	if lastErr == nil {
		lastErr = fetch.ErrNoFallbackSucceeded
	}
	return nil, fmt.Errorf("%w: %v", fetch.ErrNoFallbackSucceeded, lastErr)
}

func (f *EnhancedFetcher) tryJSRender(ctx context.Context, rawURL string) (*fetch.FetchResult, error) {
	if f.jsRenderer == nil {
		return nil, fmt.Errorf("js renderer not configured")
	}
	renderCtx, cancel := context.WithTimeout(ctx, f.config.JSRenderTimeout)
	defer cancel()

	html, finalURL, err := f.jsRenderer.Render(renderCtx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("js render: %w", err)
	}
	ec, err := f.dispatcher.Dispatch(finalURL, []byte(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrExtractionFailed, err)
	}
	result := fetch.FromExtracted(finalURL, fetch.FallbackJS, ec)
	if isPaywalled(hostOf(finalURL), result.Content) {
		result.SourceTag = fetch.SourcePaywalled
	}
	result.ContentHash = entity.ComputeContentHash(result.Content)
	return &result, nil
}

func (f *EnhancedFetcher) tryArchive(ctx context.Context, rawURL string) (*fetch.FetchResult, error) {
	if f.archive == nil {
		return nil, fmt.Errorf("archive fetcher not configured")
	}
	html, source, err := f.archive.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("archive fetch: %w", err)
	}
	ec, err := f.dispatcher.Dispatch(rawURL, []byte(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrExtractionFailed, err)
	}
	result := fetch.FromExtracted(rawURL, fetch.FallbackArchive, ec)
	result.ArchiveSource = source
	result.ContentHash = entity.ComputeContentHash(result.Content)
	return &result, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
