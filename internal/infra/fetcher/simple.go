package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/usecase/fetch"
)

// userAgent identifies the fetcher to origin servers with a realistic
// desktop browser string; several sites serve degraded or blocked content to
// generic bot user agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// SimpleFetcher is the core fetcher: a direct HTTP GET, SSRF-validated and
// circuit-broken, followed by extractor dispatch and the paywall/bot
// heuristic. It implements fetch.Fetcher but ignores Options — JS-render and
// archive fallback policy live in EnhancedFetcher.
type SimpleFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	dispatcher     fetch.Dispatcher
	config         Config
}

// NewSimpleFetcher builds a direct fetcher around the given extractor
// dispatcher and configuration.
func NewSimpleFetcher(dispatcher fetch.Dispatcher, config Config) *SimpleFetcher {
	f := &SimpleFetcher{
		dispatcher:     dispatcher,
		config:         config,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
	}
	f.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", fetch.ErrTooManyRedirects, len(via))
			}
			if err := validateFetchURL(req.URL.String(), f.config.AllowLoopback); err != nil {
				return fmt.Errorf("redirect target rejected: %w", err)
			}
			return nil
		},
	}
	return f
}

// Fetch issues a direct GET for url, dispatches extraction over the
// response body, and tags the result paywalled when the content and host
// match the paywall heuristic. Options are ignored; see EnhancedFetcher.
func (f *SimpleFetcher) Fetch(ctx context.Context, rawURL string, _ fetch.Options) (*fetch.FetchResult, error) {
	if err := validateFetchURL(rawURL, f.config.AllowLoopback); err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrInvalidURL, err)
	}

	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, rawURL)
	})
	if err != nil {
		return nil, err
	}
	return result.(*fetch.FetchResult), nil
}

func (f *SimpleFetcher) doFetch(ctx context.Context, rawURL string) (*fetch.FetchResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: exceeded %v", fetch.ErrTimeout, f.config.Timeout)
		}
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, resp.Status)
	}

	limited := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	html, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(html)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit %d", fetch.ErrBodyTooLarge, len(html), f.config.MaxBodySize)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	ec, err := f.dispatcher.Dispatch(finalURL, html)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrExtractionFailed, err)
	}

	host := ""
	if u, err := url.Parse(finalURL); err == nil {
		host = u.Hostname()
	}

	result := fetch.FromExtracted(finalURL, fetch.FallbackDirect, ec)
	if isPaywalled(host, result.Content) {
		result.SourceTag = fetch.SourcePaywalled
	}
	result.ContentHash = entity.ComputeContentHash(result.Content)
	return &result, nil
}
