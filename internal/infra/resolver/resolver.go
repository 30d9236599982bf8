package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"catchup-feed/internal/resilience/circuitbreaker"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxBodySize = 5 << 20 // 5MB, these are small aggregator pages

// googleNewsBatchPause is the inter-request delay applied between
// sequential Google News decodes in a batch, to avoid rate limiting.
const googleNewsBatchPause = 100 * time.Millisecond

// Resolver decodes aggregator URLs into the underlying publisher URL.
// It is safe for concurrent use.
type Resolver struct {
	client   *http.Client
	breakers map[Aggregator]*circuitbreaker.CircuitBreaker
	timeout  time.Duration
}

func New(timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Resolver{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		breakers: map[Aggregator]*circuitbreaker.CircuitBreaker{
			AggregatorTechmeme:   circuitbreaker.New(circuitbreaker.WebScraperConfig()),
			AggregatorGoogleNews: circuitbreaker.New(circuitbreaker.WebScraperConfig()),
			AggregatorReddit:     circuitbreaker.New(circuitbreaker.WebScraperConfig()),
		},
	}
}

// Resolve decodes a single aggregator URL. content is the optional RSS
// item description, used only by the Techmeme decoder. If rawURL does not
// match a known aggregator, Result.Err reports that and Aggregator is "".
func (r *Resolver) Resolve(ctx context.Context, rawURL, content string) Result {
	aggregator := IdentifyAggregator(rawURL)
	if aggregator == "" {
		return Result{Err: fmt.Errorf("not a known aggregator: %s", rawURL)}
	}

	breaker := r.breakers[aggregator]
	exec := func(fn func() (Result, error)) Result {
		if breaker == nil {
			res, err := fn()
			if err != nil {
				res.Err = err
			}
			return res
		}
		out, err := breaker.Execute(func() (interface{}, error) {
			res, fnErr := fn()
			return res, fnErr
		})
		if err != nil {
			return Result{Aggregator: aggregator, Err: err}
		}
		return out.(Result)
	}

	switch aggregator {
	case AggregatorTechmeme:
		return exec(func() (Result, error) { return r.resolveTechmeme(ctx, rawURL, content) })
	case AggregatorGoogleNews:
		return exec(func() (Result, error) { return r.resolveGoogleNews(ctx, rawURL) })
	case AggregatorReddit:
		return exec(func() (Result, error) { return r.resolveReddit(ctx, rawURL) })
	case AggregatorHackerNews:
		return r.resolveHackerNews(rawURL)
	default:
		return Result{Aggregator: aggregator, Err: fmt.Errorf("no handler for %s", aggregator)}
	}
}

// ResolveBatch resolves many aggregator URLs in one call. Google News
// links are grouped and decoded sequentially with a small inter-request
// pause to avoid rate limiting; every other aggregator resolves
// concurrently. Results are returned in the same order as items.
func (r *Resolver) ResolveBatch(ctx context.Context, items []Item) []Result {
	results := make([]Result, len(items))

	var googleNewsIdx []int
	otherIdx := make([]int, 0, len(items))
	for i, item := range items {
		if IdentifyAggregator(item.URL) == AggregatorGoogleNews {
			googleNewsIdx = append(googleNewsIdx, i)
		} else {
			otherIdx = append(otherIdx, i)
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, idx := range otherIdx {
		idx := idx
		group.Go(func() error {
			results[idx] = r.Resolve(groupCtx, items[idx].URL, items[idx].Content)
			return nil
		})
	}

	for _, idx := range googleNewsIdx {
		results[idx] = r.Resolve(ctx, items[idx].URL, items[idx].Content)
		if ctx.Err() == nil {
			time.Sleep(googleNewsBatchPause)
		}
	}

	_ = group.Wait()

	return results
}

func (r *Resolver) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	return r.client.Do(req)
}

func readBody(resp *http.Response) (string, error) {
	defer func() { _ = resp.Body.Close() }()
	limited := io.LimitReader(resp.Body, maxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodySize {
		return "", fmt.Errorf("response exceeds %d bytes", maxBodySize)
	}
	return string(body), nil
}
