package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var redditFallbackSelectors = []string{
	`a[data-click-id="body"][href^="http"]`,
	`.Post a[href^="http"]`,
}

// resolveReddit rewrites the link to old.reddit.com and looks for the
// thread's external title link. A self-post (no external link) returns a
// nil source URL with no error, matching the Python original's semantics.
func (r *Resolver) resolveReddit(ctx context.Context, rawURL string) (Result, error) {
	oldRedditURL := strings.Replace(rawURL, "www.reddit.com", "old.reddit.com", 1)

	resp, err := r.get(ctx, oldRedditURL)
	if err != nil {
		return Result{Aggregator: AggregatorReddit}, err
	}
	html, err := readBody(resp)
	if err != nil {
		return Result{Aggregator: AggregatorReddit}, err
	}
	if resp.StatusCode != 200 {
		return Result{Aggregator: AggregatorReddit}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Result{Aggregator: AggregatorReddit}, err
	}

	if link := doc.Find(`a.title[href^="http"]`).First(); link.Length() > 0 {
		if href, ok := link.Attr("href"); ok && isExternalToReddit(href) {
			return Result{SourceURL: href, Aggregator: AggregatorReddit, Confidence: 0.9}, nil
		}
	}

	for _, selector := range redditFallbackSelectors {
		link := doc.Find(selector).First()
		if link.Length() == 0 {
			continue
		}
		href, ok := link.Attr("href")
		if ok && isExternalToReddit(href) {
			return Result{SourceURL: href, Aggregator: AggregatorReddit, Confidence: 0.8}, nil
		}
	}

	// Self-post: no external link found, not treated as a failure.
	return Result{Aggregator: AggregatorReddit, Confidence: 0}, nil
}

func isExternalToReddit(href string) bool {
	if href == "" {
		return false
	}
	lower := strings.ToLower(href)
	return !strings.Contains(lower, "reddit.com") && !strings.Contains(lower, "redd.it")
}
