package resolver

import "strings"

// resolveHackerNews is a pass-through: Hacker News RSS <link> elements
// already point at the source article. If rawURL still points at
// news.ycombinator.com, it's a Show/Ask HN self-post with no external
// source.
func (r *Resolver) resolveHackerNews(rawURL string) Result {
	if strings.Contains(rawURL, "news.ycombinator.com") {
		return Result{Aggregator: AggregatorHackerNews, Confidence: 1.0}
	}
	return Result{SourceURL: rawURL, Aggregator: AggregatorHackerNews, Confidence: 1.0}
}
