package resolver

import "strings"

// Aggregator identifies which known news aggregator a URL belongs to.
type Aggregator string

const (
	AggregatorTechmeme   Aggregator = "techmeme"
	AggregatorGoogleNews Aggregator = "google_news"
	AggregatorReddit     Aggregator = "reddit"
	AggregatorHackerNews Aggregator = "hackernews"
)

// Result is the outcome of resolving one aggregator URL. A nil SourceURL
// with no Err means the link is a self-post with no external source (not
// a failure); any network or parse failure is reported in Err but never
// panics or propagates — callers fall back to fetching the original URL.
type Result struct {
	SourceURL  string
	Aggregator Aggregator
	Confidence float64
	Err        error
}

// Item is one (url, rssDescription) pair submitted to ResolveBatch. Content
// is the optional RSS item description/content, used only by the Techmeme
// decoder to look for an inline source link before falling back to a fetch.
type Item struct {
	URL     string
	Content string
}

var aggregatorDomains = map[Aggregator][]string{
	AggregatorTechmeme:   {"techmeme.com"},
	AggregatorGoogleNews: {"news.google.com"},
	AggregatorReddit:     {"reddit.com", "redd.it"},
	AggregatorHackerNews: {"news.ycombinator.com"},
}

// IdentifyAggregator reports which known aggregator rawURL belongs to, by
// host-substring match against a fixed domain table. Returns "" if rawURL
// does not match any recognized aggregator.
func IdentifyAggregator(rawURL string) Aggregator {
	lower := strings.ToLower(rawURL)
	for aggregator, domains := range aggregatorDomains {
		for _, domain := range domains {
			if strings.Contains(lower, domain) {
				return aggregator
			}
		}
	}
	return ""
}
