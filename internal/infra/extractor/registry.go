package extractor

import (
	"net/url"

	"catchup-feed/internal/usecase/fetch"
)

// siteExtractor is implemented by every extractor keyed on a fixed set of
// host domains.
type siteExtractor interface {
	CanHandle(host string) bool
	Extract(rawURL string, html []byte) (fetch.ExtractedContent, error)
}

// Registry implements fetch.Dispatcher. It tries, in order: the
// site-specific extractor whose CanHandle matches the URL's host, the
// generic readability-based extractor, and finally the heuristic fallback.
// The first stage whose content reaches fetch.MinContentLength wins; if
// none does, the longest result produced is returned rather than an error,
// since the heuristic stage never fails outright.
type Registry struct {
	siteExtractors []siteExtractor
	generic        GenericExtractor
	heuristic      HeuristicExtractor
}

// NewRegistry builds the dispatch chain with the full set of site-specific
// extractors required by the supported-sites list.
func NewRegistry() *Registry {
	return &Registry{
		siteExtractors: []siteExtractor{
			MediumExtractor{},
			SubstackExtractor{},
			GitHubExtractor{},
			YouTubeExtractor{},
			TwitterExtractor{},
			WikipediaExtractor{},
			BloombergExtractor{},
		},
	}
}

func (r *Registry) Dispatch(rawURL string, html []byte) (fetch.ExtractedContent, error) {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Hostname()
	}

	var best fetch.ExtractedContent
	haveBest := false

	for _, ex := range r.siteExtractors {
		if !ex.CanHandle(host) {
			continue
		}
		content, err := ex.Extract(rawURL, html)
		if err != nil {
			break
		}
		if len(content.Content) >= fetch.MinContentLength {
			return content, nil
		}
		best, haveBest = content, true
		break
	}

	if generic, err := r.generic.Extract(rawURL, html); err == nil {
		if len(generic.Content) >= fetch.MinContentLength {
			return generic, nil
		}
		if !haveBest || len(generic.Content) > len(best.Content) {
			best, haveBest = generic, true
		}
	}

	heuristic, err := r.heuristic.Extract(rawURL, html)
	if err != nil {
		if haveBest {
			return best, nil
		}
		return fetch.ExtractedContent{}, err
	}
	if !haveBest || len(heuristic.Content) > len(best.Content) {
		best = heuristic
	}

	return best, nil
}
