// Package relatedlinks enriches an article with links to related coverage,
// found through an external neural-search API rather than the store itself.
package relatedlinks

import "time"

// Link is one related-coverage hit, trimmed and deduplicated per the
// caps described in service.go.
type Link struct {
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	Snippet       string     `json:"snippet"`
	Domain        string     `json:"domain"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	Score         float64    `json:"score"`
}

// maxSnippetLength is the cap a Link's Snippet is truncated to.
const maxSnippetLength = 200

// maxResultsPerDomain caps how many links from the same domain survive
// dedup, so a single prolific publisher cannot crowd out every other hit.
const maxResultsPerDomain = 2

// candidateOverfetch is added to the caller's requested result count when
// querying the search API, giving dedup/domain-capping room to discard
// candidates without falling short of N.
const candidateOverfetch = 10
