// Package resolver decodes news-aggregator links (Techmeme, Google News,
// Reddit, Hacker News) into the underlying publisher URL that should
// actually be fetched and summarized.
package resolver
