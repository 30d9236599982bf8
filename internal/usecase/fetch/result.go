package fetch

import "time"

// FallbackTier records which stage of the enhanced fetcher ultimately
// produced a FetchResult.
type FallbackTier string

const (
	FallbackDirect  FallbackTier = "direct"
	FallbackJS      FallbackTier = "js"
	FallbackArchive FallbackTier = "archive"
)

// SourceTag annotates a FetchResult with a non-fatal quality signal.
type SourceTag string

const (
	SourceOK        SourceTag = "ok"
	SourcePaywalled SourceTag = "paywalled"
)

// ExtractedContent is what a site-specific extractor, the generic
// reader-mode extractor, or the heuristic fallback produces from raw HTML.
// It mirrors the enrichment fields on entity.Article so the ingestion
// pipeline can copy it across directly.
type ExtractedContent struct {
	Title       string
	Content     string
	Author      string
	PublishedAt *time.Time

	WordCount       int
	ReadingTimeMins int
	FeaturedImage   string
	Images          []string
	HasCodeBlocks   bool
	CodeLanguages   []string
	SiteName        string
	Categories      []string
	Tags            []string
	Paywalled       bool

	// HasVideo and VideoEmbedURL are populated by the YouTube extractor;
	// no other extractor sets them and they have no persisted column on
	// entity.Article, so FromExtracted does not carry them onto FetchResult.
	HasVideo      bool
	VideoEmbedURL string

	// ExtractorID names the extractor that produced this result (e.g.
	// "medium", "substack", "readability", "heuristic").
	ExtractorID string
}

// MinContentLength is the minimum extracted-content length (in characters)
// for a dispatch stage's result to be accepted; shorter results fall
// through to the next stage.
const MinContentLength = 500

// FetchResult is the outcome of fetching and extracting a single URL.
type FetchResult struct {
	URL         string
	Title       string
	Content     string
	Author      string
	PublishedAt *time.Time

	SourceTag    SourceTag
	ContentHash  string
	FallbackUsed FallbackTier

	WordCount       int
	ReadingTimeMins int
	FeaturedImage   string
	Images          []string
	HasCodeBlocks   bool
	CodeLanguages   []string
	SiteName        string
	Categories      []string
	Tags            []string
	ExtractorUsed   string

	// ArchiveSource names which archive service supplied the content when
	// FallbackUsed is FallbackArchive ("archive.today", "wayback", "google-cache").
	ArchiveSource string
}

// FromExtracted copies an ExtractedContent's fields onto a FetchResult for
// the given URL and fallback tier. Content hashing and paywall tagging are
// the caller's responsibility since they depend on where the HTML came from.
func FromExtracted(url string, tier FallbackTier, ec ExtractedContent) FetchResult {
	r := FetchResult{
		URL:             url,
		Title:           ec.Title,
		Content:         ec.Content,
		Author:          ec.Author,
		PublishedAt:     ec.PublishedAt,
		SourceTag:       SourceOK,
		FallbackUsed:    tier,
		WordCount:       ec.WordCount,
		ReadingTimeMins: ec.ReadingTimeMins,
		FeaturedImage:   ec.FeaturedImage,
		Images:          ec.Images,
		HasCodeBlocks:   ec.HasCodeBlocks,
		CodeLanguages:   ec.CodeLanguages,
		SiteName:        ec.SiteName,
		Categories:      ec.Categories,
		Tags:            ec.Tags,
		ExtractorUsed:   ec.ExtractorID,
	}
	if ec.Paywalled {
		r.SourceTag = SourcePaywalled
	}
	return r
}
