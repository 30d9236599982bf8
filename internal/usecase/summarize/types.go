package summarize

import (
	"time"

	"catchup-feed/internal/infra/summarizer"
)

// Genre classifies the kind of article a step-1 generate call detected,
// distinct from entity.ContentType, which tags how an item entered the
// system (RSS item vs. library upload) rather than what it reads like.
type Genre string

const (
	GenreNews       Genre = "news"
	GenreAnalysis   Genre = "analysis"
	GenreTutorial   Genre = "tutorial"
	GenreReview     Genre = "review"
	GenreResearch   Genre = "research"
	GenreNewsletter Genre = "newsletter"
)

// Result is a structured article summary, shaped to drop straight into
// entity.Article's SummaryShort/SummaryFull/KeyPoints/ModelTier fields.
type Result struct {
	Title       string
	Headline    string
	Summary     string
	KeyPoints   []string
	ContentType Genre
	ModelTier   summarizer.ModelTier
	Cached      bool
}

// Cache is the minimal key-value contract Service needs; infra/cache.Tiered
// and infra/cache.Disk both satisfy it as-is.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
}

// cachedSummary is the JSON shape written to and read from Cache.
type cachedSummary struct {
	Title       string   `json:"title"`
	Headline    string   `json:"headline"`
	Summary     string   `json:"summary"`
	KeyPoints   []string `json:"key_points"`
	ContentType string   `json:"content_type"`
	ModelTier   string   `json:"model_tier"`
}

// llmResponse is the JSON shape a step-1 or critic completion is expected
// to return. RevisionsMade is only populated by the critic step.
type llmResponse struct {
	Headline      string   `json:"headline"`
	Summary       string   `json:"summary"`
	KeyPoints     []string `json:"key_points"`
	ContentType   string   `json:"content_type"`
	RevisionsMade []string `json:"revisions_made"`
}
