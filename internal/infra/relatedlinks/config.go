package relatedlinks

import (
	"fmt"
	"os"
)

// Config controls whether related-links enrichment runs at all, and how it
// reaches the external search API.
type Config struct {
	Enabled bool
	APIKey  string
	BaseURL string
}

// defaultBaseURL is the neural-search API's search endpoint.
const defaultBaseURL = "https://api.exa.ai"

// LoadConfigFromEnv reads ENABLE_RELATED_LINKS and EXA_API_KEY. Enrichment
// is disabled when either is unset, matching the fail-open posture the rest
// of the ingestion pipeline uses for optional enrichments.
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		Enabled: os.Getenv("ENABLE_RELATED_LINKS") == "true",
		APIKey:  os.Getenv("EXA_API_KEY"),
		BaseURL: defaultBaseURL,
	}
	if cfg.Enabled && cfg.APIKey == "" {
		return cfg, fmt.Errorf("relatedlinks: ENABLE_RELATED_LINKS is true but EXA_API_KEY is unset")
	}
	return cfg, nil
}
