// Package fetcher implements the content-fetching pipeline: a direct HTTP
// fetch plus extractor dispatch (SimpleFetcher), and a JS-render/archive
// fallback state machine on top of it (EnhancedFetcher).
package fetcher

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls the security, performance, and fallback-policy knobs of
// the fetch pipeline.
type Config struct {
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
	// MaxBodySize is the maximum response body size accepted, enforced
	// while reading (not from Content-Length, which callers can lie about).
	MaxBodySize int64
	// MaxRedirects bounds the redirect chain; each target is re-validated.
	MaxRedirects int

	// AllowLoopback disables the resolved-IP blocklist half of the SSRF
	// check (hostname literal/suffix blocking still applies). It exists
	// only so tests can point the fetcher at an httptest server; must stay
	// false in production.
	AllowLoopback bool

	// JSRenderEnabled gates the headless-browser fallback tier.
	JSRenderEnabled bool
	// JSRenderTimeout bounds a single JS-render attempt, including
	// navigation and the post-navigation settle delay.
	JSRenderTimeout time.Duration

	// ArchiveEnabled gates the archive-service fallback tier.
	ArchiveEnabled bool
	// ArchiveMaxAge rejects archive snapshots older than this.
	ArchiveMaxAge time.Duration
}

// DefaultConfig returns production defaults: SSRF prevention on, 10s
// request timeout, 10MB body cap, 5 redirects, JS-render and archive
// fallbacks enabled, 30-day archive snapshot freshness.
func DefaultConfig() Config {
	return Config{
		Timeout:         10 * time.Second,
		MaxBodySize:     10 * 1024 * 1024,
		MaxRedirects:    5,
		JSRenderEnabled: true,
		JSRenderTimeout: 15 * time.Second,
		ArchiveEnabled:  true,
		ArchiveMaxAge:   30 * 24 * time.Hour,
	}
}

// Validate rejects configurations that would be insecure or resource-unsafe.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	minBody, maxBody := int64(1024), int64(100*1024*1024)
	if c.MaxBodySize < minBody || c.MaxBodySize > maxBody {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBody, maxBody, c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	if c.JSRenderTimeout < 0 {
		return fmt.Errorf("js render timeout must be non-negative, got %v", c.JSRenderTimeout)
	}
	if c.ArchiveMaxAge < 0 {
		return fmt.Errorf("archive max age must be non-negative, got %v", c.ArchiveMaxAge)
	}
	return nil
}

// LoadConfigFromEnv loads overrides from JS_RENDER_TIMEOUT,
// ARCHIVE_MAX_AGE_DAYS, ENABLE_JS_RENDER, and ENABLE_ARCHIVE (per the
// environment surface in spec §6), layered onto DefaultConfig.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("ENABLE_JS_RENDER"); v != "" {
		cfg.JSRenderEnabled = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ENABLE_ARCHIVE"); v != "" {
		cfg.ArchiveEnabled = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("JS_RENDER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid JS_RENDER_TIMEOUT: %w", err)
		}
		cfg.JSRenderTimeout = d
	}
	if v := os.Getenv("ARCHIVE_MAX_AGE_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid ARCHIVE_MAX_AGE_DAYS: %w", err)
		}
		cfg.ArchiveMaxAge = time.Duration(days) * 24 * time.Hour
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}
