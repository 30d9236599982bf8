package fetcher

import (
	"errors"
	"strings"

	"catchup-feed/internal/domain/entity"
)

// validateFetchURL runs the standard SSRF precondition. When allowLoopback
// is set it additionally tolerates a resolved-IP blocklist hit (but not a
// literal blocked host or suffix match) — see Config.AllowLoopback.
func validateFetchURL(rawURL string, allowLoopback bool) error {
	err := entity.ValidateURL(rawURL)
	if err == nil || !allowLoopback {
		return err
	}
	var ve *entity.ValidationError
	if errors.As(err, &ve) && strings.Contains(ve.Message, "private or reserved network") {
		return nil
	}
	return err
}

// knownPaywalledDomains is the fixed list of hosts whose content is tagged
// paywalled when the extracted body is suspiciously short.
var knownPaywalledDomains = []string{
	"wsj.com", "nytimes.com", "ft.com", "economist.com", "bloomberg.com",
	"washingtonpost.com", "theathletic.com", "businessinsider.com",
	"barrons.com", "telegraph.co.uk", "thetimes.co.uk",
}

// paywallPhrases appearing alongside a short body suggest a metered paywall
// wall rather than genuinely thin content.
var paywallPhrases = []string{
	"subscribe to continue reading", "this content is for subscribers",
	"you've reached your limit", "create a free account to continue",
	"already a subscriber", "sign in to continue reading",
}

// botDetectionPhrases appearing in a short body suggest an anti-bot
// challenge page rather than the real article.
var botDetectionPhrases = []string{
	"unusual activity", "captcha", "verify you are human", "access denied",
	"cloudflare", "just a moment", "checking your browser", "ray id",
	"pardon our interruption", "please enable javascript",
}

// jsHeavySiteHosts triggers the JS-render fallback for any non-paywalled
// direct fetch from these hosts, whatever its content length.
var jsHeavySiteHosts = []string{
	"twitter.com", "x.com", "instagram.com", "reddit.com",
}

func hostMatchesSuffix(host string, suffixes []string) bool {
	host = strings.ToLower(host)
	for _, suffix := range suffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}

func countPhrases(body string, phrases []string) int {
	lower := strings.ToLower(body)
	count := 0
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			count++
		}
	}
	return count
}

// isPaywalled flags content as paywalled when the host is a known paywalled
// domain and the body is short, or the body mixes a paywall phrase with a
// short body.
func isPaywalled(host, body string) bool {
	short := len(body) < 1000
	if hostMatchesSuffix(host, knownPaywalledDomains) && short {
		return true
	}
	return countPhrases(body, paywallPhrases) >= 1 && short
}

// isBotDetectionPage flags content as an anti-bot challenge page: two or
// more botDetectionPhrases in a body under ~3000 characters, or any single
// one of them in a body under ~2000 characters. The list is not split into
// strong and weak indicators; every phrase counts the same.
func isBotDetectionPage(body string) bool {
	hits := countPhrases(body, botDetectionPhrases)
	if hits >= 2 && len(body) < 3000 {
		return true
	}
	if hits >= 1 && len(body) < 2000 {
		return true
	}
	return false
}

// needsJSRender reports whether a direct-fetch result is thin (under 200
// characters) or comes from a JS-heavy host, and so warrants the
// headless-browser fallback.
func needsJSRender(host, content string, paywalled bool) bool {
	if paywalled {
		return false
	}
	if hostMatchesSuffix(host, jsHeavySiteHosts) {
		return true
	}
	return len(content) < 200
}

// needsArchive reports whether a result (direct or JS-rendered) looks bad
// enough to fall through to the archive-service chain.
func needsArchive(host string, paywalled, botDetected bool) bool {
	return botDetected || paywalled || hostMatchesSuffix(host, knownPaywalledDomains)
}
