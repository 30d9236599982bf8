package entity

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// blockedHosts is the fixed literal set of hostnames ValidateURL rejects
// outright, regardless of how they resolve.
var blockedHosts = map[string]bool{
	"localhost":                true,
	"localhost.localdomain":    true,
	"metadata.google.internal": true,
	"kubernetes.default":       true,
	"kubernetes.default.svc":   true,
}

// blockedHostSuffixes rejects any hostname ending in one of these suffixes.
var blockedHostSuffixes = []string{
	".local",
	".internal",
	".localhost",
}

// ValidateURL validates the format and safety of a URL per the SSRF
// precondition in spec §4.4: scheme must be http/https, the hostname must
// not be in the blocked literal set or suffix list, and if the hostname is
// an IP literal or resolves via DNS, none of the resolved addresses may fall
// in a private, loopback, link-local, unique-local, or documentation range.
// Failed DNS resolution is tolerated; the fetch attempt will fail later.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	// DoS protection: enforce maximum URL length
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	host := strings.ToLower(parsedURL.Hostname())
	if blockedHosts[host] {
		return &ValidationError{Field: "url", Message: fmt.Sprintf("url blocked: %s is a reserved host", host)}
	}
	for _, suffix := range blockedHostSuffixes {
		if strings.HasSuffix(host, suffix) {
			return &ValidationError{Field: "url", Message: fmt.Sprintf("url blocked: %s matches reserved suffix %s", host, suffix)}
		}
	}

	// If the host is itself an IP literal, validate it directly; otherwise
	// resolve it and validate every returned address. Failed DNS resolution
	// is tolerated here — the fetch attempt will fail later.
	if ip := net.ParseIP(host); ip != nil {
		if IsBlockedIP(ip) {
			return &ValidationError{Field: "url", Message: "url cannot point to a private or reserved network"}
		}
		return nil
	}

	ips, err := net.LookupIP(host)
	if err == nil {
		for _, ip := range ips {
			if IsBlockedIP(ip) {
				return &ValidationError{Field: "url", Message: "url cannot point to a private or reserved network"}
			}
		}
	}

	return nil
}

// IsBlockedIP reports whether ip falls in a range the SSRF precondition
// blocks: loopback, link-local, unique-local, private IPv4 ranges, the cloud
// metadata address, broadcast, or IETF documentation ranges.
func IsBlockedIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	if ip.IsUnspecified() {
		return true
	}
	// Unique local IPv6 (fc00::/7).
	if ip.To4() == nil && len(ip) == net.IPv6len && ip[0]&0xfe == 0xfc {
		return true
	}
	blockedCIDRs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16", // includes the 169.254.169.254 cloud metadata address
		"255.255.255.255/32",
		"192.0.2.0/24",    // TEST-NET-1
		"198.51.100.0/24", // TEST-NET-2
		"203.0.113.0/24",  // TEST-NET-3
	}
	for _, cidr := range blockedCIDRs {
		_, subnet, err := net.ParseCIDR(cidr)
		if err == nil && subnet.Contains(ip) {
			return true
		}
	}
	return false
}
