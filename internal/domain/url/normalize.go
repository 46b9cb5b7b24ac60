// Package url provides URL normalization and classification utilities for
// the omnibar engine.
package url

import (
	"fmt"
	neturl "net/url"
	"strings"
)

// Normalize adds https:// prefix if missing for URL-like inputs.
// Returns the input unchanged if it already has a scheme or doesn't look like a URL.
func Normalize(input string) string {
	if input == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(input, "http://"):
		return input
	case strings.HasPrefix(input, "https://"):
		return input
	}

	// Looks like a URL (contains . and no spaces)
	if strings.Contains(input, ".") && !strings.Contains(input, " ") {
		return "https://" + input
	}

	return input
}

// LooksLikeURL checks if the input appears to be a URL (not a search query).
// Returns true for strings like "github.com", "google.com/search", etc.
func LooksLikeURL(input string) bool {
	if input == "" {
		return false
	}

	switch {
	case strings.HasPrefix(input, "http://"):
		return true
	case strings.HasPrefix(input, "https://"):
		return true
	}

	// Contains a dot and no spaces = likely a URL
	return strings.Contains(input, ".") && !strings.Contains(input, " ")
}

// NormalizeKey derives the canonical dedup key for a history URL:
// scheme (http/https only), host lowercased with a leading "www." stripped,
// port elided when it equals the scheme default, path with the trailing
// slash trimmed (minimum "/"), query lowercased. URLs that differ only in
// these cosmetic ways map to the same key.
func NormalizeKey(raw string) (string, error) {
	parsed, err := neturl.Parse(raw)
	if err != nil {
		return "", err
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}

	port := parsed.Port()
	if port == defaultPort(scheme) {
		port = ""
	}
	if port != "" {
		host += ":" + port
	}

	path := strings.TrimSuffix(parsed.EscapedPath(), "/")
	if path == "" {
		path = "/"
	}

	key := scheme + "://" + host + path
	if parsed.RawQuery != "" {
		key += "?" + strings.ToLower(parsed.RawQuery)
	}
	return key, nil
}

func defaultPort(scheme string) string {
	switch scheme {
	case "http":
		return "80"
	case "https":
		return "443"
	}
	return ""
}

// ScoringForm reduces a URL to the form textual matching runs against:
// host with "www." and the default port stripped, followed by path and
// query, all lowercased. Empty when the URL does not parse.
func ScoringForm(raw string) string {
	parsed, err := neturl.Parse(raw)
	if err != nil || parsed.Host == "" {
		return strings.ToLower(raw)
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if port := parsed.Port(); port != "" && port != defaultPort(strings.ToLower(parsed.Scheme)) {
		host += ":" + port
	}

	form := host + strings.ToLower(parsed.EscapedPath())
	if parsed.RawQuery != "" {
		form += "?" + strings.ToLower(parsed.RawQuery)
	}
	return form
}

// Host extracts the lowercased hostname (no port) from a URL string,
// empty when unparsable.
func Host(raw string) string {
	parsed, err := neturl.Parse(raw)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// HostHasTLD reports whether the host's apparent TLD contains a dot
// separator, i.e. "example.com" passes while "localhost" or "example."
// do not. Used to keep junk hosts out of history and ghost text.
func HostHasTLD(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.Contains(host, "]") {
		host = host[:idx]
	}
	dot := strings.LastIndex(host, ".")
	if dot <= 0 {
		return false
	}
	return dot < len(host)-1
}

// StripScheme removes http:// or https:// prefix from a URL for matching.
func StripScheme(url string) string {
	if strings.HasPrefix(url, "https://") {
		return url[8:]
	}
	if strings.HasPrefix(url, "http://") {
		return url[7:]
	}
	return url
}

// StripSchemeWWW removes the scheme and a leading "www." for matching.
func StripSchemeWWW(url string) string {
	return strings.TrimPrefix(StripScheme(url), "www.")
}
