package common

import (
	"net/url"
	"strconv"
	"strings"
)

// NormalizeDomain extracts the bare domain from a URL or hostname.
// Lowercased, www. prefix stripped. Returns "" when no host can be
// parsed, which callers treat as "skip this company".
func NormalizeDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	return host
}

// ParseEmployeeCount parses a headcount cell like "1,200". Returns nil
// for empty or non-numeric values.
func ParseEmployeeCount(value string) *int {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}
