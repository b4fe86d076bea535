package cache

import (
	"strconv"
	"strings"
	"time"
)

// DefaultFreshnessWindow is the fallback freshness window when the caller
// supplies none and the server sends no cache directive.
const DefaultFreshnessWindow = 5 * time.Minute

// ComputeWindow derives the freshness window for a new cache entry.
// A server-supplied Cache-Control max-age directive takes precedence over
// the caller default; other directives are ignored.
func ComputeWindow(defaultWindow time.Duration, cacheControl string) time.Duration {
	if defaultWindow <= 0 {
		defaultWindow = DefaultFreshnessWindow
	}
	if cacheControl == "" {
		return defaultWindow
	}

	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(strings.ToLower(directive))
		value, ok := strings.CutPrefix(directive, "max-age=")
		if !ok {
			continue
		}
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds < 0 {
			// Malformed directive - use caller default
			return defaultWindow
		}
		return time.Duration(seconds) * time.Second
	}

	return defaultWindow
}
