// Package fallback decides whether a configured backend address is a
// non-functional placeholder and supplies deterministic mock payloads for
// that case, so the UI layer stays exercisable with zero backend
// dependency.
package fallback

import (
	"net/url"
	"strings"
)

// TargetPolicy decides whether a base address is a placeholder that must
// never be called. It is selected once at construction time, never
// re-derived per call site.
type TargetPolicy interface {
	IsPlaceholder(baseURL string) bool
}

// AlwaysReal treats every address as a real backend. This is the explicit
// override for environments that intentionally point at an address
// matching a normally-blocklisted pattern (e.g. a loopback backend in
// integration tests).
type AlwaysReal struct{}

// IsPlaceholder always returns false.
func (AlwaysReal) IsPlaceholder(string) bool { return false }

// PlaceholderAware blocklists the well-known scaffolding defaults:
// loopback addresses, example domains, and hosts carrying an obvious
// placeholder marker. This is the default policy.
type PlaceholderAware struct{}

// IsPlaceholder reports whether baseURL points at a non-functional
// placeholder backend. Unparseable and empty addresses count as
// placeholders: calling them could not succeed anyway.
func (PlaceholderAware) IsPlaceholder(baseURL string) bool {
	if strings.TrimSpace(baseURL) == "" {
		return true
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return true
	}

	host := strings.ToLower(u.Hostname())
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	if host == "example.com" || strings.HasSuffix(host, ".example.com") ||
		strings.HasSuffix(host, ".example") {
		return true
	}
	if strings.Contains(host, "your-api") || strings.Contains(host, "placeholder") {
		return true
	}

	return false
}

// PolicyFor selects the target policy from the configuration flag.
// useRealContent=false (the default) yields the placeholder-aware policy;
// setting it is the only escape hatch.
func PolicyFor(useRealContent bool) TargetPolicy {
	if useRealContent {
		return AlwaysReal{}
	}
	return PlaceholderAware{}
}
