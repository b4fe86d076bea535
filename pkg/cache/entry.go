// Package cache provides response caching for the content API client,
// with validator support for conditional requests and a two-tier
// staleness policy (fresh window, stale-fallback bound).
package cache

import (
	"time"
)

// Entry represents a cached backend response.
type Entry struct {
	// Fingerprint is the deterministic request key this entry is stored under
	Fingerprint string `json:"fingerprint"`

	// Payload is the decoded response body returned to callers on a hit
	Payload []byte `json:"payload"`

	// Validator for conditional requests (If-None-Match); empty when the
	// server supplied neither an ETag nor a content-version marker
	Validator string `json:"validator"`

	// StoredAt is when the entry was written
	StoredAt time.Time `json:"stored_at"`

	// FreshnessWindow is how long after StoredAt the entry is trusted
	// without revalidation
	FreshnessWindow time.Duration `json:"freshness_window"`
}

// IsFresh reports whether the entry is still within its freshness window.
func (e *Entry) IsFresh(now time.Time) bool {
	return now.Sub(e.StoredAt) < e.FreshnessWindow
}

// WithinStaleBound reports whether the entry is young enough to serve as a
// stale fallback after a transport failure. The bound is twice the
// freshness window: stale data is acceptable only when the network itself
// has failed, never when the server actively responded.
func (e *Entry) WithinStaleBound(now time.Time) bool {
	return now.Sub(e.StoredAt) < 2*e.FreshnessWindow
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// HasValidator reports whether the entry can participate in conditional
// revalidation. Entries without a validator remain usable for the
// stale-fallback path but never short-circuit a network call.
func (e *Entry) HasValidator() bool {
	return e.Validator != ""
}
