package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Key identifies a logical request for caching purposes. Two logically
// identical requests must produce the same fingerprint regardless of
// query-parameter or header ordering.
type Key struct {
	// Method is the HTTP method (defaults to GET when empty)
	Method string

	// Target is the absolute request URL without the query string
	Target string

	// QueryParams are the request query parameters
	QueryParams url.Values

	// Headers are the cache-relevant request headers (e.g. Accept-Language)
	Headers map[string]string

	// Body is the request body, if any
	Body []byte
}

// Fingerprint generates a deterministic key string.
// Format: content:<xxhash64-hex> over the normalized request shape.
func (k Key) Fingerprint() string {
	var b strings.Builder

	method := k.Method
	if method == "" {
		method = "GET"
	}
	b.WriteString(method)
	b.WriteByte('\n')
	b.WriteString(strings.TrimRight(k.Target, "/"))
	b.WriteByte('\n')

	// Query params, sorted for determinism
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)
		for _, key := range queryKeys {
			fmt.Fprintf(&b, "%s=%s\n", key, strings.Join(k.QueryParams[key], ","))
		}
	}

	// Headers, lowercased and sorted for determinism
	if len(k.Headers) > 0 {
		norm := make(map[string]string, len(k.Headers))
		for key, value := range k.Headers {
			norm[strings.ToLower(key)] = value
		}
		headerKeys := make([]string, 0, len(norm))
		for key := range norm {
			headerKeys = append(headerKeys, key)
		}
		sort.Strings(headerKeys)
		for _, key := range headerKeys {
			fmt.Fprintf(&b, "%s:%s\n", key, norm[key])
		}
	}

	// Sentinel keeps a body from colliding with a header line
	if len(k.Body) > 0 {
		b.WriteByte(0)
		b.Write(k.Body)
	}

	return fmt.Sprintf("content:%016x", xxhash.Sum64String(b.String()))
}
