// Package cache implements the response cache used by the content API
// client.
//
// # Entries
//
// An Entry holds the decoded payload of one backend response together with
// the validator token (ETag or content-version marker) needed for
// conditional revalidation, the time it was stored, and its freshness
// window.
//
// # Fingerprints
//
// A Key describes a logical request (method, target, query, cache-relevant
// headers, body). Key.Fingerprint renders it into a deterministic string:
// two logically identical requests always map to the same fingerprint, so
// the store can hold at most one entry per logical request.
//
// # Staleness is two-tier
//
// Entry.IsFresh gates trusting a hit outright (and attaching a conditional
// header when revalidating). Entry.WithinStaleBound gates the looser
// degrade-to-stale path used only when the transport itself has failed; its
// bound is twice the freshness window. Entries are never expired out of the
// store so that this second path stays available.
//
// # Stores
//
// MemoryStore is the default: an unbounded, mutex-guarded map living for
// the lifetime of the owning facade. RedisStore is a drop-in alternative
// for sharing the cache across processes; since the Store contract has no
// error surface, Redis failures degrade to misses and are logged and
// counted.
//
// Freshness windows come from ComputeWindow: a server-supplied
// "Cache-Control: max-age" directive wins over the caller default.
package cache
