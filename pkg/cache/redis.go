package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// redisKeyPrefix namespaces entries so Clear and Stats can scan them.
const redisKeyPrefix = "contentcache:"

// RedisStore is a Store backed by Redis, for deployments that want the
// content cache shared across processes. Redis failures are treated as
// misses (on read) or dropped writes: the Store contract has no error
// surface, so problems are logged and counted instead.
type RedisStore struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:  redisClient,
		logger: log.With().Str("component", "redis-store").Logger(),
	}
}

// Get retrieves an entry by fingerprint.
func (s *RedisStore) Get(ctx context.Context, fingerprint string) (*Entry, bool) {
	entry, ok := s.fetch(ctx, fingerprint)
	if ok {
		CacheHits.WithLabelValues("redis").Inc()
	} else {
		CacheMisses.Inc()
	}
	return entry, ok
}

// fetch reads an entry without touching the hit/miss counters.
func (s *RedisStore) fetch(ctx context.Context, fingerprint string) (*Entry, bool) {
	data, err := s.redis.Get(ctx, redisKeyPrefix+fingerprint).Bytes()
	if err != nil {
		if err != redis.Nil {
			storeErrors.WithLabelValues("get").Inc()
			s.logger.Warn().Err(err).Str("fingerprint", fingerprint).Msg("Redis get failed")
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		storeErrors.WithLabelValues("get").Inc()
		s.logger.Warn().Err(err).Str("fingerprint", fingerprint).Msg("Corrupted cache entry")
		return nil, false
	}

	return &entry, true
}

// Put stores an entry. No TTL is set: stale entries must stay reachable for
// the fallback path, matching the in-memory store.
func (s *RedisStore) Put(ctx context.Context, fingerprint string, entry *Entry) {
	if entry == nil {
		return
	}
	entry.Fingerprint = fingerprint

	if prev, ok := s.fetch(ctx, fingerprint); ok && prev.StoredAt.After(entry.StoredAt) {
		entry.StoredAt = prev.StoredAt
	}

	data, err := json.Marshal(entry)
	if err != nil {
		storeErrors.WithLabelValues("put").Inc()
		s.logger.Warn().Err(err).Str("fingerprint", fingerprint).Msg("Marshal cache entry failed")
		return
	}

	if err := s.redis.Set(ctx, redisKeyPrefix+fingerprint, data, 0).Err(); err != nil {
		storeErrors.WithLabelValues("put").Inc()
		s.logger.Warn().Err(err).Str("fingerprint", fingerprint).Msg("Redis set failed")
	}
}

// Clear removes all entries under the cache prefix.
func (s *RedisStore) Clear(ctx context.Context) {
	iter := s.redis.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			storeErrors.WithLabelValues("clear").Inc()
			s.logger.Warn().Err(err).Str("key", iter.Val()).Msg("Redis del failed")
		}
	}
	if err := iter.Err(); err != nil {
		storeErrors.WithLabelValues("clear").Inc()
		s.logger.Warn().Err(err).Msg("Redis scan failed during clear")
	}
}

// Stats scans the cache prefix and reports per-entry diagnostics.
func (s *RedisStore) Stats(ctx context.Context) Stats {
	now := time.Now()
	stats := Stats{Entries: []EntryStats{}}

	iter := s.redis.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.redis.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		stats.Count++
		stats.Entries = append(stats.Entries, EntryStats{
			Fingerprint:  entry.Fingerprint,
			Age:          entry.Age(now),
			HasValidator: entry.HasValidator(),
		})
	}
	if err := iter.Err(); err != nil {
		storeErrors.WithLabelValues("stats").Inc()
		s.logger.Warn().Err(err).Msg("Redis scan failed during stats")
	}

	return stats
}
