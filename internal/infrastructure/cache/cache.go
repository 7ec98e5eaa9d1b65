// Package cache provides the cache-aside store fronting backend reads.
// The cache is a performance optimization, never a correctness dependency:
// a broken backend degrades to direct computes, and every mutation path
// invalidates the whole key space of the affected resource.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"taskflow-server/internal/infrastructure/metrics"
)

// ErrMiss is returned by a KV backend when the key is absent.
var ErrMiss = errors.New("cache: miss")

// KV is the minimal key/value contract the store needs. Implementations must
// be safe for concurrent use.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Store wraps a KV backend with get-or-compute and prefix invalidation.
type Store struct {
	kv     KV
	logger zerolog.Logger
}

// NewStore builds a cache-aside store over the given backend.
func NewStore(kv KV, logger zerolog.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

// GetOrCompute returns the cached value for key, or invokes compute, stores
// its result with the given TTL, and returns it. The second return reports a
// cache hit, which callers log with the "(cache)" suffix. Backend failures
// on either read or write fall through to compute with a logged degradation.
func GetOrCompute[T any](ctx context.Context, s *Store, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, bool, error) {
	var zero T

	raw, err := s.kv.Get(ctx, key)
	switch {
	case err == nil:
		var value T
		if uerr := json.Unmarshal([]byte(raw), &value); uerr == nil {
			metrics.RecordCacheLookup("hit")
			return value, true, nil
		}
		// Undecodable entry: recompute over it.
		metrics.RecordCacheLookup("invalid")
		s.logger.Warn().Str("key", key).Msg("cache entry undecodable, recomputing")
	case errors.Is(err, ErrMiss):
		metrics.RecordCacheLookup("miss")
	default:
		metrics.RecordCacheLookup("bypass")
		s.logger.Warn().Err(err).Str("key", key).Msg("cache backend unavailable, computing directly")
		return computeOnly(ctx, compute)
	}

	value, err := compute(ctx)
	if err != nil {
		return zero, false, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache value not serializable, skipping store")
		return value, false, nil
	}
	if err := s.kv.Set(ctx, key, string(data), ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache store failed")
	}
	return value, false, nil
}

func computeOnly[T any](ctx context.Context, compute func(ctx context.Context) (T, error)) (T, bool, error) {
	var zero T
	value, err := compute(ctx)
	if err != nil {
		return zero, false, err
	}
	return value, false, nil
}

// Invalidate removes every cached variant under each prefix: the default key
// and all filter/pagination combinations. Called by every mutation path of
// the resource; failures are logged, reads will simply recompute until the
// TTL clears stragglers.
func (s *Store) Invalidate(ctx context.Context, prefixes ...string) {
	for _, prefix := range prefixes {
		if err := s.kv.DeleteByPrefix(ctx, prefix); err != nil {
			s.logger.Warn().Err(err).Str("prefix", prefix).Msg("cache invalidation failed")
		}
	}
}

// Key builds a cache key from a resource name and filter segments, producing
// the {resource}[:filter=value]* scheme. Two distinct queries never collide
// and one logical query always maps to the same key.
func Key(resource string, filters ...string) string {
	key := resource
	for _, f := range filters {
		key += ":" + f
	}
	return key
}
