// Package cache provides a Redis-backed leaderboard cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/perfboard/perfboard/internal/performance/application/queries"
)

const keyPrefix = "perfboard:ranking:"

// RedisRankingCache implements queries.RankingCache over Redis. Entries
// are stored as a single JSON blob per key with a TTL, so a stale ranking
// simply expires instead of needing invalidation.
type RedisRankingCache struct {
	client *redis.Client
}

// NewRedisRankingCache creates a new RedisRankingCache.
func NewRedisRankingCache(client *redis.Client) *RedisRankingCache {
	return &RedisRankingCache{client: client}
}

// Get returns the cached ranking for the key, reporting whether it was found.
func (c *RedisRankingCache) Get(ctx context.Context, key string) ([]queries.LeaderboardEntry, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read ranking cache: %w", err)
	}

	var entries []queries.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached ranking: %w", err)
	}
	return entries, true, nil
}

// Set stores the ranking under the key for the given TTL.
func (c *RedisRankingCache) Set(ctx context.Context, key string, entries []queries.LeaderboardEntry, ttl time.Duration) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode ranking: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write ranking cache: %w", err)
	}
	return nil
}
