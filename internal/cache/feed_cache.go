package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// FeedCacheTTL bounds staleness if an invalidation event is ever lost.
const FeedCacheTTL = 5 * time.Minute

// FeedCache is a read-through cache for per-user feeds and per-tweet
// like/reply counts.
type FeedCache struct {
	client *redis.Client
}

func NewFeedCache(client *redis.Client) *FeedCache {
	return &FeedCache{client: client}
}

// Get returns the cached value for key, or nil on a cache miss.
func (c *FeedCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

// Set stores data under key with the feed TTL.
func (c *FeedCache) Set(ctx context.Context, key string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, jsonData, FeedCacheTTL).Err()
}

// Delete drops the given keys. Used by the worker on content events.
func (c *FeedCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Build cache key for a user's feed
func FeedKey(userID int) string {
	return fmt.Sprintf("feed:user:%d", userID)
}

// Build cache key for a tweet's like/reply counts
func TweetStatsKey(tweetID int) string {
	return fmt.Sprintf("stats:tweet:%d", tweetID)
}
