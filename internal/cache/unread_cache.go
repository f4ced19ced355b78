// Package cache keeps per-recipient unread counts in Redis so badge polling
// does not hit the notification store on every request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"foodorder/internal/common"
	"foodorder/internal/config"

	"github.com/redis/go-redis/v9"
)

const unreadKeyPrefix = "notif:unread:"

type RedisUnreadCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect redis at %s: %w", cfg.Redis.Addr, err)
	}
	return client, nil
}

// NewRedisUnreadCache stores counts with the given TTL. A zero TTL keeps
// entries until they are invalidated.
func NewRedisUnreadCache(client *redis.Client, ttl time.Duration) *RedisUnreadCache {
	return &RedisUnreadCache{client: client, ttl: ttl}
}

func unreadKey(recipientID string) string {
	return unreadKeyPrefix + recipientID
}

func (c *RedisUnreadCache) Get(ctx context.Context, recipientID string) (int64, bool, error) {
	raw, err := c.client.Get(ctx, unreadKey(recipientID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read unread count: %w", err)
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Treat a corrupt entry as a miss; the next Set overwrites it.
		return 0, false, nil
	}
	return count, true, nil
}

func (c *RedisUnreadCache) Set(ctx context.Context, recipientID string, count int64, maxAge time.Duration) error {
	ttl := c.ttl
	if maxAge > 0 && (ttl <= 0 || maxAge < ttl) {
		ttl = maxAge
	}
	if err := c.client.Set(ctx, unreadKey(recipientID), count, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache unread count: %w", err)
	}
	return nil
}

func (c *RedisUnreadCache) Invalidate(ctx context.Context, recipientID string) error {
	if err := c.client.Del(ctx, unreadKey(recipientID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate unread count: %w", err)
	}
	return nil
}

var _ common.UnreadCounter = (*RedisUnreadCache)(nil)
