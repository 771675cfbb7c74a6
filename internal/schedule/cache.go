package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"courtgrid/internal/backend"
	"courtgrid/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Cache keeps recent per-resource availability answers in redis so bursts of
// grid rebuilds (date flipping in the UI) do not hammer the backend. Cache
// failures are treated as misses.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(resourceID int, date string, durationMinutes int) string {
	return fmt.Sprintf("availability:%d:%s:%d", resourceID, date, durationMinutes)
}

func (c *Cache) Get(ctx context.Context, resourceID int, date string, durationMinutes int) ([]backend.AvailabilitySlot, bool) {
	val, err := c.client.Get(ctx, cacheKey(resourceID, date, durationMinutes)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Debug("availability cache read failed", "error", err)
		return nil, false
	}

	var slots []backend.AvailabilitySlot
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (c *Cache) Set(ctx context.Context, resourceID int, date string, durationMinutes int, slots []backend.AvailabilitySlot) {
	data, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(resourceID, date, durationMinutes), data, c.ttl).Err(); err != nil {
		logger.Debug("availability cache write failed", "error", err)
	}
}

// Invalidate drops every cached answer for one resource and date, called
// after a booking lands on that date.
func (c *Cache) Invalidate(ctx context.Context, resourceID int, date string) {
	pattern := fmt.Sprintf("availability:%d:%s:*", resourceID, date)
	keys, err := c.client.Keys(ctx, pattern).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Debug("availability cache invalidation failed", "error", err)
	}
}
