// Package cache is a small Redis-backed view cache. Read endpoints go
// read-through; mutating actions invalidate the affected view keys, which is
// what keeps stale pages from surviving an order placement or a pickup
// finalization. A nil client disables caching entirely.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 60 * time.Second

// View keys. One key per cached page, per user where the page is personal.
const (
	KeyMenu      = "view:menu"
	KeySettings  = "view:settings"
	KeyLocations = "view:locations"
)

func KeyUserOrders(userID string) string { return "view:orders:" + userID }
func KeyUserPoints(userID string) string { return "view:points:" + userID }

// Get loads and unmarshals a cached view into dest. The bool reports a hit.
func Get(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	val, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(val), dest)
}

func Set(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// Invalidate drops the given view keys. Best effort: a cache miss later is
// always safe, so errors are returned but callers typically just log them.
func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}
