// Package cache defines the advisory read-through cache used in front of
// the order store. Nothing here is a source of truth: every implementation
// must be safe to drop at any time, reads degrade to misses and writes to
// no-ops.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Remove(ctx context.Context, keys ...string)
	RemoveByPrefix(ctx context.Context, prefix string)
	Exists(ctx context.Context, key string) bool
}

const (
	orderPrefix           = "order:"
	timelinePrefix        = "timeline:"
	recommendationsPrefix = "recommendations:"
	userOrdersPrefix      = "user_orders:"
)

func OrderKey(orderID int64) string {
	return fmt.Sprintf("%s%d", orderPrefix, orderID)
}

func TimelineKey(orderID int64) string {
	return fmt.Sprintf("%s%d", timelinePrefix, orderID)
}

func RecommendationsKey(userID int64) string {
	return fmt.Sprintf("%s%d", recommendationsPrefix, userID)
}

// UserOrdersPrefix covers every cached page of a user's order list.
func UserOrdersPrefix(userID int64) string {
	return fmt.Sprintf("%s%d:", userOrdersPrefix, userID)
}

func UserOrdersKey(userID int64, limit, offset int) string {
	return fmt.Sprintf("%s%d:%d", UserOrdersPrefix(userID), limit, offset)
}

// GetJSON decodes a cached value. A value that does not decode is a miss.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var v T
	if c == nil {
		return v, false
	}
	b, ok := c.Get(ctx, key)
	if !ok || len(b) == 0 {
		return v, false
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, false
	}
	return v, true
}

// SetJSON stores v; values that fail to encode are silently skipped.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Set(ctx, key, b, ttl)
}

// InvalidateOrder drops the order's own key and every derived key that may
// embed its state. Must be called after any status, position or history write.
func InvalidateOrder(ctx context.Context, c Cache, orderID, userID int64) {
	if c == nil {
		return
	}
	c.Remove(ctx, OrderKey(orderID), TimelineKey(orderID), RecommendationsKey(userID))
	c.RemoveByPrefix(ctx, UserOrdersPrefix(userID))
}

// InvalidateUser drops the per-user derived keys (used when a new order appears).
func InvalidateUser(ctx context.Context, c Cache, userID int64) {
	if c == nil {
		return
	}
	c.Remove(ctx, RecommendationsKey(userID))
	c.RemoveByPrefix(ctx, UserOrdersPrefix(userID))
}
