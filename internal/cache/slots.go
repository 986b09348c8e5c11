// Package cache keeps resolved bookable-slot lists in Redis for a short
// TTL. The cache is best effort: every failure degrades to a recompute.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkashlan/muallim/internal/schedule"
)

type SlotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSlotCache(rdb *redis.Client, ttl time.Duration) *SlotCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SlotCache{rdb: rdb, ttl: ttl}
}

func versionKey(instructorID int64) string {
	return fmt.Sprintf("slots:ver:%d", instructorID)
}

// Invalidation bumps a per-instructor version instead of scanning for
// range keys; stale entries expire on their own TTL.
func (c *SlotCache) slotKey(ctx context.Context, instructorID int64, from, to time.Time) string {
	ver, err := c.rdb.Get(ctx, versionKey(instructorID)).Result()
	if err != nil {
		ver = "0"
	}
	return fmt.Sprintf("slots:%d:%s:%s:%s",
		instructorID, ver, from.Format(time.DateOnly), to.Format(time.DateOnly))
}

func (c *SlotCache) Get(ctx context.Context, instructorID int64, from, to time.Time) ([]schedule.Slot, bool) {
	data, err := c.rdb.Get(ctx, c.slotKey(ctx, instructorID, from, to)).Bytes()
	if err != nil {
		return nil, false
	}

	var slots []schedule.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (c *SlotCache) Set(ctx context.Context, instructorID int64, from, to time.Time, slots []schedule.Slot) {
	data, err := json.Marshal(slots)
	if err != nil {
		return
	}
	_ = c.rdb.SetEx(ctx, c.slotKey(ctx, instructorID, from, to), data, c.ttl).Err()
}

func (c *SlotCache) Invalidate(ctx context.Context, instructorID int64) {
	_ = c.rdb.Incr(ctx, versionKey(instructorID)).Err()
}
