// Package cache adapts redis to the seat-availability cache used by the
// reservation engine. Failures degrade to database reads, never to errors.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ticket-booking/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const seatMapTTL = 30 * time.Second

type SeatCache struct {
	client *redis.Client
	log    *zap.Logger
}

func NewSeatCache(client *redis.Client, log *zap.Logger) *SeatCache {
	return &SeatCache{
		client: client,
		log:    log.With(zap.String("component", "seat_cache")),
	}
}

func seatMapKey(showID string) string {
	return fmt.Sprintf("seats:%s", showID)
}

func (c *SeatCache) GetSeatMap(ctx context.Context, showID string) (entity.SeatMap, bool) {
	data, err := c.client.Get(ctx, seatMapKey(showID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("Seat map cache read failed", zap.Error(err), zap.String("show_id", showID))
		return nil, false
	}

	var seatMap entity.SeatMap
	if err := json.Unmarshal(data, &seatMap); err != nil {
		c.log.Warn("Corrupt seat map cache entry", zap.Error(err), zap.String("show_id", showID))
		c.InvalidateSeatMap(ctx, showID)
		return nil, false
	}
	if seatMap == nil {
		seatMap = entity.SeatMap{}
	}

	return seatMap, true
}

func (c *SeatCache) SetSeatMap(ctx context.Context, showID string, seatMap entity.SeatMap) {
	data, err := json.Marshal(seatMap)
	if err != nil {
		return
	}

	// Short TTL caps staleness between invalidations.
	if err := c.client.Set(ctx, seatMapKey(showID), data, seatMapTTL).Err(); err != nil {
		c.log.Warn("Seat map cache write failed", zap.Error(err), zap.String("show_id", showID))
	}
}

func (c *SeatCache) InvalidateSeatMap(ctx context.Context, showID string) {
	if err := c.client.Del(ctx, seatMapKey(showID)).Err(); err != nil {
		c.log.Warn("Seat map cache invalidation failed", zap.Error(err), zap.String("show_id", showID))
	}
}
