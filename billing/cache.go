package billing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"omnibridge-console/logger"
)

const priceCachePrefix = "prices:"

// CachedClient caches the price catalog in Redis. Schedule creation always goes
// to the inner client.
type CachedClient struct {
	inner Client
	rdb   *redis.Client
	ttl   time.Duration
	log   logger.Logger
}

func NewCachedClient(inner Client, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedClient {
	return &CachedClient{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedClient) CreateSubscriptionSchedule(ctx context.Context, req ScheduleRequest) (*Schedule, error) {
	return c.inner.CreateSubscriptionSchedule(ctx, req)
}

func (c *CachedClient) ListPrices(ctx context.Context, query string) ([]Price, error) {
	key := priceCachePrefix + query

	val, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var prices []Price
		if err := json.Unmarshal([]byte(val), &prices); err == nil {
			return prices, nil
		}
		c.log.Warn("discarding unreadable price cache entry", map[string]interface{}{"key": key})
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("price cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}

	prices, err := c.inner.ListPrices(ctx, query)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(prices)
	if err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("price cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return prices, nil
}
