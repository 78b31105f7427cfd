package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"leadcapture_backend/internal/analytics/aggregator"
	"leadcapture_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache stores computed metrics in redis for a short TTL. Invalidation bumps
// a per-tenant version instead of scanning keys: stale entries just expire.
// Every cache failure degrades to a recompute, never to an error.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, log: log}
}

func (c *Cache) key(ctx context.Context, tenantID uuid.UUID, period int, filterKey string) (string, error) {
	version, err := c.client.Get(ctx, "analytics:ver:"+tenantID.String()).Result()
	if err == redis.Nil {
		version = "0"
	} else if err != nil {
		return "", err
	}
	return fmt.Sprintf("analytics:%s:v%s:p%d:%s", tenantID, version, period, filterKey), nil
}

// Get returns cached metrics, or ok=false on miss or any redis failure.
func (c *Cache) Get(ctx context.Context, tenantID uuid.UUID, period int, filterKey string) (aggregator.Metrics, bool) {
	if c == nil || c.client == nil {
		return aggregator.Metrics{}, false
	}

	key, err := c.key(ctx, tenantID, period, filterKey)
	if err != nil {
		c.log.Warn("analytics cache unavailable", "error", err.Error())
		return aggregator.Metrics{}, false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return aggregator.Metrics{}, false
	}
	if err != nil {
		c.log.Warn("analytics cache read failed", "error", err.Error())
		return aggregator.Metrics{}, false
	}

	var m aggregator.Metrics
	if err := json.Unmarshal(raw, &m); err != nil {
		return aggregator.Metrics{}, false
	}
	return m, true
}

// Set stores metrics under the tenant's current version. Failures are logged
// and dropped.
func (c *Cache) Set(ctx context.Context, tenantID uuid.UUID, period int, filterKey string, m aggregator.Metrics) {
	if c == nil || c.client == nil {
		return
	}

	key, err := c.key(ctx, tenantID, period, filterKey)
	if err != nil {
		return
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("analytics cache write failed", "error", err.Error())
	}
}

// Invalidate bumps the tenant's cache version so every cached report for the
// tenant misses from now on.
func (c *Cache) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, "analytics:ver:"+tenantID.String()).Err(); err != nil {
		c.log.Warn("analytics cache invalidation failed", "error", err.Error())
	}
}
