// Package cache provides a Redis cache-aside layer for hydrated flow
// definitions. Flow definitions change rarely but are loaded on every engine
// operation, so a short TTL cache removes most of the hydration queries.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
)

const (
	flowKeyPrefix = "flow:def:"
	defaultTTL    = 5 * time.Minute
)

// FlowCache caches hydrated flow definitions in Redis. A nil *FlowCache is
// valid and behaves as a permanent miss, so Redis stays optional.
type FlowCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewFlowCache creates a FlowCache over an established Redis client.
func NewFlowCache(client *redis.Client, log zerolog.Logger) *FlowCache {
	return &FlowCache{client: client, ttl: defaultTTL, log: log}
}

// Get returns the cached flow definition, or nil on miss or any Redis error.
// Cache errors are logged and treated as misses; the database remains the
// source of truth.
func (c *FlowCache) Get(ctx context.Context, flowID string) *models.FlowDefinition {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, flowKeyPrefix+flowID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("flow_id", flowID).Msg("flow cache read failed")
		}
		return nil
	}

	var flow models.FlowDefinition
	if err := json.Unmarshal(data, &flow); err != nil {
		c.log.Warn().Err(err).Str("flow_id", flowID).Msg("flow cache entry corrupt, dropping")
		c.client.Del(ctx, flowKeyPrefix+flowID)
		return nil
	}
	return &flow
}

// Set stores a hydrated flow definition with the cache TTL.
func (c *FlowCache) Set(ctx context.Context, flow *models.FlowDefinition) {
	if c == nil || c.client == nil || flow == nil {
		return
	}

	data, err := json.Marshal(flow)
	if err != nil {
		c.log.Warn().Err(err).Str("flow_id", flow.ID).Msg("flow cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, flowKeyPrefix+flow.ID, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("flow_id", flow.ID).Msg("flow cache write failed")
	}
}

// Invalidate drops a flow's cache entry, used when administrators edit flows.
func (c *FlowCache) Invalidate(ctx context.Context, flowID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, flowKeyPrefix+flowID).Err(); err != nil {
		c.log.Warn().Err(err).Str("flow_id", flowID).Msg("flow cache invalidation failed")
	}
}
