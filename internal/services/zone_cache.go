package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	zoneCacheTTL = 10 * time.Minute
	// zoneCacheMiss marks "resolved to no zone" so negative results are
	// cached too.
	zoneCacheMiss = "none"
)

// ZoneCache caches zone resolution per tenant. Keys embed a per-tenant
// version counter; bumping the counter on any zone write invalidates every
// cached resolution for that tenant at once. All operations degrade to a
// miss when Redis is unavailable.
type ZoneCache struct {
	client *redis.Client
}

// NewZoneCache creates a zone cache. A nil client disables caching.
func NewZoneCache(client *redis.Client) *ZoneCache {
	return &ZoneCache{client: client}
}

func (c *ZoneCache) key(ctx context.Context, tenantID, state, subRegion string) string {
	version, err := c.client.Get(ctx, "shipping:zones:version:"+tenantID).Result()
	if err != nil {
		version = "0"
	}
	return fmt.Sprintf("shipping:zones:resolve:%s:%s:%s:%s",
		tenantID, version, strings.ToLower(state), strings.ToLower(subRegion))
}

// Get returns the cached zone ID for a location. The second return is
// true only on a cache hit; a hit with uuid.Nil means "no zone covers
// this location".
func (c *ZoneCache) Get(ctx context.Context, tenantID, state, subRegion string) (uuid.UUID, bool) {
	if c == nil || c.client == nil {
		return uuid.Nil, false
	}
	val, err := c.client.Get(ctx, c.key(ctx, tenantID, state, subRegion)).Result()
	if err != nil {
		return uuid.Nil, false
	}
	if val == zoneCacheMiss {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Put stores a resolution result, best effort.
func (c *ZoneCache) Put(ctx context.Context, tenantID, state, subRegion string, zoneID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	val := zoneCacheMiss
	if zoneID != uuid.Nil {
		val = zoneID.String()
	}
	c.client.Set(ctx, c.key(ctx, tenantID, state, subRegion), val, zoneCacheTTL)
}

// Invalidate drops every cached resolution for the tenant by bumping the
// tenant's version counter.
func (c *ZoneCache) Invalidate(ctx context.Context, tenantID string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Incr(ctx, "shipping:zones:version:"+tenantID)
}
