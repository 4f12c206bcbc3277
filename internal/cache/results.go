// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// results.go provides a Valkey-backed cache for hot card lists (the first
// feed page and the featured rail). Cache failures degrade to the
// database; they never surface to callers.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"nearo/internal/models"
)

const (
	// feedKeyPrefix is the Valkey key prefix for cached card lists.
	feedKeyPrefix = "feed:"

	// DefaultResultTTL is how long a cached card list stays fresh.
	DefaultResultTTL = 5 * time.Minute
)

// ResultCache stores JSON-encoded listing card lists in Valkey.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a result cache backed by the given Valkey client.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl == 0 {
		ttl = DefaultResultTTL
	}
	return &ResultCache{client: client, ttl: ttl}
}

// Get retrieves a cached card list. Returns (nil, false) on miss or any
// cache error.
func (rc *ResultCache) Get(ctx context.Context, key string) ([]models.ListingCard, bool) {
	val, err := rc.client.Get(ctx, feedKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("result cache get error", "key", key, "error", err)
		return nil, false
	}

	var cards []models.ListingCard
	if err := json.Unmarshal(val, &cards); err != nil {
		slog.Warn("result cache decode error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("result cache hit", "key", key)
	return cards, true
}

// Set stores a card list under the key with the configured TTL.
func (rc *ResultCache) Set(ctx context.Context, key string, cards []models.ListingCard) {
	data, err := json.Marshal(cards)
	if err != nil {
		slog.Warn("result cache encode error", "key", key, "error", err)
		return
	}
	if err := rc.client.Set(ctx, feedKeyPrefix+key, data, rc.ttl).Err(); err != nil {
		slog.Warn("result cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single cached list.
func (rc *ResultCache) Invalidate(ctx context.Context, key string) {
	if err := rc.client.Del(ctx, feedKeyPrefix+key).Err(); err != nil {
		slog.Warn("result cache invalidate error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached list by scanning for the prefix.
// Used after writes that could appear in any feed.
func (rc *ResultCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, feedKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("result cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("result cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("result cache fully cleared", "deleted", deleted)
	}
}

// RecentKey is the cache key for the first page of the recent feed.
func RecentKey() string {
	return "recent"
}

// FeaturedKey is the cache key for the featured rail.
func FeaturedKey() string {
	return "featured"
}

// NearbyKey returns the cache key for a rounded nearby-feed origin. The
// coordinates are truncated to two decimals (about a kilometre) so nearby
// users share entries; the radius keeps differently-scoped queries apart.
func NearbyKey(lat, lng, radiusKm float64) string {
	return fmt.Sprintf("nearby:%.2f:%.2f:%.0f", lat, lng, radiusKm)
}
