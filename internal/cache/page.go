// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute

	// homepageKey stands in for the empty slug of "/".
	homepageKey = "_home"

	scanBatch = 100
)

// PageCache stores rendered public page HTML in Valkey. Every public page
// embeds the global context (navigation, contact, footer), so content edits
// clear the whole cache rather than single entries. A nil *PageCache is a
// valid no-op cache.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Key returns the cache key for a page slug; "" is the homepage.
func Key(slug string) string {
	if slug == "" {
		return homepageKey
	}
	return slug
}

// Get returns cached HTML for key. Errors count as a miss.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if pc == nil {
		return nil, false
	}
	html, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false
	case err != nil:
		slog.Warn("page cache read failed", "key", key, "error", err)
		return nil, false
	}
	return html, true
}

// Set stores rendered HTML under key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if pc == nil {
		return
	}
	if err := pc.client.Set(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache write failed", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached page. Keys are unlinked in batches
// while the scan runs so a large cache never builds one huge command.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	if pc == nil {
		return
	}
	var (
		batch   = make([]string, 0, scanBatch)
		deleted int
	)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := pc.client.Unlink(ctx, batch...).Err(); err != nil {
			slog.Warn("page cache unlink failed", "keys", len(batch), "error", err)
		} else {
			deleted += len(batch)
		}
		batch = batch[:0]
	}

	iter := pc.client.Scan(ctx, 0, pageKeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			flush()
		}
	}
	flush()
	if err := iter.Err(); err != nil {
		slog.Warn("page cache scan failed", "error", err)
		return
	}
	slog.Debug("page cache cleared", "deleted", deleted)
}
