// Package cache provides the assistant's TTL data cache. Entries are fetched
// through caller-supplied fetchers, mirrored to an optional persistent store,
// and served stale when a refresh fails.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/nova/internal/common"
	"github.com/Veraticus/nova/internal/model"
	"github.com/Veraticus/nova/internal/observability"
)

// Well-known cache keys.
const (
	KeyWeather = "weather"
	KeyEvents  = "events"
	KeyTodos   = "todos"
)

// DefaultTTL applies to keys without a configured TTL.
const DefaultTTL = 5 * time.Minute

// DefaultTTLs are the built-in per-key TTLs.
var DefaultTTLs = map[string]time.Duration{
	KeyWeather: 30 * time.Minute,
	KeyEvents:  5 * time.Minute,
	KeyTodos:   5 * time.Minute,
}

// Fetcher loads fresh data for a key. The cache never inspects the value.
type Fetcher func(ctx context.Context) (any, error)

// Store persists cache entries across restarts.
type Store interface {
	LoadCacheEntries(ctx context.Context) ([]model.CacheRecord, error)
	SaveCacheEntry(ctx context.Context, record model.CacheRecord) error
	DeleteCacheEntry(ctx context.Context, key string) (bool, error)
	DeleteAllCacheEntries(ctx context.Context) (int, error)
}

// Entry is a cached value with its freshness window. Entries are replaced,
// never modified.
type Entry struct {
	Data      any
	FetchedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is stale at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// EntryStatus describes one entry for diagnostics.
type EntryStatus struct {
	FetchedAt    time.Time     `json:"fetched_at"`
	ExpiresAt    time.Time     `json:"expires_at"`
	Expired      bool          `json:"is_expired"`
	TTLRemaining time.Duration `json:"ttl_remaining"`
}

// Cache is a keyed TTL cache. It is safe for concurrent use, but it does not
// coalesce concurrent fetches: two callers missing the same key at the same
// time each run their own fetcher.
type Cache struct {
	entries    map[string]Entry
	ttl        map[string]time.Duration
	store      Store
	logger     *slog.Logger
	metrics    *observability.Metrics
	now        func() time.Time
	defaultTTL time.Duration
	mu         sync.RWMutex
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore mirrors entries to s and preloads it in New.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

// WithTTL overrides the TTL for one key.
func WithTTL(key string, ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl[key] = ttl
		}
	}
}

// WithTTLs overrides TTLs for several keys.
func WithTTLs(ttls map[string]time.Duration) Option {
	return func(c *Cache) {
		for k, v := range ttls {
			if v > 0 {
				c.ttl[k] = v
			}
		}
	}
}

// WithDefaultTTL sets the TTL for keys with no specific TTL.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithLogger sets the cache logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithMetrics records lookups on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache and loads any persisted entries. Persisted entries hold
// their JSON encoding (json.RawMessage) until decoded by Fetch or Lookup.
func New(ctx context.Context, opts ...Option) (*Cache, error) {
	c := &Cache{
		entries:    make(map[string]Entry),
		ttl:        make(map[string]time.Duration, len(DefaultTTLs)),
		defaultTTL: DefaultTTL,
		now:        time.Now,
	}
	for k, v := range DefaultTTLs {
		c.ttl[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = common.LoggerOrDefault(c.logger)

	if c.store != nil {
		records, err := c.store.LoadCacheEntries(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load cache entries: %w", err)
		}
		for _, r := range records {
			c.entries[r.Key] = Entry{
				Data:      json.RawMessage(r.Data),
				FetchedAt: r.FetchedAt,
				ExpiresAt: r.ExpiresAt,
			}
			c.logger.Debug("loaded cache entry from store", "key", r.Key)
		}
	}

	return c, nil
}

// TTL returns the TTL for key. A key like "events:window" falls back to the
// TTL of its prefix ("events") before the default.
func (c *Cache) TTL(key string) time.Duration {
	if ttl, ok := c.ttl[key]; ok {
		return ttl
	}
	if prefix, _, found := strings.Cut(key, ":"); found {
		if ttl, ok := c.ttl[prefix]; ok {
			return ttl
		}
	}
	return c.defaultTTL
}

// Get returns fresh cached data for key, or runs fetch when the entry is
// missing, expired, or forceRefresh is set. When fetch fails the previous
// entry is returned even if expired. ok is false only when fetch failed and
// nothing was cached; callers should treat that as "unavailable".
func (c *Cache) Get(ctx context.Context, key string, fetch Fetcher, forceRefresh bool) (any, bool) {
	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	if !forceRefresh && found && !entry.Expired(c.now()) {
		c.logger.Debug("cache hit", "key", key)
		c.metrics.CacheRequest(key, observability.CacheHit)
		return entry.Data, true
	}

	c.logger.Info("fetching fresh data", "key", key, "force_refresh", forceRefresh)
	data, err := fetch(ctx)
	if err != nil {
		c.logger.Error("failed to fetch", "key", key, "error", err)
		if found {
			c.logger.Warn("returning stale data", "key", key, "fetched_at", entry.FetchedAt)
			c.metrics.CacheRequest(key, observability.CacheStale)
			return entry.Data, true
		}
		c.logger.Error("no fallback data", "key", key)
		c.metrics.CacheRequest(key, observability.CacheUnavailable)
		return nil, false
	}

	ttl := c.TTL(key)
	c.put(ctx, key, data, ttl)
	c.metrics.CacheRequest(key, observability.CacheMiss)
	c.logger.Debug("cached", "key", key, "ttl", ttl)
	return data, true
}

// GetSync returns cached data without fetching. Expired data is returned only
// when includeStale is set.
func (c *Cache) GetSync(key string, includeStale bool) (any, bool) {
	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	if !found || (entry.Expired(c.now()) && !includeStale) {
		return nil, false
	}
	return entry.Data, true
}

// Set stores data directly. A ttl of zero or less uses the key's TTL.
func (c *Cache) Set(ctx context.Context, key string, data any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.TTL(key)
	}
	c.put(ctx, key, data, ttl)
	c.logger.Debug("set cache", "key", key, "ttl", ttl)
}

// Invalidate removes key from memory and the store and reports whether it
// was cached in memory.
func (c *Cache) Invalidate(ctx context.Context, key string) bool {
	c.mu.Lock()
	_, removed := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()

	if c.store != nil {
		if _, err := c.store.DeleteCacheEntry(ctx, key); err != nil {
			c.logger.Warn("failed to delete persisted cache entry", "key", key, "error", err)
		}
	}

	if removed {
		c.logger.Debug("invalidated cache", "key", key)
	}
	return removed
}

// Clear removes every entry and returns how many were cached in memory.
func (c *Cache) Clear(ctx context.Context) int {
	c.mu.Lock()
	count := len(c.entries)
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	if c.store != nil {
		if _, err := c.store.DeleteAllCacheEntries(ctx); err != nil {
			c.logger.Warn("failed to clear persisted cache entries", "error", err)
		}
	}

	c.logger.Info("cleared cache", "entries", count)
	return count
}

// Keys returns the cached keys in sorted order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Status reports freshness for every entry.
func (c *Cache) Status() map[string]EntryStatus {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	status := make(map[string]EntryStatus, len(c.entries))
	for key, e := range c.entries {
		remaining := e.ExpiresAt.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		status[key] = EntryStatus{
			FetchedAt:    e.FetchedAt,
			ExpiresAt:    e.ExpiresAt,
			Expired:      e.Expired(now),
			TTLRemaining: remaining,
		}
	}
	return status
}

// put replaces the entry for key and writes it through to the store. A store
// failure is logged; the in-memory entry is kept.
func (c *Cache) put(ctx context.Context, key string, data any, ttl time.Duration) {
	now := c.now()
	entry := Entry{Data: data, FetchedAt: now, ExpiresAt: now.Add(ttl)}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	if c.store == nil {
		return
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		c.logger.Warn("failed to encode cache entry", "key", key, "error", err)
		return
	}

	err = c.store.SaveCacheEntry(ctx, model.CacheRecord{
		Key:       key,
		Data:      encoded,
		FetchedAt: entry.FetchedAt,
		ExpiresAt: entry.ExpiresAt,
	})
	if err != nil {
		c.logger.Warn("failed to persist cache entry", "key", key, "error", err)
	}
}
