package cache

import (
	"context"
	"encoding/json"
)

// Fetch is Get for a concrete type. Data persisted by a previous run is
// decoded from its JSON form; if it no longer decodes as T the entry is
// refetched.
func Fetch[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error), forceRefresh bool) (T, bool) {
	wrapped := func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}

	data, ok := c.Get(ctx, key, wrapped, forceRefresh)
	if !ok {
		var zero T
		return zero, false
	}
	if v, ok := decode[T](data); ok {
		return v, true
	}

	c.logger.Warn("cached data has unexpected shape, refetching", "key", key)
	data, ok = c.Get(ctx, key, wrapped, true)
	if !ok {
		var zero T
		return zero, false
	}
	return decode[T](data)
}

// Lookup is GetSync for a concrete type.
func Lookup[T any](c *Cache, key string, includeStale bool) (T, bool) {
	data, ok := c.GetSync(key, includeStale)
	if !ok {
		var zero T
		return zero, false
	}
	return decode[T](data)
}

func decode[T any](data any) (T, bool) {
	var zero T
	switch v := data.(type) {
	case T:
		return v, true
	case json.RawMessage:
		var out T
		if err := json.Unmarshal(v, &out); err != nil {
			return zero, false
		}
		return out, true
	default:
		return zero, false
	}
}
