package cache

import (
	"context"
	"time"

	"github.com/Veraticus/nova/internal/model"
	"github.com/Veraticus/nova/internal/observability"
	"github.com/Veraticus/nova/internal/temporal"
)

// WindowKey holds the rolling week of events.
const WindowKey = "events:window"

// WindowDays is the length of the events window, today included.
const WindowDays = 7

// EventsFetcher loads events between start and end, inclusive.
type EventsFetcher func(ctx context.Context, start, end time.Time) ([]model.Event, error)

// Window returns the current events window [today, today+6].
func (c *Cache) Window() (start, end time.Time) {
	start = temporal.Day(c.now())
	return start, start.AddDate(0, 0, WindowDays-1)
}

// GetEvents returns events between start and end. Requests inside the window
// are answered from a single cached fetch of the whole window and filtered to
// the requested days. Requests reaching outside it go straight to fetch with
// the requested bounds and are not cached.
func (c *Cache) GetEvents(ctx context.Context, start, end time.Time, fetch EventsFetcher, forceRefresh bool) ([]model.Event, bool) {
	start, end = temporal.Day(start), temporal.Day(end)
	windowStart, windowEnd := c.Window()

	if start.Before(windowStart) || end.After(windowEnd) {
		c.logger.Debug("events request outside window",
			"start", start.Format(temporal.DateLayout),
			"end", end.Format(temporal.DateLayout))
		c.metrics.CacheRequest(WindowKey, observability.CacheBypass)

		events, err := fetch(ctx, start, end)
		if err != nil {
			c.logger.Error("failed to fetch events", "error", err)
			return nil, false
		}
		return events, true
	}

	all, ok := Fetch(ctx, c, WindowKey, func(ctx context.Context) ([]model.Event, error) {
		return fetch(ctx, windowStart, windowEnd)
	}, forceRefresh)
	if !ok {
		return nil, false
	}

	from, to := start.Format(temporal.DateLayout), end.Format(temporal.DateLayout)
	filtered := make([]model.Event, 0, len(all))
	for _, e := range all {
		if day := e.Day(); day >= from && day <= to {
			filtered = append(filtered, e)
		}
	}
	return filtered, true
}
