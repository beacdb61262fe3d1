package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nova/internal/cache"
	"github.com/Veraticus/nova/internal/model"
)

func TestCache_SurvivesRestartOverSQLite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nova.db")
	now := time.Date(2024, 12, 11, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	events := []model.Event{
		{ID: "1", Summary: "Standup", Start: "2024-12-11T09:00:00Z", Calendar: "Work", CalendarType: model.CalendarWork},
		{ID: "2", Summary: "Mom's birthday", Date: "2024-12-12", Start: "2024-12-12", CalendarType: model.CalendarBirthdays},
	}

	first, err := Open(ctx, dbPath)
	require.NoError(t, err)
	c, err := cache.New(ctx, cache.WithStore(first), cache.WithClock(clock))
	require.NoError(t, err)

	got, ok := c.GetEvents(ctx, now, now.AddDate(0, 0, 1), func(context.Context, time.Time, time.Time) ([]model.Event, error) {
		return events, nil
	}, false)
	require.True(t, ok)
	require.Len(t, got, 2)
	require.NoError(t, first.Close())

	second, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	restored, err := cache.New(ctx, cache.WithStore(second), cache.WithClock(clock))
	require.NoError(t, err)
	assert.Equal(t, []string{cache.WindowKey}, restored.Keys())

	fetched := false
	got, ok = restored.GetEvents(ctx, now.AddDate(0, 0, 1), now.AddDate(0, 0, 1), func(context.Context, time.Time, time.Time) ([]model.Event, error) {
		fetched = true
		return nil, nil
	}, false)
	require.True(t, ok)
	assert.False(t, fetched)
	require.Len(t, got, 1)
	assert.Equal(t, events[1], got[0])

	assert.True(t, restored.Invalidate(ctx, cache.WindowKey))
	records, err := second.LoadCacheEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
