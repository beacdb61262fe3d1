package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nova/internal/model"
	"github.com/Veraticus/nova/internal/observability"
)

var errFetch = errors.New("upstream down")

type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 12, 11, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type memoryStore struct {
	records map[string]model.CacheRecord
	saveErr error
	mu      sync.Mutex
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]model.CacheRecord)}
}

func (m *memoryStore) LoadCacheEntries(_ context.Context) ([]model.CacheRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.CacheRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryStore) SaveCacheEntry(_ context.Context, r model.CacheRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[r.Key] = r
	return nil
}

func (m *memoryStore) DeleteCacheEntry(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[key]
	delete(m.records, key)
	return ok, nil
}

func (m *memoryStore) DeleteAllCacheEntries(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.records)
	m.records = make(map[string]model.CacheRecord)
	return n, nil
}

type countingFetcher struct {
	value any
	err   error
	calls atomic.Int32
}

func (f *countingFetcher) Fetch(_ context.Context) (any, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.value, nil
}

func newTestCache(t *testing.T, clock *fakeClock, opts ...Option) *Cache {
	t.Helper()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	c, err := New(context.Background(), opts...)
	require.NoError(t, err)
	return c
}

func TestCache_GetFetchesOnceWithinTTL(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := newTestCache(t, clock)
	f := &countingFetcher{value: "sunny"}

	for i := 0; i < 3; i++ {
		data, ok := c.Get(ctx, KeyWeather, f.Fetch, false)
		require.True(t, ok)
		assert.Equal(t, "sunny", data)
		clock.Advance(10 * time.Minute)
	}
	assert.Equal(t, int32(1), f.calls.Load())

	// 30 minutes after the fetch the entry is expired.
	data, ok := c.Get(ctx, KeyWeather, f.Fetch, false)
	require.True(t, ok)
	assert.Equal(t, "sunny", data)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestCache_TTL(t *testing.T) {
	c := newTestCache(t, newFakeClock(), WithTTL(KeyTodos, time.Minute), WithDefaultTTL(2*time.Minute))

	tests := []struct {
		key  string
		want time.Duration
	}{
		{KeyWeather, 30 * time.Minute},
		{KeyEvents, 5 * time.Minute},
		{KeyTodos, time.Minute},
		{WindowKey, 5 * time.Minute},
		{"news", 2 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, c.TTL(tt.key))
		})
	}
}

func TestCache_ExpiresExactlyAtTTL(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)
	c.Set(context.Background(), "k", 1, time.Minute)

	clock.Advance(time.Minute - time.Nanosecond)
	_, ok := c.GetSync("k", false)
	assert.True(t, ok)

	clock.Advance(time.Nanosecond)
	_, ok = c.GetSync("k", false)
	assert.False(t, ok)
}

func TestCache_ForceRefreshBypassesFreshEntry(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, newFakeClock())
	f := &countingFetcher{value: []string{"a"}}

	_, ok := c.Get(ctx, KeyTodos, f.Fetch, false)
	require.True(t, ok)

	f.value = []string{"a", "b"}
	data, ok := c.Get(ctx, KeyTodos, f.Fetch, true)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, data)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestCache_StaleFallback(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := newTestCache(t, clock)

	good := &countingFetcher{value: "v1"}
	_, ok := c.Get(ctx, KeyEvents, good.Fetch, false)
	require.True(t, ok)
	before := c.Status()[KeyEvents]

	clock.Advance(time.Hour)
	bad := &countingFetcher{err: errFetch}
	data, ok := c.Get(ctx, KeyEvents, bad.Fetch, false)
	require.True(t, ok)
	assert.Equal(t, "v1", data)
	assert.Equal(t, int32(1), bad.calls.Load())

	// The failed refresh leaves the old entry untouched.
	assert.Equal(t, before.FetchedAt, c.Status()[KeyEvents].FetchedAt)

	data, ok = c.Get(ctx, KeyEvents, bad.Fetch, true)
	require.True(t, ok)
	assert.Equal(t, "v1", data)
}

func TestCache_UnavailableWithoutFallback(t *testing.T) {
	c := newTestCache(t, newFakeClock())
	f := &countingFetcher{err: errFetch}

	data, ok := c.Get(context.Background(), KeyWeather, f.Fetch, false)
	assert.False(t, ok)
	assert.Nil(t, data)
	assert.Empty(t, c.Keys())
}

func TestCache_GetSync(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)

	_, ok := c.GetSync("missing", true)
	assert.False(t, ok)

	c.Set(context.Background(), "k", "v", 0)
	data, ok := c.GetSync("k", false)
	require.True(t, ok)
	assert.Equal(t, "v", data)

	clock.Advance(DefaultTTL)
	_, ok = c.GetSync("k", false)
	assert.False(t, ok)

	data, ok = c.GetSync("k", true)
	require.True(t, ok)
	assert.Equal(t, "v", data)
}

func TestCache_InvalidateAndClear(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	c := newTestCache(t, newFakeClock(), WithStore(store))

	c.Set(ctx, "a", 1, 0)
	c.Set(ctx, "b", 2, 0)
	c.Set(ctx, "c", 3, 0)
	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())

	assert.True(t, c.Invalidate(ctx, "a"))
	assert.False(t, c.Invalidate(ctx, "a"))
	assert.NotContains(t, store.records, "a")

	assert.Equal(t, 2, c.Clear(ctx))
	assert.Equal(t, 0, c.Clear(ctx))
	assert.Empty(t, store.records)
}

func TestCache_Status(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)
	c.Set(context.Background(), "fresh", 1, time.Hour)
	c.Set(context.Background(), "old", 1, time.Minute)
	clock.Advance(2 * time.Minute)

	status := c.Status()
	require.Len(t, status, 2)
	assert.False(t, status["fresh"].Expired)
	assert.Equal(t, 58*time.Minute, status["fresh"].TTLRemaining)
	assert.True(t, status["old"].Expired)
	assert.Zero(t, status["old"].TTLRemaining)
}

func TestCache_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := newMemoryStore()

	first := newTestCache(t, clock, WithStore(store))
	todos := []model.Todo{{ID: "1", Content: "Buy milk", Priority: model.PriorityHigh}}
	got, ok := Fetch(ctx, first, KeyTodos, func(context.Context) ([]model.Todo, error) {
		return todos, nil
	}, false)
	require.True(t, ok)
	assert.Equal(t, todos, got)
	require.Contains(t, store.records, KeyTodos)

	second := newTestCache(t, clock, WithStore(store))
	raw, ok := second.GetSync(KeyTodos, false)
	require.True(t, ok)
	assert.IsType(t, json.RawMessage{}, raw)

	restored, ok := Lookup[[]model.Todo](second, KeyTodos, false)
	require.True(t, ok)
	assert.Equal(t, todos, restored)

	var calls int
	again, ok := Fetch(ctx, second, KeyTodos, func(context.Context) ([]model.Todo, error) {
		calls++
		return nil, errFetch
	}, false)
	require.True(t, ok)
	assert.Equal(t, todos, again)
	assert.Zero(t, calls)
}

func TestCache_StoreWriteFailureKeepsMemory(t *testing.T) {
	store := newMemoryStore()
	store.saveErr = errors.New("disk full")
	c := newTestCache(t, newFakeClock(), WithStore(store))

	c.Set(context.Background(), "k", "v", 0)
	data, ok := c.GetSync("k", false)
	require.True(t, ok)
	assert.Equal(t, "v", data)
	assert.Empty(t, store.records)
}

func TestFetch_RefetchesUndecodableEntry(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, newFakeClock())
	c.Set(ctx, KeyTodos, "not a list", 0)

	got, ok := Fetch(ctx, c, KeyTodos, func(context.Context) ([]model.Todo, error) {
		return []model.Todo{{ID: "1"}}, nil
	}, false)
	require.True(t, ok)
	assert.Equal(t, []model.Todo{{ID: "1"}}, got)
}

func TestCache_ConcurrentMissesAreNotCoalesced(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, newFakeClock())

	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, ok := c.Get(ctx, "k", fetch, false)
			assert.True(t, ok)
			assert.Equal(t, "v", data)
		}()
	}
	<-started
	<-started
	close(release)
	wg.Wait()

	assert.Equal(t, int32(2), calls.Load())
}

func TestCache_Metrics(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	m, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	c := newTestCache(t, clock, WithMetrics(m))

	good := &countingFetcher{value: 1}
	bad := &countingFetcher{err: errFetch}

	c.Get(ctx, "k", good.Fetch, false)
	c.Get(ctx, "k", good.Fetch, false)
	clock.Advance(time.Hour)
	c.Get(ctx, "k", bad.Fetch, false)
	c.Get(ctx, "other", bad.Fetch, false)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.CacheRequestCounter("k", observability.CacheMiss)), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.CacheRequestCounter("k", observability.CacheHit)), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.CacheRequestCounter("k", observability.CacheStale)), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.CacheRequestCounter("other", observability.CacheUnavailable)), 0)
}
