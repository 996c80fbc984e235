// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/promptlib/internal/platform/cache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingObserver struct {
	hits, misses, evictions int
	entries                 int
}

func (o *countingObserver) Hit(string) { o.hits++ }
func (o *countingObserver) Miss(string) { o.misses++ }
func (o *countingObserver) Evicted(string) { o.evictions++ }
func (o *countingObserver) Entries(_ string, n int) { o.entries = n }

func libraryPolicy() cache.Policy {
	return cache.Policy{
		Name:                 "library",
		MaxEntries:           50,
		TTL:                  3 * time.Hour,
		BrowserMaxAge:        30 * time.Minute,
		EdgeMaxAge:           3 * time.Hour,
		StaleWhileRevalidate: time.Hour,
	}
}

// counter returns a fetcher that yields value and counts its invocations.
func counter(calls *int, value string) cache.Fetcher[string] {
	return func(context.Context) (string, bool, error) {
		*calls++
		return value, true, nil
	}
}

func newStore(t *testing.T, policy cache.Policy, opts ...cache.Option) *cache.Store[string] {
	t.Helper()
	store, err := cache.New[string](policy, opts...)
	require.NoError(t, err)
	return store
}

/*
TestGetOrFetch_HitSkipsFetcher verifies that a second call with the same key is served from the store.
*/
func TestGetOrFetch_HitSkipsFetcher(t *testing.T) {
	observer := &countingObserver{}
	store := newStore(t, libraryPolicy(), cache.WithObserver(observer))
	ctx := context.Background()

	calls := 0
	first, found, err := store.GetOrFetch(ctx, "page:1", counter(&calls, "one"))
	require.NoError(t, err)
	assert.True(t, found)

	second, found, err := store.GetOrFetch(ctx, "page:1", counter(&calls, "other"))
	require.NoError(t, err)
	assert.True(t, found)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "one", first)
	assert.Equal(t, "one", second)
	assert.Equal(t, 1, observer.hits)
	assert.Equal(t, 1, observer.misses)
	assert.Equal(t, 1, observer.entries)
}

/*
TestGetOrFetch_ExpiresAtTTL verifies that an entry inserted at t is absent for any read at t+ttl.
*/
func TestGetOrFetch_ExpiresAtTTL(t *testing.T) {
	clock := newFakeClock()
	store := newStore(t, libraryPolicy(), cache.WithClock(clock.Now))
	ctx := context.Background()

	calls := 0
	_, _, err := store.GetOrFetch(ctx, "page:1", counter(&calls, "v"))
	require.NoError(t, err)

	clock.Advance(3*time.Hour - time.Nanosecond)
	_, _, err = store.GetOrFetch(ctx, "page:1", counter(&calls, "v"))
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "entry is still live just before the deadline")

	clock.Advance(time.Nanosecond)
	_, ok := store.Get("page:1")
	assert.False(t, ok, "entry must be absent exactly at inserted+ttl")

	_, _, err = store.GetOrFetch(ctx, "page:1", counter(&calls, "v"))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

/*
TestSet_EvictsLeastRecentlyUsed inserts max+1 keys after touching the oldest one.
*/
func TestSet_EvictsLeastRecentlyUsed(t *testing.T) {
	policy := libraryPolicy()
	policy.MaxEntries = 3
	observer := &countingObserver{}
	store := newStore(t, policy, cache.WithObserver(observer))

	store.Set("a", "A")
	store.Set("b", "B")
	store.Set("c", "C")

	// "a" becomes most recently used, leaving "b" as the eviction candidate
	_, ok := store.Get("a")
	require.True(t, ok)

	store.Set("d", "D")

	_, ok = store.Get("b")
	assert.False(t, ok)
	for _, key := range []string{"a", "c", "d"} {
		_, ok := store.Get(key)
		assert.True(t, ok, key)
	}
	assert.Equal(t, 1, observer.evictions)
}

/*
TestGetOrFetch_AbsentIsNotCached verifies that a not-found result re-invokes the fetcher.
*/
func TestGetOrFetch_AbsentIsNotCached(t *testing.T) {
	store := newStore(t, libraryPolicy())
	ctx := context.Background()

	calls := 0
	absent := func(context.Context) (string, bool, error) {
		calls++
		return "", false, nil
	}

	for range 2 {
		_, found, err := store.GetOrFetch(ctx, "prompt:ghost:none", absent)
		require.NoError(t, err)
		assert.False(t, found)
	}

	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, store.Stats().Size)
}

/*
TestGetOrFetch_ErrorIsNotCached verifies that failures propagate and leave the store untouched.
*/
func TestGetOrFetch_ErrorIsNotCached(t *testing.T) {
	store := newStore(t, libraryPolicy())
	ctx := context.Background()
	boom := errors.New("connection refused")

	_, _, err := store.GetOrFetch(ctx, "page:1", func(context.Context) (string, bool, error) {
		return "partial", true, boom
	})
	assert.ErrorIs(t, err, boom)

	_, ok := store.Get("page:1")
	assert.False(t, ok)

	calls := 0
	value, _, err := store.GetOrFetch(ctx, "page:1", counter(&calls, "fresh"))
	require.NoError(t, err)
	assert.Equal(t, "fresh", value)
	assert.Equal(t, 1, calls)
}

/*
TestDeletePrefix removes only the matching keys.
*/
func TestDeletePrefix(t *testing.T) {
	store := newStore(t, libraryPolicy())
	store.Set("author:ada:page:1", "1")
	store.Set("author:ada:grouped:page:1", "g")
	store.Set("author:adam:page:1", "x")

	assert.Equal(t, 2, store.DeletePrefix("author:ada:"))

	_, ok := store.Get("author:adam:page:1")
	assert.True(t, ok)
	assert.Equal(t, 1, store.Stats().Size)

	assert.True(t, store.Delete("author:adam:page:1"))
	assert.False(t, store.Delete("author:adam:page:1"))

	store.Set("page:1", "p")
	store.Purge()
	assert.Equal(t, cache.Stats{Size: 0, Max: 50}, store.Stats())
}

/*
TestStats_DropsExpired verifies that expired entries are not reported as size.
*/
func TestStats_DropsExpired(t *testing.T) {
	clock := newFakeClock()
	store := newStore(t, libraryPolicy(), cache.WithClock(clock.Now))

	store.Set("page:1", "p")
	clock.Advance(time.Hour)
	store.Set("page:2", "p")
	clock.Advance(2 * time.Hour)

	assert.Equal(t, cache.Stats{Size: 1, Max: 50}, store.Stats())
}

/*
TestLibraryScenario fills a 50/3h store, inserts a 51st key, and checks that
only the least recently accessed key is refetched.
*/
func TestLibraryScenario(t *testing.T) {
	clock := newFakeClock()
	store := newStore(t, libraryPolicy(), cache.WithClock(clock.Now))
	ctx := context.Background()

	calls := map[string]int{}
	fetch := func(key string) cache.Fetcher[string] {
		return func(context.Context) (string, bool, error) {
			calls[key]++
			return key, true, nil
		}
	}

	for page := 1; page <= 50; page++ {
		key := fmt.Sprintf("page:%d", page)
		_, _, err := store.GetOrFetch(ctx, key, fetch(key))
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	// Touch page:1 so page:2 becomes the least recently accessed
	_, _, err := store.GetOrFetch(ctx, "page:1", fetch("page:1"))
	require.NoError(t, err)

	_, _, err = store.GetOrFetch(ctx, "page:51", fetch("page:51"))
	require.NoError(t, err)

	_, ok := store.Get("page:2")
	assert.False(t, ok, "least recently accessed page must be evicted")

	for page := 1; page <= 51; page++ {
		if page == 2 {
			continue
		}
		key := fmt.Sprintf("page:%d", page)
		_, _, err := store.GetOrFetch(ctx, key, fetch(key))
		require.NoError(t, err)
		assert.Equal(t, 1, calls[key], key)
	}
	assert.Equal(t, 50, store.Stats().Size)
}

/*
TestStore_ConcurrentAccess exercises the store from many goroutines.
*/
func TestStore_ConcurrentAccess(t *testing.T) {
	store := newStore(t, libraryPolicy())
	ctx := context.Background()

	var wg sync.WaitGroup
	for worker := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				key := fmt.Sprintf("page:%d", (worker+i)%80)
				_, _, err := store.GetOrFetch(ctx, key, func(context.Context) (string, bool, error) {
					return key, true, nil
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, store.Stats().Size, 50)
}
