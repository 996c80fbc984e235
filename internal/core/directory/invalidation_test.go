// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/promptlib/internal/core/directory"
	"github.com/taibuivan/promptlib/internal/platform/apperr"
)

/*
TestInvalidation_Validate checks scope and slug combinations.
*/
func TestInvalidation_Validate(t *testing.T) {
	tests := []struct {
		name  string
		input directory.Invalidation
		valid bool
	}{
		{"all", directory.Invalidation{Scope: directory.ScopeAll}, true},
		{"search", directory.Invalidation{Scope: directory.ScopeSearch}, true},
		{"author_narrowed", directory.Invalidation{Scope: directory.ScopeAuthor, AuthorSlug: "ada"}, true},
		{"prompt_narrowed", directory.Invalidation{Scope: directory.ScopePrompt, AuthorSlug: "ada", PromptSlug: "essay"}, true},
		{"unknown_scope", directory.Invalidation{Scope: "everything"}, false},
		{"slug_on_library", directory.Invalidation{Scope: directory.ScopeLibrary, AuthorSlug: "ada"}, false},
		{"prompt_without_author", directory.Invalidation{Scope: directory.ScopePrompt, PromptSlug: "essay"}, false},
		{"prompt_slug_on_author", directory.Invalidation{Scope: directory.ScopeAuthor, AuthorSlug: "ada", PromptSlug: "essay"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		})
	}
}

func primePrompt(t *testing.T, caches *directory.Caches) directory.Reader {
	t.Helper()
	store := newFakeStore()
	store.addAuthor("a1", "Ada", false)
	store.addPrompt("p1", "a1", "Essay", directory.TypePrompt, 1)

	reader := directory.NewCachedService(directory.NewService(store, discardLogger()), caches)
	_, err := reader.GetPromptBySlug(context.Background(), "ada", "essay")
	require.NoError(t, err)
	require.Equal(t, 1, caches.Stats().Prompt.Size)
	return reader
}

/*
TestInvalidator_LocalOnly applies invalidations without Redis.
*/
func TestInvalidator_LocalOnly(t *testing.T) {
	caches := newCaches(t)
	primePrompt(t, caches)

	invalidator := directory.NewInvalidator(caches, nil, discardLogger())
	removed, err := invalidator.Invalidate(context.Background(), directory.Invalidation{
		Scope: directory.ScopePrompt, AuthorSlug: "ada", PromptSlug: "essay",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, caches.Stats().Prompt.Size)

	_, err = invalidator.Invalidate(context.Background(), directory.Invalidation{Scope: "bogus"})
	assert.Error(t, err)
}

/*
TestInvalidator_Broadcast relays an invalidation to another instance over Redis pub/sub.
*/
func TestInvalidator_Broadcast(t *testing.T) {
	server := miniredis.RunT(t)
	newClient := func() *redis.Client {
		client := redis.NewClient(&redis.Options{Addr: server.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return client
	}

	localCaches := newCaches(t)
	remoteCaches := newCaches(t)
	primePrompt(t, remoteCaches)

	local := directory.NewInvalidator(localCaches, newClient(), discardLogger())
	remote := directory.NewInvalidator(remoteCaches, newClient(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- remote.Run(ctx) }()

	// Publish until the remote subscription is live and has applied the flush
	assert.Eventually(t, func() bool {
		_, err := local.Invalidate(context.Background(), directory.Invalidation{Scope: directory.ScopeAll})
		return err == nil && remoteCaches.Stats().Prompt.Size == 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

// syncBuffer is a log sink safe for the subscriber goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

/*
TestInvalidator_IgnoresOwnBroadcast verifies an instance does not re-apply its own message.
*/
func TestInvalidator_IgnoresOwnBroadcast(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logs := &syncBuffer{}
	invalidator := directory.NewInvalidator(newCaches(t), client, slog.New(slog.NewJSONHandler(logs, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = invalidator.Run(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "cache_invalidation_subscribed")
	}, 2*time.Second, 10*time.Millisecond)

	_, err := invalidator.Invalidate(context.Background(), directory.Invalidation{Scope: directory.ScopeLibrary})
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	assert.Contains(t, logs.String(), "cache_invalidated")
	assert.NotContains(t, logs.String(), "cache_invalidation_applied")
}

/*
TestCaches_ApplyFamilyScopes verifies library and search scopes purge only their own family.
*/
func TestCaches_ApplyFamilyScopes(t *testing.T) {
	store := newFakeStore()
	store.addAuthor("a1", "Ada", false)
	store.addPrompt("p1", "a1", "Essay", directory.TypePrompt, 1)

	caches := newCaches(t)
	reader := directory.NewCachedService(directory.NewService(store, discardLogger()), caches)
	ctx := context.Background()

	fill := func() {
		_, err := reader.GetLibraryPage(ctx, 1, "")
		require.NoError(t, err)
		_, err = reader.SearchPrompts(ctx, "essay", 1, "")
		require.NoError(t, err)
		_, err = reader.GetPromptBySlug(ctx, "ada", "essay")
		require.NoError(t, err)
	}

	fill()
	assert.Equal(t, -1, caches.Apply(directory.Invalidation{Scope: directory.ScopeLibrary}))
	stats := caches.Stats()
	assert.Equal(t, 0, stats.Library.Size)
	assert.Equal(t, 1, stats.Search.Size)
	assert.Equal(t, 1, stats.Prompt.Size)

	fill()
	assert.Equal(t, -1, caches.Apply(directory.Invalidation{Scope: directory.ScopeSearch}))
	stats = caches.Stats()
	assert.Equal(t, 1, stats.Library.Size)
	assert.Equal(t, 0, stats.Search.Size)
	assert.Equal(t, 1, stats.Prompt.Size)
}
