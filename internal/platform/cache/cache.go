// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cache implements the bounded, TTL-based read-through stores that sit
in front of the directory queries.

Each [Store] is an exact LRU (hashicorp/golang-lru simplelru) whose entries
also carry an absolute expiry instant:

  - A live entry is returned without calling the fetcher and becomes most recently used.
  - An entry is never returned at or after insertion + TTL.
  - Absent results and fetcher errors are never stored.

Stores are safe for concurrent use. Two concurrent misses on the same key may
both fetch and both write; the fetchers are pure for their key, so the second
write stores an equivalent value.
*/
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Fetcher produces the value for a key on a miss.
// found=false reports an absent result, which is returned but not stored.
type Fetcher[V any] func(ctx context.Context) (value V, found bool, err error)

// Observer receives store activity, typically to export metrics.
type Observer interface {
	Hit(store string)
	Miss(store string)
	Evicted(store string)
	Entries(store string, n int)
}

type nopObserver struct{}

func (nopObserver) Hit(string) {}
func (nopObserver) Miss(string) {}
func (nopObserver) Evicted(string) {}
func (nopObserver) Entries(string, int) {}

// Stats is a point-in-time view of a store's occupancy.
type Stats struct {
	Size int `json:"size"`
	Max  int `json:"max"`
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type options struct {
	now      func() time.Time
	observer Observer
}

// Option customizes a [Store].
type Option func(*options)

// WithClock replaces time.Now as the store's time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithObserver reports hits, misses, evictions and occupancy to observer.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// Store is a bounded LRU of values of type V with a fixed per-entry TTL.
type Store[V any] struct {
	mu       sync.Mutex
	policy   Policy
	entries  *simplelru.LRU[string, entry[V]]
	now      func() time.Time
	observer Observer
}

// New builds a store from a validated policy.
func New[V any](policy Policy, opts ...Option) (*Store[V], error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	o := options{now: time.Now, observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}

	entries, err := simplelru.NewLRU[string, entry[V]](policy.MaxEntries, nil)
	if err != nil {
		return nil, fmt.Errorf("cache: create store %q: %w", policy.Name, err)
	}

	return &Store[V]{
		policy:   policy,
		entries:  entries,
		now:      o.now,
		observer: o.observer,
	}, nil
}

// Policy returns the store's configuration.
func (s *Store[V]) Policy() Policy {
	return s.policy
}

// Get returns the live entry for key, marking it most recently used.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getLocked(key)
}

func (s *Store[V]) getLocked(key string) (V, bool) {
	var zero V

	cached, ok := s.entries.Get(key)
	if !ok {
		return zero, false
	}

	if !s.now().Before(cached.expiresAt) {
		s.entries.Remove(key)
		s.observer.Entries(s.policy.Name, s.entries.Len())
		return zero, false
	}

	return cached.value, true
}

// Set stores value under key with the store's TTL.
func (s *Store[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := s.entries.Add(key, entry[V]{value: value, expiresAt: s.now().Add(s.policy.TTL)})
	if evicted {
		s.observer.Evicted(s.policy.Name)
	}
	s.observer.Entries(s.policy.Name, s.entries.Len())
}

// GetOrFetch returns the live entry for key or runs fetch exactly once.
//
// The lock is not held while fetching, so a slow query never blocks hits on
// other keys.
func (s *Store[V]) GetOrFetch(ctx context.Context, key string, fetch Fetcher[V]) (V, bool, error) {
	if value, ok := s.Get(key); ok {
		s.observer.Hit(s.policy.Name)
		return value, true, nil
	}
	s.observer.Miss(s.policy.Name)

	value, found, err := fetch(ctx)
	if err != nil {
		var zero V
		return zero, false, err
	}

	if found {
		s.Set(key, value)
	}
	return value, found, nil
}

// Delete removes key and reports whether it was present.
func (s *Store[V]) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.entries.Remove(key)
	s.observer.Entries(s.policy.Name, s.entries.Len())
	return removed
}

// DeletePrefix removes every key starting with prefix and returns how many were removed.
func (s *Store[V]) DeletePrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, key := range s.entries.Keys() {
		if strings.HasPrefix(key, prefix) && s.entries.Remove(key) {
			removed++
		}
	}
	s.observer.Entries(s.policy.Name, s.entries.Len())
	return removed
}

// Purge empties the store.
func (s *Store[V]) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries.Purge()
	s.observer.Entries(s.policy.Name, 0)
}

// Stats reports the number of live entries and the capacity.
// Expired entries found along the way are dropped so they are not counted.
func (s *Store[V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, key := range s.entries.Keys() {
		if cached, ok := s.entries.Peek(key); ok && !now.Before(cached.expiresAt) {
			s.entries.Remove(key)
		}
	}

	size := s.entries.Len()
	s.observer.Entries(s.policy.Name, size)
	return Stats{Size: size, Max: s.policy.MaxEntries}
}
