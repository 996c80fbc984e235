// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"errors"
	"fmt"
	"time"
)

// Policy configures one store and the HTTP caching advertised for the
// responses it backs.
//
// The in-process TTL and the edge TTL describe the same freshness window from
// two sides, so they are declared together and validated together.
type Policy struct {
	// Name labels the store in stats, logs and metrics.
	Name string

	// MaxEntries bounds the store; the least recently used entry is evicted beyond it.
	MaxEntries int

	// TTL is the in-process lifetime of an entry.
	TTL time.Duration

	// BrowserMaxAge is advertised as max-age.
	BrowserMaxAge time.Duration

	// EdgeMaxAge is advertised as s-maxage to shared caches.
	EdgeMaxAge time.Duration

	// StaleWhileRevalidate is advertised as stale-while-revalidate.
	StaleWhileRevalidate time.Duration
}

// Validate rejects policies whose advertised lifetimes are inconsistent.
//
// Edge caches must hold a response at least as long as browsers do, and the
// process must never keep an entry longer than the edge advertises it.
func (p Policy) Validate() error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if p.MaxEntries <= 0 {
		errs = append(errs, fmt.Errorf("max entries must be positive, got %d", p.MaxEntries))
	}
	if p.TTL <= 0 {
		errs = append(errs, fmt.Errorf("ttl must be positive, got %s", p.TTL))
	}
	if p.EdgeMaxAge < p.BrowserMaxAge {
		errs = append(errs, fmt.Errorf("s-maxage %s is shorter than max-age %s", p.EdgeMaxAge, p.BrowserMaxAge))
	}
	if p.TTL > p.EdgeMaxAge {
		errs = append(errs, fmt.Errorf("ttl %s outlives s-maxage %s", p.TTL, p.EdgeMaxAge))
	}

	if len(errs) > 0 {
		return fmt.Errorf("cache: invalid policy %q: %w", p.Name, errors.Join(errs...))
	}
	return nil
}

// CacheControl renders the Cache-Control header value for responses backed by this store.
func (p Policy) CacheControl() string {
	return fmt.Sprintf("public, max-age=%d, s-maxage=%d, stale-while-revalidate=%d",
		int(p.BrowserMaxAge.Seconds()),
		int(p.EdgeMaxAge.Seconds()),
		int(p.StaleWhileRevalidate.Seconds()),
	)
}
