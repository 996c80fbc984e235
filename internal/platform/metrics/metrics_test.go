// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/promptlib/internal/platform/metrics"
)

/*
TestCacheMetrics records lookups and exposes them over HTTP.
*/
func TestCacheMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := metrics.NewCacheMetrics(registry)
	require.NoError(t, err)

	m.Hit("library")
	m.Hit("library")
	m.Miss("library")
	m.Evicted("prompt")
	m.Entries("search", 7)

	count, err := testutil.GatherAndCount(registry, "promptlib_cache_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per result label")

	recorder := httptest.NewRecorder()
	metrics.Handler(registry).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := recorder.Body.String()
	assert.Contains(t, body, `promptlib_cache_requests_total{result="hit",store="library"} 2`)
	assert.Contains(t, body, `promptlib_cache_evictions_total{store="prompt"} 1`)
	assert.Contains(t, body, `promptlib_cache_entries{store="search"} 7`)
}

/*
TestNewCacheMetrics_DuplicateRegistration fails when collectors are registered twice.
*/
func TestNewCacheMetrics_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := metrics.NewCacheMetrics(registry)
	require.NoError(t, err)

	_, err = metrics.NewCacheMetrics(registry)
	assert.Error(t, err)
}
