// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics exports read-cache activity to Prometheus.
//
// [CacheMetrics] implements [cache.Observer]; one instance is shared by all
// directory stores and distinguishes them by the "store" label.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "promptlib"

// Result label values for cache lookups.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// CacheMetrics holds the collectors for the directory read cache.
type CacheMetrics struct {
	requests  *prometheus.CounterVec
	entries   *prometheus.GaugeVec
	evictions *prometheus.CounterVec
}

// NewCacheMetrics creates the cache collectors and registers them on registerer.
func NewCacheMetrics(registerer prometheus.Registerer) (*CacheMetrics, error) {
	m := &CacheMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Read-cache lookups by store and result.",
		}, []string{"store", "result"}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Entries currently held by each read-cache store.",
		}, []string{"store"}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Entries evicted because a store reached capacity.",
		}, []string{"store"}),
	}

	for _, collector := range []prometheus.Collector{m.requests, m.entries, m.evictions} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Hit implements cache.Observer.
func (m *CacheMetrics) Hit(store string) {
	m.requests.WithLabelValues(store, ResultHit).Inc()
}

// Miss implements cache.Observer.
func (m *CacheMetrics) Miss(store string) {
	m.requests.WithLabelValues(store, ResultMiss).Inc()
}

// Evicted implements cache.Observer.
func (m *CacheMetrics) Evicted(store string) {
	m.evictions.WithLabelValues(store).Inc()
}

// Entries implements cache.Observer.
func (m *CacheMetrics) Entries(store string, n int) {
	m.entries.WithLabelValues(store).Set(float64(n))
}

// Handler serves the metrics gathered by gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
