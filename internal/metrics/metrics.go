// Package metrics exposes prometheus counters for the federation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Deliveries counts per-destination delivery outcomes, labelled by result.
	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "federation",
		Name:      "deliveries_total",
		Help:      "Outbound activity deliveries by result.",
	}, []string{"result"})

	// Verifications counts inbound signature verification outcomes.
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "federation",
		Name:      "verifications_total",
		Help:      "Inbound signature verifications by result.",
	}, []string{"result"})

	// CacheHits counts authenticated fetches served from the response cache.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "federation",
		Name:      "fetch_cache_hits_total",
		Help:      "Authenticated fetches served from cache.",
	})

	// CacheMisses counts authenticated fetches that went to the network.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "federation",
		Name:      "fetch_cache_misses_total",
		Help:      "Authenticated fetches that went to the network.",
	})
)

// Result label values.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)
