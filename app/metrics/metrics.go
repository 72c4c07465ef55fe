// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration observes UI-facing request latency per route.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "articledesk",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of UI-facing HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})

	// SnapshotApplies counts applied article snapshots by origin.
	SnapshotApplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "articledesk",
		Name:      "snapshot_applies_total",
		Help:      "Article snapshots applied, by origin (refresh, scrape).",
	}, []string{"origin"})

	// StaleSnapshots counts responses discarded by the newest-wins rule.
	StaleSnapshots = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "articledesk",
		Name:      "stale_snapshots_total",
		Help:      "Load responses discarded for being stale.",
	})

	// FavoriteToggles counts favorite toggles by outcome.
	FavoriteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "articledesk",
		Name:      "favorite_toggles_total",
		Help:      "Favorite toggle operations, by outcome (ok, failed, rejected).",
	}, []string{"outcome"})
)
