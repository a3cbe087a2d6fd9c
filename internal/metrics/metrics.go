// Package metrics defines and registers all custom Prometheus metrics for the
// movie catalog client. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package load
// via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "movieclient"

// ── Catalog metrics ───────────────────────────────────────────────────────────

// CatalogFetchesTotal counts catalog page fetches that completed.
// Label:
//   - result: "success" or "error"
var CatalogFetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_fetches_total",
		Help:      "Total number of catalog page fetches, by result.",
	},
	[]string{"result"},
)

// CatalogStaleDropsTotal counts responses discarded because a newer request
// had already been issued (last-request-wins ordering).
var CatalogStaleDropsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_stale_drops_total",
		Help:      "Total number of catalog responses dropped as superseded.",
	},
)

// CatalogFetchDuration measures how long a catalog page fetch takes.
// Label:
//   - result: "success" or "error"
var CatalogFetchDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_fetch_duration_seconds",
		Help:      "Duration of catalog page fetches from issue to response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Review metrics ────────────────────────────────────────────────────────────

// ReviewsSubmittedTotal counts review submissions.
// Label:
//   - result: "success", "rejected" (local invariant refusal), or "error"
var ReviewsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_submitted_total",
		Help:      "Total number of review submission attempts, by result.",
	},
	[]string{"result"},
)

// ── Admin metrics ─────────────────────────────────────────────────────────────

// AdminMutationsTotal counts admin mutation requests.
// Labels:
//   - kind: "movie_create", "movie_update", "movie_delete",
//     "user_promote", "user_demote", "user_delete"
//   - result: "success", "rejected" (local invariant refusal), or "error"
var AdminMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_mutations_total",
		Help:      "Total number of admin mutation attempts, by kind and result.",
	},
	[]string{"kind", "result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionEventsTotal counts session lifecycle transitions.
// Label:
//   - event: "login", "logout", or "restore"
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session lifecycle events.",
	},
	[]string{"event"},
)
