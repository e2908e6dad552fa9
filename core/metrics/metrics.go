// Package metrics provides Prometheus metrics for the reconciler.
package metrics

import (
	"time"

	"reconciler/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reconciler"

// Run kinds.
const (
	KindJob        = "job"
	KindSimulation = "simulation"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRejected  = "rejected"
)

var (
	// RunsTotal tracks reconciliation runs by kind and status
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Total number of reconciliation runs by kind and status",
		},
		[]string{"kind", "status"},
	)

	// RunDuration tracks how long a run takes from record load to persisted result
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "run_duration_seconds",
			Help:      "Duration of reconciliation runs in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	// MatchesTotal tracks classified matches
	MatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "matches_total",
			Help:      "Total number of source records classified as matches",
		},
		[]string{"kind"},
	)

	// ExceptionsTotal tracks exceptions by severity
	ExceptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "exceptions_total",
			Help:      "Total number of exceptions by severity",
		},
		[]string{"kind", "severity"},
	)

	// CandidateEvaluations tracks scored (source, target) pairs
	CandidateEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "candidate_evaluations_total",
			Help:      "Total number of candidate pairs scored",
		},
		[]string{"kind"},
	)

	// CacheRequests tracks record set cache lookups
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "records",
			Name:      "cache_requests_total",
			Help:      "Record set cache lookups by source and result",
		},
		[]string{"source", "result"},
	)
)

// ObserveRun records a finished run. result may be nil for failed runs.
func ObserveRun(kind, status string, started time.Time, result *reconcile.Result, targets int) {
	RunsTotal.WithLabelValues(kind, status).Inc()
	RunDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	if result == nil {
		return
	}
	MatchesTotal.WithLabelValues(kind).Add(float64(len(result.Matches)))
	for _, exc := range result.Exceptions {
		ExceptionsTotal.WithLabelValues(kind, string(exc.Severity)).Inc()
	}
	CandidateEvaluations.WithLabelValues(kind).Add(float64(result.Summary.Total * targets))
}

// CacheHit records a record set served from cache.
func CacheHit(source string) {
	CacheRequests.WithLabelValues(source, "hit").Inc()
}

// CacheMiss records a record set loaded from its source.
func CacheMiss(source string) {
	CacheRequests.WithLabelValues(source, "miss").Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
