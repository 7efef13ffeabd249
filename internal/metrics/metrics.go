// Package metrics exposes Prometheus collectors for the catalog API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	filterRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "annales",
		Subsystem: "filter",
		Name:      "requests_total",
		Help:      "Exercise filter evaluations over the whole catalog",
	})

	filterMatches = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "annales",
		Subsystem: "filter",
		Name:      "matches",
		Help:      "Number of exercises matching a filter, before display truncation",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200, 400, 800},
	})

	filterLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "annales",
		Subsystem: "filter",
		Name:      "latency_seconds",
		Help:      "Time spent evaluating the catalog against a filter",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	generateRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "annales",
		Subsystem: "combo",
		Name:      "generate_requests_total",
		Help:      "Combo generation requests by outcome",
	}, []string{"outcome"})

	documentResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "annales",
		Subsystem: "docs",
		Name:      "resolutions_total",
		Help:      "Document resolutions by result: local, fallback or miss",
	}, []string{"result"})
)

// Generation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Document resolution results.
const (
	ResolutionLocal    = "local"
	ResolutionFallback = "fallback"
	ResolutionMiss     = "miss"
)

func ObserveFilter(matches int, elapsed time.Duration) {
	filterRequests.Inc()
	filterMatches.Observe(float64(matches))
	filterLatency.Observe(elapsed.Seconds())
}

func ObserveGenerate(outcome string) {
	generateRequests.WithLabelValues(outcome).Inc()
}

func ObserveResolution(result string) {
	documentResolutions.WithLabelValues(result).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
