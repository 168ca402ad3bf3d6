package indicator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	factorComputationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factor_computations_total",
			Help: "Factor evaluations by factor and status",
		},
		[]string{"factor", "status"},
	)

	factorComputeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "factor_compute_latency_seconds",
			Help:    "Time spent in a single factor kernel call",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"factor"},
	)

	factorMaskedAssetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factor_masked_assets_total",
			Help: "Assets masked to NaN because they had no bar on the evaluation date",
		},
		[]string{"factor"},
	)

	factorRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factor_runs_total",
			Help: "Engine runs by status",
		},
		[]string{"status"},
	)

	factorPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factor_publish_total",
			Help: "Factor result publications by stage and status",
		},
		[]string{"stage", "status"},
	)
)

const (
	statusOK           = "ok"
	statusError        = "error"
	statusShortHistory = "short_history"
	statusEmpty        = "empty"
)
