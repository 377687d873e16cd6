// Package ml provides Prometheus metrics for classifier operations.
package ml

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	sourceHTTP  = "http"
	sourceCache = "cache"
)

var (
	// PredictionsTotal tracks served predictions by source
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "euromillions_classifier_predictions_total",
			Help: "Total number of classifier predictions served",
		},
		[]string{"source"}, // http, cache
	)

	// PredictionLatency tracks classifier request latency
	PredictionLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "euromillions_classifier_latency_seconds",
			Help:    "Classifier prediction latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// CacheHitRatio tracks the prediction cache hit ratio
	CacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "euromillions_classifier_cache_hit_ratio",
			Help: "Classifier prediction cache hit ratio",
		},
	)

	// ClassifierErrorsTotal tracks classifier failures
	ClassifierErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "euromillions_classifier_errors_total",
			Help: "Total number of classifier errors",
		},
		[]string{"error_type"},
	)
)
