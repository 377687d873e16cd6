// Package metrics provides the centralized Prometheus metrics registry for the ticket evaluator.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "euromillions"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluations_total",
		Help:      "Total number of ticket evaluations by verdict",
	}, []string{"verdict"})
	EvaluationErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluation_errors_total",
		Help:      "Total number of failed ticket evaluations by reason",
	}, []string{"reason"})
	ScoringSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scoring_skipped_records_total",
		Help:      "Total number of records left unscored for missing sales or winner data",
	})
)

// Gauge metrics
var (
	PopulationSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "population_size",
		Help:      "Number of historical draws in the reference population",
	})
	AvgWinQuantile = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "avg_win_quantile",
		Help:      "Quantiles of the avg_win score over the most recently scored population",
	}, []string{"quantile"})
)

// Histogram metrics
var (
	EvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of single ticket evaluations in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	FeatureEngineeringDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feature_engineering_duration_seconds",
		Help:      "Duration of population feature engineering passes in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register evaluation metrics
		registry.MustRegister(EvaluationsTotal)
		registry.MustRegister(EvaluationErrorsTotal)
		registry.MustRegister(EvaluationDuration)

		// Register population metrics
		registry.MustRegister(ScoringSkippedTotal)
		registry.MustRegister(PopulationSize)
		registry.MustRegister(AvgWinQuantile)
		registry.MustRegister(FeatureEngineeringDuration)

		// Register ingestion metrics
		registry.MustRegister(IngestionRunsTotal)
		registry.MustRegister(DrawsStoredTotal)
		registry.MustRegister(DrawsRejectedTotal)
		registry.MustRegister(IngestionDuration)
		registry.MustRegister(LastIngestionTimestamp)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler. It also serves the default
// registry, which carries the Go runtime and classifier client collectors.
func Handler() http.Handler {
	gatherers := prometheus.Gatherers{GetRegistry(), prometheus.DefaultGatherer}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

// RecordEvaluation records a completed ticket evaluation.
func RecordEvaluation(verdict string, durationSeconds float64) {
	EvaluationsTotal.WithLabelValues(verdict).Inc()
	EvaluationDuration.Observe(durationSeconds)
}

// RecordEvaluationError records a failed ticket evaluation.
func RecordEvaluationError(reason string) {
	EvaluationErrorsTotal.WithLabelValues(reason).Inc()
}

// RecordFeatureEngineering records one population feature engineering pass.
func RecordFeatureEngineering(population int, durationSeconds float64) {
	PopulationSize.Set(float64(population))
	FeatureEngineeringDuration.Observe(durationSeconds)
}
