package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ingestion run statuses
const (
	IngestionStatusSuccess = "success"
	IngestionStatusFailed  = "failed"
)

var (
	IngestionRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingestion_runs_total",
		Help:      "Total number of draw ingestion runs by source and status",
	}, []string{"source", "status"})

	DrawsStoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "draws_stored_total",
		Help:      "Total number of draws written by source",
	}, []string{"source"})

	DrawsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "draws_rejected_total",
		Help:      "Total number of dataset rows rejected by source",
	}, []string{"source"})

	IngestionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ingestion_duration_seconds",
		Help:      "Duration of ingestion runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"source"})

	LastIngestionTimestamp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_ingestion_timestamp_seconds",
		Help:      "Unix time of the last successful ingestion by source",
	}, []string{"source"})
)

// RecordIngestion records the outcome of one ingestion run.
func RecordIngestion(source, status string, stored, rejected int, duration time.Duration) {
	IngestionRunsTotal.WithLabelValues(source, status).Inc()
	DrawsStoredTotal.WithLabelValues(source).Add(float64(stored))
	DrawsRejectedTotal.WithLabelValues(source).Add(float64(rejected))
	IngestionDuration.WithLabelValues(source).Observe(duration.Seconds())
	if status == IngestionStatusSuccess {
		LastIngestionTimestamp.WithLabelValues(source).SetToCurrentTime()
	}
}
