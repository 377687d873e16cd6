package logger

import (
	"github.com/sirupsen/logrus"
)

// IngestionLogger provides dedicated logging for historical draw ingestion.
type IngestionLogger struct {
	*logrus.Entry
}

// NewIngestionLogger creates a new ingestion logger.
func NewIngestionLogger(baseLogger *logrus.Logger) *IngestionLogger {
	return &IngestionLogger{
		Entry: baseLogger.WithField("component", "ingestion"),
	}
}

// LogSourceFetched logs a fetch from a draw source.
func (il *IngestionLogger) LogSourceFetched(source string, records int, durationMs float64) {
	il.WithFields(logrus.Fields{
		"source":      source,
		"records":     records,
		"duration_ms": durationMs,
	}).Info("Draw source fetched")
}

// LogRecordRejected logs a draw that failed validation.
func (il *IngestionLogger) LogRecordRejected(source string, line int, reason string) {
	il.WithFields(logrus.Fields{
		"source": source,
		"line":   line,
		"reason": reason,
	}).Warn("Draw record rejected")
}

// LogDrawInvalid logs a parsed draw the validator rejected. index is the
// draw's position in the fetched batch, not a dataset line.
func (il *IngestionLogger) LogDrawInvalid(source string, index int, reason string) {
	il.WithFields(logrus.Fields{
		"source": source,
		"index":  index,
		"reason": reason,
	}).Warn("Draw record rejected")
}

// LogRescore logs the population rescoring that follows an ingestion run.
func (il *IngestionLogger) LogRescore(population, scored, skipped int) {
	il.WithFields(logrus.Fields{
		"population": population,
		"scored":     scored,
		"skipped":    skipped,
	}).Info("Population rescored")
}
