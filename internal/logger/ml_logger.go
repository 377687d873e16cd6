// Package logger provides ML-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// MLLogger provides dedicated logging for classifier operations.
type MLLogger struct {
	*logrus.Entry
}

// NewMLLogger creates a new ML logger.
func NewMLLogger(baseLogger *logrus.Logger) *MLLogger {
	return &MLLogger{
		Entry: baseLogger.WithField("component", "ml"),
	}
}

// LogPredictionRequest logs a classifier prediction request.
func (ml *MLLogger) LogPredictionRequest(modelVersion string, featuresCount int, cacheHit bool, latencyMs float64) {
	ml.WithFields(logrus.Fields{
		"model_version":  modelVersion,
		"features_count": featuresCount,
		"cache_hit":      cacheHit,
		"latency_ms":     latencyMs,
	}).Info("Prediction request completed")
}

// LogPredictionError logs classifier prediction errors.
func (ml *MLLogger) LogPredictionError(modelVersion string, errorReason string) {
	ml.WithFields(logrus.Fields{
		"model_version": modelVersion,
		"error_reason":  errorReason,
	}).Error("Prediction failed")
}

// LogVerdict logs the verdict derived from a prediction.
func (ml *MLLogger) LogVerdict(verdict string, confidence float64, probabilities map[string]float64) {
	ml.WithFields(logrus.Fields{
		"verdict":       verdict,
		"confidence":    confidence,
		"probabilities": probabilities,
	}).Info("Ticket verdict")
}

// LogFeatureListLoaded logs the classifier feature list in use.
func (ml *MLLogger) LogFeatureListLoaded(path string, features int) {
	ml.WithFields(logrus.Fields{
		"path":     path,
		"features": features,
	}).Info("Feature list loaded")
}
