// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogEvaluationRecorded logs a persisted ticket evaluation.
func (al *AuditLogger) LogEvaluationRecorded(evaluationID, verdict string, confidence float64, modelVersion string, evaluatedAt time.Time) {
	al.WithFields(logrus.Fields{
		"evaluation_id": evaluationID,
		"verdict":       verdict,
		"confidence":    confidence,
		"model_version": modelVersion,
		"timestamp":     evaluatedAt.Unix(),
	}).Info("Evaluation recorded")
}

// LogIngestionRun logs the outcome of one ingestion run.
func (al *AuditLogger) LogIngestionRun(source string, fetched, stored, rejected int, startedAt time.Time) {
	al.WithFields(logrus.Fields{
		"source":     source,
		"fetched":    fetched,
		"stored":     stored,
		"rejected":   rejected,
		"started_at": startedAt.Unix(),
	}).Info("Ingestion run recorded")
}

// LogMigration logs a schema migration.
func (al *AuditLogger) LogMigration(direction string, version uint, dirty bool) {
	al.WithFields(logrus.Fields{
		"direction": direction,
		"version":   version,
		"dirty":     dirty,
	}).Warn("Schema migration applied")
}
