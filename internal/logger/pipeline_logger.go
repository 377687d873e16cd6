package logger

import (
	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for feature engineering and scoring.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogFeatureEngineering logs a completed feature engineering pass.
func (pl *PipelineLogger) LogFeatureEngineering(records, columns int, binConfig map[string]int, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"records":     records,
		"columns":     columns,
		"bins":        binConfig,
		"duration_ms": durationMs,
	}).Info("Feature engineering completed")
}

// LogScoringPass logs a completed scoring pass over a population.
func (pl *PipelineLogger) LogScoringPass(scored, skipped int, meanExpectedWinnings float64) {
	pl.WithFields(logrus.Fields{
		"scored":                 scored,
		"skipped":                skipped,
		"mean_expected_winnings": meanExpectedWinnings,
	}).Info("Scoring pass completed")
}

// LogMissingData logs a record left out of scoring.
func (pl *PipelineLogger) LogMissingData(index int, err error) {
	pl.WithFields(logrus.Fields{
		"record_index": index,
		"error":        err.Error(),
	}).Warn("Record skipped during scoring")
}

// LogTicketEngineered logs the feature row built for a single ticket.
func (pl *PipelineLogger) LogTicketEngineered(main, lucky []int, drawYear, populationSize int) {
	pl.WithFields(logrus.Fields{
		"main_numbers":    main,
		"lucky_numbers":   lucky,
		"draw_year":       drawYear,
		"population_size": populationSize,
	}).Debug("Ticket features engineered")
}
