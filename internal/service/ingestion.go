package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/euromillions/internal/datasource"
	"github.com/yourusername/euromillions/internal/logger"
	"github.com/yourusername/euromillions/internal/metrics"
)

// Rescorer re-scores the stored population after new draws arrive
type Rescorer interface {
	ScorePopulation(ctx context.Context) (*ScoreReport, error)
}

// IngestionService handles the draw ingestion workflow: fetch, validate,
// persist and rescore.
type IngestionService struct {
	draws     DrawStore
	validator *DrawValidator
	rescorer  Rescorer
	log       *logger.IngestionLogger
	audit     *logger.AuditLogger
	logger    *logrus.Logger
}

// NewIngestionService creates a new ingestion service. rescorer may be nil
// to skip rescoring.
func NewIngestionService(draws DrawStore, validator *DrawValidator, rescorer Rescorer, log *logrus.Logger) *IngestionService {
	if log == nil {
		log = logger.Discard()
	}
	if validator == nil {
		validator = NewDrawValidator(log)
	}

	return &IngestionService{
		draws:     draws,
		validator: validator,
		rescorer:  rescorer,
		log:       logger.NewIngestionLogger(log),
		audit:     logger.NewAuditLogger(log),
		logger:    log,
	}
}

// Ingest fetches every draw from source, stores the valid ones and, when
// anything was written, rescores the population. A rescoring failure is
// reported on the IngestionReport but does not fail the ingestion.
func (s *IngestionService) Ingest(ctx context.Context, source datasource.DrawSource) (*IngestionReport, error) {
	report := &IngestionReport{Source: source.Name(), StartTime: time.Now()}

	result, err := source.FetchDraws(ctx)
	if err != nil {
		report.Duration = time.Since(report.StartTime)
		metrics.RecordIngestion(source.Name(), metrics.IngestionStatusFailed, 0, 0, report.Duration)
		return report, fmt.Errorf("failed to fetch draws from %s: %w", source.Name(), err)
	}

	report.Fetched = len(result.Draws) + len(result.Rejected)
	s.log.LogSourceFetched(source.Name(), report.Fetched, float64(time.Since(report.StartTime).Milliseconds()))

	for _, row := range result.Rejected {
		s.log.LogRecordRejected(source.Name(), row.Line, row.Reason())
	}

	valid, invalid := s.validator.Filter(result.Draws)
	for _, i := range slices.Sorted(maps.Keys(invalid)) {
		s.log.LogDrawInvalid(source.Name(), i, strings.Join(invalid[i], "; "))
	}
	report.Rejected = len(result.Rejected) + len(invalid)

	stored, err := s.draws.Upsert(ctx, valid, source.Name())
	if err != nil {
		report.Duration = time.Since(report.StartTime)
		metrics.RecordIngestion(source.Name(), metrics.IngestionStatusFailed, 0, report.Rejected, report.Duration)
		return report, fmt.Errorf("failed to store draws from %s: %w", source.Name(), err)
	}
	report.Stored = stored

	if s.rescorer != nil && stored > 0 {
		report.Rescore, report.RescoreErr = s.rescorer.ScorePopulation(ctx)
		if report.RescoreErr != nil {
			s.logger.WithError(report.RescoreErr).WithField("source", source.Name()).Warn("Population rescoring failed")
		}
	}

	report.Duration = time.Since(report.StartTime)
	metrics.RecordIngestion(source.Name(), metrics.IngestionStatusSuccess, int(stored), report.Rejected, report.Duration)
	s.audit.LogIngestionRun(source.Name(), report.Fetched, int(stored), report.Rejected, report.StartTime)

	return report, nil
}

// IngestAll ingests each enabled source in turn. It keeps going past a
// failing source and returns the first error along with every report.
func (s *IngestionService) IngestAll(ctx context.Context, sources []datasource.DrawSource) ([]*IngestionReport, error) {
	var (
		reports  []*IngestionReport
		firstErr error
	)

	for _, source := range sources {
		if !source.IsEnabled() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		report, err := s.Ingest(ctx, source)
		reports = append(reports, report)
		if err != nil {
			s.logger.WithError(err).WithField("source", source.Name()).Error("Ingestion failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.logger.WithField("source", source.Name()).Info(report.String())
	}

	return reports, firstErr
}
