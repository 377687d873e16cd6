package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/euromillions/internal/features"
	"github.com/yourusername/euromillions/internal/logger"
	"github.com/yourusername/euromillions/internal/metrics"
	"github.com/yourusername/euromillions/internal/ml"
	"github.com/yourusername/euromillions/internal/models"
	"github.com/yourusername/euromillions/internal/pipeline"
	"github.com/yourusername/euromillions/internal/scoring"
)

// Evaluation error reasons exported as metric labels
const (
	reasonInvalidInput  = "invalid_input"
	reasonEmpty         = "empty_population"
	reasonSchema        = "schema_mismatch"
	reasonUnavailable   = "classifier_unavailable"
	reasonBadPrediction = "invalid_prediction"
	reasonPersistence   = "persistence"
	reasonOther         = "other"
)

// EvaluationService runs user tickets through the feature pipeline and the classifier
type EvaluationService struct {
	engine      *pipeline.Engine
	classifier  ml.Classifier
	featureList *ml.FeatureList
	population  PopulationLoader
	store       EvaluationStore
	scorer      *scoring.Scorer
	workers     int
	mlLog       *logger.MLLogger
	ingestLog   *logger.IngestionLogger
	audit       *logger.AuditLogger
	logger      *logrus.Logger
	now         func() time.Time
}

// NewEvaluationService creates a new evaluation service. store may be nil,
// in which case evaluations are not persisted. workers <= 0 uses one worker per CPU.
func NewEvaluationService(
	engine *pipeline.Engine,
	classifier ml.Classifier,
	featureList *ml.FeatureList,
	population PopulationLoader,
	store EvaluationStore,
	workers int,
	log *logrus.Logger,
) *EvaluationService {
	if log == nil {
		log = logger.Discard()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &EvaluationService{
		engine:      engine,
		classifier:  classifier,
		featureList: featureList,
		population:  population,
		store:       store,
		scorer:      scoring.NewScorer(nil),
		workers:     workers,
		mlLog:       logger.NewMLLogger(log),
		ingestLog:   logger.NewIngestionLogger(log),
		audit:       logger.NewAuditLogger(log),
		logger:      log,
		now:         time.Now,
	}
}

// BatchResult is the outcome for one ticket of a batch
type BatchResult struct {
	Index      int
	Evaluation *models.Evaluation
	Err        error
}

// Evaluate engineers one ticket against the current population, asks the
// classifier for class probabilities and records the verdict.
func (s *EvaluationService) Evaluate(ctx context.Context, t models.Ticket) (*models.Evaluation, error) {
	ref, err := s.reference(ctx)
	if err != nil {
		metrics.RecordEvaluationError(errorReason(err))
		return nil, err
	}
	return s.evaluate(ctx, ref, t)
}

// EvaluateBatch evaluates tickets in parallel against one shared population
// snapshot. A failing ticket does not stop the others; its error is carried
// in its BatchResult. Results are in input order.
func (s *EvaluationService) EvaluateBatch(ctx context.Context, tickets []models.Ticket) ([]BatchResult, error) {
	ref, err := s.reference(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]BatchResult, len(tickets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range tickets {
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = BatchResult{Index: i, Err: gctx.Err()}
				return gctx.Err()
			}
			evaluation, err := s.evaluate(gctx, ref, tickets[i])
			results[i] = BatchResult{Index: i, Evaluation: evaluation, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *EvaluationService) reference(ctx context.Context) (*pipeline.Reference, error) {
	population, err := s.population.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load population: %w", err)
	}
	if len(population) == 0 {
		return nil, features.ErrEmptyPopulation
	}
	return s.engine.NewReference(population), nil
}

func (s *EvaluationService) evaluate(ctx context.Context, ref *pipeline.Reference, t models.Ticket) (*models.Evaluation, error) {
	start := time.Now()

	evaluation, err := s.classify(ctx, ref, t)
	if err != nil {
		metrics.RecordEvaluationError(errorReason(err))
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Create(ctx, evaluation); err != nil {
			metrics.RecordEvaluationError(reasonPersistence)
			return nil, fmt.Errorf("failed to store evaluation: %w", err)
		}
		s.audit.LogEvaluationRecorded(evaluation.ID.String(), evaluation.Verdict, evaluation.Confidence,
			evaluation.ModelVersion, evaluation.EvaluatedAt)
	}

	metrics.RecordEvaluation(evaluation.Verdict, time.Since(start).Seconds())
	return evaluation, nil
}

func (s *EvaluationService) classify(ctx context.Context, ref *pipeline.Reference, t models.Ticket) (*models.Evaluation, error) {
	fv, err := ref.Evaluate(t)
	if err != nil {
		return nil, err
	}

	row := s.engine.Row(fv)
	values, err := pipeline.SelectFeatures(row, s.featureList.Features)
	if err != nil {
		return nil, err
	}

	prediction, err := s.classifier.PredictProbability(ctx, s.featureList.Features, values)
	if err != nil {
		s.mlLog.LogPredictionError(s.featureList.ModelVersion, err.Error())
		return nil, err
	}

	verdict, confidence, err := ml.Verdict(prediction)
	if err != nil {
		return nil, err
	}

	probabilities := prediction.ByClass()
	s.mlLog.LogVerdict(verdict, confidence, probabilities)

	modelVersion := prediction.ModelVersion
	if modelVersion == "" {
		modelVersion = s.featureList.ModelVersion
	}

	return &models.Evaluation{
		ID:             uuid.New(),
		Ticket:         t.Clone(),
		Verdict:        verdict,
		Confidence:     confidence,
		Probabilities:  probabilities,
		Features:       row,
		ModelVersion:   modelVersion,
		PopulationSize: ref.Len(),
		EvaluatedAt:    s.now().UTC(),
	}, nil
}

// ScoreReport summarises a population scoring pass
type ScoreReport struct {
	Population int
	Scored     []scoring.ScoredRecord
	Skipped    []scoring.RecordError
}

// AvgWins returns avg_win per population record, NaN where the record was skipped
func (r *ScoreReport) AvgWins() []float64 {
	out := make([]float64, r.Population)
	skip := make(map[int]struct{}, len(r.Skipped))
	for _, f := range r.Skipped {
		skip[f.Index] = struct{}{}
	}
	next := 0
	for i := range out {
		if _, ok := skip[i]; ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = r.Scored[next].AvgWin
		next++
	}
	return out
}

// ScorePopulation scores every stored draw and exports the avg_win distribution
func (s *EvaluationService) ScorePopulation(ctx context.Context) (*ScoreReport, error) {
	population, err := s.population.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load population: %w", err)
	}
	if len(population) == 0 {
		return nil, features.ErrEmptyPopulation
	}

	scored, skipped, err := s.scorer.ScorePopulation(population)
	if err != nil {
		return nil, fmt.Errorf("failed to score population: %w", err)
	}

	report := &ScoreReport{Population: len(population), Scored: scored, Skipped: skipped}
	metrics.RecordAvgWinDistribution(report.AvgWins())
	s.ingestLog.LogRescore(report.Population, len(scored), len(skipped))
	return report, nil
}

// FeatureTable engineers the whole stored population into the classifier's
// training layout.
func (s *EvaluationService) FeatureTable(ctx context.Context) (*pipeline.FeatureTable, error) {
	population, err := s.population.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load population: %w", err)
	}

	start := time.Now()
	table, err := s.engine.Engineer(population)
	if err != nil {
		return nil, err
	}
	metrics.RecordFeatureEngineering(len(population), time.Since(start).Seconds())
	return table, nil
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return reasonInvalidInput
	case errors.Is(err, features.ErrEmptyPopulation):
		return reasonEmpty
	case errors.Is(err, models.ErrSchemaMismatch):
		return reasonSchema
	case errors.Is(err, ml.ErrClassifierUnavailable):
		return reasonUnavailable
	case errors.Is(err, ml.ErrInvalidPrediction):
		return reasonBadPrediction
	default:
		return reasonOther
	}
}
