// Package pipeline composes feature derivation, population binning and
// scoring into the feature table consumed by the ticket classifier.
package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/euromillions/internal/features"
	"github.com/yourusername/euromillions/internal/logger"
	"github.com/yourusername/euromillions/internal/models"
	"github.com/yourusername/euromillions/internal/scoring"
)

// Config selects the bin counts, optional columns and passes of an Engine
type Config struct {
	Bins              features.BinConfig
	IncludeTicketRows bool
	// DropColumns are removed from every row. Nil means DefaultDropColumns;
	// an empty non-nil slice keeps everything.
	DropColumns []string
	// Score runs the winnings scorer over the population and fills avg_win
	Score bool
}

// DefaultConfig mirrors the deployed quick-start: six bins everywhere,
// no ticket-rows column, default drops, no scoring.
func DefaultConfig() Config {
	return Config{Bins: features.DefaultBinConfig()}
}

// Engine runs the feature pipeline. It holds no per-call state and is safe
// for concurrent use.
type Engine struct {
	cfg    Config
	scorer *scoring.Scorer
	log    *logger.PipelineLogger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger attaches a pipeline logger
func WithLogger(l *logger.PipelineLogger) Option {
	return func(e *Engine) { e.log = l }
}

// WithScorer replaces the default winnings scorer
func WithScorer(s *scoring.Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// New creates an Engine
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Bins.Validate(); err != nil {
		return nil, err
	}
	if cfg.DropColumns == nil {
		cfg.DropColumns = features.DefaultDropColumns
	}

	e := &Engine{
		cfg:    cfg,
		scorer: scoring.NewScorer(nil),
		log:    logger.NewPipelineLogger(logger.Discard()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Columns lists the output columns after drops, in table order
func (e *Engine) Columns() []string {
	drop := make(map[string]struct{}, len(e.cfg.DropColumns))
	for _, c := range e.cfg.DropColumns {
		drop[c] = struct{}{}
	}

	all := features.Columns(e.cfg.IncludeTicketRows)
	out := make([]string, 0, len(all))
	for _, c := range all {
		if _, ok := drop[c]; ok {
			continue
		}
		if c == features.ColAvgWin && !e.cfg.Score {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Engineer derives, bins and optionally scores a whole population.
// Records that cannot be scored keep a nil AvgWin and are listed in
// FeatureTable.ScoreErrors.
func (e *Engine) Engineer(population []models.Ticket) (*FeatureTable, error) {
	start := time.Now()

	vectors, err := features.BinPopulation(features.DeriveAll(population), e.cfg.Bins)
	if err != nil {
		return nil, fmt.Errorf("binning population: %w", err)
	}

	table := &FeatureTable{Vectors: vectors, columns: e.Columns()}

	if e.cfg.Score {
		if err := e.score(table, population); err != nil {
			return nil, err
		}
	}

	e.log.LogFeatureEngineering(len(vectors), len(table.columns), map[string]int{
		features.ColMainSumBin:     e.cfg.Bins.MainSumBins,
		features.ColLuckySumBin:    e.cfg.Bins.LuckySumBins,
		features.ColCombinedSumBin: e.cfg.Bins.CombinedSumBins,
	}, float64(time.Since(start).Microseconds())/1000)

	return table, nil
}

func (e *Engine) score(table *FeatureTable, population []models.Ticket) error {
	scored, failed, err := e.scorer.ScorePopulation(population)
	for _, f := range failed {
		e.log.LogMissingData(f.Index, f.Err)
	}
	table.ScoreErrors = failed

	switch {
	case errors.Is(err, scoring.ErrDegeneratePopulation):
		// every scorable record scored zero, so none can be normalised
		table.ScoreErrors = degenerateErrors(len(population), failed)
		e.log.LogScoringPass(0, len(population), 0)
		return nil
	case errors.Is(err, models.ErrMissingData):
		e.log.LogScoringPass(0, len(failed), 0)
		return nil
	case err != nil:
		return fmt.Errorf("scoring population: %w", err)
	}

	skip := make(map[int]struct{}, len(failed))
	for _, f := range failed {
		skip[f.Index] = struct{}{}
	}

	total := 0.0
	next := 0
	for i := range table.Vectors {
		if _, ok := skip[i]; ok {
			continue
		}
		avg := scored[next].AvgWin
		table.Vectors[i].AvgWin = &avg
		total += scored[next].ExpectedWinnings
		next++
	}

	e.log.LogScoringPass(len(scored), len(failed), total/float64(len(scored)))
	return nil
}

// degenerateErrors lists every record in index order, keeping the missing-data
// errors already reported and marking the rest as unnormalisable.
func degenerateErrors(n int, failed []scoring.RecordError) []scoring.RecordError {
	out := make([]scoring.RecordError, 0, n)
	next := 0
	for i := 0; i < n; i++ {
		if next < len(failed) && failed[next].Index == i {
			out = append(out, failed[next])
			next++
			continue
		}
		out = append(out, scoring.RecordError{Index: i, Err: scoring.ErrDegeneratePopulation})
	}
	return out
}

// EvaluateTicket engineers one ticket against a reference population. The
// ticket is appended to a copy of the population and every population
// feature is recomputed over population+1, so bins match the way the
// training table was built. The population is not modified.
func (e *Engine) EvaluateTicket(population []models.Ticket, t models.Ticket) (features.FeatureVector, error) {
	return e.NewReference(population).Evaluate(t)
}

// Reference is a feature-derived population reused across ticket evaluations.
// It is read-only once built.
type Reference struct {
	engine  *Engine
	vectors []features.FeatureVector
}

// NewReference derives the per-record features of a population once
func (e *Engine) NewReference(population []models.Ticket) *Reference {
	return &Reference{engine: e, vectors: features.DeriveAll(population)}
}

// Len returns the population size
func (r *Reference) Len() int {
	return len(r.vectors)
}

// Evaluate engineers one ticket against the reference population
func (r *Reference) Evaluate(t models.Ticket) (features.FeatureVector, error) {
	if err := t.Validate(); err != nil {
		return features.FeatureVector{}, err
	}

	binned, err := features.BinAppended(r.vectors, features.Derive(t), r.engine.cfg.Bins)
	if err != nil {
		return features.FeatureVector{}, fmt.Errorf("binning ticket: %w", err)
	}

	r.engine.log.LogTicketEngineered(t.Main, t.Lucky, t.DrawYear, len(r.vectors))
	return binned, nil
}

// Row builds a named feature row from a vector, keeping only the engine's
// output columns that are available on the vector.
func (e *Engine) Row(fv features.FeatureVector) map[string]float64 {
	return buildRow(&fv, e.Columns())
}

// FeatureTable is an engineered population
type FeatureTable struct {
	Vectors     []features.FeatureVector
	ScoreErrors []scoring.RecordError
	columns     []string
}

// Columns lists the table's output columns
func (ft *FeatureTable) Columns() []string {
	return append([]string(nil), ft.columns...)
}

// Rows returns one named row per record with unwanted columns dropped
func (ft *FeatureTable) Rows() []map[string]float64 {
	rows := make([]map[string]float64, len(ft.Vectors))
	for i := range ft.Vectors {
		rows[i] = buildRow(&ft.Vectors[i], ft.columns)
	}
	return rows
}

func buildRow(fv *features.FeatureVector, columns []string) map[string]float64 {
	row := make(map[string]float64, len(columns))
	for _, c := range columns {
		if v, ok := fv.Value(c); ok {
			row[c] = v
		}
	}
	return row
}

// SelectFeatures orders a row by the classifier's feature names. Any name
// missing from the row fails with models.ErrSchemaMismatch.
func SelectFeatures(row map[string]float64, names []string) ([]float64, error) {
	values := make([]float64, len(names))
	var missing []string
	for i, name := range names {
		v, ok := row[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		values[i] = v
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: missing columns %s", models.ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return values, nil
}
