// Package scoring estimates the expected winnings of historical draws from
// exact win probabilities and the observed prize pools.
package scoring

import (
	"errors"
	"fmt"

	"github.com/yourusername/euromillions/internal/models"
	"github.com/yourusername/euromillions/internal/probability"
)

// ErrDegeneratePopulation indicates a population whose mean score is zero,
// so scores cannot be normalized.
var ErrDegeneratePopulation = errors.New("population mean score is zero")

// ScoredRecord is a draw with its population-normalized expected winnings
type ScoredRecord struct {
	Ticket           models.Ticket
	ExpectedWinnings float64
	AvgWin           float64
}

// RecordError reports a record that could not be scored
type RecordError struct {
	Index int
	Err   error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// Scorer computes expected winnings against a prize-fraction table
type Scorer struct {
	fractions  FractionTable
	categories []models.Category
}

// NewScorer creates a scorer; a nil table uses DefaultFractions
func NewScorer(fractions FractionTable) *Scorer {
	if fractions == nil {
		fractions = DefaultFractions()
	}
	return &Scorer{
		fractions:  fractions,
		categories: fractions.Categories(),
	}
}

var defaultScorer = NewScorer(nil)

// ExpectedWinnings scores one draw with the default prize table
func ExpectedWinnings(t models.Ticket) (float64, error) {
	return defaultScorer.ExpectedWinnings(t)
}

// ScorePopulation scores a population with the default prize table
func ScorePopulation(tickets []models.Ticket) ([]ScoredRecord, []RecordError, error) {
	return defaultScorer.ScorePopulation(tickets)
}

// ExpectedWinnings sums probability × prize fraction × (sales / winners) over
// every paid category. A category nobody won contributes nothing.
func (s *Scorer) ExpectedWinnings(t models.Ticket) (float64, error) {
	if t.Sales == nil {
		return 0, fmt.Errorf("%w: sales", models.ErrMissingData)
	}
	if t.Winners == nil {
		return 0, fmt.Errorf("%w: winners_by_category", models.ErrMissingData)
	}

	pool := probability.LuckyPoolSizeFor(t)
	sales := t.Sales.InexactFloat64()

	total := 0.0
	for _, c := range s.categories {
		winners := t.WinnersIn(c)
		if winners <= 0 {
			continue
		}
		p, err := probability.WinProbability(c.Main, c.Lucky, pool)
		if err != nil {
			return 0, fmt.Errorf("category %s: %w", c, err)
		}
		total += p * s.fractions.Fraction(c) * sales / float64(winners)
	}
	return total, nil
}

// ScorePopulation scores every record and divides by the mean score of the
// records that could be scored, so their mean AvgWin is 1. Records missing
// data are reported in the second result and left out; they do not abort
// the pass. Scores are only comparable within one call.
func (s *Scorer) ScorePopulation(tickets []models.Ticket) ([]ScoredRecord, []RecordError, error) {
	scored := make([]ScoredRecord, 0, len(tickets))
	var failed []RecordError

	total := 0.0
	for i, t := range tickets {
		ew, err := s.ExpectedWinnings(t)
		if err != nil {
			failed = append(failed, RecordError{Index: i, Err: err})
			continue
		}
		scored = append(scored, ScoredRecord{Ticket: t.Clone(), ExpectedWinnings: ew})
		total += ew
	}

	if len(scored) == 0 {
		return nil, failed, fmt.Errorf("no scorable records among %d: %w", len(tickets), models.ErrMissingData)
	}

	mean := total / float64(len(scored))
	if mean == 0 {
		return nil, failed, ErrDegeneratePopulation
	}

	for i := range scored {
		scored[i].AvgWin = scored[i].ExpectedWinnings / mean
	}
	return scored, failed, nil
}
