package service

import (
	"context"

	"github.com/yourusername/euromillions/internal/datasource"
	"github.com/yourusername/euromillions/internal/models"
)

// PopulationLoader supplies the historical draws tickets are compared against
type PopulationLoader interface {
	List(ctx context.Context) ([]models.Ticket, error)
}

// EvaluationStore persists ticket evaluations
type EvaluationStore interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
}

// DrawStore persists ingested draws
type DrawStore interface {
	Upsert(ctx context.Context, draws []models.Ticket, source string) (int64, error)
}

// SourcePopulation reads the population straight from a draw source, for
// running without a database. Rejected rows are dropped.
type SourcePopulation struct {
	Source datasource.DrawSource
}

// List fetches every valid draw from the source
func (p SourcePopulation) List(ctx context.Context) ([]models.Ticket, error) {
	result, err := p.Source.FetchDraws(ctx)
	if err != nil {
		return nil, err
	}
	return result.Draws, nil
}

// StaticPopulation is a fixed in-memory population
type StaticPopulation []models.Ticket

// List returns the population
func (p StaticPopulation) List(ctx context.Context) ([]models.Ticket, error) {
	return []models.Ticket(p), nil
}
