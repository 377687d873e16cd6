package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/euromillions/internal/models"
)

// DrawRepository defines the interface for historical draw data access
type DrawRepository interface {
	// Upsert stores draws keyed by date and numbers, refreshing sales and
	// winner counts of draws already present. It returns the rows written.
	Upsert(ctx context.Context, draws []models.Ticket, source string) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	// List returns the whole population in draw order
	List(ctx context.Context) ([]models.Ticket, error)
	Count(ctx context.Context) (int, error)
}

// EvaluationRepository defines the interface for ticket evaluation data access
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Evaluation, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Evaluation, error)
}
