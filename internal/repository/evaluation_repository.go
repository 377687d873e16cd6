package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/euromillions/internal/database"
	"github.com/yourusername/euromillions/internal/models"
)

const evaluationColumns = `id, draw_year, main_numbers, lucky_numbers, features, probabilities,
	verdict, confidence, model_version, population_size, evaluated_at`

// PostgresEvaluationRepository implements EvaluationRepository for PostgreSQL
type PostgresEvaluationRepository struct {
	db *database.DB
}

// NewPostgresEvaluationRepository creates a new evaluation repository
func NewPostgresEvaluationRepository(db *database.DB) EvaluationRepository {
	return &PostgresEvaluationRepository{db: db}
}

// Create inserts an evaluation, assigning an ID when it has none
func (r *PostgresEvaluationRepository) Create(ctx context.Context, e *models.Evaluation) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	query := `
		INSERT INTO evaluations (id, draw_year, main_numbers, lucky_numbers, features, probabilities,
		                         verdict, confidence, model_version, population_size, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		e.ID, e.Ticket.DrawYear, e.Ticket.Main, e.Ticket.Lucky, floatMap(e.Features), floatMap(e.Probabilities),
		e.Verdict, e.Confidence, e.ModelVersion, e.PopulationSize, e.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}

	return nil
}

// GetByID retrieves an evaluation by ID
func (r *PostgresEvaluationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE id = $1`

	e, err := scanEvaluation(r.db.Pool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}

	return e, nil
}

// ListRecent retrieves the most recent evaluations, newest first
func (r *PostgresEvaluationRepository) ListRecent(ctx context.Context, limit int) ([]*models.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations ORDER BY evaluated_at DESC LIMIT $1`

	rows, err := r.db.Pool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []*models.Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		evaluations = append(evaluations, e)
	}

	return evaluations, rows.Err()
}

func scanEvaluation(row pgx.Row) (*models.Evaluation, error) {
	var (
		e             models.Evaluation
		features      []byte
		probabilities []byte
	)

	err := row.Scan(
		&e.ID, &e.Ticket.DrawYear, &e.Ticket.Main, &e.Ticket.Lucky, &features, &probabilities,
		&e.Verdict, &e.Confidence, &e.ModelVersion, &e.PopulationSize, &e.EvaluatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(features, &e.Features); err != nil {
		return nil, fmt.Errorf("failed to decode features: %w", err)
	}
	if err := json.Unmarshal(probabilities, &e.Probabilities); err != nil {
		return nil, fmt.Errorf("failed to decode probabilities: %w", err)
	}

	return &e, nil
}

func floatMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}
