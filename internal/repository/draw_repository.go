package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/euromillions/internal/database"
	"github.com/yourusername/euromillions/internal/models"
)

const errScanDraw = "failed to scan draw: %w"

const drawColumns = `id, draw_year, draw_month, draw_day, main_numbers, lucky_numbers, sales, winners`

// PostgresDrawRepository implements DrawRepository for PostgreSQL
type PostgresDrawRepository struct {
	db *database.DB
}

// NewPostgresDrawRepository creates a new draw repository
func NewPostgresDrawRepository(db *database.DB) DrawRepository {
	return &PostgresDrawRepository{db: db}
}

// Upsert bulk-loads draws into a staging table with COPY and merges them
func (r *PostgresDrawRepository) Upsert(ctx context.Context, draws []models.Ticket, source string) (int64, error) {
	if len(draws) == 0 {
		return 0, nil
	}

	columns := []string{"id", "draw_year", "draw_month", "draw_day", "main_numbers", "lucky_numbers", "sales", "winners", "source"}

	copyFromSource := make([][]interface{}, len(draws))
	for i, d := range draws {
		id := d.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		copyFromSource[i] = []interface{}{
			id, d.DrawYear, monthValue(d.DrawMonth), d.DrawDay, d.Main, d.Lucky,
			salesValue(d.Sales), winnersValue(d.Winners), source,
		}
	}

	var written int64
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `CREATE TEMP TABLE draws_staging (LIKE draws INCLUDING DEFAULTS) ON COMMIT DROP`)
		if err != nil {
			return fmt.Errorf("failed to create staging table: %w", err)
		}

		count, err := tx.CopyFrom(ctx, pgx.Identifier{"draws_staging"}, columns, pgx.CopyFromRows(copyFromSource))
		if err != nil {
			return fmt.Errorf("failed to copy draws: %w", err)
		}
		if count != int64(len(draws)) {
			return fmt.Errorf("copied %d rows, expected %d", count, len(draws))
		}

		// Later rows of the same batch win
		tag, err := tx.Exec(ctx, `
			INSERT INTO draws (id, draw_year, draw_month, draw_day, main_numbers, lucky_numbers, sales, winners, source)
			SELECT DISTINCT ON (draw_year, draw_month, draw_day, main_numbers, lucky_numbers)
			       id, draw_year, draw_month, draw_day, main_numbers, lucky_numbers, sales, winners, source
			FROM draws_staging
			ORDER BY draw_year, draw_month, draw_day, main_numbers, lucky_numbers, ctid DESC
			ON CONFLICT (draw_year, draw_month, draw_day, main_numbers, lucky_numbers) DO UPDATE
			SET sales = COALESCE(EXCLUDED.sales, draws.sales),
			    winners = COALESCE(EXCLUDED.winners, draws.winners),
			    source = EXCLUDED.source,
			    updated_at = NOW()
		`)
		if err != nil {
			return fmt.Errorf("failed to merge draws: %w", err)
		}
		written = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}

	return written, nil
}

// GetByID retrieves a draw by ID
func (r *PostgresDrawRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE id = $1`

	draw, err := scanDraw(r.db.Pool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}

	return draw, nil
}

// List retrieves every draw ordered by draw date; undated draws sort first within their year
func (r *PostgresDrawRepository) List(ctx context.Context) ([]models.Ticket, error) {
	query := `
		SELECT ` + drawColumns + `
		FROM draws
		ORDER BY draw_year,
		         EXTRACT(MONTH FROM to_date(draw_month, 'Mon')) NULLS FIRST,
		         draw_day NULLS FIRST,
		         created_at
	`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query draws: %w", err)
	}
	defer rows.Close()

	var draws []models.Ticket
	for rows.Next() {
		draw, err := scanDraw(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanDraw, err)
		}
		draws = append(draws, *draw)
	}

	return draws, rows.Err()
}

// Count returns the number of stored draws
func (r *PostgresDrawRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM draws`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count draws: %w", err)
	}
	return count, nil
}

func scanDraw(row pgx.Row) (*models.Ticket, error) {
	var (
		draw    models.Ticket
		month   *string
		day     *int32
		sales   decimal.NullDecimal
		winners []byte
	)

	if err := row.Scan(&draw.ID, &draw.DrawYear, &month, &day, &draw.Main, &draw.Lucky, &sales, &winners); err != nil {
		return nil, err
	}

	if month != nil {
		m, err := models.ParseMonth(*month)
		if err != nil {
			return nil, err
		}
		draw.DrawMonth = &m
	}
	if day != nil {
		d := int(*day)
		draw.DrawDay = &d
	}
	if sales.Valid {
		s := sales.Decimal
		draw.Sales = &s
	}
	if winners != nil {
		if err := json.Unmarshal(winners, &draw.Winners); err != nil {
			return nil, fmt.Errorf("failed to decode winners: %w", err)
		}
	}

	return &draw, nil
}

func monthValue(m *models.Month) *string {
	if m == nil {
		return nil
	}
	s := string(*m)
	return &s
}

func salesValue(s *decimal.Decimal) decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *s, Valid: true}
}

// winnersValue keeps a missing table as SQL NULL rather than JSON null
func winnersValue(w map[string]int) interface{} {
	if w == nil {
		return nil
	}
	return w
}
