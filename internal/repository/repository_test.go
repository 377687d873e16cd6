package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/euromillions/internal/database/testutil"
	"github.com/yourusername/euromillions/internal/models"
)

func testDraw(year int, month models.Month, day int, main, lucky []int) models.Ticket {
	sales := decimal.RequireFromString("98765432.10")
	return models.Ticket{
		DrawYear:  year,
		DrawMonth: &month,
		DrawDay:   &day,
		Main:      main,
		Lucky:     lucky,
		Sales:     &sales,
		Winners:   map[string]int{"5+2": 0, "3+0": 4200},
	}
}

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

func TestDrawRepositoryUpsertAndList(t *testing.T) {
	tdb := testutil.SetupTestDatabase(t)
	repos, err := NewRepositories(tdb.DB)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	undated := models.Ticket{DrawYear: 2023, Main: []int{5, 17, 26, 33, 48}, Lucky: []int{4, 12}}
	draws := []models.Ticket{
		testDraw(2023, models.Oct, 6, []int{1, 9, 24, 38, 45}, []int{2, 9}),
		testDraw(2023, models.Oct, 3, []int{3, 11, 24, 38, 45}, []int{2, 9}),
		undated,
	}

	written, err := repos.Draw.Upsert(ctx, draws, "file")
	require.NoError(t, err)
	assert.Equal(t, int64(3), written)

	listed, err := repos.Draw.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)

	// undated first, then by date
	assert.Nil(t, listed[0].DrawMonth)
	assert.Nil(t, listed[0].Sales)
	assert.Nil(t, listed[0].Winners)
	assert.Equal(t, 3, *listed[1].DrawDay)
	assert.Equal(t, 6, *listed[2].DrawDay)

	first := listed[1]
	assert.Equal(t, models.Oct, *first.DrawMonth)
	assert.Equal(t, []int{3, 11, 24, 38, 45}, first.Main)
	assert.True(t, first.Sales.Equal(decimal.RequireFromString("98765432.10")))
	assert.Equal(t, 4200, first.Winners["3+0"])

	byID, err := repos.Draw.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Main, byID.Main)
}

func TestDrawRepositoryUpsertRefreshesExisting(t *testing.T) {
	tdb := testutil.SetupTestDatabase(t)
	repo := NewPostgresDrawRepository(tdb.DB)
	ctx := context.Background()

	original := testDraw(2024, models.Jan, 2, []int{1, 2, 3, 4, 5}, []int{1, 2})
	_, err := repo.Upsert(ctx, []models.Ticket{original}, "file")
	require.NoError(t, err)

	updated := original.Clone()
	sales := decimal.NewFromInt(1)
	updated.Sales = &sales
	updated.Winners = map[string]int{"5+2": 1}

	// the same draw twice in one batch merges into one row
	_, err = repo.Upsert(ctx, []models.Ticket{original, updated}, "remote")
	require.NoError(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Sales.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, map[string]int{"5+2": 1}, listed[0].Winners)
}

func TestDrawRepositoryNotFound(t *testing.T) {
	tdb := testutil.SetupTestDatabase(t)
	repo := NewPostgresDrawRepository(tdb.DB)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)

	written, err := repo.Upsert(context.Background(), nil, "file")
	require.NoError(t, err)
	assert.Zero(t, written)
}

func TestEvaluationRepositoryCreateAndList(t *testing.T) {
	tdb := testutil.SetupTestDatabase(t)
	repo := NewPostgresEvaluationRepository(tdb.DB)
	ctx := context.Background()

	ticket, err := models.NewTicket(2023, []int{37, 1, 7, 17, 27}, []int{12, 7})
	require.NoError(t, err)

	older := &models.Evaluation{
		Ticket:         ticket,
		Verdict:        models.VerdictGood,
		Confidence:     0.7,
		Probabilities:  map[string]float64{"0": 0.3, "1": 0.7},
		Features:       map[string]float64{"main_sevens": 4, "is_date": 1},
		ModelVersion:   "v1",
		PopulationSize: 1500,
		EvaluatedAt:    time.Now().Add(-time.Hour).UTC().Truncate(time.Microsecond),
	}
	newer := &models.Evaluation{
		Ticket:        ticket,
		Verdict:       models.VerdictBad,
		Confidence:    0.9,
		Probabilities: map[string]float64{"0": 0.9, "1": 0.1},
		ModelVersion:  "v1",
		EvaluatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	assert.NotEqual(t, uuid.Nil, older.ID)

	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerdictGood, got.Verdict)
	assert.Equal(t, []int{1, 7, 17, 27, 37}, got.Ticket.Main)
	assert.Equal(t, 4.0, got.Features["main_sevens"])
	assert.Equal(t, 1500, got.PopulationSize)
	assert.True(t, older.EvaluatedAt.Equal(got.EvaluatedAt))

	recent, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, newer.ID, recent[0].ID)
	assert.Empty(t, recent[0].Features)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}
