package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/euromillions/internal/datasource"
	"github.com/yourusername/euromillions/internal/ml"
	"github.com/yourusername/euromillions/internal/models"
)

// MockClassifier mocks the ticket classifier
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) PredictProbability(ctx context.Context, columns []string, values []float64) (*ml.Prediction, error) {
	args := m.Called(ctx, columns, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ml.Prediction), args.Error(1)
}

func (m *MockClassifier) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockEvaluationStore mocks evaluation persistence
type MockEvaluationStore struct {
	mock.Mock
}

func (m *MockEvaluationStore) Create(ctx context.Context, evaluation *models.Evaluation) error {
	return m.Called(ctx, evaluation).Error(0)
}

// MockDrawStore mocks draw persistence
type MockDrawStore struct {
	mock.Mock
}

func (m *MockDrawStore) Upsert(ctx context.Context, draws []models.Ticket, source string) (int64, error) {
	args := m.Called(ctx, draws, source)
	return args.Get(0).(int64), args.Error(1)
}

// MockRescorer mocks population rescoring
type MockRescorer struct {
	mock.Mock
}

func (m *MockRescorer) ScorePopulation(ctx context.Context) (*ScoreReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ScoreReport), args.Error(1)
}

// stubSource is a DrawSource returning a fixed result
type stubSource struct {
	name     string
	disabled bool
	result   *datasource.FetchResult
	err      error
	calls    int
}

func (s *stubSource) FetchDraws(ctx context.Context) (*datasource.FetchResult, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubSource) Name() string    { return s.name }
func (s *stubSource) IsEnabled() bool { return !s.disabled }

func draw(year int, month models.Month, day int, main, lucky []int, sales int64, winners map[string]int) models.Ticket {
	t := models.Ticket{DrawYear: year, DrawMonth: &month, DrawDay: &day, Main: main, Lucky: lucky, Winners: winners}
	if sales > 0 {
		s := decimal.NewFromInt(sales)
		t.Sales = &s
	}
	return t
}

func testPopulation() []models.Ticket {
	return []models.Ticket{
		draw(2023, models.Sep, 29, []int{5, 17, 26, 33, 48}, []int{4, 12}, 80_000_000, map[string]int{"3+0": 800}),
		draw(2023, models.Oct, 3, []int{3, 11, 24, 38, 45}, []int{2, 9}, 100_000_000, map[string]int{"5+2": 1, "3+0": 1000}),
		draw(2023, models.Oct, 6, []int{1, 9, 24, 38, 45}, []int{3, 9}, 90_000_000, map[string]int{"5+2": 0, "3+0": 900}),
	}
}
