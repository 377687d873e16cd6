package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/euromillions/internal/datasource"
	"github.com/yourusername/euromillions/internal/logger"
	"github.com/yourusername/euromillions/internal/models"
)

func newTestIngestion(store DrawStore, rescorer Rescorer) *IngestionService {
	return NewIngestionService(store, newTestValidator(), rescorer, logger.Discard())
}

// fetchedBatch holds two good draws, a batch duplicate, a Wednesday draw and
// one row the parser already rejected.
func fetchedBatch(name string) *datasource.FetchResult {
	population := testPopulation()
	return &datasource.FetchResult{
		Source: name,
		Draws: []models.Ticket{
			population[1],
			population[2],
			population[1].Clone(),
			draw(2023, models.Oct, 4, []int{1, 2, 3, 4, 5}, []int{1, 2}, 0, nil),
		},
		Rejected: []datasource.RejectedRow{
			{Line: 7, Err: models.NewValidationError("main_numbers", "numbers must be unique")},
		},
	}
}

func TestIngestStoresValidDrawsAndRescores(t *testing.T) {
	store := new(MockDrawStore)
	rescorer := new(MockRescorer)
	source := &stubSource{name: "history", result: fetchedBatch("history")}

	store.On("Upsert", mock.Anything, mock.MatchedBy(func(draws []models.Ticket) bool {
		return len(draws) == 2 && *draws[0].DrawDay == 3 && *draws[1].DrawDay == 6
	}), "history").Return(int64(2), nil).Once()
	scoreReport := &ScoreReport{Population: 2}
	rescorer.On("ScorePopulation", mock.Anything).Return(scoreReport, nil).Once()

	report, err := newTestIngestion(store, rescorer).Ingest(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, "history", report.Source)
	assert.Equal(t, 5, report.Fetched)
	assert.Equal(t, int64(2), report.Stored)
	assert.Equal(t, 3, report.Rejected)
	assert.Same(t, scoreReport, report.Rescore)
	assert.NoError(t, report.RescoreErr)
	assert.Contains(t, report.String(), "Stored=2")

	store.AssertExpectations(t)
	rescorer.AssertExpectations(t)
}

func TestIngestLogsRejectsByLineOrIndex(t *testing.T) {
	base := logrus.New()
	buf := &bytes.Buffer{}
	base.SetOutput(buf)
	base.SetFormatter(&logrus.JSONFormatter{})

	store := new(MockDrawStore)
	store.On("Upsert", mock.Anything, mock.Anything, "history").Return(int64(0), nil)
	svc := NewIngestionService(store, newTestValidator(), nil, base)

	_, err := svc.Ingest(context.Background(), &stubSource{name: "history", result: fetchedBatch("history")})
	require.NoError(t, err)

	var lines, indexes []float64
	dec := json.NewDecoder(buf)
	for dec.More() {
		var entry map[string]interface{}
		require.NoError(t, dec.Decode(&entry))
		if entry["msg"] != "Draw record rejected" {
			continue
		}
		if line, ok := entry["line"]; ok {
			assert.NotContains(t, entry, "index")
			lines = append(lines, line.(float64))
		}
		if index, ok := entry["index"]; ok {
			indexes = append(indexes, index.(float64))
		}
	}
	assert.Equal(t, []float64{7}, lines)
	assert.Equal(t, []float64{2, 3}, indexes)
}

func TestIngestSkipsRescoreWhenNothingStored(t *testing.T) {
	store := new(MockDrawStore)
	rescorer := new(MockRescorer)
	source := &stubSource{name: "history", result: fetchedBatch("history")}

	store.On("Upsert", mock.Anything, mock.Anything, "history").Return(int64(0), nil)

	report, err := newTestIngestion(store, rescorer).Ingest(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, int64(0), report.Stored)
	assert.Nil(t, report.Rescore)
	rescorer.AssertNotCalled(t, "ScorePopulation", mock.Anything)
	assert.Contains(t, report.String(), "Rescore=skipped")
}

func TestIngestRescoreFailureIsNotFatal(t *testing.T) {
	store := new(MockDrawStore)
	rescorer := new(MockRescorer)
	source := &stubSource{name: "history", result: fetchedBatch("history")}

	store.On("Upsert", mock.Anything, mock.Anything, "history").Return(int64(2), nil)
	rescorer.On("ScorePopulation", mock.Anything).Return(nil, models.ErrMissingData)

	report, err := newTestIngestion(store, rescorer).Ingest(context.Background(), source)
	require.NoError(t, err)

	assert.ErrorIs(t, report.RescoreErr, models.ErrMissingData)
	assert.Contains(t, report.String(), "Rescore=failed")
}

func TestIngestFetchFailure(t *testing.T) {
	store := new(MockDrawStore)
	source := &stubSource{name: "remote", err: datasource.ErrServerError}

	report, err := newTestIngestion(store, nil).Ingest(context.Background(), source)
	require.Error(t, err)
	assert.ErrorIs(t, err, datasource.ErrServerError)
	assert.Equal(t, "remote", report.Source)
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestStoreFailure(t *testing.T) {
	store := new(MockDrawStore)
	source := &stubSource{name: "history", result: fetchedBatch("history")}
	store.On("Upsert", mock.Anything, mock.Anything, "history").Return(int64(0), errors.New("deadlock detected"))

	report, err := newTestIngestion(store, nil).Ingest(context.Background(), source)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store draws from history")
	assert.Equal(t, 3, report.Rejected)
	assert.Equal(t, int64(0), report.Stored)
}

func TestIngestAll(t *testing.T) {
	store := new(MockDrawStore)
	store.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(int64(2), nil)

	disabled := &stubSource{name: "disabled", disabled: true}
	failing := &stubSource{name: "failing", err: datasource.ErrNetworkError}
	healthy := &stubSource{name: "healthy", result: fetchedBatch("healthy")}

	reports, err := newTestIngestion(store, nil).IngestAll(context.Background(),
		[]datasource.DrawSource{disabled, failing, healthy})

	require.Error(t, err)
	assert.ErrorIs(t, err, datasource.ErrNetworkError)
	require.Len(t, reports, 2)
	assert.Equal(t, "failing", reports[0].Source)
	assert.Equal(t, "healthy", reports[1].Source)
	assert.Equal(t, int64(2), reports[1].Stored)

	assert.Equal(t, 0, disabled.calls)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, healthy.calls)
}

func TestIngestAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &stubSource{name: "history", result: fetchedBatch("history")}
	reports, err := newTestIngestion(new(MockDrawStore), nil).IngestAll(ctx, []datasource.DrawSource{source})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
	assert.Equal(t, 0, source.calls)
}

func TestIngestionReportString(t *testing.T) {
	report := &IngestionReport{Source: "file", Fetched: 4, Stored: 3, Rejected: 1}
	assert.Contains(t, report.String(), "75.0% accepted")
}
