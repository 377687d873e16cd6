package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/euromillions/internal/datasource"
	"github.com/yourusername/euromillions/internal/logger"
	"github.com/yourusername/euromillions/internal/service"
)

type countingIngester struct {
	calls atomic.Int32
	err   error
}

func (c *countingIngester) IngestAll(ctx context.Context, sources []datasource.DrawSource) ([]*service.IngestionReport, error) {
	c.calls.Add(1)
	reports := make([]*service.IngestionReport, len(sources))
	for i, src := range sources {
		reports[i] = &service.IngestionReport{Source: src.Name()}
	}
	return reports, c.err
}

func testSources() []datasource.DrawSource {
	return []datasource.DrawSource{datasource.NewFileSource("history", "testdata/missing.csv", true)}
}

func TestScheduleIngestion(t *testing.T) {
	s := NewScheduler(&countingIngester{}, logger.Discard())

	id, err := s.ScheduleIngestion("0 6 * * 3,6", testSources())
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Len(t, s.Entries(), 1)

	_, err = s.ScheduleIngestion("not a cron", testSources())
	assert.Error(t, err)

	_, err = s.ScheduleIngestion("@daily", nil)
	assert.Error(t, err)
}

func TestValidateSpec(t *testing.T) {
	assert.NoError(t, ValidateSpec("0 23 * * 2,5"))
	assert.NoError(t, ValidateSpec("0 0 23 * * 2,5"))
	assert.NoError(t, ValidateSpec("@every 6h"))
	assert.Error(t, ValidateSpec("0 0 0 23 * * 2,5"))
	assert.Error(t, ValidateSpec("tuesdays"))
}

func TestStartRequiresJobs(t *testing.T) {
	s := NewScheduler(&countingIngester{}, logger.Discard())
	assert.ErrorIs(t, s.Start(), ErrNoJobs)
	assert.False(t, s.IsRunning())
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&countingIngester{}, logger.Discard())
	_, err := s.ScheduleIngestion("@daily", testSources())
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.False(t, s.GetNextRun().IsZero())

	_, err = s.ScheduleIngestion("@hourly", testSources())
	assert.Error(t, err, "scheduling while running is rejected")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
	assert.True(t, s.GetNextRun().IsZero())
	assert.NoError(t, s.Stop(ctx))
}

func TestScheduledJobRuns(t *testing.T) {
	ingester := &countingIngester{}
	s := NewScheduler(ingester, logger.Discard())
	_, err := s.ScheduleIngestion("@every 1s", testSources())
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return ingester.calls.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
}

func TestRunNow(t *testing.T) {
	ingester := &countingIngester{err: datasource.ErrNotFound}
	s := NewScheduler(ingester, logger.Discard())

	reports := s.RunNow(context.Background(), testSources())
	require.Len(t, reports, 1)
	assert.Equal(t, "history", reports[0].Source)
	assert.Equal(t, int32(1), ingester.calls.Load())
}

func TestRemoveJob(t *testing.T) {
	s := NewScheduler(&countingIngester{}, logger.Discard())
	id, err := s.ScheduleIngestion("@daily", testSources())
	require.NoError(t, err)

	require.NoError(t, s.RemoveJob(id))
	assert.Empty(t, s.Entries())
	assert.ErrorIs(t, s.Start(), ErrNoJobs)
}
