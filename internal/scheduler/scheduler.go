// Package scheduler runs draw ingestion on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/euromillions/internal/datasource"
	"github.com/yourusername/euromillions/internal/service"
)

// Ingester ingests a set of draw sources
type Ingester interface {
	IngestAll(ctx context.Context, sources []datasource.DrawSource) ([]*service.IngestionReport, error)
}

// ErrNoJobs is returned by Start when nothing has been scheduled
var ErrNoJobs = errors.New("no jobs scheduled")

// specParser accepts five-field expressions, six-field ones with a leading
// seconds field, and descriptors such as "@daily".
var specParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateSpec checks a cron expression without scheduling it
func ValidateSpec(spec string) error {
	_, err := specParser.Parse(spec)
	return err
}

// Scheduler manages scheduled data ingestion jobs
type Scheduler struct {
	cron       *cron.Cron
	ingester   Ingester
	logger     *logrus.Entry
	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
	jobTimeout time.Duration
	// runs serialises ingestion so a slow run and the next tick never overlap
	runs sync.Mutex
}

// NewScheduler creates a new scheduler
func NewScheduler(ingester Ingester, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC), cron.WithParser(specParser)),
		ingester:   ingester,
		logger:     logger.WithField("component", "scheduler"),
		jobIDs:     make([]cron.EntryID, 0),
		jobTimeout: time.Hour,
	}
}

// ScheduleIngestion schedules ingestion of sources on a cron expression
func (s *Scheduler) ScheduleIngestion(cronExpression string, sources []datasource.DrawSource) (cron.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return 0, fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if len(sources) == 0 {
		return 0, fmt.Errorf("no sources to schedule")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		s.RunNow(ctx, sources)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":    cronExpression,
		"sources": len(sources),
	}).Info("Scheduled draw ingestion")

	return entryID, nil
}

// RunNow ingests sources immediately, waiting for any run already in progress
func (s *Scheduler) RunNow(ctx context.Context, sources []datasource.DrawSource) []*service.IngestionReport {
	s.runs.Lock()
	defer s.runs.Unlock()

	start := time.Now()
	s.logger.WithField("sources", len(sources)).Info("Starting draw ingestion")

	reports, err := s.ingester.IngestAll(ctx, sources)
	if err != nil {
		s.logger.WithError(err).Error("Draw ingestion finished with errors")
	} else {
		s.logger.WithField("duration", time.Since(start)).Info("Draw ingestion completed")
	}
	return reports
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return ErrNoJobs
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stopped before running jobs finished")
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}

// RemoveJob removes a scheduled job
func (s *Scheduler) RemoveJob(jobID cron.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot remove job while scheduler is running")
	}

	s.cron.Remove(jobID)
	for i, id := range s.jobIDs {
		if id == jobID {
			s.jobIDs = append(s.jobIDs[:i], s.jobIDs[i+1:]...)
			break
		}
	}
	s.logger.WithField("job_id", jobID).Info("Removed job")

	return nil
}
