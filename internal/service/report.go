package service

import (
	"fmt"
	"time"
)

// IngestionReport tracks the outcome of ingesting one source
type IngestionReport struct {
	Source    string
	StartTime time.Time
	Duration  time.Duration
	// Fetched counts every dataset row read, rejected ones included
	Fetched int
	Stored  int64
	// Rejected counts rows the source could not parse plus draws that failed validation
	Rejected int
	Rescore  *ScoreReport
	// RescoreErr is set when new draws were stored but scoring them failed
	RescoreErr error
}

// String returns a formatted summary
func (r *IngestionReport) String() string {
	acceptRate := float64(0)
	if r.Fetched > 0 {
		acceptRate = float64(r.Fetched-r.Rejected) / float64(r.Fetched) * 100
	}

	rescored := "skipped"
	switch {
	case r.RescoreErr != nil:
		rescored = "failed: " + r.RescoreErr.Error()
	case r.Rescore != nil:
		rescored = fmt.Sprintf("%d scored, %d skipped", len(r.Rescore.Scored), len(r.Rescore.Skipped))
	}

	return fmt.Sprintf(
		"IngestionReport{Source=%s, Fetched=%d (%.1f%% accepted), Stored=%d, Rejected=%d, Rescore=%s, Duration=%v}",
		r.Source,
		r.Fetched,
		acceptRate,
		r.Stored,
		r.Rejected,
		rescored,
		r.Duration,
	)
}
