package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler registers the three fixed-time cron jobs (§4.6): raw-payload
// purge at 03:00, past-sailing cleanup at 04:00, stub report at 06:00, all
// in the configured region.
type Scheduler struct {
	jobs *Jobs
	cron *cron.Cron
}

// NewScheduler creates a Scheduler bound to loc, the configured cruise-sync
// timezone (§6.4's CRUISE_SYNC_TIMEZONE).
func NewScheduler(jobs *Jobs, loc *time.Location) *Scheduler {
	return &Scheduler{jobs: jobs, cron: cron.New(cron.WithLocation(loc))}
}

// Start registers the three jobs and starts the cron runner.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("0 3 * * *", func() {
		if _, err := s.jobs.Purge(ctx); err != nil {
			s.jobs.logger.Error("scheduled raw payload purge failed", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("0 4 * * *", func() {
		if _, err := s.jobs.Cleanup(ctx, defaultDaysBuffer); err != nil {
			s.jobs.logger.Error("scheduled past sailing cleanup failed", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("0 6 * * *", func() {
		if _, err := s.jobs.StubReport(ctx); err != nil {
			s.jobs.logger.Error("scheduled stub report failed", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop stops the cron runner, waiting for any in-flight job.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
