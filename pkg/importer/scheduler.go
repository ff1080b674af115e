package importer

import (
	"context"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cruiseops/cruisesync/internal/telemetry"
)

// Scheduled retry parameters (§4.5 "Scheduled sync with retry").
const (
	maxRetries   = 3
	initialDelay = 5 * time.Minute
)

// retryableSubstrings is the lower-cased substring list that distinguishes
// a transient listing/connection failure from a permanent one (§4.5, §7).
var retryableSubstrings = []string{"connect", "timeout", "econnrefused", "enotfound", "network", "ftp", "socket"}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sub := range retryableSubstrings {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}

// Scheduler registers the cron-triggered scheduled sync at 02:00 in the
// configured timezone (§4.5, §4.6).
type Scheduler struct {
	orch    *Orchestrator
	cron    *cron.Cron
	enabled bool
}

// NewScheduler creates a Scheduler. loc is the configured cruise-sync
// timezone (§6.4's CRUISE_SYNC_TIMEZONE).
func NewScheduler(orch *Orchestrator, loc *time.Location, enabled bool) *Scheduler {
	return &Scheduler{
		orch:    orch,
		cron:    cron.New(cron.WithLocation(loc)),
		enabled: enabled,
	}
}

// Start registers the 02:00 scheduled sync entry and starts the cron
// runner. A no-op if scheduling is disabled (§6.4's
// ENABLE_SCHEDULED_CRUISE_SYNC).
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.enabled {
		return nil
	}
	_, err := s.cron.AddFunc("0 2 * * *", func() {
		s.runScheduled(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the cron runner, waiting for any in-flight job.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// runScheduled performs the locked, retried scheduled sync (§4.5). Failures
// never escape this call; they are logged and swallowed.
func (s *Scheduler) runScheduled(ctx context.Context) {
	acquired, err := tryAcquireLock(ctx, s.orch.pool)
	if err != nil {
		s.orch.logger.Error("scheduled sync: acquiring advisory lock", "error", err)
		return
	}
	if !acquired {
		telemetry.AdvisoryLockSkippedTotal.Inc()
		s.orch.logger.Warn("scheduled sync skipped: advisory lock held elsewhere")
		return
	}
	defer func() {
		if err := releaseLock(ctx, s.orch.pool); err != nil {
			s.orch.logger.Error("scheduled sync: releasing advisory lock", "error", err)
		}
	}()

	opts := DefaultSyncOptions()
	opts.Concurrency = 4

	delay := initialDelay
	for attempt := 1; attempt <= maxRetries; attempt++ {
		_, err := s.orch.Run(ctx, opts)
		if err == nil {
			return
		}

		s.orch.logger.Error("scheduled sync attempt failed", "attempt", attempt, "error", err)

		if attempt == maxRetries || !isRetryable(err) {
			return
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
		delay *= 2
	}
}
