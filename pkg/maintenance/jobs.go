package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cruiseops/cruisesync/internal/telemetry"
	"github.com/cruiseops/cruisesync/pkg/catalog"
)

// Jobs bundles the three maintenance operations against a shared store.
// Each method is also called directly by the control surface (purge,
// cleanup/preview, stubs-report) so the cron schedule and the HTTP
// endpoints always run identical logic (§4.6, §6.3).
type Jobs struct {
	store    *catalog.Store
	logger   *slog.Logger
	notifier *Notifier
}

// New creates a Jobs. notifier may be a disabled Notifier (see NewNotifier);
// the stub report then simply skips the Slack post.
func New(store *catalog.Store, logger *slog.Logger, notifier *Notifier) *Jobs {
	return &Jobs{store: store, logger: logger, notifier: notifier}
}

// Purge runs the raw-payload purge: before-stats, then delete every expired
// SyncRaw row (§4.6).
func (j *Jobs) Purge(ctx context.Context) (PurgeResult, error) {
	start := time.Now()
	defer func() { telemetry.MaintenanceJobDuration.WithLabelValues("raw_payload_purge").Observe(time.Since(start).Seconds()) }()

	before, err := j.store.RawPayloadStatsBefore(ctx)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("computing raw payload stats: %w", err)
	}

	purged, err := j.store.PurgeExpiredRawPayloads(ctx)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("purging expired raw payloads: %w", err)
	}

	result := PurgeResult{
		PurgedCount:     purged,
		MaxSizeBytes:    before.MaxSizeBytes,
		OldestExpiredAt: before.OldestExpiredAt,
		DurationMs:      time.Since(start).Milliseconds(),
	}
	j.logger.Info("raw payload purge complete",
		"purgedCount", result.PurgedCount,
		"maxSizeBytes", result.MaxSizeBytes,
		"durationMs", result.DurationMs,
	)
	return result, nil
}

// StorageStats backs the storage-stats endpoint (§4.6, §6.3).
func (j *Jobs) StorageStats(ctx context.Context) (catalog.StorageStats, error) {
	return j.store.StorageStats(ctx)
}

// cutoff computes today - daysBuffer, truncated to a calendar day (§4.6).
func cutoff(daysBuffer int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -daysBuffer).Truncate(24 * time.Hour)
}

// CleanupPreview reports what Cleanup would delete, without deleting
// (§4.6's preview endpoint).
func (j *Jobs) CleanupPreview(ctx context.Context, daysBuffer int) (CleanupResult, error) {
	start := time.Now()
	cut := cutoff(daysBuffer)

	counts, err := j.store.PastSailingPreview(ctx, cut)
	if err != nil {
		return CleanupResult{}, fmt.Errorf("previewing past sailing cleanup: %w", err)
	}
	return toCleanupResult(cut, counts, start), nil
}

// Cleanup deletes past sailings (endDate < cutoff) and their dependents, in
// the required order: SailingRegion, SailingStop,
// SailingCabinPrice, SyncRaw, then Sailing (§4.6).
func (j *Jobs) Cleanup(ctx context.Context, daysBuffer int) (CleanupResult, error) {
	start := time.Now()
	defer func() { telemetry.MaintenanceJobDuration.WithLabelValues("past_sailing_cleanup").Observe(time.Since(start).Seconds()) }()
	cut := cutoff(daysBuffer)

	counts, err := j.store.DeletePastSailings(ctx, cut)
	if err != nil {
		return CleanupResult{}, fmt.Errorf("deleting past sailings: %w", err)
	}

	result := toCleanupResult(cut, counts, start)
	j.logger.Info("past sailing cleanup complete",
		"cutoff", result.Cutoff,
		"sailings", result.Sailings,
		"durationMs", result.DurationMs,
	)
	return result, nil
}

func toCleanupResult(cut time.Time, counts catalog.PastSailingCounts, start time.Time) CleanupResult {
	return CleanupResult{
		Cutoff:        cut,
		Sailings:      counts.Sailings,
		Regions:       counts.Regions,
		Stops:         counts.Stops,
		CabinPrices:   counts.CabinPrices,
		RawPayloads:   counts.RawPayloads,
		OldestEndDate: counts.OldestEndDate,
		DurationMs:    time.Since(start).Milliseconds(),
	}
}

// StubReport aggregates needs_review counts, the oldest five flagged rows,
// and posts a summary to Slack when the notifier is enabled (§4.6).
func (j *Jobs) StubReport(ctx context.Context) (StubReport, error) {
	start := time.Now()
	defer func() { telemetry.MaintenanceJobDuration.WithLabelValues("stub_report").Observe(time.Since(start).Seconds()) }()

	counts, err := j.store.StubReportCounts(ctx)
	if err != nil {
		return StubReport{}, fmt.Errorf("computing stub counts: %w", err)
	}

	rows, err := j.store.OldestStubs(ctx, oldestStubLimit)
	if err != nil {
		return StubReport{}, fmt.Errorf("listing oldest stubs: %w", err)
	}

	report := StubReport{
		CruiseLines: counts.CruiseLines,
		Ships:       counts.Ships,
		Ports:       counts.Ports,
		Regions:     counts.Regions,
		OldestStubs: make([]StubItem, 0, len(rows)),
	}
	for _, r := range rows {
		report.OldestStubs = append(report.OldestStubs, StubItem{Kind: r.Kind, Name: r.Name, CreatedAt: r.CreatedAt})
	}

	j.logger.Info("stub report complete",
		"cruiseLines", report.CruiseLines,
		"ships", report.Ships,
		"ports", report.Ports,
		"regions", report.Regions,
	)

	if j.notifier.IsEnabled() {
		if err := j.notifier.PostStubReport(ctx, report); err != nil {
			j.logger.Error("posting stub report to slack", "error", err)
		} else {
			report.PostedToSlack = true
		}
	}

	report.DurationMs = time.Since(start).Milliseconds()
	return report, nil
}

// CoverageStats backs the coverage-stats endpoint (§4.6).
func (j *Jobs) CoverageStats(ctx context.Context) (catalog.CoverageStats, error) {
	return j.store.CoverageStats(ctx)
}
