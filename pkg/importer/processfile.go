package importer

import (
	"context"
	"errors"
	"time"

	"github.com/cruiseops/cruisesync/pkg/catalog"
	"github.com/cruiseops/cruisesync/pkg/delta"
	"github.com/cruiseops/cruisesync/pkg/ftp"
	"github.com/cruiseops/cruisesync/pkg/vendorpayload"
)

// fileOutcome tells the caller whether a processed file should count toward
// the "every 100 processed" log cadence and the "every 50 processed+failed"
// checkpoint cadence (§4.5 step 7): skips count toward neither, a success
// counts toward both, a failure counts toward only the checkpoint cadence.
type fileOutcome int

const (
	outcomeSkipped fileOutcome = iota
	outcomeSuccess
	outcomeFailed
)

func (o fileOutcome) String() string {
	switch o {
	case outcomeSuccess:
		return "success"
	case outcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// processFile runs the per-file pipeline for one discovered FileInfo
// (§4.5 "Per-file pipeline"). A per-file error never propagates past this
// call; it is recorded into the run's metrics and the delta tracker, and
// the worker moves on to the next file.
func (o *Orchestrator) processFile(ctx context.Context, info ftp.FileInfo, opts SyncOptions, downloadOpts ftp.DownloadOptions, pool *ftp.Pool, control *ftp.ControlClient) fileOutcome {
	pathIDs, ok := ftp.ParsePath(info.Path)

	if opts.DeltaSync && !opts.ForceFullSync && o.tracker.Unchanged(info.Path, info.Size, nonZeroTime(info.ModifiedAt)) {
		o.state.mutateMetrics(func(m *Metrics) {
			m.SkipReasons.Unchanged++
			m.FilesSkipped++
		})
		return outcomeSkipped
	}

	if opts.SkipOversized && opts.MaxFileSizeBytes > 0 && info.Size > opts.MaxFileSizeBytes {
		o.state.mutateMetrics(func(m *Metrics) {
			m.SkipReasons.Oversized++
			m.FilesSkipped++
		})
		o.track(ctx, info, "failed", nil)
		return outcomeSkipped
	}

	result := ftp.DownloadViaPoolOrControl(ctx, pool, control, info.Path, downloadOpts)
	if result.Oversized {
		o.state.mutateMetrics(func(m *Metrics) {
			m.SkipReasons.Oversized++
			m.FilesSkipped++
		})
		o.track(ctx, info, "failed", nil)
		return outcomeSkipped
	}
	if result.Err != nil {
		o.recordFailure(ctx, info, "failed", ErrTypeDownloadFailed, result.Err)
		o.state.mutateMetrics(func(m *Metrics) { m.SkipReasons.DownloadFailed++ })
		return outcomeFailed
	}

	payload, err := vendorpayload.Parse(result.Data)
	if err != nil {
		o.recordFailure(ctx, info, "failed", ErrTypeParseError, err)
		o.state.mutateMetrics(func(m *Metrics) { m.SkipReasons.ParseError++ })
		return outcomeFailed
	}

	if !ok || pathIDs.CruiseLineID == "" || pathIDs.ShipID == "" || pathIDs.CodeToCruiseID == "" {
		o.recordFailure(ctx, info, "failed", ErrTypeMissingFields, errMissingPathFields)
		o.state.mutateMetrics(func(m *Metrics) { m.SkipReasons.MissingFields++ })
		return outcomeFailed
	}
	payload.PathCruiseLineID = pathIDs.CruiseLineID
	payload.PathShipID = pathIDs.ShipID
	payload.PathCode = pathIDs.CodeToCruiseID

	upsertResult, err := o.engine.Run(ctx, payload, result.Data)
	if err != nil {
		o.recordFailure(ctx, info, "failed", ErrTypeUnknown, err)
		return outcomeFailed
	}

	o.state.mutateMetrics(func(m *Metrics) {
		if upsertResult.IsNew {
			m.SailingsCreated++
		} else {
			m.SailingsUpdated++
		}
		m.SailingsUpserted++
		m.FilesProcessed++
		m.StopsInserted += upsertResult.StopCount
		if upsertResult.HasAnyPrice {
			m.PricesInserted++
		}
		for kind, n := range upsertResult.StubsCreated {
			m.StubsCreated[kind] += n
		}
	})

	hash := delta.HashContent(result.Data)
	o.track(ctx, info, "success", hash)
	return outcomeSuccess
}

var errMissingPathFields = errors.New("vendor file path did not yield the required IDs from file path: line, ship, and code")

// recordFailure pushes a bounded error entry and persists a failed
// file-sync tracking row (§4.5, §7).
func (o *Orchestrator) recordFailure(ctx context.Context, info ftp.FileInfo, trackStatus, errType string, err error) {
	o.state.mutateMetrics(func(m *Metrics) {
		m.FilesFailed++
		m.pushError(catalog.SyncError{FilePath: info.Path, Error: err.Error(), ErrorType: errType})
	})
	o.track(ctx, info, trackStatus, nil)
}

// track enqueues a delta-tracker update for this file without blocking the
// worker (§4.4).
func (o *Orchestrator) track(ctx context.Context, info ftp.FileInfo, status string, contentHash *string) {
	o.tracker.Track(catalog.FtpFileSync{
		FilePath:      info.Path,
		FileSize:      info.Size,
		FtpModifiedAt: nonZeroTime(info.ModifiedAt),
		ContentHash:   contentHash,
		SyncStatus:    status,
	})
}

// nonZeroTime converts the zero time.Time (meaning "unknown") to a nil
// pointer, matching the tracker's optional modifiedAt semantics (§4.4).
func nonZeroTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
