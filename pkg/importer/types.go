package importer

import (
	"time"

	"github.com/google/uuid"

	"github.com/cruiseops/cruisesync/pkg/catalog"
)

// SyncOptions mirrors FtpSyncOptions (§6.3): the recognized knobs for one
// sync invocation, whether triggered via HTTP or the scheduled cron.
type SyncOptions struct {
	DryRun            bool
	Year              int
	Month             int
	LineID            string
	ShipID            string
	MaxFiles          int
	SkipOversized     bool
	MaxFileSizeBytes  int64
	FileTimeoutMs     int
	RetryAttempts     int
	RetryDelayMs      int
	IncludeHistorical bool
	Concurrency       int
	FTPPoolSize       int
	DeltaSync         bool
	ForceFullSync     bool
}

// DefaultSyncOptions returns the default options for an otherwise
// empty FtpSyncOptions body (§6.3). SkipOversized and DeltaSync default to
// true but are plain bools here; the control surface applies that default
// itself when decoding a request body, since the zero value of bool cannot
// distinguish "absent" from "explicitly false".
func DefaultSyncOptions() SyncOptions {
	return SyncOptions{
		SkipOversized:     true,
		MaxFileSizeBytes:  500_000,
		FileTimeoutMs:     30_000,
		RetryAttempts:     3,
		RetryDelayMs:      1_000,
		IncludeHistorical: false,
		Concurrency:       4,
		DeltaSync:         true,
	}
}

// normalize fills zero-valued fields with defaults and clamps concurrency
// and pool size, mutating a copy so callers never observe partial options.
func (o SyncOptions) normalize() SyncOptions {
	d := DefaultSyncOptions()

	if o.MaxFileSizeBytes == 0 {
		o.MaxFileSizeBytes = d.MaxFileSizeBytes
	}
	if o.FileTimeoutMs == 0 {
		o.FileTimeoutMs = d.FileTimeoutMs
	}
	if o.RetryAttempts == 0 {
		o.RetryAttempts = d.RetryAttempts
	}
	if o.RetryDelayMs == 0 {
		o.RetryDelayMs = d.RetryDelayMs
	}
	if o.Concurrency == 0 {
		o.Concurrency = d.Concurrency
	}
	if o.Concurrency > 8 {
		o.Concurrency = 8
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.FTPPoolSize == 0 {
		o.FTPPoolSize = o.Concurrency + 1
	}
	return o
}

// SkipReasons counts files that were deliberately not processed, broken
// down by reason (§4.5 per-file pipeline).
type SkipReasons struct {
	Unchanged      int `json:"unchanged"`
	Oversized      int `json:"oversized"`
	DownloadFailed int `json:"downloadFailed"`
	ParseError     int `json:"parseError"`
	MissingFields  int `json:"missingFields"`
}

// Error type tags used in catalog.SyncError.ErrorType (§7).
const (
	ErrTypeOversized      = "oversized"
	ErrTypeDownloadFailed = "download_failed"
	ErrTypeParseError     = "parse_error"
	ErrTypeMissingFields  = "missing_fields"
	ErrTypeUnknown        = "unknown"
)

// Metrics is the ImportMetrics structure: the canonical outcome of one sync
// run (§4.5, §7, §8).
type Metrics struct {
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	DurationMs  int64      `json:"durationMs"`

	FilesFound     int `json:"filesFound"`
	FilesProcessed int `json:"filesProcessed"`
	FilesSkipped   int `json:"filesSkipped"`
	FilesFailed    int `json:"filesFailed"`

	SailingsCreated  int `json:"sailingsCreated"`
	SailingsUpdated  int `json:"sailingsUpdated"`
	SailingsUpserted int `json:"sailingsUpserted"`
	StopsInserted    int `json:"stopsInserted"`
	PricesInserted   int `json:"pricesInserted"`

	StubsCreated map[string]int `json:"stubsCreated"`

	SkipReasons SkipReasons         `json:"skipReasons"`
	Errors      []catalog.SyncError `json:"errors"`
	ErrorCount  int                 `json:"errorCount"`

	Cancelled bool `json:"cancelled"`
}

// newMetrics creates a zeroed Metrics with its maps initialized.
func newMetrics() *Metrics {
	return &Metrics{
		StartedAt:    time.Now().UTC(),
		StubsCreated: make(map[string]int),
	}
}

// pushError appends e, dropping the oldest entry once the list reaches 100
// (§4.5 "error list", §8 property 8).
func (m *Metrics) pushError(e catalog.SyncError) {
	m.Errors = append(m.Errors, e)
	if len(m.Errors) > 100 {
		m.Errors = m.Errors[len(m.Errors)-100:]
	}
	m.ErrorCount++
}

// Progress is the snapshot surfaced via /sync/status while a run is active
// (§6.3, §0.6).
type Progress struct {
	HistoryID uuid.UUID `json:"historyId"`
	Metrics   Metrics   `json:"metrics"`
}

// StatusResult is the full /sync/status response body.
type StatusResult struct {
	InProgress      bool      `json:"inProgress"`
	CancelRequested bool      `json:"cancelRequested"`
	Progress        *Progress `json:"progress,omitempty"`
}
