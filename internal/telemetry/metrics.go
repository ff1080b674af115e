package telemetry

import "github.com/prometheus/client_golang/prometheus"

// CacheHitsTotal / CacheMissesTotal track reference-cache (C1) lookups by kind.
var CacheHitsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cruisesync",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total number of reference-cache hits by entity kind.",
	},
	[]string{"kind"},
)

var CacheMissesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cruisesync",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total number of reference-cache misses by entity kind.",
	},
	[]string{"kind"},
)

// FTPPoolInUse reports the number of pooled FTP connections currently checked out.
var FTPPoolInUse = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "cruisesync",
		Subsystem: "ftp",
		Name:      "pool_in_use",
		Help:      "Number of FTP pool connections currently in use.",
	},
)

// SyncFilesTotal counts files processed by outcome (processed|failed|skipped).
var SyncFilesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cruisesync",
		Subsystem: "sync",
		Name:      "files_total",
		Help:      "Total number of files handled by the import orchestrator, by outcome.",
	},
	[]string{"outcome"},
)

// SyncDuration records the wall-clock duration of completed sync runs.
var SyncDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "cruisesync",
		Subsystem: "sync",
		Name:      "duration_seconds",
		Help:      "Duration of a full import run in seconds.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
	},
)

// AdvisoryLockSkippedTotal counts scheduled runs skipped because the advisory lock was held elsewhere.
var AdvisoryLockSkippedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "cruisesync",
		Subsystem: "sync",
		Name:      "advisory_lock_skipped_total",
		Help:      "Total number of scheduled sync attempts skipped because the advisory lock was unavailable.",
	},
)

// MaintenanceJobDuration records the duration of each maintenance job (C6) by name.
var MaintenanceJobDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "cruisesync",
		Subsystem: "maintenance",
		Name:      "job_duration_seconds",
		Help:      "Duration of a maintenance job run in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"job"},
)

// All returns every cruisesync-specific collector for registration.
func All() []prometheus.Collector {
	return []prometheus.Collector{
		CacheHitsTotal,
		CacheMissesTotal,
		FTPPoolInUse,
		SyncFilesTotal,
		SyncDuration,
		AdvisoryLockSkippedTotal,
		MaintenanceJobDuration,
	}
}
