// Package maintenance implements the cron-driven housekeeping jobs (C6):
// raw-payload purge, past-sailing cleanup, and the stub/coverage report
// described in spec.md §4.6. None of the three touch the import
// orchestrator's singleton run state; they only respect the database.
package maintenance

import "time"

// PurgeResult is the outcome of one raw-payload purge run.
type PurgeResult struct {
	PurgedCount     int64      `json:"purgedCount"`
	MaxSizeBytes    int64      `json:"maxSizeBytes"`
	OldestExpiredAt *time.Time `json:"oldestExpiredAt,omitempty"`
	DurationMs      int64      `json:"durationMs"`
}

// CleanupResult is the outcome of one past-sailing cleanup run, or its
// preview counterpart.
type CleanupResult struct {
	Cutoff        time.Time  `json:"cutoff"`
	Sailings      int64      `json:"sailings"`
	Regions       int64      `json:"regions"`
	Stops         int64      `json:"stops"`
	CabinPrices   int64      `json:"cabinPrices"`
	RawPayloads   int64      `json:"rawPayloads"`
	OldestEndDate *time.Time `json:"oldestEndDate,omitempty"`
	DurationMs    int64      `json:"durationMs"`
}

// StubReport is the outcome of the stub/coverage job, and the body of the
// stubs-report endpoint.
type StubReport struct {
	CruiseLines  int64      `json:"cruiseLines"`
	Ships        int64      `json:"ships"`
	Ports        int64      `json:"ports"`
	Regions      int64      `json:"regions"`
	OldestStubs  []StubItem `json:"oldestStubs"`
	PostedToSlack bool      `json:"postedToSlack"`
	DurationMs   int64      `json:"durationMs"`
}

// StubItem is one row in the oldest-five needs_review listing.
type StubItem struct {
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// defaultDaysBuffer is the default cleanup cutoff buffer (§4.6).
const defaultDaysBuffer = 0

// oldestStubLimit is the number of needs_review rows the report surfaces
// (§4.6 "oldest five").
const oldestStubLimit = 5
