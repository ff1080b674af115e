package importer

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrBusy is returned when a sync is requested while one is already
// running in this process (§4.5 "Singleton run").
var ErrBusy = errors.New("sync already in progress")

// runState is the process-singleton run tracker (§3.3's RunState). Exactly
// one Orchestrator.Run call may hold it at a time.
type runState struct {
	mu sync.Mutex

	inProgress bool
	cancelled  bool
	historyID  uuid.UUID
	metrics    *Metrics
}

// begin claims the singleton slot for a new run, returning ErrBusy if one is
// already active.
func (r *runState) begin(historyID uuid.UUID, metrics *Metrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inProgress {
		return ErrBusy
	}
	r.inProgress = true
	r.cancelled = false
	r.historyID = historyID
	r.metrics = metrics
	return nil
}

// end releases the singleton slot.
func (r *runState) end() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inProgress = false
	r.cancelled = false
	r.historyID = uuid.Nil
	r.metrics = nil
}

// cancel requests cooperative cancellation of the active run, if any. It
// reports whether a run was actually active.
func (r *runState) cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inProgress {
		return false
	}
	r.cancelled = true
	return true
}

// cancelRequested reports whether the active run has been asked to stop.
func (r *runState) cancelRequested() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// mutateMetrics applies fn to the active run's metrics under the same lock
// snapshot reads from, so progress polling never observes a torn struct.
func (r *runState) mutateMetrics(fn func(*Metrics)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.metrics != nil {
		fn(r.metrics)
	}
}

// snapshot returns the current status for the /sync/status endpoint.
func (r *runState) snapshot() StatusResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := StatusResult{InProgress: r.inProgress, CancelRequested: r.cancelled}
	if r.inProgress && r.metrics != nil {
		s.Progress = &Progress{HistoryID: r.historyID, Metrics: *r.metrics}
	}
	return s
}
