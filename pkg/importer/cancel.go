package importer

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// statusKey and cancelChannel are the two Redis-backed signals that carry
// run visibility across the process boundary without replacing the
// in-process run-state mutex as the source of truth.
const (
	statusKey     = "cruisesync:run:status"
	cancelChannel = "cruisesync:run:cancel"
)

type redisStatus struct {
	InProgress bool      `json:"inProgress"`
	HistoryID  uuid.UUID `json:"historyId"`
	Progress   *Metrics  `json:"progress,omitempty"`
}

// subscribeCancel listens for cross-replica cancel requests for the
// lifetime of the run, treating any message on cancelChannel as equivalent
// to a local Cancel() call. The returned function stops the subscription
// and must be called once the run ends.
func (o *Orchestrator) subscribeCancel(ctx context.Context) func() {
	sub := o.rdb.Subscribe(ctx, cancelChannel)
	ch := sub.Channel()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return
				}
				o.state.cancel()
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		close(done)
		_ = sub.Close()
	}
}

// PublishCancel is called by the control surface on /sync/cancel so that a
// replica other than the one running the sync can still request
// cancellation.
func PublishCancel(ctx context.Context, rdb *redis.Client) error {
	return rdb.Publish(ctx, cancelChannel, "cancel").Err()
}

// mirrorStatus writes the current run status to Redis so /sync/status
// answers correctly regardless of which replica receives the HTTP request.
// stillRunning false clears the key instead of writing a snapshot.
func (o *Orchestrator) mirrorStatus(ctx context.Context, historyID uuid.UUID, metrics *Metrics, stillRunning bool) {
	if o.rdb == nil {
		return
	}
	if !stillRunning {
		_ = o.rdb.Del(ctx, statusKey).Err()
		return
	}
	data, err := json.Marshal(redisStatus{InProgress: true, HistoryID: historyID, Progress: metrics})
	if err != nil {
		return
	}
	_ = o.rdb.Set(ctx, statusKey, data, 0).Err()
}

// FetchMirroredStatus reads the Redis status mirror for /sync/status and
// /test-connection's skipped check. ok is false if no run is mirrored
// (either none is active, or rdb is nil).
func FetchMirroredStatus(ctx context.Context, rdb *redis.Client) (StatusResult, bool) {
	if rdb == nil {
		return StatusResult{}, false
	}
	raw, err := rdb.Get(ctx, statusKey).Bytes()
	if err != nil {
		return StatusResult{}, false
	}
	var rs redisStatus
	if err := json.Unmarshal(raw, &rs); err != nil {
		return StatusResult{}, false
	}
	result := StatusResult{InProgress: rs.InProgress}
	if rs.Progress != nil {
		result.Progress = &Progress{HistoryID: rs.HistoryID, Metrics: *rs.Progress}
	}
	return result, true
}
