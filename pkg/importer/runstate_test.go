package importer

import (
	"testing"

	"github.com/google/uuid"
)

func TestRunStateBeginEnd(t *testing.T) {
	var r runState

	if err := r.begin(uuid.New(), newMetrics()); err != nil {
		t.Fatalf("begin() on an idle state returned error: %v", err)
	}

	if err := r.begin(uuid.New(), newMetrics()); err != ErrBusy {
		t.Fatalf("begin() while already running = %v, want ErrBusy", err)
	}

	r.end()

	if err := r.begin(uuid.New(), newMetrics()); err != nil {
		t.Fatalf("begin() after end() returned error: %v", err)
	}
}

func TestRunStateCancel(t *testing.T) {
	var r runState

	if r.cancel() {
		t.Fatal("cancel() on an idle state should report false")
	}

	historyID := uuid.New()
	if err := r.begin(historyID, newMetrics()); err != nil {
		t.Fatalf("begin() error: %v", err)
	}

	if !r.cancel() {
		t.Fatal("cancel() on an active run should report true")
	}
	if !r.cancelRequested() {
		t.Fatal("cancelRequested() should be true after cancel()")
	}

	r.end()
	if r.cancelRequested() {
		t.Fatal("cancelRequested() should reset to false after end()")
	}
}

func TestRunStateMutateMetricsAndSnapshot(t *testing.T) {
	var r runState
	historyID := uuid.New()
	if err := r.begin(historyID, newMetrics()); err != nil {
		t.Fatalf("begin() error: %v", err)
	}

	r.mutateMetrics(func(m *Metrics) { m.FilesProcessed = 7 })

	snap := r.snapshot()
	if !snap.InProgress {
		t.Fatal("expected InProgress to be true")
	}
	if snap.Progress == nil {
		t.Fatal("expected a non-nil Progress")
	}
	if snap.Progress.HistoryID != historyID {
		t.Fatalf("snapshot HistoryID = %v, want %v", snap.Progress.HistoryID, historyID)
	}
	if snap.Progress.Metrics.FilesProcessed != 7 {
		t.Fatalf("snapshot FilesProcessed = %d, want 7", snap.Progress.Metrics.FilesProcessed)
	}
}

func TestRunStateMutateMetricsNoopWhenIdle(t *testing.T) {
	var r runState
	// Must not panic when no run is active.
	r.mutateMetrics(func(m *Metrics) { m.FilesProcessed = 99 })

	snap := r.snapshot()
	if snap.InProgress {
		t.Fatal("expected InProgress to be false on an idle runState")
	}
	if snap.Progress != nil {
		t.Fatal("expected a nil Progress on an idle runState")
	}
}
