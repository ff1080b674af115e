package importer

import (
	"testing"

	"github.com/cruiseops/cruisesync/pkg/catalog"
)

func TestSyncOptionsNormalize(t *testing.T) {
	tests := []struct {
		name  string
		in    SyncOptions
		check func(SyncOptions) bool
	}{
		{
			name:  "zero value fills in all defaults",
			in:    SyncOptions{},
			check: func(o SyncOptions) bool { return o.Concurrency == 4 && o.MaxFileSizeBytes == 500_000 && o.RetryAttempts == 3 },
		},
		{
			name:  "concurrency above 8 is clamped down",
			in:    SyncOptions{Concurrency: 50},
			check: func(o SyncOptions) bool { return o.Concurrency == 8 },
		},
		{
			name:  "negative concurrency is clamped up to 1",
			in:    SyncOptions{Concurrency: -3},
			check: func(o SyncOptions) bool { return o.Concurrency == 1 },
		},
		{
			name:  "unset pool size derives from concurrency",
			in:    SyncOptions{Concurrency: 6},
			check: func(o SyncOptions) bool { return o.FTPPoolSize == 7 },
		},
		{
			name:  "explicit pool size is preserved",
			in:    SyncOptions{Concurrency: 6, FTPPoolSize: 20},
			check: func(o SyncOptions) bool { return o.FTPPoolSize == 20 },
		},
		{
			name:  "explicit non-zero fields survive normalization",
			in:    SyncOptions{MaxFileSizeBytes: 10, RetryAttempts: 1, FileTimeoutMs: 500, RetryDelayMs: 200, Concurrency: 2},
			check: func(o SyncOptions) bool {
				return o.MaxFileSizeBytes == 10 && o.RetryAttempts == 1 && o.FileTimeoutMs == 500 && o.RetryDelayMs == 200
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.normalize()
			if !tt.check(got) {
				t.Errorf("normalize() = %+v, failed check", got)
			}
		})
	}
}

func TestMetricsPushErrorCapsAt100(t *testing.T) {
	m := newMetrics()
	for i := 0; i < 150; i++ {
		m.pushError(catalog.SyncError{FilePath: "file", Error: "boom", ErrorType: ErrTypeUnknown})
	}

	if len(m.Errors) != 100 {
		t.Fatalf("expected Errors to be capped at 100 entries, got %d", len(m.Errors))
	}
	if m.ErrorCount != 150 {
		t.Fatalf("expected ErrorCount to track every push regardless of the cap, got %d", m.ErrorCount)
	}
}

func TestNewMetricsInitializesMaps(t *testing.T) {
	m := newMetrics()
	if m.StubsCreated == nil {
		t.Fatal("expected StubsCreated to be initialized, not nil")
	}
	if m.StartedAt.IsZero() {
		t.Fatal("expected StartedAt to be set")
	}
}
