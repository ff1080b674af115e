// Package delta implements the Delta Tracker (C4): a per-file sync-state
// table backed by an in-memory map, used to skip files whose content has
// not changed since the last successful sync (spec.md §4.4).
package delta

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cruiseops/cruisesync/pkg/catalog"
)

const (
	bufferSize    = 256
	flushInterval = 2 * time.Second
	flushBatch    = 32
)

// Tracker holds the in-memory view of ingestion.ftp_file_sync and an async,
// non-blocking writer that persists per-file outcomes without slowing the
// sync pipeline (§4.4).
type Tracker struct {
	store  *catalog.Store
	logger *slog.Logger

	mu      sync.RWMutex
	tracked map[string]catalog.FtpFileSync

	entries chan catalog.FtpFileSync
	wg      sync.WaitGroup
}

// New creates a Tracker backed by store. Call Load before use and Start to
// begin the background flush loop.
func New(store *catalog.Store, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:   store,
		logger:  logger,
		tracked: make(map[string]catalog.FtpFileSync),
		entries: make(chan catalog.FtpFileSync, bufferSize),
	}
}

// Load populates the in-memory map from the database (§4.4 run-start
// load). Callers performing a forceFullSync skip calling Load entirely, so
// every file is treated as changed.
func (t *Tracker) Load(ctx context.Context) error {
	rows, err := t.store.LoadFileSync(ctx)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.tracked = rows
	t.mu.Unlock()
	return nil
}

// Unchanged implements the §4.4 decision rule: a discovered file is
// unchanged iff a tracked row exists, its last sync succeeded, the file
// size matches, and the modified timestamps agree (or one side is absent).
func (t *Tracker) Unchanged(path string, size int64, modifiedAt *time.Time) bool {
	t.mu.RLock()
	row, ok := t.tracked[path]
	t.mu.RUnlock()
	if !ok {
		return false
	}
	if row.SyncStatus != "success" {
		return false
	}
	if row.FileSize != size {
		return false
	}
	if row.FtpModifiedAt == nil || modifiedAt == nil {
		return true
	}
	return row.FtpModifiedAt.Equal(*modifiedAt)
}

// Start begins the background goroutine that flushes tracked outcomes to
// the database and returns at once; Close waits for that goroutine to flush
// the pending entries and exit. Start/Close may be called repeatedly across successive
// sync runs sharing one Tracker; each Start opens a fresh entries channel
// so a prior Close does not leave the Tracker permanently unusable.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	t.entries = make(chan catalog.FtpFileSync, bufferSize)
	t.mu.Unlock()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.run(ctx)
	}()
}

// Close waits for all pending entries to be flushed.
func (t *Tracker) Close() {
	t.mu.Lock()
	entries := t.entries
	t.mu.Unlock()

	close(entries)
	t.wg.Wait()
}

// Track enqueues the outcome of one processed file for async persistence.
// It never blocks the caller; if the buffer is full the entry is dropped
// and a warning is logged, per §4.4's "must not block or fail the sync".
func (t *Tracker) Track(f catalog.FtpFileSync) {
	t.mu.Lock()
	t.tracked[f.FilePath] = f
	entries := t.entries
	t.mu.Unlock()

	select {
	case entries <- f:
	default:
		t.logger.Warn("delta tracker buffer full, dropping tracking write", "path", f.FilePath)
	}
}

func (t *Tracker) run(ctx context.Context) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]catalog.FtpFileSync, 0, flushBatch)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		t.flush(batch)
		batch = batch[:0]
	}

	for {
		select {
		case entry, ok := <-t.entries:
			if !ok {
				flush()
				return
			}
			batch = append(batch, entry)
			if len(batch) >= flushBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			for {
				select {
				case entry, ok := <-t.entries:
					if !ok {
						flush()
						return
					}
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}

// flush persists a batch of tracking rows. Failures are logged and
// swallowed, never surfaced to the sync pipeline (§4.4).
func (t *Tracker) flush(batch []catalog.FtpFileSync) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, f := range batch {
		if err := t.store.UpsertFileSync(ctx, f); err != nil {
			t.logger.Error("writing file sync tracking row", "error", err, "path", f.FilePath)
		}
	}
}

// HashContent computes the MD5 hex digest of downloaded bytes for the
// content_hash column (§3.2); null on failed downloads since there is
// nothing to hash.
func HashContent(data []byte) *string {
	if data == nil {
		return nil
	}
	sum := md5Hex(data)
	return &sum
}

// ErrorSnippet trims an error message to a reasonable column length and
// strips newlines, for the lastError column.
func ErrorSnippet(err error) *string {
	if err == nil {
		return nil
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	if len(msg) > 1000 {
		msg = msg[:1000]
	}
	return &msg
}
