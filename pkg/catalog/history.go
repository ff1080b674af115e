package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// StartSyncHistory inserts a new running SyncHistory row (§4.5 init step 1).
func (s *Store) StartSyncHistory(ctx context.Context, options any) (uuid.UUID, error) {
	opts := marshalJSON(options)
	const query = `INSERT INTO ingestion.sync_history (status, options, started_at)
		VALUES ('running', $1, now()) RETURNING id`
	var id uuid.UUID
	if err := s.pool.QueryRow(ctx, query, opts).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("starting sync history: %w", err)
	}
	return id, nil
}

// RecordProgress persists a progress snapshot mid-run (§4.5 step 7:
// PROGRESS_UPDATE_INTERVAL = 50 processed + failed).
func (s *Store) RecordProgress(ctx context.Context, id uuid.UUID, metrics any, errs []SyncError) error {
	const query = `UPDATE ingestion.sync_history
		SET metrics = $2, error_count = $3, errors = $4 WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, marshalJSON(metrics), len(errs), marshalJSON(boundedErrors(errs)))
	if err != nil {
		return fmt.Errorf("recording sync progress: %w", err)
	}
	return nil
}

// FinishSyncHistory sets the final status and metrics (§4.5 finalization).
func (s *Store) FinishSyncHistory(ctx context.Context, id uuid.UUID, status string, metrics any, errs []SyncError) error {
	const query = `UPDATE ingestion.sync_history
		SET status = $2, metrics = $3, error_count = $4, errors = $5, completed_at = now()
		WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, status, marshalJSON(metrics), len(errs), marshalJSON(boundedErrors(errs)))
	if err != nil {
		return fmt.Errorf("finishing sync history: %w", err)
	}
	return nil
}

// boundedErrors caps the persisted error list at 100 entries, keeping the
// most recent (§3.2, §4.5).
func boundedErrors(errs []SyncError) []SyncError {
	const maxErrors = 100
	if len(errs) <= maxErrors {
		return errs
	}
	return errs[len(errs)-maxErrors:]
}

// GetSyncHistory fetches one run by ID, for the status/history endpoints.
func (s *Store) GetSyncHistory(ctx context.Context, id uuid.UUID) (SyncHistory, error) {
	const query = `SELECT id, started_at, completed_at, status, options, metrics, error_count, errors
		FROM ingestion.sync_history WHERE id = $1`
	return s.scanSyncHistory(s.pool.QueryRow(ctx, query, id))
}

// ListSyncHistory returns the most recent runs, newest first.
func (s *Store) ListSyncHistory(ctx context.Context, limit int) ([]SyncHistory, error) {
	const query = `SELECT id, started_at, completed_at, status, options, metrics, error_count, errors
		FROM ingestion.sync_history ORDER BY started_at DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sync history: %w", err)
	}
	defer rows.Close()

	var out []SyncHistory
	for rows.Next() {
		sh, err := s.scanSyncHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (s *Store) scanSyncHistory(row interface{ Scan(dest ...any) error }) (SyncHistory, error) {
	var sh SyncHistory
	var errs []byte
	err := row.Scan(&sh.ID, &sh.StartedAt, &sh.CompletedAt, &sh.Status, &sh.Options, &sh.Metrics, &sh.ErrorCount, &errs)
	if err != nil {
		return SyncHistory{}, fmt.Errorf("scanning sync history: %w", err)
	}
	if len(errs) > 0 {
		_ = json.Unmarshal(errs, &sh.Errors)
	}
	return sh, nil
}
