package catalog

import (
	"context"
	"fmt"
)

// LoadFileSync loads every tracked file-sync row, for the Delta Tracker's
// in-memory map (§4.4 run-start load).
func (s *Store) LoadFileSync(ctx context.Context) (map[string]FtpFileSync, error) {
	const query = `SELECT file_path, file_size, ftp_modified_at, content_hash, last_synced_at, sync_status, last_error
		FROM ingestion.ftp_file_sync`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading file sync state: %w", err)
	}
	defer rows.Close()

	out := make(map[string]FtpFileSync)
	for rows.Next() {
		var f FtpFileSync
		if err := rows.Scan(&f.FilePath, &f.FileSize, &f.FtpModifiedAt, &f.ContentHash,
			&f.LastSyncedAt, &f.SyncStatus, &f.LastError); err != nil {
			return nil, fmt.Errorf("scanning file sync row: %w", err)
		}
		out[f.FilePath] = f
	}
	return out, rows.Err()
}

// UpsertFileSync records the outcome of one processed file, success or
// failure (§4.4). Callers must treat failures here as non-fatal: tracking
// writes must never block or fail the sync.
func (s *Store) UpsertFileSync(ctx context.Context, f FtpFileSync) error {
	const query = `INSERT INTO ingestion.ftp_file_sync
		(file_path, file_size, ftp_modified_at, content_hash, last_synced_at, sync_status, last_error)
		VALUES ($1,$2,$3,$4, now(), $5, $6)
		ON CONFLICT (file_path) DO UPDATE SET
			file_size = EXCLUDED.file_size,
			ftp_modified_at = EXCLUDED.ftp_modified_at,
			content_hash = EXCLUDED.content_hash,
			last_synced_at = now(),
			sync_status = EXCLUDED.sync_status,
			last_error = EXCLUDED.last_error`
	_, err := s.pool.Exec(ctx, query, f.FilePath, f.FileSize, f.FtpModifiedAt, f.ContentHash, f.SyncStatus, f.LastError)
	if err != nil {
		return fmt.Errorf("upserting file sync row: %w", err)
	}
	return nil
}
