package importer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// lockKey is the fixed advisory-lock key used to serialize the scheduled
// sync variant across replicas (§4.5, §6.2).
const lockKey = "cruise_sync_lock"

// tryAcquireLock attempts the process-global Postgres advisory lock. A
// false result means another replica currently holds it; the caller must
// skip the run rather than wait.
func tryAcquireLock(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	var acquired bool
	err := pool.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, lockKey).Scan(&acquired)
	if err != nil {
		return false, fmt.Errorf("acquiring advisory lock: %w", err)
	}
	return acquired, nil
}

// releaseLock releases the advisory lock acquired by tryAcquireLock. Callers
// invoke it from a guaranteed cleanup path (§4.5) regardless of how the run
// ended.
func releaseLock(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, lockKey)
	if err != nil {
		return fmt.Errorf("releasing advisory lock: %w", err)
	}
	return nil
}
