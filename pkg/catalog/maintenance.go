package catalog

import (
	"context"
	"fmt"
	"time"
)

// RawPayloadStats summarizes the SyncRaw table before a purge (§4.6).
type RawPayloadStats struct {
	ExpiredCount   int64
	MaxSizeBytes   int64
	OldestExpiredAt *time.Time
}

// RawPayloadStatsBefore computes pre-purge statistics.
func (s *Store) RawPayloadStatsBefore(ctx context.Context) (RawPayloadStats, error) {
	const query = `SELECT count(*) FILTER (WHERE expires_at < now()),
		coalesce(max(length(raw_data)), 0),
		min(expires_at) FILTER (WHERE expires_at < now())
		FROM catalog.sync_raw`
	var st RawPayloadStats
	err := s.pool.QueryRow(ctx, query).Scan(&st.ExpiredCount, &st.MaxSizeBytes, &st.OldestExpiredAt)
	if err != nil {
		return RawPayloadStats{}, fmt.Errorf("computing raw payload stats: %w", err)
	}
	return st, nil
}

// PurgeExpiredRawPayloads deletes all SyncRaw rows past their expiry
// (§4.6 raw-payload purge).
func (s *Store) PurgeExpiredRawPayloads(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM catalog.sync_raw WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("purging expired raw payloads: %w", err)
	}
	return tag.RowsAffected(), nil
}

// StorageStats backs the storage-stats endpoint (§4.6).
type StorageStats struct {
	TotalRecords     int64
	TotalBytes       int64
	AvgBytes         float64
	MaxBytes         int64
	ExpiredCount     int64
	ExpiringWithin24h int64
}

// StorageStats computes current SyncRaw storage statistics.
func (s *Store) StorageStats(ctx context.Context) (StorageStats, error) {
	const query = `SELECT count(*), coalesce(sum(length(raw_data)), 0),
		coalesce(avg(length(raw_data)), 0), coalesce(max(length(raw_data)), 0),
		count(*) FILTER (WHERE expires_at < now()),
		count(*) FILTER (WHERE expires_at >= now() AND expires_at < now() + interval '24 hours')
		FROM catalog.sync_raw`
	var st StorageStats
	err := s.pool.QueryRow(ctx, query).Scan(&st.TotalRecords, &st.TotalBytes, &st.AvgBytes, &st.MaxBytes,
		&st.ExpiredCount, &st.ExpiringWithin24h)
	if err != nil {
		return StorageStats{}, fmt.Errorf("computing storage stats: %w", err)
	}
	return st, nil
}

// PastSailingCounts tallies rows deleted (or previewed) by the past-sailing
// cleanup job, per entity kind (§4.6).
type PastSailingCounts struct {
	Sailings     int64
	Regions      int64
	Stops        int64
	CabinPrices  int64
	RawPayloads  int64
	OldestEndDate *time.Time
}

// PastSailingPreview reports the same counts the cleanup job would delete,
// without deleting, plus the oldest end date among the matched sailings
// (§4.6 preview endpoint).
func (s *Store) PastSailingPreview(ctx context.Context, cutoff time.Time) (PastSailingCounts, error) {
	var c PastSailingCounts
	const query = `SELECT count(*), min(end_date) FROM catalog.sailings WHERE end_date < $1`
	if err := s.pool.QueryRow(ctx, query, cutoff).Scan(&c.Sailings, &c.OldestEndDate); err != nil {
		return PastSailingCounts{}, fmt.Errorf("previewing past sailings: %w", err)
	}

	const related = `
		SELECT
			(SELECT count(*) FROM catalog.sailing_regions sr JOIN catalog.sailings s ON s.id = sr.sailing_id WHERE s.end_date < $1),
			(SELECT count(*) FROM catalog.sailing_stops st JOIN catalog.sailings s ON s.id = st.sailing_id WHERE s.end_date < $1),
			(SELECT count(*) FROM catalog.sailing_cabin_prices cp JOIN catalog.sailings s ON s.id = cp.sailing_id WHERE s.end_date < $1),
			(SELECT count(*) FROM catalog.sync_raw sr JOIN catalog.sailings s ON s.provider_id = sr.provider_sailing_id WHERE s.end_date < $1)
	`
	if err := s.pool.QueryRow(ctx, related, cutoff).Scan(&c.Regions, &c.Stops, &c.CabinPrices, &c.RawPayloads); err != nil {
		return PastSailingCounts{}, fmt.Errorf("previewing past sailing relations: %w", err)
	}
	return c, nil
}

// DeletePastSailings removes past sailings and their dependents in the
// order §4.6 specifies: SailingRegion, SailingStop, SailingCabinPrice,
// SyncRaw (via provider identifier), then Sailing.
func (s *Store) DeletePastSailings(ctx context.Context, cutoff time.Time) (PastSailingCounts, error) {
	var c PastSailingCounts
	return s.deletePastSailingsTx(ctx, cutoff, &c)
}

func (s *Store) deletePastSailingsTx(ctx context.Context, cutoff time.Time, c *PastSailingCounts) (PastSailingCounts, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return PastSailingCounts{}, fmt.Errorf("beginning cleanup transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	run := func(query string, out *int64) error {
		tag, err := tx.Exec(ctx, query, cutoff)
		if err != nil {
			return err
		}
		*out = tag.RowsAffected()
		return nil
	}

	if err := run(`DELETE FROM catalog.sailing_regions sr USING catalog.sailings s
		WHERE s.id = sr.sailing_id AND s.end_date < $1`, &c.Regions); err != nil {
		return PastSailingCounts{}, fmt.Errorf("deleting sailing regions: %w", err)
	}
	if err := run(`DELETE FROM catalog.sailing_stops st USING catalog.sailings s
		WHERE s.id = st.sailing_id AND s.end_date < $1`, &c.Stops); err != nil {
		return PastSailingCounts{}, fmt.Errorf("deleting sailing stops: %w", err)
	}
	if err := run(`DELETE FROM catalog.sailing_cabin_prices cp USING catalog.sailings s
		WHERE s.id = cp.sailing_id AND s.end_date < $1`, &c.CabinPrices); err != nil {
		return PastSailingCounts{}, fmt.Errorf("deleting cabin prices: %w", err)
	}
	if err := run(`DELETE FROM catalog.sync_raw sr USING catalog.sailings s
		WHERE s.provider_id = sr.provider_sailing_id AND s.end_date < $1`, &c.RawPayloads); err != nil {
		return PastSailingCounts{}, fmt.Errorf("deleting raw payloads: %w", err)
	}
	if err := run(`DELETE FROM catalog.sailings WHERE end_date < $1`, &c.Sailings); err != nil {
		return PastSailingCounts{}, fmt.Errorf("deleting past sailings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return PastSailingCounts{}, fmt.Errorf("committing cleanup transaction: %w", err)
	}
	return *c, nil
}

// StubCounts tallies needs_review rows by entity kind (§4.6 stub report).
type StubCounts struct {
	CruiseLines int64
	Ships       int64
	Ports       int64
	Regions     int64
}

// StubReportCounts aggregates needs_review counts across the four entity
// kinds.
func (s *Store) StubReportCounts(ctx context.Context) (StubCounts, error) {
	var c StubCounts
	const query = `SELECT
		(SELECT count(*) FROM catalog.cruise_lines WHERE needs_review),
		(SELECT count(*) FROM catalog.ships WHERE needs_review),
		(SELECT count(*) FROM catalog.ports WHERE needs_review),
		(SELECT count(*) FROM catalog.regions WHERE needs_review)`
	if err := s.pool.QueryRow(ctx, query).Scan(&c.CruiseLines, &c.Ships, &c.Ports, &c.Regions); err != nil {
		return StubCounts{}, fmt.Errorf("computing stub counts: %w", err)
	}
	return c, nil
}

// StubRow is one oldest-needs-review entry surfaced by the stub report.
type StubRow struct {
	Kind      string
	Name      string
	CreatedAt time.Time
}

// OldestStubs returns the oldest limit needs_review rows across all four
// kinds, oldest first (§4.6 stub report).
func (s *Store) OldestStubs(ctx context.Context, limit int) ([]StubRow, error) {
	const query = `
		(SELECT 'cruise_line' AS kind, name, created_at FROM catalog.cruise_lines WHERE needs_review)
		UNION ALL
		(SELECT 'ship', name, created_at FROM catalog.ships WHERE needs_review)
		UNION ALL
		(SELECT 'port', name, created_at FROM catalog.ports WHERE needs_review)
		UNION ALL
		(SELECT 'region', name, created_at FROM catalog.regions WHERE needs_review)
		ORDER BY created_at ASC LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing oldest stubs: %w", err)
	}
	defer rows.Close()

	var out []StubRow
	for rows.Next() {
		var r StubRow
		if err := rows.Scan(&r.Kind, &r.Name, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning stub row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CoverageStats backs the coverage-stats endpoint (§4.6).
type CoverageStats struct {
	ShipsWithImage       int64
	ShipsWithDeckPlans   int64
	ShipsNeedsReview     int64
	LinesWithLogo        int64
	LinesNeedsReview     int64
	PortsTotal           int64
	PortsActive          int64
	PortsWithCoordinates int64
	PortsNeedsReview     int64
	RegionsTotal         int64
	RegionsNeedsReview   int64
	SailingsTotal        int64
	SailingsActiveFuture int64
}

// CoverageStats computes the coverage-dashboard numbers.
func (s *Store) CoverageStats(ctx context.Context) (CoverageStats, error) {
	var c CoverageStats
	const query = `SELECT
		(SELECT count(*) FROM catalog.ships WHERE image_url <> ''),
		(SELECT count(DISTINCT ship_id) FROM catalog.ship_decks),
		(SELECT count(*) FROM catalog.ships WHERE needs_review),
		(SELECT count(*) FROM catalog.cruise_lines WHERE logo <> ''),
		(SELECT count(*) FROM catalog.cruise_lines WHERE needs_review),
		(SELECT count(*) FROM catalog.ports),
		(SELECT count(DISTINCT port_id) FROM catalog.sailing_stops WHERE port_id IS NOT NULL),
		(SELECT count(*) FROM catalog.ports WHERE latitude IS NOT NULL),
		(SELECT count(*) FROM catalog.ports WHERE needs_review),
		(SELECT count(*) FROM catalog.regions),
		(SELECT count(*) FROM catalog.regions WHERE needs_review),
		(SELECT count(*) FROM catalog.sailings),
		(SELECT count(*) FROM catalog.sailings WHERE sail_date >= now())`
	err := s.pool.QueryRow(ctx, query).Scan(&c.ShipsWithImage, &c.ShipsWithDeckPlans, &c.ShipsNeedsReview,
		&c.LinesWithLogo, &c.LinesNeedsReview, &c.PortsTotal, &c.PortsActive, &c.PortsWithCoordinates,
		&c.PortsNeedsReview, &c.RegionsTotal, &c.RegionsNeedsReview, &c.SailingsTotal, &c.SailingsActiveFuture)
	if err != nil {
		return CoverageStats{}, fmt.Errorf("computing coverage stats: %w", err)
	}
	return c, nil
}
