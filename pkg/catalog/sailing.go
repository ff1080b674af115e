package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SailingParams carries the fields written on every sailing upsert
// (§4.3 step 2).
type SailingParams struct {
	Provider          string
	ProviderID        string
	ShipID            uuid.UUID
	CruiseLineID      uuid.UUID
	EmbarkPortID      uuid.UUID
	DisembarkPortID   uuid.UUID
	EmbarkPortName    string
	DisembarkPortName string
	Name              string
	SailDate          time.Time
	Nights            int
	SeaDays           int
	VoyageCode        string
	MarketID          string
	NoFly             bool
	DepartUK          bool
}

// UpsertSailing inserts or updates the sailing row by natural key, and
// reports isNew per §4.3 step 2.
func (s *Store) UpsertSailing(ctx context.Context, q Querier, p SailingParams) (Sailing, bool, error) {
	endDate := p.SailDate.AddDate(0, 0, p.Nights)

	const query = `INSERT INTO catalog.sailings
		(provider, provider_id, ship_id, cruise_line_id, embark_port_id, disembark_port_id,
		 embark_port_name, disembark_port_name, name, sail_date, end_date, nights, sea_days,
		 voyage_code, market_id, no_fly, depart_uk, last_synced_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17, now())
		ON CONFLICT (provider, provider_id) DO UPDATE SET
			ship_id = EXCLUDED.ship_id,
			cruise_line_id = EXCLUDED.cruise_line_id,
			embark_port_id = EXCLUDED.embark_port_id,
			disembark_port_id = EXCLUDED.disembark_port_id,
			embark_port_name = EXCLUDED.embark_port_name,
			disembark_port_name = EXCLUDED.disembark_port_name,
			name = EXCLUDED.name,
			sail_date = EXCLUDED.sail_date,
			end_date = EXCLUDED.end_date,
			nights = EXCLUDED.nights,
			sea_days = EXCLUDED.sea_days,
			voyage_code = EXCLUDED.voyage_code,
			market_id = EXCLUDED.market_id,
			no_fly = EXCLUDED.no_fly,
			depart_uk = EXCLUDED.depart_uk,
			last_synced_at = now(),
			updated_at = now()
		RETURNING id, provider, provider_id, ship_id, cruise_line_id, embark_port_id,
			disembark_port_id, embark_port_name, disembark_port_name, name, sail_date, end_date,
			nights, sea_days, voyage_code, market_id, no_fly, depart_uk,
			cheapest_inside_cents, cheapest_outside_cents, cheapest_balcony_cents, cheapest_suite_cents,
			last_synced_at, created_at, updated_at,
			(xmax = 0) AS is_new`

	row := q.QueryRow(ctx, query, p.Provider, p.ProviderID, p.ShipID, p.CruiseLineID, p.EmbarkPortID,
		p.DisembarkPortID, p.EmbarkPortName, p.DisembarkPortName, p.Name, p.SailDate, endDate,
		p.Nights, p.SeaDays, p.VoyageCode, p.MarketID, p.NoFly, p.DepartUK)

	var sa Sailing
	var isNew bool
	err := row.Scan(&sa.ID, &sa.Provider, &sa.ProviderID, &sa.ShipID, &sa.CruiseLineID,
		&sa.EmbarkPortID, &sa.DisembarkPortID, &sa.EmbarkPortName, &sa.DisembarkPortName, &sa.Name,
		&sa.SailDate, &sa.EndDate, &sa.Nights, &sa.SeaDays, &sa.VoyageCode, &sa.MarketID, &sa.NoFly,
		&sa.DepartUK, &sa.CheapestInsideCents, &sa.CheapestOutsideCents, &sa.CheapestBalconyCents,
		&sa.CheapestSuiteCents, &sa.LastSyncedAt, &sa.CreatedAt, &sa.UpdatedAt, &isNew)
	if err != nil {
		return Sailing{}, false, fmt.Errorf("upserting sailing: %w", err)
	}
	return sa, isNew, nil
}

// SetPrimaryRegion links a sailing to its first resolved region, ignoring
// conflicts (§4.3 step 3).
func (s *Store) SetPrimaryRegion(ctx context.Context, q Querier, sailingID, regionID uuid.UUID) error {
	const query = `INSERT INTO catalog.sailing_regions (sailing_id, region_id, is_primary)
		VALUES ($1, $2, true) ON CONFLICT (sailing_id, region_id) DO NOTHING`
	if _, err := q.Exec(ctx, query, sailingID, regionID); err != nil {
		return fmt.Errorf("linking primary region: %w", err)
	}
	return nil
}

// ReplaceStops deletes and reinserts a sailing's stops (§4.3 step 4).
func (s *Store) ReplaceStops(ctx context.Context, q Querier, sailingID uuid.UUID, stops []SailingStop) error {
	if _, err := q.Exec(ctx, `DELETE FROM catalog.sailing_stops WHERE sailing_id = $1`, sailingID); err != nil {
		return fmt.Errorf("clearing sailing stops: %w", err)
	}

	const query = `INSERT INTO catalog.sailing_stops
		(sailing_id, port_id, port_name, is_sea_day, day_number, sequence_order, arrival_time, departure_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, stop := range stops {
		if _, err := q.Exec(ctx, query, sailingID, stop.PortID, stop.PortName, stop.IsSeaDay,
			stop.DayNumber, stop.SequenceOrder, stop.ArrivalTime, stop.DepartureTime); err != nil {
			return fmt.Errorf("inserting sailing stop: %w", err)
		}
	}
	return nil
}

// CheapestPrices holds the four per-category minor-unit summaries written
// onto a sailing (§4.3 step 6).
type CheapestPrices struct {
	InsideCents  *int64
	OutsideCents *int64
	BalconyCents *int64
	SuiteCents   *int64
}

// UpdateCheapestPrices writes the four cheapest-by-category summary fields
// (§4.3 step 6).
func (s *Store) UpdateCheapestPrices(ctx context.Context, q Querier, sailingID uuid.UUID, p CheapestPrices) error {
	const query = `UPDATE catalog.sailings SET
		cheapest_inside_cents = $2, cheapest_outside_cents = $3,
		cheapest_balcony_cents = $4, cheapest_suite_cents = $5, updated_at = now()
		WHERE id = $1`
	_, err := q.Exec(ctx, query, sailingID, p.InsideCents, p.OutsideCents, p.BalconyCents, p.SuiteCents)
	if err != nil {
		return fmt.Errorf("updating cheapest prices: %w", err)
	}
	return nil
}

// ReplaceCabinPrices deletes and reinserts a sailing's detailed cabin
// prices (§4.3 step 7).
func (s *Store) ReplaceCabinPrices(ctx context.Context, q Querier, sailingID uuid.UUID, prices []SailingCabinPrice) error {
	if _, err := q.Exec(ctx, `DELETE FROM catalog.sailing_cabin_prices WHERE sailing_id = $1`, sailingID); err != nil {
		return fmt.Errorf("clearing cabin prices: %w", err)
	}

	const query = `INSERT INTO catalog.sailing_cabin_prices
		(sailing_id, cabin_code, cabin_category, occupancy, base_price_cents, taxes_cents,
		 original_currency, original_amount_cents, is_per_person)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	for _, p := range prices {
		if _, err := q.Exec(ctx, query, sailingID, p.CabinCode, p.CabinCategory, p.Occupancy,
			p.BasePriceCents, p.TaxesCents, p.OriginalCurrency, p.OriginalAmountCents, p.IsPerPerson); err != nil {
			return fmt.Errorf("inserting cabin price: %w", err)
		}
	}
	return nil
}

// InsertAlternateSailings inserts one row per alternate entry (§4.3 step 9).
// alternateSailingId is always left null here; BackfillAlternateSailings
// fills it in later (§4.5).
func (s *Store) InsertAlternateSailings(ctx context.Context, q Querier, sailingID uuid.UUID, provider string, alts []AlternateSailing) error {
	const query = `INSERT INTO catalog.alternate_sailings
		(sailing_id, provider, alternate_provider_identifier, alternate_sail_date, alternate_nights, alternate_lead_price_cents)
		VALUES ($1,$2,$3,$4,$5,$6)`
	for _, a := range alts {
		if _, err := q.Exec(ctx, query, sailingID, provider, a.AlternateProviderIdentifier,
			a.AlternateSailDate, a.AlternateNights, a.AlternateLeadPriceCents); err != nil {
			return fmt.Errorf("inserting alternate sailing: %w", err)
		}
	}
	return nil
}

// BackfillAlternateSailings links alternate_sailings rows whose alternate
// now exists as a real sailing row, for alternates still missing the FK
// (§4.5 post-batch backfill, the resolved Open Question on when this runs).
func (s *Store) BackfillAlternateSailings(ctx context.Context, provider string) (int64, error) {
	const query = `UPDATE catalog.alternate_sailings a
		SET alternate_sailing_id = s.id
		FROM catalog.sailings s
		WHERE a.alternate_sailing_id IS NULL
		  AND a.provider = $1
		  AND s.provider = $1
		  AND s.provider_id = a.alternate_provider_identifier`
	tag, err := s.pool.Exec(ctx, query, provider)
	if err != nil {
		return 0, fmt.Errorf("backfilling alternate sailings: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpsertRawPayload writes the opaque raw JSON cache entry (§4.3 step 10).
func (s *Store) UpsertRawPayload(ctx context.Context, q Querier, providerSailingID string, raw []byte) error {
	const query = `INSERT INTO catalog.sync_raw (provider_sailing_id, raw_data, synced_at, expires_at)
		VALUES ($1, $2, now(), now() + interval '30 days')
		ON CONFLICT (provider_sailing_id) DO UPDATE SET
			raw_data = EXCLUDED.raw_data, synced_at = now(), expires_at = now() + interval '30 days'`
	if _, err := q.Exec(ctx, query, providerSailingID, raw); err != nil {
		return fmt.Errorf("upserting raw payload: %w", err)
	}
	return nil
}
