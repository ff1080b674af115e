package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// CruiseLineStub is the metadata available when creating or enriching a
// cruise line stub (§4.3 step 1).
type CruiseLineStub struct {
	Name        string
	Logo        string
	Description string
	Code        string
	ShortName   string
}

// GetCruiseLineByProvider looks up a cruise line by its natural key.
func (s *Store) GetCruiseLineByProvider(ctx context.Context, q Querier, provider, providerID string) (CruiseLine, bool, error) {
	const query = `SELECT id, provider, provider_id, name, slug, logo, description, code,
		short_name, website, needs_review, auto_created, created_at, updated_at
		FROM catalog.cruise_lines WHERE provider = $1 AND provider_id = $2`
	row := q.QueryRow(ctx, query, provider, providerID)
	cl, err := scanCruiseLine(row)
	return cl, err == nil, ignoreNoRows(err)
}

// InsertCruiseLineStub inserts a new cruise line row; on a concurrent
// conflict it returns ok=false so the caller can re-select (§4.3 step 1).
func (s *Store) InsertCruiseLineStub(ctx context.Context, q Querier, provider, providerID, slug string, stub CruiseLineStub) (CruiseLine, bool, error) {
	needsReview := stub.Name == ""
	const query = `INSERT INTO catalog.cruise_lines
		(provider, provider_id, name, slug, logo, description, code, short_name, needs_review, auto_created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true)
		ON CONFLICT (provider, provider_id) DO NOTHING
		RETURNING id, provider, provider_id, name, slug, logo, description, code,
			short_name, website, needs_review, auto_created, created_at, updated_at`
	name := stub.Name
	if name == "" {
		name = providerID
	}
	row := q.QueryRow(ctx, query, provider, providerID, name, slug, stub.Logo, stub.Description, stub.Code, stub.ShortName, needsReview)
	cl, err := scanCruiseLine(row)
	if err != nil {
		return CruiseLine{}, false, ignoreNoRows(err)
	}
	return cl, true, nil
}

// EnrichCruiseLine merges rich content into a stub, but only for fields the
// row still lacks (§4.3 step 1 conditional update).
func (s *Store) EnrichCruiseLine(ctx context.Context, q Querier, id uuid.UUID, stub CruiseLineStub) error {
	const query = `UPDATE catalog.cruise_lines SET
		logo = CASE WHEN logo = '' THEN $2 ELSE logo END,
		description = CASE WHEN description = '' THEN $3 ELSE description END,
		code = CASE WHEN code = '' THEN $4 ELSE code END,
		short_name = CASE WHEN short_name = '' THEN $5 ELSE short_name END,
		needs_review = CASE WHEN needs_review AND $6 <> '' THEN false ELSE needs_review END,
		updated_at = now()
		WHERE id = $1`
	_, err := q.Exec(ctx, query, id, stub.Logo, stub.Description, stub.Code, stub.ShortName, stub.Name)
	if err != nil {
		return fmt.Errorf("enriching cruise line: %w", err)
	}
	return nil
}

func scanCruiseLine(row interface{ Scan(dest ...any) error }) (CruiseLine, error) {
	var cl CruiseLine
	err := row.Scan(&cl.ID, &cl.Provider, &cl.ProviderID, &cl.Name, &cl.Slug, &cl.Logo,
		&cl.Description, &cl.Code, &cl.ShortName, &cl.Website, &cl.NeedsReview, &cl.AutoCreated,
		&cl.CreatedAt, &cl.UpdatedAt)
	return cl, err
}

// ShipStub is the metadata available when creating or enriching a ship
// stub (§4.3 step 1).
type ShipStub struct {
	Name          string
	ShipClass     string
	ImageURL      string
	Tonnage       float64
	Occupancy     int
	Length        float64
	Code          string
	GalleryImages []GalleryImage
}

// GetShipByProvider looks up a ship by its natural key.
func (s *Store) GetShipByProvider(ctx context.Context, q Querier, provider, providerID string) (Ship, bool, error) {
	const query = `SELECT id, cruise_line_id, provider, provider_id, name, slug, ship_class,
		image_url, tonnage, occupancy, year_built, length, code, gallery_images, needs_review,
		auto_created, created_at, updated_at FROM catalog.ships WHERE provider = $1 AND provider_id = $2`
	row := q.QueryRow(ctx, query, provider, providerID)
	ship, err := scanShip(row)
	return ship, err == nil, ignoreNoRows(err)
}

// InsertShipStub inserts a new ship row, linked to cruiseLineID. Gallery
// images are normalized so at most one carries Default = true, keeping the
// §3.1 invariant.
func (s *Store) InsertShipStub(ctx context.Context, q Querier, cruiseLineID uuid.UUID, provider, providerID, slug string, stub ShipStub) (Ship, bool, error) {
	needsReview := stub.ImageURL == ""
	images := normalizeDefaultImage(stub.GalleryImages)
	const query = `INSERT INTO catalog.ships
		(cruise_line_id, provider, provider_id, name, slug, ship_class, image_url, tonnage,
		 occupancy, length, code, gallery_images, needs_review, auto_created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, true)
		ON CONFLICT (provider, provider_id) DO NOTHING
		RETURNING id, cruise_line_id, provider, provider_id, name, slug, ship_class,
			image_url, tonnage, occupancy, year_built, length, code, gallery_images, needs_review,
			auto_created, created_at, updated_at`
	name := stub.Name
	if name == "" {
		name = providerID
	}
	row := q.QueryRow(ctx, query, cruiseLineID, provider, providerID, name, slug, stub.ShipClass,
		stub.ImageURL, stub.Tonnage, stub.Occupancy, stub.Length, stub.Code, marshalJSON(images), needsReview)
	ship, err := scanShip(row)
	if err != nil {
		return Ship{}, false, ignoreNoRows(err)
	}
	return ship, true, nil
}

// EnrichShip merges rich content into a stub ship, only for fields that are
// still missing primary evidence (§4.3 step 1: needs_review true or the
// primary image missing).
func (s *Store) EnrichShip(ctx context.Context, q Querier, id uuid.UUID, stub ShipStub) error {
	images := normalizeDefaultImage(stub.GalleryImages)
	const query = `UPDATE catalog.ships SET
		image_url = CASE WHEN image_url = '' THEN $2 ELSE image_url END,
		ship_class = CASE WHEN ship_class = '' THEN $3 ELSE ship_class END,
		tonnage = CASE WHEN tonnage = 0 THEN $4 ELSE tonnage END,
		occupancy = CASE WHEN occupancy = 0 THEN $5 ELSE occupancy END,
		length = CASE WHEN length = 0 THEN $6 ELSE length END,
		code = CASE WHEN code = '' THEN $7 ELSE code END,
		gallery_images = CASE WHEN gallery_images = '[]' THEN $8 ELSE gallery_images END,
		needs_review = CASE WHEN (needs_review OR image_url = '') AND $2 <> '' THEN false ELSE needs_review END,
		updated_at = now()
		WHERE id = $1`
	_, err := q.Exec(ctx, query, id, stub.ImageURL, stub.ShipClass, stub.Tonnage, stub.Occupancy,
		stub.Length, stub.Code, marshalJSON(images))
	if err != nil {
		return fmt.Errorf("enriching ship: %w", err)
	}
	return nil
}

// normalizeDefaultImage enforces the "at most one default gallery image"
// invariant (§3.1): only the first image marked Default keeps the flag.
func normalizeDefaultImage(images []GalleryImage) []GalleryImage {
	out := make([]GalleryImage, len(images))
	copy(out, images)
	seenDefault := false
	for i := range out {
		if out[i].Default {
			if seenDefault {
				out[i].Default = false
			}
			seenDefault = true
		}
	}
	return out
}

func scanShip(row interface{ Scan(dest ...any) error }) (Ship, error) {
	var sh Ship
	var images []byte
	err := row.Scan(&sh.ID, &sh.CruiseLineID, &sh.Provider, &sh.ProviderID, &sh.Name, &sh.Slug,
		&sh.ShipClass, &sh.ImageURL, &sh.Tonnage, &sh.Occupancy, &sh.YearBuilt, &sh.Length,
		&sh.Code, &images, &sh.NeedsReview, &sh.AutoCreated, &sh.CreatedAt, &sh.UpdatedAt)
	if err == nil && len(images) > 0 {
		_ = json.Unmarshal(images, &sh.GalleryImages)
	}
	return sh, err
}

// PortStub is the metadata available when creating or enriching a port
// stub (§4.3 step 1).
type PortStub struct {
	Name             string
	Latitude         *float64
	Longitude        *float64
	Country          string
	CountryCode      string
	Description      string
	ShortDescription string
}

// GetPortByProvider looks up a port by its natural key.
func (s *Store) GetPortByProvider(ctx context.Context, q Querier, provider, providerID string) (Port, bool, error) {
	const query = `SELECT id, provider, provider_id, name, slug, latitude, longitude, country,
		country_code, description, short_description, needs_review, auto_created, created_at, updated_at
		FROM catalog.ports WHERE provider = $1 AND provider_id = $2`
	row := q.QueryRow(ctx, query, provider, providerID)
	p, err := scanPort(row)
	return p, err == nil, ignoreNoRows(err)
}

// InsertPortStub inserts a new port row. Invalid coordinates (out of range)
// must already be dropped by the caller (§3.1 invariant).
func (s *Store) InsertPortStub(ctx context.Context, q Querier, provider, providerID, slug string, stub PortStub) (Port, bool, error) {
	needsReview := stub.Latitude == nil
	const query = `INSERT INTO catalog.ports
		(provider, provider_id, name, slug, latitude, longitude, country, country_code,
		 description, short_description, needs_review, auto_created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, true)
		ON CONFLICT (provider, provider_id) DO NOTHING
		RETURNING id, provider, provider_id, name, slug, latitude, longitude, country,
			country_code, description, short_description, needs_review, auto_created, created_at, updated_at`
	name := stub.Name
	if name == "" {
		name = providerID
	}
	row := q.QueryRow(ctx, query, provider, providerID, name, slug, stub.Latitude, stub.Longitude,
		stub.Country, stub.CountryCode, stub.Description, stub.ShortDescription, needsReview)
	p, err := scanPort(row)
	if err != nil {
		return Port{}, false, ignoreNoRows(err)
	}
	return p, true, nil
}

// EnrichPort merges rich content into a stub port. Coordinates clear
// needs_review once present (§3.1 invariant).
func (s *Store) EnrichPort(ctx context.Context, q Querier, id uuid.UUID, stub PortStub) error {
	const query = `UPDATE catalog.ports SET
		latitude = CASE WHEN latitude IS NULL THEN $2 ELSE latitude END,
		longitude = CASE WHEN longitude IS NULL THEN $3 ELSE longitude END,
		country = CASE WHEN country = '' THEN $4 ELSE country END,
		country_code = CASE WHEN country_code = '' THEN $5 ELSE country_code END,
		description = CASE WHEN description = '' THEN $6 ELSE description END,
		short_description = CASE WHEN short_description = '' THEN $7 ELSE short_description END,
		needs_review = CASE WHEN latitude IS NULL AND $2 IS NOT NULL THEN false ELSE needs_review END,
		updated_at = now()
		WHERE id = $1`
	_, err := q.Exec(ctx, query, id, stub.Latitude, stub.Longitude, stub.Country, stub.CountryCode,
		stub.Description, stub.ShortDescription)
	if err != nil {
		return fmt.Errorf("enriching port: %w", err)
	}
	return nil
}

func scanPort(row interface{ Scan(dest ...any) error }) (Port, error) {
	var p Port
	err := row.Scan(&p.ID, &p.Provider, &p.ProviderID, &p.Name, &p.Slug, &p.Latitude, &p.Longitude,
		&p.Country, &p.CountryCode, &p.Description, &p.ShortDescription, &p.NeedsReview,
		&p.AutoCreated, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetRegionByProvider looks up a region by its natural key.
func (s *Store) GetRegionByProvider(ctx context.Context, q Querier, provider, providerID string) (Region, bool, error) {
	const query = `SELECT id, provider, provider_id, name, slug, needs_review, auto_created, created_at, updated_at
		FROM catalog.regions WHERE provider = $1 AND provider_id = $2`
	row := q.QueryRow(ctx, query, provider, providerID)
	r, err := scanRegion(row)
	return r, err == nil, ignoreNoRows(err)
}

// InsertRegionStub inserts a new region row.
func (s *Store) InsertRegionStub(ctx context.Context, q Querier, provider, providerID, slug, name string) (Region, bool, error) {
	needsReview := name == ""
	if name == "" {
		name = providerID
	}
	const query = `INSERT INTO catalog.regions (provider, provider_id, name, slug, needs_review, auto_created)
		VALUES ($1, $2, $3, $4, $5, true)
		ON CONFLICT (provider, provider_id) DO NOTHING
		RETURNING id, provider, provider_id, name, slug, needs_review, auto_created, created_at, updated_at`
	row := q.QueryRow(ctx, query, provider, providerID, name, slug, needsReview)
	r, err := scanRegion(row)
	if err != nil {
		return Region{}, false, ignoreNoRows(err)
	}
	return r, true, nil
}

func scanRegion(row interface{ Scan(dest ...any) error }) (Region, error) {
	var r Region
	err := row.Scan(&r.ID, &r.Provider, &r.ProviderID, &r.Name, &r.Slug, &r.NeedsReview, &r.AutoCreated, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// ignoreNoRows converts pgx.ErrNoRows into a nil error (a clean miss),
// propagating any other error.
func ignoreNoRows(err error) error {
	if err == nil || isNoRows(err) {
		return nil
	}
	return err
}
