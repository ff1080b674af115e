package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ShipHasDecks reports whether the ship already has any deck rows; decks
// are imported once per ship and never re-imported (§3.1).
func (s *Store) ShipHasDecks(ctx context.Context, q Querier, shipID uuid.UUID) (bool, error) {
	return s.exists(ctx, q, `SELECT 1 FROM catalog.ship_decks WHERE ship_id = $1 LIMIT 1`, shipID)
}

// InsertShipDeck inserts one deck row, dropping invalid cabin boxes per the
// §3.1 bounding-box invariant.
func (s *Store) InsertShipDeck(ctx context.Context, q Querier, deck ShipDeck) error {
	valid := deck.CabinBoxes[:0:0]
	for _, box := range deck.CabinBoxes {
		if box.Valid() {
			valid = append(valid, box)
		}
	}

	const query = `INSERT INTO catalog.ship_decks
		(ship_id, name, deck_number, deck_plan_url, description, display_order, cabin_boxes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if _, err := q.Exec(ctx, query, deck.ShipID, deck.Name, deck.DeckNumber, deck.DeckPlanURL,
		deck.Description, deck.DisplayOrder, marshalJSON(valid)); err != nil {
		return fmt.Errorf("inserting ship deck: %w", err)
	}
	return nil
}

// ShipHasCabinTypes reports whether the ship already has cabin-type rows;
// cabin types are imported once per ship (§4.3 step 5).
func (s *Store) ShipHasCabinTypes(ctx context.Context, q Querier, shipID uuid.UUID) (bool, error) {
	return s.exists(ctx, q, `SELECT 1 FROM catalog.ship_cabin_types WHERE ship_id = $1 LIMIT 1`, shipID)
}

// InsertCabinType inserts one cabin-type row and returns its ID.
func (s *Store) InsertCabinType(ctx context.Context, q Querier, ct ShipCabinType) (uuid.UUID, error) {
	const query = `INSERT INTO catalog.ship_cabin_types
		(ship_id, cabin_code, cabin_category, name, description, image_url, image_url_hd,
		 image_url_2k, colour_code, decks, additional_images)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (ship_id, cabin_code) DO NOTHING
		RETURNING id`
	var id uuid.UUID
	err := q.QueryRow(ctx, query, ct.ShipID, ct.CabinCode, ct.CabinCategory, ct.Name, ct.Description,
		ct.ImageURL, ct.ImageURLHD, ct.ImageURL2K, ct.ColourCode, ct.Decks, ct.AdditionalImages).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting cabin type: %w", err)
	}
	return id, nil
}

// CabinTypeByCode looks up a ship's cabin type by code, for detailed cabin
// price category resolution (§4.3 step 7).
func (s *Store) CabinTypeByCode(ctx context.Context, q Querier, shipID uuid.UUID, code string) (uuid.UUID, CabinCategory, bool, error) {
	const query = `SELECT id, cabin_category FROM catalog.ship_cabin_types WHERE ship_id = $1 AND cabin_code = $2`
	var id uuid.UUID
	var cat CabinCategory
	err := q.QueryRow(ctx, query, shipID, code).Scan(&id, &cat)
	if err != nil {
		if isNoRows(err) {
			return uuid.Nil, "", false, nil
		}
		return uuid.Nil, "", false, fmt.Errorf("looking up cabin type: %w", err)
	}
	return id, cat, true, nil
}

// ShipHasCabinImages reports whether any of the ship's cabin types already
// have images; cabin images are imported once per ship (§4.3 step 8).
func (s *Store) ShipHasCabinImages(ctx context.Context, q Querier, shipID uuid.UUID) (bool, error) {
	const query = `SELECT 1 FROM catalog.cabin_images ci
		JOIN catalog.ship_cabin_types ct ON ct.id = ci.cabin_type_id
		WHERE ct.ship_id = $1 LIMIT 1`
	return s.exists(ctx, q, query, shipID)
}

// InsertCabinImage inserts one cabin image row, ignoring conflicts
// (§4.3 step 8).
func (s *Store) InsertCabinImage(ctx context.Context, q Querier, img CabinImage) error {
	const query = `INSERT INTO catalog.cabin_images
		(cabin_type_id, image_url, image_url_hd, image_url_2k, caption, display_order, is_default)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (cabin_type_id, display_order) DO NOTHING`
	if _, err := q.Exec(ctx, query, img.CabinTypeID, img.ImageURL, img.ImageURLHD, img.ImageURL2K,
		img.Caption, img.DisplayOrder, img.IsDefault); err != nil {
		return fmt.Errorf("inserting cabin image: %w", err)
	}
	return nil
}

func (s *Store) exists(ctx context.Context, q Querier, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRow(ctx, query, args...).Scan(&one)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking existence: %w", err)
	}
	return true, nil
}
