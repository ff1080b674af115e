package upsert

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cruiseops/cruisesync/pkg/catalog"
	"github.com/cruiseops/cruisesync/pkg/vendorpayload"
)

// ensureDecks imports a ship's deck plans and their cabin bounding boxes.
// Decks are imported once per ship and never re-imported (§3.1).
func (e *Engine) ensureDecks(ctx context.Context, tx pgx.Tx, shipID uuid.UUID, p *vendorpayload.Payload) error {
	has, err := e.store.ShipHasDecks(ctx, tx, shipID)
	if err != nil || has {
		return err
	}

	keys := make([]string, 0, len(p.ShipContent.ShipDecks))
	for k := range p.ShipContent.ShipDecks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, key := range keys {
		entry := p.ShipContent.ShipDecks[key]

		deck := catalog.ShipDeck{
			ShipID:       shipID,
			Name:         entry.DeckName,
			DeckNumber:   atoiOrDefault(key, i+1),
			DeckPlanURL:  entry.PlanImage,
			Description:  entry.Description,
			DisplayOrder: i,
			CabinBoxes:   cabinBoxesFrom(entry.CabinLocations),
		}
		if err := e.store.InsertShipDeck(ctx, tx, deck); err != nil {
			return err
		}
	}
	return nil
}

// cabinBoxesFrom converts a deck's cabinlocations map into a deterministically
// ordered slice of CabinBox. Invalid boxes are dropped by InsertShipDeck, not
// here, so the §3.1 property is exercised at the store boundary.
func cabinBoxesFrom(locations map[string]vendorpayload.CabinLocation) []catalog.CabinBox {
	keys := make([]string, 0, len(locations))
	for k := range locations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	boxes := make([]catalog.CabinBox, 0, len(locations))
	for _, key := range keys {
		loc := locations[key]
		cabinID := loc.CabinID
		if cabinID == "" {
			cabinID = key
		}
		boxes = append(boxes, catalog.CabinBox{CabinID: cabinID, X1: loc.X1, Y1: loc.Y1, X2: loc.X2, Y2: loc.Y2})
	}
	return boxes
}
