package upsert

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cruiseops/cruisesync/pkg/catalog"
	"github.com/cruiseops/cruisesync/pkg/vendorpayload"
)

// ensureCabinTypes implements §4.3 step 5: cabin types are imported once
// per ship.
func (e *Engine) ensureCabinTypes(ctx context.Context, tx pgx.Tx, shipID uuid.UUID, p *vendorpayload.Payload) error {
	has, err := e.store.ShipHasCabinTypes(ctx, tx, shipID)
	if err != nil || has {
		return err
	}

	for code, cabin := range p.Cabins {
		cabinCode := cabin.ID
		if cabinCode == "" {
			cabinCode = code
		}
		ct := catalog.ShipCabinType{
			ShipID:           shipID,
			CabinCode:        cabinCode,
			CabinCategory:    cabinCategoryFromCodType(cabin.CodType),
			Name:             cabin.Name,
			Description:      cabin.Description,
			ImageURL:         cabin.ImageURL,
			ImageURLHD:       cabin.ImageURLHD,
			ImageURL2K:       cabin.ImageURL2K,
			ColourCode:       cabin.ColourCode,
			Decks:            cabin.AllCabinDecks,
			AdditionalImages: imageURLs(cabin.AllCabinImages),
		}
		if _, err := e.store.InsertCabinType(ctx, tx, ct); err != nil {
			return err
		}
	}
	return nil
}

func imageURLs(entries []vendorpayload.CabinImageEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.URL)
	}
	return out
}

// replaceCabinPrices implements §4.3 step 7.
func (e *Engine) replaceCabinPrices(ctx context.Context, tx pgx.Tx, sailingID, shipID uuid.UUID, p *vendorpayload.Payload) error {
	if len(p.CachedPrices) == 0 {
		return nil
	}

	prices := make([]catalog.SailingCabinPrice, 0, len(p.CachedPrices))
	for cabinCode, cp := range p.CachedPrices {
		if cp.Price <= 0 {
			continue
		}

		category := cabinCategoryFromCodePrefix(cabinCode)
		if _, cat, ok, err := e.store.CabinTypeByCode(ctx, tx, shipID, cabinCode); err != nil {
			return err
		} else if ok {
			category = cat
		}

		currency := cp.Currency
		if currency == "" {
			currency = "CAD"
		}

		prices = append(prices, catalog.SailingCabinPrice{
			SailingID:           sailingID,
			CabinCode:           cabinCode,
			CabinCategory:       category,
			Occupancy:           2,
			BasePriceCents:      toMinorUnits(cp.Price),
			TaxesCents:          0,
			OriginalCurrency:    currency,
			OriginalAmountCents: toMinorUnits(cp.Price),
			IsPerPerson:         true,
		})
	}

	return e.store.ReplaceCabinPrices(ctx, tx, sailingID, prices)
}

// ensureCabinImages implements §4.3 step 8: skipped entirely if any cabin
// type on the ship already has images.
func (e *Engine) ensureCabinImages(ctx context.Context, tx pgx.Tx, shipID uuid.UUID, p *vendorpayload.Payload) error {
	has, err := e.store.ShipHasCabinImages(ctx, tx, shipID)
	if err != nil || has {
		return err
	}

	for code, cabin := range p.Cabins {
		if len(cabin.AllCabinImages) == 0 {
			continue
		}
		cabinCode := cabin.ID
		if cabinCode == "" {
			cabinCode = code
		}

		cabinTypeID, _, ok, err := e.store.CabinTypeByCode(ctx, tx, shipID, cabinCode)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		for i, img := range cabin.AllCabinImages {
			ci := catalog.CabinImage{
				CabinTypeID:  cabinTypeID,
				ImageURL:     img.URL,
				ImageURLHD:   cabin.ImageURLHD,
				ImageURL2K:   cabin.ImageURL2K,
				Caption:      strings.TrimSpace(img.Caption),
				DisplayOrder: i,
				IsDefault:    i == 0,
			}
			if err := e.store.InsertCabinImage(ctx, tx, ci); err != nil {
				return err
			}
		}
	}
	return nil
}
