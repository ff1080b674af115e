package upsert

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cruiseops/cruisesync/pkg/catalog"
	"github.com/cruiseops/cruisesync/pkg/vendorpayload"
)

// insertAlternateSailings implements §4.3 step 9. alternateSailingId is
// always left null here; BackfillAlternateSailings fills it in after the
// batch completes (§4.5).
func (e *Engine) insertAlternateSailings(ctx context.Context, tx pgx.Tx, sailingID uuid.UUID, p *vendorpayload.Payload) error {
	if len(p.AltSailings) == 0 {
		return nil
	}

	alts := make([]catalog.AlternateSailing, 0, len(p.AltSailings))
	for _, a := range p.AltSailings {
		alts = append(alts, catalog.AlternateSailing{
			AlternateProviderIdentifier: a.ID,
			AlternateSailDate:           parseDate(a.SailDate),
			AlternateNights:             int(a.Nights),
			AlternateLeadPriceCents:     toMinorUnits(a.CheapestPrice),
		})
	}

	return e.store.InsertAlternateSailings(ctx, tx, sailingID, Provider, alts)
}
