// Package upsert implements the Sailing Upsert Engine (C3): the per-file
// idempotent write path described in spec.md §4.3. Each call to Run
// resolves reference entities (creating stubs where needed), upserts the
// sailing row, and replaces its stops, prices, images, and alternates in a
// single database transaction.
package upsert

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cruiseops/cruisesync/pkg/catalog"
	"github.com/cruiseops/cruisesync/pkg/refcache"
	"github.com/cruiseops/cruisesync/pkg/vendorpayload"
)

// Provider is the fixed provider tag stamped on every catalog row this
// engine writes; the ingestion pipeline has exactly one upstream provider
// (spec.md §3.1's "(provider, providerIdentifier)" natural key).
const Provider = "traveltek"

// Result reports the outcome of one sailing upsert (§4.3).
type Result struct {
	IsNew        bool
	StopCount    int
	HasAnyPrice  bool
	StubsCreated map[string]int
}

// addStub increments the stub counter for kind, initializing the map lazily
// so a zero-value Result stays usable.
func (r *Result) addStub(kind string) {
	if r.StubsCreated == nil {
		r.StubsCreated = make(map[string]int)
	}
	r.StubsCreated[kind]++
}

// Engine runs the Sailing Upsert Engine against a catalog store and
// reference cache.
type Engine struct {
	store *catalog.Store
	cache *refcache.Cache
}

// New creates an Engine backed by store and cache.
func New(store *catalog.Store, cache *refcache.Cache) *Engine {
	return &Engine{store: store, cache: cache}
}

// Run executes the full §4.3 algorithm for one parsed sailing inside a
// single transaction. raw is the original JSON bytes, if the caller wants
// them cached (may be nil).
func (e *Engine) Run(ctx context.Context, p *vendorpayload.Payload, raw []byte) (Result, error) {
	var result Result

	err := e.store.WithTx(ctx, func(tx pgx.Tx) error {
		refs, err := e.resolveReferences(ctx, tx, p, &result)
		if err != nil {
			return fmt.Errorf("resolving references: %w", err)
		}

		sailingParams := catalog.SailingParams{
			Provider:          Provider,
			ProviderID:        p.PathCode,
			ShipID:            refs.shipID,
			CruiseLineID:      refs.cruiseLineID,
			EmbarkPortID:      refs.embarkPortID,
			DisembarkPortID:   refs.disembarkPortID,
			EmbarkPortName:    portName(p, p.StartPortID),
			DisembarkPortName: portName(p, p.EndPortID),
			Name:              p.Name,
			SailDate:          parseDate(p.SailDate),
			Nights:            int(p.Nights),
			SeaDays:           int(p.SeaDays),
			VoyageCode:        p.VoyageCode,
			MarketID:          p.MarketID,
			NoFly:             p.NoFly,
			DepartUK:          p.DepartUK,
		}

		sailing, isNew, err := e.store.UpsertSailing(ctx, tx, sailingParams)
		if err != nil {
			return err
		}
		result.IsNew = isNew

		if refs.regionID != uuid.Nil {
			if err := e.store.SetPrimaryRegion(ctx, tx, sailing.ID, refs.regionID); err != nil {
				return err
			}
		}

		stops, err := e.buildStops(ctx, tx, p, &result)
		if err != nil {
			return fmt.Errorf("building stops: %w", err)
		}
		if err := e.store.ReplaceStops(ctx, tx, sailing.ID, stops); err != nil {
			return err
		}
		result.StopCount = len(stops)

		if err := e.ensureDecks(ctx, tx, refs.shipID, p); err != nil {
			return fmt.Errorf("ensuring decks: %w", err)
		}

		if err := e.ensureCabinTypes(ctx, tx, refs.shipID, p); err != nil {
			return fmt.Errorf("ensuring cabin types: %w", err)
		}

		cheapest := p.CheapestPrices()
		if err := e.store.UpdateCheapestPrices(ctx, tx, sailing.ID, toCheapestPrices(cheapest)); err != nil {
			return err
		}
		result.HasAnyPrice = len(cheapest) > 0

		if err := e.replaceCabinPrices(ctx, tx, sailing.ID, refs.shipID, p); err != nil {
			return fmt.Errorf("replacing cabin prices: %w", err)
		}

		if err := e.ensureCabinImages(ctx, tx, refs.shipID, p); err != nil {
			return fmt.Errorf("ensuring cabin images: %w", err)
		}

		if err := e.insertAlternateSailings(ctx, tx, sailing.ID, p); err != nil {
			return fmt.Errorf("inserting alternate sailings: %w", err)
		}

		if raw != nil {
			if err := e.store.UpsertRawPayload(ctx, tx, p.PathCode, raw); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func portName(p *vendorpayload.Payload, portID string) string {
	if info, ok := p.Ports[portID]; ok {
		return info.Name
	}
	return ""
}

// parseDate parses a vendor date string (YYYY-MM-DD, optionally with a
// time component) into a UTC time. An unparseable date yields the zero
// time; the caller still proceeds since §4.3 has no explicit validation
// step for this field beyond the endDate invariant.
func parseDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// toMinorUnits converts a major-currency float to minor units by
// round(x * 100), per §4.3 steps 6-7 and 9.
func toMinorUnits(v float64) int64 {
	return int64(math.Round(v * 100))
}

func toCheapestPrices(m map[string]float64) catalog.CheapestPrices {
	var c catalog.CheapestPrices
	set := func(key string) *int64 {
		if v, ok := m[key]; ok {
			cents := toMinorUnits(v)
			return &cents
		}
		return nil
	}
	c.InsideCents = set("inside")
	c.OutsideCents = set("outside")
	c.BalconyCents = set("balcony")
	c.SuiteCents = set("suite")
	return c
}

// cabinCategoryFromCodType normalizes a raw codtype string using
// case-insensitive substring matching, per §4.3 step 5.
func cabinCategoryFromCodType(codType string) catalog.CabinCategory {
	lower := strings.ToLower(codType)
	switch {
	case strings.Contains(lower, "inside"), strings.Contains(lower, "interior"):
		return catalog.CabinInside
	case strings.Contains(lower, "ocean"), strings.Contains(lower, "outside"):
		return catalog.CabinOceanview
	case strings.Contains(lower, "balcon"), strings.Contains(lower, "verand"):
		return catalog.CabinBalcony
	case strings.Contains(lower, "suite"):
		return catalog.CabinSuite
	default:
		return catalog.CabinOther
	}
}

// cabinCategoryFromCodePrefix infers a category from the first two
// upper-cased characters of a cabin code, per §4.3 step 7's fallback table.
var codePrefixCategory = map[string]catalog.CabinCategory{
	"IN": catalog.CabinInside,
	"IS": catalog.CabinInside,
	"OV": catalog.CabinOceanview,
	"OC": catalog.CabinOceanview,
	"BA": catalog.CabinBalcony,
	"BL": catalog.CabinBalcony,
	"SU": catalog.CabinSuite,
	"ST": catalog.CabinSuite,
}

func cabinCategoryFromCodePrefix(code string) catalog.CabinCategory {
	upper := strings.ToUpper(code)
	if len(upper) >= 2 {
		if cat, ok := codePrefixCategory[upper[:2]]; ok {
			return cat
		}
	}
	return catalog.CabinOther
}

// atoiOrDefault parses s as a 1-based integer, falling back to def when s is
// empty or unparseable (§4.3 step 4).
func atoiOrDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
