package upsert

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cruiseops/cruisesync/pkg/catalog"
	"github.com/cruiseops/cruisesync/pkg/refcache"
	"github.com/cruiseops/cruisesync/pkg/vendorpayload"
)

// resolvedRefs holds the internal IDs resolved during §4.3 step 1.
type resolvedRefs struct {
	cruiseLineID    uuid.UUID
	shipID          uuid.UUID
	embarkPortID    uuid.UUID
	disembarkPortID uuid.UUID
	regionID        uuid.UUID
}

func (e *Engine) resolveReferences(ctx context.Context, tx pgx.Tx, p *vendorpayload.Payload, result *Result) (resolvedRefs, error) {
	var refs resolvedRefs

	cruiseLineID, err := e.resolveCruiseLine(ctx, tx, p, result)
	if err != nil {
		return refs, err
	}
	refs.cruiseLineID = cruiseLineID

	shipID, err := e.resolveShip(ctx, tx, cruiseLineID, p, result)
	if err != nil {
		return refs, err
	}
	refs.shipID = shipID

	embarkID, err := e.resolvePort(ctx, tx, p.StartPortID, p, result)
	if err != nil {
		return refs, err
	}
	refs.embarkPortID = embarkID

	disembarkID, err := e.resolvePort(ctx, tx, p.EndPortID, p, result)
	if err != nil {
		return refs, err
	}
	refs.disembarkPortID = disembarkID

	if regionIDs := p.RegionIDs(); len(regionIDs) > 0 {
		regionID, err := e.resolveRegion(ctx, tx, regionIDs[0], p, result)
		if err != nil {
			return refs, err
		}
		refs.regionID = regionID
	}

	// Resolve every port the payload mentions, not just embark/disembark:
	// a port referenced only by the itinerary or only by the `ports` map
	// would otherwise never get a catalog row until some later sailing
	// happens to reference it as a stop. resolvePort is cache-backed, so
	// embark/disembark/itinerary ports resolved elsewhere are a cheap hit.
	for _, portID := range p.AllPortIDs() {
		if _, err := e.resolvePort(ctx, tx, portID, p, result); err != nil {
			return refs, err
		}
	}

	return refs, nil
}

func (e *Engine) resolveCruiseLine(ctx context.Context, tx pgx.Tx, p *vendorpayload.Payload, result *Result) (uuid.UUID, error) {
	providerID := p.PathCruiseLineID
	if id, ok := e.cache.Get(refcache.KindCruiseLine, providerID); ok {
		return id, nil
	}

	stub := cruiseLineStubFrom(p)

	cl, found, err := e.store.GetCruiseLineByProvider(ctx, tx, Provider, providerID)
	if err != nil {
		return uuid.Nil, err
	}

	if !found {
		inserted, ok, err := e.store.InsertCruiseLineStub(ctx, tx, Provider, providerID, slugify(providerID, stub.Name), stub)
		if err != nil {
			return uuid.Nil, err
		}
		if ok {
			cl = inserted
			result.addStub(string(refcache.KindCruiseLine))
		} else {
			cl, found, err = e.store.GetCruiseLineByProvider(ctx, tx, Provider, providerID)
			if err != nil {
				return uuid.Nil, err
			}
			if !found {
				return uuid.Nil, fmt.Errorf("cruise line %s vanished after insert conflict", providerID)
			}
		}
	} else if stub.Name != "" {
		if err := e.store.EnrichCruiseLine(ctx, tx, cl.ID, stub); err != nil {
			return uuid.Nil, err
		}
	}

	e.cache.Set(refcache.KindCruiseLine, providerID, cl.ID)
	return cl.ID, nil
}

func cruiseLineStubFrom(p *vendorpayload.Payload) catalog.CruiseLineStub {
	lc := p.LineContent
	return catalog.CruiseLineStub{
		Name:        lc.ShortName,
		Logo:        lc.Logo,
		Description: lc.Description,
		Code:        lc.Code,
		ShortName:   lc.ShortName,
	}
}

func (e *Engine) resolveShip(ctx context.Context, tx pgx.Tx, cruiseLineID uuid.UUID, p *vendorpayload.Payload, result *Result) (uuid.UUID, error) {
	providerID := p.PathShipID
	if id, ok := e.cache.Get(refcache.KindShip, providerID); ok {
		return id, nil
	}

	stub := shipStubFrom(p)

	ship, found, err := e.store.GetShipByProvider(ctx, tx, Provider, providerID)
	if err != nil {
		return uuid.Nil, err
	}

	if !found {
		inserted, ok, err := e.store.InsertShipStub(ctx, tx, cruiseLineID, Provider, providerID, slugify(providerID, stub.Name), stub)
		if err != nil {
			return uuid.Nil, err
		}
		if ok {
			ship = inserted
			result.addStub(string(refcache.KindShip))
		} else {
			ship, found, err = e.store.GetShipByProvider(ctx, tx, Provider, providerID)
			if err != nil {
				return uuid.Nil, err
			}
			if !found {
				return uuid.Nil, fmt.Errorf("ship %s vanished after insert conflict", providerID)
			}
		}
	} else if ship.NeedsReview || ship.ImageURL == "" {
		if err := e.store.EnrichShip(ctx, tx, ship.ID, stub); err != nil {
			return uuid.Nil, err
		}
	}

	e.cache.Set(refcache.KindShip, providerID, ship.ID)
	return ship.ID, nil
}

func shipStubFrom(p *vendorpayload.Payload) catalog.ShipStub {
	sc := p.ShipContent
	images := make([]catalog.GalleryImage, 0, len(sc.ShipImages))
	for _, img := range sc.ShipImages {
		images = append(images, catalog.GalleryImage{
			URL: img.ImageURL, HD: img.ImageURLHD, TwoK: img.ImageURL2K,
			Caption: img.Caption, Default: img.Default,
		})
	}

	imageURL := sc.DefaultShipImage
	if imageURL == "" && len(images) > 0 {
		imageURL = images[0].URL
	}

	return catalog.ShipStub{
		Name:          "",
		ShipClass:     sc.ShipClass,
		ImageURL:      imageURL,
		Tonnage:       sc.Tonnage,
		Occupancy:     int(sc.Occupancy),
		Length:        sc.Length,
		Code:          sc.Code,
		GalleryImages: images,
	}
}

func (e *Engine) resolvePort(ctx context.Context, tx pgx.Tx, providerID string, p *vendorpayload.Payload, result *Result) (uuid.UUID, error) {
	if providerID == "" {
		return uuid.Nil, nil
	}
	if id, ok := e.cache.Get(refcache.KindPort, providerID); ok {
		return id, nil
	}

	stub := portStubFrom(p, providerID)

	port, found, err := e.store.GetPortByProvider(ctx, tx, Provider, providerID)
	if err != nil {
		return uuid.Nil, err
	}

	if !found {
		inserted, ok, err := e.store.InsertPortStub(ctx, tx, Provider, providerID, slugify(providerID, stub.Name), stub)
		if err != nil {
			return uuid.Nil, err
		}
		if ok {
			port = inserted
			result.addStub(string(refcache.KindPort))
		} else {
			port, found, err = e.store.GetPortByProvider(ctx, tx, Provider, providerID)
			if err != nil {
				return uuid.Nil, err
			}
			if !found {
				return uuid.Nil, fmt.Errorf("port %s vanished after insert conflict", providerID)
			}
		}
	} else if stub.Latitude != nil {
		if err := e.store.EnrichPort(ctx, tx, port.ID, stub); err != nil {
			return uuid.Nil, err
		}
	}

	e.cache.Set(refcache.KindPort, providerID, port.ID)
	return port.ID, nil
}

// portStubFrom builds a PortStub from the payload's ports map, dropping
// out-of-range coordinates silently per §3.1/§4.3 step 1.
func portStubFrom(p *vendorpayload.Payload, providerID string) catalog.PortStub {
	info, ok := p.Ports[providerID]
	if !ok {
		return catalog.PortStub{}
	}

	stub := catalog.PortStub{
		Name:             info.Name,
		Country:          info.Country,
		CountryCode:      info.CountryCode,
		Description:      info.Description,
		ShortDescription: info.ShortDescription,
	}
	if info.Latitude != nil && info.Longitude != nil && catalog.ValidCoordinates(*info.Latitude, *info.Longitude) {
		stub.Latitude = info.Latitude
		stub.Longitude = info.Longitude
	}
	return stub
}

func (e *Engine) resolveRegion(ctx context.Context, tx pgx.Tx, providerID string, p *vendorpayload.Payload, result *Result) (uuid.UUID, error) {
	if id, ok := e.cache.Get(refcache.KindRegion, providerID); ok {
		return id, nil
	}

	name := p.Regions[providerID]

	region, found, err := e.store.GetRegionByProvider(ctx, tx, Provider, providerID)
	if err != nil {
		return uuid.Nil, err
	}

	if !found {
		inserted, ok, err := e.store.InsertRegionStub(ctx, tx, Provider, providerID, slugify(providerID, name), name)
		if err != nil {
			return uuid.Nil, err
		}
		if ok {
			region = inserted
			result.addStub(string(refcache.KindRegion))
		} else {
			region, found, err = e.store.GetRegionByProvider(ctx, tx, Provider, providerID)
			if err != nil {
				return uuid.Nil, err
			}
			if !found {
				return uuid.Nil, fmt.Errorf("region %s vanished after insert conflict", providerID)
			}
		}
	}

	e.cache.Set(refcache.KindRegion, providerID, region.ID)
	return region.ID, nil
}

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a URL-safe slug from name, falling back to the provider
// identifier when name is empty or collapses entirely.
func slugify(providerID, name string) string {
	base := name
	if base == "" {
		base = providerID
	}
	s := slugInvalidChars.ReplaceAllString(strings.ToLower(base), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = strings.ToLower(slugInvalidChars.ReplaceAllString(providerID, "-"))
	}
	return s
}
