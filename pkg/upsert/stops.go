package upsert

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cruiseops/cruisesync/pkg/catalog"
	"github.com/cruiseops/cruisesync/pkg/refcache"
	"github.com/cruiseops/cruisesync/pkg/vendorpayload"
)

// buildStops implements §4.3 step 4: sea-day detection, port resolution
// (possibly creating a stub from inline itinerary coordinates), and
// day/sequence numbering.
func (e *Engine) buildStops(ctx context.Context, tx pgx.Tx, p *vendorpayload.Payload, result *Result) ([]catalog.SailingStop, error) {
	stops := make([]catalog.SailingStop, 0, len(p.Itinerary))

	for i, entry := range p.Itinerary {
		if isSeaDay(entry.Name) {
			stops = append(stops, catalog.SailingStop{
				PortID:        nil,
				PortName:      "At Sea",
				IsSeaDay:      true,
				DayNumber:     dayNumberOf(entry, i),
				SequenceOrder: sequenceOrderOf(entry, i),
				ArrivalTime:   optionalTime(entry.ArriveTime),
				DepartureTime: optionalTime(entry.DepartTime),
			})
			continue
		}

		portID, err := e.resolveItineraryPort(ctx, tx, entry, p, result)
		if err != nil {
			return nil, err
		}

		name := entry.Name
		if name == "" {
			if info, ok := p.Ports[entry.PortID]; ok {
				name = info.Name
			}
		}

		id := portID
		stops = append(stops, catalog.SailingStop{
			PortID:        &id,
			PortName:      name,
			IsSeaDay:      false,
			DayNumber:     dayNumberOf(entry, i),
			SequenceOrder: sequenceOrderOf(entry, i),
			ArrivalTime:   optionalTime(entry.ArriveTime),
			DepartureTime: optionalTime(entry.DepartTime),
		})
	}

	return stops, nil
}

// isSeaDay reports whether portName, compared case-insensitively, equals
// "at sea" (§3.1, §4.3 step 4).
func isSeaDay(portName string) bool {
	return strings.EqualFold(strings.TrimSpace(portName), "at sea")
}

func dayNumberOf(entry vendorpayload.ItineraryEntry, index int) int {
	if v, err := entry.Day.Int64(); err == nil && v > 0 {
		return int(v)
	}
	return index + 1
}

func sequenceOrderOf(entry vendorpayload.ItineraryEntry, index int) int {
	if v, err := entry.OrderID.Int64(); err == nil {
		return int(v)
	}
	return index
}

func optionalTime(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// resolveItineraryPort resolves (or stub-creates) the port for a single
// itinerary entry, preferring the entry's own inline coordinates/country
// over the payload-level ports map (§4.3 step 4).
func (e *Engine) resolveItineraryPort(ctx context.Context, tx pgx.Tx, entry vendorpayload.ItineraryEntry, p *vendorpayload.Payload, result *Result) (uuid.UUID, error) {
	providerID := entry.PortID
	if providerID == "" {
		providerID = entry.Name
	}
	if providerID == "" {
		return uuid.Nil, nil
	}

	if id, ok := e.cache.Get(refcache.KindPort, providerID); ok {
		return id, nil
	}

	stub := portStubFrom(p, entry.PortID)
	if stub.Name == "" {
		stub.Name = entry.Name
	}
	if entry.Description != "" {
		stub.Description = entry.Description
	}
	if entry.ShortDescription != "" {
		stub.ShortDescription = entry.ShortDescription
	}
	if stub.Latitude == nil && entry.Latitude != nil && entry.Longitude != nil &&
		catalog.ValidCoordinates(*entry.Latitude, *entry.Longitude) {
		stub.Latitude = entry.Latitude
		stub.Longitude = entry.Longitude
	}

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
