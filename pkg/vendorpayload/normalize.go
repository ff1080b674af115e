package vendorpayload

import "strings"

// RegionIDs returns the region keys from the `regions` map. §4.3 step 3
// treats the first entry as the sailing's primary region.
func (p *Payload) RegionIDs() []string {
	ids := make([]string, 0, len(p.Regions))
	for id := range p.Regions {
		ids = append(ids, id)
	}
	return ids
}

// ItineraryPortIDs returns the distinct, non-empty port IDs referenced by
// the itinerary, in itinerary order (§4.3 step 4).
func (p *Payload) ItineraryPortIDs() []string {
	seen := make(map[string]bool, len(p.Itinerary))
	var ids []string
	for _, entry := range p.Itinerary {
		id := strings.TrimSpace(entry.PortID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// AllPortIDs returns the union of start/end ports, itinerary ports, and any
// port referenced only by the `ports` map, deduplicated.
func (p *Payload) AllPortIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}

	add(p.StartPortID)
	add(p.EndPortID)
	for _, id := range p.ItineraryPortIDs() {
		add(id)
	}
	for id := range p.Ports {
		add(id)
	}
	return ids
}

// CheapestPrices collects the four cheapest-by-category fields into a map
// keyed by cabin category, omitting categories the vendor did not report
// (§4.3 step 6, §6.2 SailingCabinPrice).
func (p *Payload) CheapestPrices() map[string]float64 {
	out := make(map[string]float64, 4)
	set := func(key string, v *float64) {
		if v != nil {
			out[key] = *v
		}
	}
	set("inside", p.CheapestInside)
	set("outside", p.CheapestOutside)
	set("balcony", p.CheapestBalcony)
	set("suite", p.CheapestSuite)
	return out
}
