// Package vendorpayload parses the upstream provider's vendor JSON (§6.1)
// into normalized Go structures. Unknown fields are ignored; dynamic shapes
// (ports may be a bare name string or a rich object) are normalized into a
// tagged union at the parsing boundary, per the cyclic/dynamic-object design
// notes in spec.md §9 — the Sailing Upsert Engine only ever sees the
// normalized form.
package vendorpayload

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload is the root vendor JSON document for a single sailing.
type Payload struct {
	Name       string  `json:"name"`
	SailDate   string  `json:"saildate"`
	Nights     float64 `json:"nights"`
	SeaDays    float64 `json:"seadays"`
	VoyageCode string  `json:"voyagecode"`

	StartPortID string `json:"startportid"`
	EndPortID   string `json:"endportid"`

	MarketID string `json:"marketid"`
	NoFly    bool   `json:"nofly"`
	DepartUK bool   `json:"departuk"`

	LineContent LineContent `json:"linecontent"`
	ShipContent ShipContent `json:"shipcontent"`

	Ports   map[string]PortInfo `json:"ports"`
	Regions map[string]string   `json:"regions"`

	Itinerary []ItineraryEntry `json:"itinerary"`

	Cabins       map[string]Cabin           `json:"cabins"`
	CachedPrices map[string]CachedPrice     `json:"cachedprices"`
	AltSailings  []AlternateSailingEntry    `json:"altsailings"`

	CheapestInside   *float64 `json:"cheapestinside"`
	CheapestOutside  *float64 `json:"cheapestoutside"`
	CheapestBalcony  *float64 `json:"cheapestbalcony"`
	CheapestSuite    *float64 `json:"cheapestsuite"`

	// PathCruiseLineID/PathShipID/PathCode are not part of the vendor JSON;
	// the orchestrator fills them in from the file path (§4.2, §4.5 step 5)
	// and they take priority over any value the payload itself carries.
	PathCruiseLineID string `json:"-"`
	PathShipID       string `json:"-"`
	PathCode         string `json:"-"`
}

// LineContent is the optional embedded cruise-line metadata.
type LineContent struct {
	Logo        string `json:"logo"`
	Description string `json:"description"`
	Code        string `json:"code"`
	ShortName   string `json:"shortname"`
	NiceURL     string `json:"niceurl"`
}

// ShipContent is the optional embedded ship metadata.
type ShipContent struct {
	Tonnage   float64 `json:"tonnage"`
	Occupancy float64 `json:"occupancy"`
	Launched  string  `json:"launched"`
	Length    float64 `json:"length"`
	Code      string  `json:"code"`
	ShipClass string  `json:"shipclass"`

	ShipDecks map[string]ShipDeckEntry `json:"shipdecks"`

	DefaultShipImage   string      `json:"defaultshipimage"`
	DefaultShipImageHD string      `json:"defaultshipimagehd"`
	DefaultShipImage2K string      `json:"defaultshipimage2k"`
	ShipImages         []ShipImage `json:"shipimages"`
}

// ShipDeckEntry is one entry of shipcontent.shipdecks.
type ShipDeckEntry struct {
	DeckName      string                    `json:"deckname"`
	PlanImage     string                    `json:"planimage"`
	Description   string                    `json:"description"`
	CabinLocations map[string]CabinLocation `json:"cabinlocations"`
}

// CabinLocation is one bounding box on a deck plan.
type CabinLocation struct {
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	CabinID string  `json:"cabinid"`
}

// ShipImage is one gallery image entry.
type ShipImage struct {
	ImageURL   string `json:"imageurl"`
	ImageURLHD string `json:"imageurlhd"`
	ImageURL2K string `json:"imageurl2k"`
	Caption    string `json:"caption"`
	Default    bool   `json:"default"`
}

// PortInfo is the normalized form of a `ports` entry. The vendor JSON may
// encode each value as either a bare name string or a rich object; Parse
// normalizes both into this struct, with Name always populated.
type PortInfo struct {
	Name             string   `json:"name"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	Country          string   `json:"country"`
	CountryCode      string   `json:"countrycode"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"shortdescription"`
}

// UnmarshalJSON accepts either a bare string or a PortInfo-shaped object.
func (p *PortInfo) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		p.Name = name
		return nil
	}

	type alias PortInfo
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("decoding port info: %w", err)
	}
	*p = PortInfo(a)
	return nil
}

// ItineraryEntry is one day of the sailing's itinerary.
type ItineraryEntry struct {
	Day                   json.Number `json:"day"`
	PortID                string      `json:"portid"`
	Name                  string      `json:"name"`
	ArriveTime            string      `json:"arrivetime"`
	DepartTime            string      `json:"departtime"`
	OrderID               json.Number `json:"orderid"`
	Latitude              *float64    `json:"latitude"`
	Longitude             *float64    `json:"longitude"`
	Description           string      `json:"description"`
	ShortDescription      string      `json:"shortdescription"`
	ItineraryDescription  string      `json:"itinerarydescription"`
}

// Cabin is one entry of the `cabins` map.
type Cabin struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	CodType         string   `json:"codtype"`
	Description     string   `json:"description"`
	ImageURL        string   `json:"imageurl"`
	ImageURL2K      string   `json:"imageurl2k"`
	ImageURLHD      string   `json:"imageurlhd"`
	ColourCode      string   `json:"colourcode"`
	AllCabinDecks   []string `json:"allcabindecks"`
	AllCabinImages  []CabinImageEntry `json:"allcabinimages"`
}

// CabinImageEntry is one entry of cabins[*].allcabinimages.
type CabinImageEntry struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// CachedPrice is one entry of the `cachedprices` map, keyed by cabin code.
type CachedPrice struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// AlternateSailingEntry is one entry of `altsailings`.
type AlternateSailingEntry struct {
	ID            string  `json:"id"`
	SailDate      string  `json:"saildate"`
	Nights        float64 `json:"nights"`
	CheapestPrice float64 `json:"cheapestprice"`
}

// Parse decodes raw vendor JSON bytes into a Payload. Unknown fields are
// silently ignored, matching the non-goal of exact vendor JSON fidelity
// (spec.md §1).
func Parse(data []byte) (*Payload, error) {
	var p Payload
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}
	return &p, nil
}
