// Package catalog holds the persistent entity model described in §3.1-3.2
// and the pgx-backed store used to read and write it. There is no
// generated query layer in this repository; queries are hand-written raw
// SQL against pgx.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// CabinCategory enumerates the four normalized cabin categories plus the
// catch-all bucket, per §4.3 step 5.
type CabinCategory string

const (
	CabinInside    CabinCategory = "inside"
	CabinOceanview CabinCategory = "oceanview"
	CabinBalcony   CabinCategory = "balcony"
	CabinSuite     CabinCategory = "suite"
	CabinOther     CabinCategory = "other"
)

// ReferenceKind mirrors refcache.Kind for the entity kinds resolved during
// reference resolution (§4.3 step 1).
type ReferenceKind string

const (
	KindCruiseLine ReferenceKind = "cruise_line"
	KindShip       ReferenceKind = "ship"
	KindPort       ReferenceKind = "port"
	KindRegion     ReferenceKind = "region"
)

// CruiseLine is one vendor cruise line (§3.1).
type CruiseLine struct {
	ID          uuid.UUID
	Provider    string
	ProviderID  string
	Name        string
	Slug        string
	Logo        string
	Description string
	Code        string
	ShortName   string
	Website     string
	NeedsReview bool
	AutoCreated bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GalleryImage is one ship gallery image (§3.1 Ship.metadata).
type GalleryImage struct {
	URL     string `json:"url"`
	HD      string `json:"hd"`
	TwoK    string `json:"twoK"`
	Caption string `json:"caption"`
	Default bool   `json:"default"`
}

// Ship belongs to one CruiseLine (§3.1).
type Ship struct {
	ID           uuid.UUID
	CruiseLineID uuid.UUID
	Provider     string
	ProviderID   string
	Name         string
	Slug         string
	ShipClass    string
	ImageURL     string
	Tonnage      float64
	Occupancy    int
	YearBuilt    int
	Length       float64
	Code         string
	GalleryImages []GalleryImage
	NeedsReview  bool
	AutoCreated  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CabinBox is one deck-plan bounding box (§3.1 ShipDeck.metadata).
type CabinBox struct {
	CabinID string  `json:"cabinId"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
}

// Valid reports whether the box satisfies 0 <= x1 < x2 <= 10000 (and same
// for y), per §3.1.
func (b CabinBox) Valid() bool {
	const max = 10000
	return b.X1 >= 0 && b.X1 < b.X2 && b.X2 <= max &&
		b.Y1 >= 0 && b.Y1 < b.Y2 && b.Y2 <= max
}

// ShipDeck belongs to one Ship (§3.1).
type ShipDeck struct {
	ID           uuid.UUID
	ShipID       uuid.UUID
	Name         string
	DeckNumber   int
	DeckPlanURL  string
	Description  string
	DisplayOrder int
	CabinBoxes   []CabinBox
	CreatedAt    time.Time
}

// ShipCabinType belongs to one Ship (§3.1).
type ShipCabinType struct {
	ID               uuid.UUID
	ShipID           uuid.UUID
	CabinCode        string
	CabinCategory    CabinCategory
	Name             string
	Description      string
	ImageURL         string
	ImageURLHD       string
	ImageURL2K       string
	ColourCode       string
	Decks            []string
	AdditionalImages []string
	CreatedAt        time.Time
}

// CabinImage belongs to one ShipCabinType (§3.1).
type CabinImage struct {
	ID           uuid.UUID
	CabinTypeID  uuid.UUID
	ImageURL     string
	ImageURLHD   string
	ImageURL2K   string
	Caption      string
	DisplayOrder int
	IsDefault    bool
}

// Port is a vendor port of call (§3.1).
type Port struct {
	ID               uuid.UUID
	Provider         string
	ProviderID       string
	Name             string
	Slug             string
	Latitude         *float64
	Longitude        *float64
	Country          string
	CountryCode      string
	Description      string
	ShortDescription string
	NeedsReview      bool
	AutoCreated      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ValidCoordinates reports whether lat/lng are in range, per §3.1.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Region is a vendor geographic region (§3.1).
type Region struct {
	ID          uuid.UUID
	Provider    string
	ProviderID  string
	Name        string
	Slug        string
	NeedsReview bool
	AutoCreated bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Sailing is one scheduled voyage (§3.1).
type Sailing struct {
	ID                uuid.UUID
	Provider          string
	ProviderID        string
	ShipID            uuid.UUID
	CruiseLineID      uuid.UUID
	EmbarkPortID      uuid.UUID
	DisembarkPortID   uuid.UUID
	EmbarkPortName    string
	DisembarkPortName string
	Name              string
	SailDate          time.Time
	EndDate           time.Time
	Nights            int
	SeaDays           int
	VoyageCode        string
	MarketID          string
	NoFly             bool
	DepartUK          bool
	CheapestInsideCents  *int64
	CheapestOutsideCents *int64
	CheapestBalconyCents *int64
	CheapestSuiteCents   *int64
	LastSyncedAt      time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SailingStop belongs to one Sailing (§3.1).
type SailingStop struct {
	ID            uuid.UUID
	SailingID     uuid.UUID
	PortID        *uuid.UUID
	PortName      string
	IsSeaDay      bool
	DayNumber     int
	SequenceOrder int
	ArrivalTime   *string
	DepartureTime *string
}

// SailingCabinPrice belongs to one Sailing (§3.1). Rewritten in full on
// every upsert.
type SailingCabinPrice struct {
	ID                  uuid.UUID
	SailingID           uuid.UUID
	CabinCode           string
	CabinCategory       CabinCategory
	Occupancy           int
	BasePriceCents      int64
	TaxesCents          int64
	OriginalCurrency    string
	OriginalAmountCents int64
	IsPerPerson         bool
}

// AlternateSailing belongs to one Sailing (§3.1). AlternateSailingID is
// filled by the post-batch backfill (§4.5).
type AlternateSailing struct {
	ID                          uuid.UUID
	SailingID                   uuid.UUID
	Provider                    string
	AlternateProviderIdentifier string
	AlternateSailingID          *uuid.UUID
	AlternateSailDate           time.Time
	AlternateNights             int
	AlternateLeadPriceCents     int64
}

// SyncRaw is the opaque raw-payload cache keyed by provider sailing ID
// (§3.1). Purged by the maintenance purge job.
type SyncRaw struct {
	ProviderSailingID string
	RawData           []byte
	SyncedAt          time.Time
	ExpiresAt         time.Time
}

// FtpFileSync is the per-file delta-tracking row (§3.2).
type FtpFileSync struct {
	FilePath      string
	FileSize      int64
	FtpModifiedAt *time.Time
	ContentHash   *string
	LastSyncedAt  time.Time
	SyncStatus    string
	LastError     *string
}

// SyncError is one entry of a SyncHistory's bounded error list (§3.2).
type SyncError struct {
	FilePath  string `json:"filePath"`
	Error     string `json:"error"`
	ErrorType string `json:"errorType"`
}

// SyncHistory is one orchestrator run (§3.2).
type SyncHistory struct {
	ID          uuid.UUID
	StartedAt   time.Time
	CompletedAt *time.Time
	Status      string
	Options     []byte
	Metrics     []byte
	ErrorCount  int
	Errors      []SyncError
}
