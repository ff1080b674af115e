package upsert

import (
	"testing"

	"github.com/cruiseops/cruisesync/pkg/catalog"
	"github.com/cruiseops/cruisesync/pkg/vendorpayload"
)

func TestCabinCategoryFromCodType(t *testing.T) {
	cases := map[string]catalog.CabinCategory{
		"Interior":      catalog.CabinInside,
		"INSIDE CABIN":  catalog.CabinInside,
		"Ocean View":    catalog.CabinOceanview,
		"Outside Cabin": catalog.CabinOceanview,
		"Balcony":       catalog.CabinBalcony,
		"Veranda":       catalog.CabinBalcony,
		"Grand Suite":   catalog.CabinSuite,
		"Studio":        catalog.CabinOther,
	}
	for in, want := range cases {
		if got := cabinCategoryFromCodType(in); got != want {
			t.Errorf("cabinCategoryFromCodType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCabinCategoryFromCodePrefix(t *testing.T) {
	cases := map[string]catalog.CabinCategory{
		"IN1A": catalog.CabinInside,
		"OV2B": catalog.CabinOceanview,
		"BA3C": catalog.CabinBalcony,
		"SU4D": catalog.CabinSuite,
		"ZZ99": catalog.CabinOther,
		"X":    catalog.CabinOther,
	}
	for in, want := range cases {
		if got := cabinCategoryFromCodePrefix(in); got != want {
			t.Errorf("cabinCategoryFromCodePrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsSeaDay(t *testing.T) {
	cases := map[string]bool{
		"At Sea":   true,
		"at sea":   true,
		"AT SEA":   true,
		" At Sea ": true,
		"Miami":    false,
		"":         false,
	}
	for in, want := range cases {
		if got := isSeaDay(in); got != want {
			t.Errorf("isSeaDay(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDayNumberOfFallsBackToIndex(t *testing.T) {
	entry := vendorpayload.ItineraryEntry{}
	if got := dayNumberOf(entry, 2); got != 3 {
		t.Errorf("dayNumberOf fallback = %d, want 3", got)
	}
}

func TestSequenceOrderOfFallsBackToIndex(t *testing.T) {
	entry := vendorpayload.ItineraryEntry{}
	if got := sequenceOrderOf(entry, 4); got != 4 {
		t.Errorf("sequenceOrderOf fallback = %d, want 4", got)
	}
}

func TestToMinorUnits(t *testing.T) {
	cases := map[float64]int64{
		199.99: 19999,
		100:    10000,
		0.005:  1,
	}
	for in, want := range cases {
		if got := toMinorUnits(in); got != want {
			t.Errorf("toMinorUnits(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestSlugify(t *testing.T) {
	if got := slugify("123", "Royal Seas Cruises!"); got != "royal-seas-cruises" {
		t.Errorf("slugify = %q", got)
	}
	if got := slugify("456", ""); got != "456" {
		t.Errorf("slugify fallback = %q, want 456", got)
	}
}

func TestResultAddStubInitializesMapLazily(t *testing.T) {
	var r Result
	r.addStub("ship")
	r.addStub("ship")
	r.addStub("port")

	if r.StubsCreated["ship"] != 2 {
		t.Errorf("StubsCreated[ship] = %d, want 2", r.StubsCreated["ship"])
	}
	if r.StubsCreated["port"] != 1 {
		t.Errorf("StubsCreated[port] = %d, want 1", r.StubsCreated["port"])
	}
}

func TestCabinBoxesFromDropsNothingButSortsDeterministically(t *testing.T) {
	locations := map[string]vendorpayload.CabinLocation{
		"b": {CabinID: "B1", X1: 0, Y1: 0, X2: 10, Y2: 10},
		"a": {X1: 1, Y1: 1, X2: 20, Y2: 20},
	}
	boxes := cabinBoxesFrom(locations)
	if len(boxes) != 2 {
		t.Fatalf("cabinBoxesFrom() = %d boxes, want 2", len(boxes))
	}
	if boxes[0].CabinID != "a" {
		t.Errorf("boxes[0].CabinID = %q, want %q (fallback to map key)", boxes[0].CabinID, "a")
	}
	if boxes[1].CabinID != "B1" {
		t.Errorf("boxes[1].CabinID = %q, want B1", boxes[1].CabinID)
	}
}

func TestNormalizeDefaultImageKeepsOnlyFirst(t *testing.T) {
	images := []catalog.GalleryImage{
		{URL: "a", Default: true},
		{URL: "b", Default: true},
		{URL: "c", Default: false},
	}
	out := normalizeDefaultImage(images)
	if !out[0].Default {
		t.Error("expected first image to remain default")
	}
	if out[1].Default {
		t.Error("expected second image's default flag to be cleared")
	}
}
