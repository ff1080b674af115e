package vendorpayload

import "testing"

func TestParsePortsAsBareStrings(t *testing.T) {
	data := []byte(`{
		"name": "Test Sailing",
		"ports": {
			"123": "Miami",
			"456": "Nassau"
		}
	}`)

	p, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.Ports["123"].Name; got != "Miami" {
		t.Errorf("Ports[123].Name = %q, want Miami", got)
	}
	if got := p.Ports["456"].Name; got != "Nassau" {
		t.Errorf("Ports[456].Name = %q, want Nassau", got)
	}
}

func TestParsePortsAsObjects(t *testing.T) {
	data := []byte(`{
		"name": "Test Sailing",
		"ports": {
			"123": {"name": "Miami", "country": "United States", "countrycode": "US"}
		}
	}`)

	p, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := p.Ports["123"]
	if got.Name != "Miami" || got.Country != "United States" || got.CountryCode != "US" {
		t.Errorf("Ports[123] = %+v, want Miami/United States/US", got)
	}
}

func TestParsePortsMixedShapes(t *testing.T) {
	data := []byte(`{
		"ports": {
			"123": "Miami",
			"456": {"name": "Nassau", "country": "Bahamas"}
		}
	}`)

	p, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Ports["123"].Name != "Miami" {
		t.Errorf("Ports[123].Name = %q, want Miami", p.Ports["123"].Name)
	}
	if p.Ports["456"].Name != "Nassau" || p.Ports["456"].Country != "Bahamas" {
		t.Errorf("Ports[456] = %+v, want Nassau/Bahamas", p.Ports["456"])
	}
}

func TestParseInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte(`{not valid`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestItineraryPortIDsDedupesAndPreservesOrder(t *testing.T) {
	p := &Payload{
		Itinerary: []ItineraryEntry{
			{PortID: "1"},
			{PortID: "2"},
			{PortID: "1"},
			{PortID: ""},
			{PortID: "3"},
		},
	}
	got := p.ItineraryPortIDs()
	want := []string{"1", "2", "3"}
	if len(got) != len(want) {
		t.Fatalf("ItineraryPortIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ItineraryPortIDs() = %v, want %v", got, want)
		}
	}
}

func TestAllPortIDsUnion(t *testing.T) {
	p := &Payload{
		StartPortID: "1",
		EndPortID:   "2",
		Itinerary: []ItineraryEntry{
			{PortID: "1"},
			{PortID: "4"},
		},
		Ports: map[string]PortInfo{
			"5": {Name: "Extra"},
		},
	}
	got := p.AllPortIDs()
	want := map[string]bool{"1": true, "2": true, "4": true, "5": true}
	if len(got) != len(want) {
		t.Fatalf("AllPortIDs() = %v, want keys %v", got, want)
	}
	for _, id := range got {
		if !want[id] {
			t.Errorf("unexpected port id %q in %v", id, got)
		}
	}
}

func TestCheapestPricesOmitsMissing(t *testing.T) {
	inside := 199.99
	suite := 899.0
	p := &Payload{CheapestInside: &inside, CheapestSuite: &suite}

	got := p.CheapestPrices()
	if len(got) != 2 {
		t.Fatalf("CheapestPrices() = %v, want 2 entries", got)
	}
	if got["inside"] != inside || got["suite"] != suite {
		t.Errorf("CheapestPrices() = %v", got)
	}
	if _, ok := got["balcony"]; ok {
		t.Error("balcony should be absent when nil")
	}
}
