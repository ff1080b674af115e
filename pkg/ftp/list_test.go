package ftp

import "testing"

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantIDs PathIDs
		wantOK  bool
	}{
		{
			name:    "well formed",
			path:    "/2026/03/15/9876/1234567.json",
			wantIDs: PathIDs{CruiseLineID: "15", ShipID: "9876", CodeToCruiseID: "1234567"},
			wantOK:  true,
		},
		{
			name:   "missing extension",
			path:   "/2026/03/15/9876/1234567",
			wantOK: false,
		},
		{
			name:   "too few segments",
			path:   "/2026/03/15.json",
			wantOK: false,
		},
		{
			name:   "empty code",
			path:   "/2026/03/15/9876/.json",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePath(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("ParsePath(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if ok && got != tt.wantIDs {
				t.Errorf("ParsePath(%q) = %+v, want %+v", tt.path, got, tt.wantIDs)
			}
		})
	}
}

func TestBefore(t *testing.T) {
	cases := []struct {
		y, m, cy, cm int
		want         bool
	}{
		{2025, 1, 2026, 1, true},
		{2026, 1, 2026, 1, false},
		{2026, 2, 2026, 1, false},
		{2026, 1, 2026, 2, true},
	}
	for _, c := range cases {
		if got := before(c.y, c.m, c.cy, c.cm); got != c.want {
			t.Errorf("before(%d,%d,%d,%d) = %v, want %v", c.y, c.m, c.cy, c.cm, got, c.want)
		}
	}
}
