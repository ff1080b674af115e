package control

import "testing"

func TestSyncRequestToOptionsDefaults(t *testing.T) {
	req := syncRequest{Year: 2027, Month: 3}
	opts := req.toOptions()

	if !opts.SkipOversized {
		t.Error("expected SkipOversized to default to true when omitted")
	}
	if !opts.DeltaSync {
		t.Error("expected DeltaSync to default to true when omitted")
	}
	if opts.Year != 2027 || opts.Month != 3 {
		t.Errorf("expected year/month to pass through, got %d/%d", opts.Year, opts.Month)
	}
}

func TestSyncRequestToOptionsExplicitFalse(t *testing.T) {
	no := false
	req := syncRequest{SkipOversized: &no, DeltaSync: &no}
	opts := req.toOptions()

	if opts.SkipOversized {
		t.Error("expected SkipOversized=false to be honored when explicitly set")
	}
	if opts.DeltaSync {
		t.Error("expected DeltaSync=false to be honored when explicitly set")
	}
}

func TestSyncRequestToOptionsExplicitTrue(t *testing.T) {
	yes := true
	req := syncRequest{SkipOversized: &yes, DeltaSync: &yes}
	opts := req.toOptions()

	if !opts.SkipOversized || !opts.DeltaSync {
		t.Error("expected explicit true values to be honored")
	}
}

func TestParsePositiveInt(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"20", 20, false},
		{"1", 1, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := parsePositiveInt(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parsePositiveInt(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePositiveInt(%q): unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("parsePositiveInt(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
