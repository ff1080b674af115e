package maintenance

import (
	"testing"
	"time"

	"github.com/cruiseops/cruisesync/pkg/catalog"
)

func TestCutoffTruncatesToCalendarDay(t *testing.T) {
	got := cutoff(0)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Fatalf("cutoff(0) = %v, expected truncated to midnight UTC", got)
	}
}

func TestCutoffAppliesDaysBuffer(t *testing.T) {
	today := cutoff(0)
	tenDaysBack := cutoff(10)

	if !today.After(tenDaysBack) {
		t.Fatalf("cutoff(0)=%v should be after cutoff(10)=%v", today, tenDaysBack)
	}
	if today.Sub(tenDaysBack) != 10*24*time.Hour {
		t.Fatalf("expected exactly a 10 day gap, got %v", today.Sub(tenDaysBack))
	}
}

func TestToCleanupResultCopiesCounts(t *testing.T) {
	cut := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	counts := catalog.PastSailingCounts{
		Sailings:      3,
		Regions:       5,
		Stops:         7,
		CabinPrices:   9,
		RawPayloads:   2,
		OldestEndDate: &oldest,
	}

	result := toCleanupResult(cut, counts, time.Now())

	if result.Cutoff != cut {
		t.Errorf("Cutoff = %v, want %v", result.Cutoff, cut)
	}
	if result.Sailings != 3 || result.Regions != 5 || result.Stops != 7 || result.CabinPrices != 9 || result.RawPayloads != 2 {
		t.Errorf("counts not copied faithfully: %+v", result)
	}
	if result.OldestEndDate == nil || !result.OldestEndDate.Equal(oldest) {
		t.Errorf("OldestEndDate = %v, want %v", result.OldestEndDate, oldest)
	}
}

func TestNotifierDisabledWithoutToken(t *testing.T) {
	n := NewNotifier("", "#reports", nil)
	if n.IsEnabled() {
		t.Fatal("expected notifier to be disabled when botToken is empty")
	}
}
