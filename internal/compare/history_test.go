package compare

import (
	"testing"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
)

func TestHistoryRingRecordAndTrim(t *testing.T) {
	ring := NewHistoryRing(3)
	ts := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	comps := []domain.Comparison{
		comparisonWith("trump win the 2028 election",
			member(domain.VenuePolymarket, "p1", 0.55, 0.45),
		),
	}

	added := ring.Record(comps, ts)
	if len(added) != 2 {
		t.Fatalf("Record() added %d entries, want 2 (one per outcome)", len(added))
	}
	if ring.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ring.Len())
	}

	// A second cycle pushes the ring over its bound of 3; only the newest
	// three observations survive.
	ring.Record(comps, ts.Add(time.Minute))
	if ring.Len() != 3 {
		t.Fatalf("Len() = %d after trim, want 3", ring.Len())
	}
	entries := ring.Entries("", "", 0)
	if !entries[len(entries)-1].Timestamp.Equal(ts.Add(time.Minute)) {
		t.Error("trim dropped the newest entries instead of the oldest")
	}
}

func TestHistoryRingEntriesFilters(t *testing.T) {
	ring := NewHistoryRing(100)
	ts := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	comps := []domain.Comparison{
		comparisonWith("trump win the 2028 election",
			member(domain.VenuePolymarket, "p1", 0.55, 0.45),
			member(domain.VenueKalshi, "k1", 0.50, 0.50),
		),
	}
	ring.Record(comps, ts)

	if got := ring.Entries(domain.VenueKalshi, "", 0); len(got) != 2 {
		t.Errorf("venue filter returned %d entries, want 2", len(got))
	}
	if got := ring.Entries(domain.VenuePolymarket, "p1", 0); len(got) != 2 {
		t.Errorf("venue+market filter returned %d entries, want 2", len(got))
	}
	if got := ring.Entries("", "nope", 0); len(got) != 0 {
		t.Errorf("unknown market returned %d entries, want 0", len(got))
	}
	if got := ring.Entries("", "", 1); len(got) != 1 {
		t.Errorf("limit 1 returned %d entries, want 1", len(got))
	}
}

func TestHistoryRingNonPositiveMax(t *testing.T) {
	ring := NewHistoryRing(0)
	ts := time.Now().UTC()
	comps := []domain.Comparison{
		comparisonWith("t", member(domain.VenuePolymarket, "p1", 0.5, 0.5)),
	}
	for i := 0; i < 10; i++ {
		ring.Record(comps, ts)
	}
	if ring.Len() != 20 {
		t.Fatalf("Len() = %d, want 20 with default bound", ring.Len())
	}
}
