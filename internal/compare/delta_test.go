package compare

import (
	"testing"

	"github.com/marketlens/marketlens/internal/domain"
)

func comparisonWith(title string, members ...domain.Market) domain.Comparison {
	return domain.Comparison{
		NormalizedTitle: title,
		Markets:         members,
	}
}

func TestApplyDeltas(t *testing.T) {
	current := []domain.Comparison{
		comparisonWith("trump win the 2028 election",
			member(domain.VenuePolymarket, "p1", 0.55, 0.45),
			member(domain.VenueKalshi, "k1", 0.50, 0.50),
		),
	}
	previous := []domain.Comparison{
		comparisonWith("trump win the 2028 election",
			member(domain.VenuePolymarket, "p1", 0.50, 0.50),
			member(domain.VenueKalshi, "k1", 0.52, 0.48),
		),
	}

	got := ApplyDeltas(current, previous)

	deltas := got[0].PriceDeltas
	if len(deltas) != 2 {
		t.Fatalf("PriceDeltas has %d entries, want 2: %v", len(deltas), deltas)
	}
	if deltas["polymarket"] != 5 {
		t.Errorf("polymarket delta = %v, want 5", deltas["polymarket"])
	}
	if deltas["kalshi"] != -2 {
		t.Errorf("kalshi delta = %v, want -2", deltas["kalshi"])
	}
}

func TestApplyDeltasNoPreviousCycle(t *testing.T) {
	current := []domain.Comparison{
		comparisonWith("trump win the 2028 election",
			member(domain.VenuePolymarket, "p1", 0.55, 0.45),
		),
	}

	got := ApplyDeltas(current, nil)
	if len(got[0].PriceDeltas) != 0 {
		t.Errorf("PriceDeltas = %v with no previous cycle, want empty", got[0].PriceDeltas)
	}
}

func TestApplyDeltasUnmatchedTitleKeepsEmptyDeltas(t *testing.T) {
	current := []domain.Comparison{
		comparisonWith("new market this cycle",
			member(domain.VenuePolymarket, "p1", 0.55, 0.45),
		),
	}
	previous := []domain.Comparison{
		comparisonWith("some other market",
			member(domain.VenuePolymarket, "p9", 0.50, 0.50),
		),
	}

	got := ApplyDeltas(current, previous)
	if len(got[0].PriceDeltas) != 0 {
		t.Errorf("PriceDeltas = %v for a title absent last cycle, want empty", got[0].PriceDeltas)
	}
}

func TestApplyDeltasVenueMissingFromPrevious(t *testing.T) {
	current := []domain.Comparison{
		comparisonWith("trump win the 2028 election",
			member(domain.VenuePolymarket, "p1", 0.55, 0.45),
			member(domain.VenueLimitless, "l1", 0.60, 0.40),
		),
	}
	previous := []domain.Comparison{
		comparisonWith("trump win the 2028 election",
			member(domain.VenuePolymarket, "p1", 0.50, 0.50),
		),
	}

	got := ApplyDeltas(current, previous)
	deltas := got[0].PriceDeltas
	if _, ok := deltas["limitless"]; ok {
		t.Errorf("limitless delta present without prior data: %v", deltas)
	}
	if deltas["polymarket"] != 5 {
		t.Errorf("polymarket delta = %v, want 5", deltas["polymarket"])
	}
}
