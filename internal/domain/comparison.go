package domain

import "time"

// MatchGroup is a set of markets from distinct venues believed to reference
// the same real-world event. Groups are rebuilt from scratch on every
// matching pass and never persisted.
type MatchGroup struct {
	Markets []Market
}

// Venues returns the venue of every member in member order.
func (g MatchGroup) Venues() []Venue {
	vs := make([]Venue, 0, len(g.Markets))
	for _, m := range g.Markets {
		vs = append(vs, m.Venue)
	}
	return vs
}

// Comparison is the computed price summary for one MatchGroup: the best
// first-outcome price across venues, the spread against the worst, and the
// arbitrage state over all outcomes.
type Comparison struct {
	Question string         `json:"question"`
	Category MarketCategory `json:"category"`
	Markets  []Market       `json:"markets"`

	BestVenue       Venue   `json:"best_venue"`
	BestOutcomeName string  `json:"best_outcome_name"`
	BestPrice       float64 `json:"best_price"`
	BestOdds        string  `json:"best_odds"`
	PriceSpread     float64 `json:"price_spread"` // percentage points, 2dp

	Arbitrage        bool     `json:"arbitrage"`
	ArbitragePercent *float64 `json:"arbitrage_percent,omitempty"`

	// PriceDeltas maps venue name to the first-outcome price change versus
	// the prior cycle, in percentage points. Absent entries mean "no
	// history", not "no change".
	PriceDeltas map[string]float64 `json:"price_deltas"`

	// MultiOutcome marks groups where a member lists more than two outcomes.
	// Pricing still follows the first-outcome convention; the flag exists so
	// consumers can route these rows to review.
	MultiOutcome bool `json:"multi_outcome,omitempty"`

	NormalizedTitle string    `json:"normalized_title"`
	LastUpdated     time.Time `json:"last_updated"`
}

// PriceHistoryEntry is one append-only price observation for an outcome on a
// venue. Entries live in a bounded ring; see compare.HistoryRing.
type PriceHistoryEntry struct {
	Venue       Venue     `json:"venue"`
	MarketID    string    `json:"market_id"`
	OutcomeName string    `json:"outcome_name"`
	Timestamp   time.Time `json:"timestamp"`
	Price       float64   `json:"price"`
	Volume      *float64  `json:"volume,omitempty"`
}
