// Package domain defines the venue-independent market model shared by the
// matching engine, the comparators, and every storage and transport layer.
package domain

import (
	"fmt"
	"math"
	"time"
)

// Venue identifies a prediction-market trading platform. The set is closed:
// adding a venue is a compile-time change, not a configuration value.
type Venue string

const (
	VenuePolymarket Venue = "polymarket"
	VenueKalshi     Venue = "kalshi"
	VenueLimitless  Venue = "limitless"
)

// Venues lists every known venue in a fixed order. Iterating this slice keeps
// per-venue output deterministic.
var Venues = []Venue{VenuePolymarket, VenueKalshi, VenueLimitless}

// Valid reports whether v is one of the known venues.
func (v Venue) Valid() bool {
	switch v {
	case VenuePolymarket, VenueKalshi, VenueLimitless:
		return true
	}
	return false
}

// MarketCategory classifies what a market is about. Markets are only ever
// matched against markets of the same category.
type MarketCategory string

const (
	CategorySports        MarketCategory = "sports"
	CategoryPolitics      MarketCategory = "politics"
	CategoryCrypto        MarketCategory = "crypto"
	CategoryEntertainment MarketCategory = "entertainment"
	CategoryOther         MarketCategory = "other"
)

// Categories lists every market category in the order the matching engine
// walks its partitions.
var Categories = []MarketCategory{
	CategorySports,
	CategoryPolitics,
	CategoryCrypto,
	CategoryEntertainment,
	CategoryOther,
}

// Outcome is one resolvable side of a market: a label, a probability, and the
// odds representations derived from it.
type Outcome struct {
	Name         string   `json:"name"`
	Price        float64  `json:"price"` // probability, strictly in (0,1)
	DecimalOdds  float64  `json:"decimal_odds"`
	AmericanOdds string   `json:"american_odds"`
	BestBid      *float64 `json:"best_bid,omitempty"`
	BestAsk      *float64 `json:"best_ask,omitempty"`
	Volume       *float64 `json:"volume,omitempty"`
}

// NewOutcome builds an Outcome with the derived odds populated from price.
func NewOutcome(name string, price float64) Outcome {
	return Outcome{
		Name:         name,
		Price:        price,
		DecimalOdds:  DecimalOdds(price),
		AmericanOdds: AmericanOdds(price),
	}
}

// Market is one listed question on one venue, normalized into the unified
// model. Markets are constructed once per fetch cycle by the venue clients
// and treated as immutable afterwards; identity across cycles is only the
// (Venue, MarketID) pair.
type Market struct {
	Venue    Venue          `json:"venue"`
	MarketID string         `json:"market_id"`
	Question string         `json:"question"`
	Outcomes []Outcome      `json:"outcomes"` // venue's native order
	Category MarketCategory `json:"category"`

	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	CategoryLabel string `json:"category_label,omitempty"`
	Subcategory   string `json:"subcategory,omitempty"`
	Sport         string `json:"sport,omitempty"`
	League        string `json:"league,omitempty"`

	TotalVolume *float64 `json:"total_volume,omitempty"`
	Liquidity   *float64 `json:"liquidity,omitempty"`

	Active bool `json:"active"`
	Closed bool `json:"closed"`

	// Raw carries venue-native fields for downstream consumers that need
	// more than the unified model exposes.
	Raw map[string]any `json:"raw,omitempty"`

	NormalizedTitle string   `json:"normalized_title"`
	NormalizedTeams []string `json:"normalized_teams,omitempty"`

	FetchedAt time.Time `json:"fetched_at"`
}

// Key returns the (venue, native id) identity of the market.
func (m Market) Key() MarketKey {
	return MarketKey{Venue: m.Venue, MarketID: m.MarketID}
}

// MarketKey is the only identity a market has across fetch cycles.
type MarketKey struct {
	Venue    Venue
	MarketID string
}

func (k MarketKey) String() string {
	return fmt.Sprintf("%s/%s", k.Venue, k.MarketID)
}

// DecimalOdds converts a probability to decimal odds, rounded to two places.
// Degenerate probabilities yield 0.
func DecimalOdds(probability float64) float64 {
	if probability <= 0 || probability >= 1 {
		return 0
	}
	return math.Round(100/probability) / 100
}

// AmericanOdds converts a probability to the American odds string. Positive
// ("+150") when the decimal odds are at least 2.0, negative ("-200")
// otherwise. Degenerate probabilities yield "N/A".
func AmericanOdds(probability float64) string {
	if probability <= 0 || probability >= 1 {
		return "N/A"
	}
	decimal := 1 / probability
	if decimal >= 2.0 {
		return fmt.Sprintf("+%d", int((decimal-1)*100))
	}
	return fmt.Sprintf("%d", int(-100/(decimal-1)))
}
