// Package compare turns matched market groups into price comparisons and
// tracks movement between cycles.
package compare

import (
	"math"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
)

// round2 rounds to two decimal places, matching the percentage-point
// precision the comparison rows are published with.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BuildComparison summarizes one match group into a comparison row. It
// returns nil for an empty group; the engine never emits one, but a
// defensive caller should not have to care.
//
// Only each member's FIRST outcome participates in best/worst price
// selection. Venues order the primary side first ("Yes", the favorite), a
// source-data convention this function relies on rather than re-derives.
// Groups containing a market with more than two outcomes are flagged via
// MultiOutcome instead of getting different pricing logic.
func BuildComparison(group domain.MatchGroup) *domain.Comparison {
	if len(group.Markets) == 0 {
		return nil
	}

	canonical := group.Markets[0]

	var (
		bestVenue   domain.Venue
		bestName    string
		bestOdds    string
		bestPrice   float64
		worstPrice  = 1.0
		multiOutput bool
	)

	for _, m := range group.Markets {
		if len(m.Outcomes) == 0 {
			continue
		}
		if len(m.Outcomes) > 2 {
			multiOutput = true
		}
		first := m.Outcomes[0]

		// Higher probability on the same side means a better payout for
		// whoever sells it, so track the max as best.
		if first.Price > bestPrice {
			bestPrice = first.Price
			bestVenue = m.Venue
			bestName = first.Name
			bestOdds = first.AmericanOdds
		}
		if first.Price < worstPrice {
			worstPrice = first.Price
		}
	}

	if bestVenue == "" {
		return nil
	}

	arb, arbPct := Arbitrage(allOutcomePrices(group))

	return &domain.Comparison{
		Question:         canonical.Question,
		Category:         canonical.Category,
		Markets:          group.Markets,
		BestVenue:        bestVenue,
		BestOutcomeName:  bestName,
		BestPrice:        bestPrice,
		BestOdds:         bestOdds,
		PriceSpread:      round2((bestPrice - worstPrice) * 100),
		Arbitrage:        arb,
		ArbitragePercent: arbPct,
		PriceDeltas:      make(map[string]float64),
		MultiOutcome:     multiOutput,
		NormalizedTitle:  canonical.NormalizedTitle,
		LastUpdated:      time.Now().UTC(),
	}
}

// allOutcomePrices flattens every outcome price of every member market.
func allOutcomePrices(group domain.MatchGroup) []float64 {
	var prices []float64
	for _, m := range group.Markets {
		for _, o := range m.Outcomes {
			prices = append(prices, o.Price)
		}
	}
	return prices
}

// Arbitrage applies the bookmaker overround test to a flat price list. An
// implied probability sum strictly below 1.0 is an arbitrage; the profit is
// the shortfall in percentage points, rounded to two places. A sum of
// exactly 1.0 is not an arbitrage - no epsilon is applied.
func Arbitrage(prices []float64) (bool, *float64) {
	if len(prices) < 2 {
		return false, nil
	}
	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	if sum < 1.0 {
		profit := round2((1.0 - sum) * 100)
		return true, &profit
	}
	return false, nil
}
