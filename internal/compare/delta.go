package compare

import "github.com/marketlens/marketlens/internal/domain"

// ApplyDeltas annotates the current cycle's comparisons with per-venue
// first-outcome price movement against the previous cycle. Rows are paired
// by normalized title; a row with no prior counterpart keeps an empty delta
// map, which consumers must read as "no history", not "no change". The
// passed-in comparisons are mutated and returned.
func ApplyDeltas(current, previous []domain.Comparison) []domain.Comparison {
	if len(previous) == 0 {
		return current
	}

	prevByTitle := make(map[string]domain.Comparison, len(previous))
	for _, c := range previous {
		prevByTitle[c.NormalizedTitle] = c
	}

	for i := range current {
		prev, ok := prevByTitle[current[i].NormalizedTitle]
		if !ok {
			continue
		}

		for _, m := range current[i].Markets {
			old, ok := memberByVenue(prev, m.Venue)
			if !ok || len(m.Outcomes) == 0 || len(old.Outcomes) == 0 {
				continue
			}
			delta := round2((m.Outcomes[0].Price - old.Outcomes[0].Price) * 100)
			if current[i].PriceDeltas == nil {
				current[i].PriceDeltas = make(map[string]float64)
			}
			current[i].PriceDeltas[string(m.Venue)] = delta
		}
	}

	return current
}

func memberByVenue(c domain.Comparison, venue domain.Venue) (domain.Market, bool) {
	for _, m := range c.Markets {
		if m.Venue == venue {
			return m, true
		}
	}
	return domain.Market{}, false
}
